package dashboard

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/metrics"
	"github.com/angelcm/horizon-crm/internal/models"
)

type Service struct {
	clk clock.Clock
	m   *metrics.Metrics
}

func NewService(clk clock.Clock, m *metrics.Metrics) *Service { return &Service{clk: clk, m: m} }

func (s *Service) today(ctx context.Context) time.Time {
	return clock.FromContext(ctx, s.clk).Now()
}

// Series recomputes the merged daily series. Nothing is cached between calls.
func (s *Service) Series(ctx context.Context, snap models.Snapshot) []models.DailyData {
	start := time.Now()
	defer s.m.ObserveAggregation(start)
	return Aggregate(snap, s.today(ctx))
}

// QuerySeries returns the non-empty days between from and to (YYYY-MM-DD,
// both optional), paginated with limit/offset.
func (s *Service) QuerySeries(ctx context.Context, snap models.Snapshot, v url.Values) ([]models.DailyData, error) {
	from, to := strings.TrimSpace(v.Get("from")), strings.TrimSpace(v.Get("to"))
	if (from != "" && !clock.Valid(from)) || (to != "" && !clock.Valid(to)) {
		return nil, apperr.New(apperr.CodeValidation, "from/to must be YYYY-MM-DD")
	}
	includeEmpty := v.Get("include_empty") == "true"
	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)

	var rows []models.DailyData
	for _, d := range s.Series(ctx, snap) {
		if from != "" && d.Date < from {
			continue
		}
		if to != "" && d.Date > to {
			continue
		}
		if !includeEmpty && d.IsZero() {
			continue
		}
		rows = append(rows, d)
	}
	limit, offset = clampLimitOffset(limit, offset, len(rows))
	return paginate(rows, limit, offset), nil
}

func (s *Service) Stats(ctx context.Context, snap models.Snapshot, v url.Values) (models.Stats, error) {
	tf, ok := ParseTimeframe(v.Get("timeframe"))
	if !ok {
		return models.Stats{}, apperr.New(apperr.CodeValidation, "timeframe must be Day, Week or Month")
	}
	return Reduce(s.Series(ctx, snap), tf, s.today(ctx)), nil
}

func (s *Service) Chart(ctx context.Context, snap models.Snapshot, v url.Values) ([]models.ChartPoint, error) {
	tf, ok := ParseTimeframe(v.Get("timeframe"))
	if !ok {
		return nil, apperr.New(apperr.CodeValidation, "timeframe must be Day, Week or Month")
	}
	return Chart(s.Series(ctx, snap), tf, s.today(ctx)), nil
}

// Calendar renders the grid for ?mode=Month|Year&date=YYYY-MM|YYYY&metric=Profits|Demos.
// Without date the grid shows today's month or year; shift moves it by whole
// months or years.
func (s *Service) Calendar(ctx context.Context, snap models.Snapshot, v url.Values) (models.Calendar, error) {
	mode, ok := ParseCalendarMode(v.Get("mode"))
	if !ok {
		return models.Calendar{}, apperr.New(apperr.CodeValidation, "mode must be Month or Year")
	}
	metric, ok := ParseMetric(v.Get("metric"))
	if !ok {
		return models.Calendar{}, apperr.New(apperr.CodeValidation, "metric must be Profits or Demos")
	}
	today := s.today(ctx)
	view, err := parseView(v.Get("date"), today)
	if err != nil {
		return models.Calendar{}, err
	}
	if shift := atoiDef(v.Get("shift"), 0); shift != 0 {
		view = Shift(view, mode, shift)
	}

	series := s.Series(ctx, snap)
	if mode == YearGrid {
		return YearCalendar(series, view, today, metric), nil
	}
	return MonthCalendar(series, view, today, metric), nil
}

// Activity serves ?view=preview (default) or ?view=full.
func (s *Service) Activity(ctx context.Context, snap models.Snapshot, v url.Values) ([]models.ActivityEvent, error) {
	today := s.today(ctx)
	all := Activity(snap, today)
	switch strings.ToLower(v.Get("view")) {
	case "", "preview":
		return Preview(all), nil
	case "full":
		return Full(all, today), nil
	}
	return nil, apperr.New(apperr.CodeValidation, "view must be preview or full")
}

func parseView(raw string, today time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	loc := today.Location()
	switch len(raw) {
	case 0:
		return today, nil
	case 4:
		if t, err := time.ParseInLocation("2006", raw, loc); err == nil {
			return t, nil
		}
	case 7:
		if t, err := time.ParseInLocation("2006-01", raw, loc); err == nil {
			return t, nil
		}
	case 10:
		if t, err := clock.Parse(raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.New(apperr.CodeValidation, "date must be YYYY, YYYY-MM or YYYY-MM-DD")
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 3000 {
		limit = 3000
	} // el grid completo cabe en una página
	if offset > n {
		offset = n
	}
	return limit, offset
}
