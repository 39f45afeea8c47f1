package dashboard

import (
	"strconv"
	"strings"
	"time"

	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/models"
)

type CalendarMode string

const (
	MonthGrid CalendarMode = "Month"
	YearGrid  CalendarMode = "Year"
)

type Metric string

const (
	Profits Metric = "Profits"
	Demos   Metric = "Demos"
)

func ParseCalendarMode(s string) (CalendarMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "month":
		return MonthGrid, true
	case "year":
		return YearGrid, true
	}
	return "", false
}

func ParseMetric(s string) (Metric, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "profits":
		return Profits, true
	case "demos":
		return Demos, true
	}
	return "", false
}

func active(m Metric, revenueSet bool, demos int) bool {
	if m == Demos {
		return demos > 0
	}
	return revenueSet
}

// MonthCalendar lays out the month containing view: blanks up to the weekday
// of the 1st, then one cell per day.
func MonthCalendar(series []models.DailyData, view, today time.Time, m Metric) models.Calendar {
	idx := index(series)
	y, mo, _ := view.Date()
	first := time.Date(y, mo, 1, 0, 0, 0, 0, view.Location())
	todayKey := clock.Format(today)

	cal := models.Calendar{Mode: string(MonthGrid), Title: first.Format("January 2006")}
	for i := 0; i < int(first.Weekday()); i++ {
		cal.Cells = append(cal.Cells, models.CalendarCell{Blank: true})
	}
	for day := 1; day <= clock.DaysIn(y, mo); day++ {
		k := clock.Format(time.Date(y, mo, day, 0, 0, 0, 0, view.Location()))
		cell := models.CalendarCell{Date: k, Label: strconv.Itoa(day), Today: k == todayKey}
		if d, ok := idx[k]; ok && !d.IsZero() {
			cell.HasData = true
			cell.Revenue = d.Revenue
			cell.DemosBooked = d.DemosBooked
			cell.ClientsClosed = d.ClientsClosed
			cell.RevenueLabel = CompactCurrency(d.Revenue)
			cell.Active = active(m, d.Revenue.IsPositive(), d.DemosBooked)
		}
		cal.Cells = append(cal.Cells, cell)
	}
	return cal
}

// YearCalendar has one cell per month of view's year with summed totals.
// The month containing today is flagged.
func YearCalendar(series []models.DailyData, view, today time.Time, m Metric) models.Calendar {
	year := view.Year()
	cal := models.Calendar{Mode: string(YearGrid), Title: strconv.Itoa(year)}
	todayPrefix := clock.Format(today)[:7]

	cells := make([]models.CalendarCell, 12)
	for i := range cells {
		first := time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, view.Location())
		cells[i] = models.CalendarCell{
			Date:  first.Format("2006-01"),
			Label: first.Format("Jan"),
			Today: first.Format("2006-01") == todayPrefix,
		}
	}
	yearPrefix := strconv.Itoa(year) + "-"
	for _, d := range series {
		if !strings.HasPrefix(d.Date, yearPrefix) {
			continue
		}
		mo, err := strconv.Atoi(d.Date[5:7])
		if err != nil || mo < 1 || mo > 12 {
			continue
		}
		c := &cells[mo-1]
		c.Revenue = c.Revenue.Add(d.Revenue)
		c.DemosBooked += d.DemosBooked
		c.ClientsClosed += d.ClientsClosed
	}
	for i := range cells {
		c := &cells[i]
		c.HasData = !c.Revenue.IsZero() || c.DemosBooked > 0 || c.ClientsClosed > 0
		c.RevenueLabel = CompactCurrency(c.Revenue)
		c.Active = active(m, c.Revenue.IsPositive(), c.DemosBooked)
	}
	cal.Cells = cells
	return cal
}

// Shift moves the viewed date one month or one year, backwards when steps < 0.
func Shift(view time.Time, mode CalendarMode, steps int) time.Time {
	first := time.Date(view.Year(), view.Month(), 1, 0, 0, 0, 0, view.Location())
	if mode == YearGrid {
		return first.AddDate(steps, 0, 0)
	}
	return first.AddDate(0, steps, 0)
}
