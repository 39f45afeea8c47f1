package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/models"
	"github.com/shopspring/decimal"
)

// Chart returns the outlook series: the current week by weekday for Day,
// 7-day buckets of the current month for Week, and the current year by month
// for Month.
func Chart(series []models.DailyData, tf Timeframe, today time.Time) []models.ChartPoint {
	idx := index(series)
	y, m, _ := today.Date()
	loc := today.Location()

	switch tf {
	case Day:
		sun := today.AddDate(0, 0, -int(today.Weekday()))
		out := make([]models.ChartPoint, 0, 7)
		for i := 0; i < 7; i++ {
			d := sun.AddDate(0, 0, i)
			out = append(out, models.ChartPoint{Name: d.Weekday().String()[:3], Revenue: idx[clock.Format(d)].Revenue})
		}
		return out

	case Week:
		days := clock.DaysIn(y, m)
		weeks := (days + 6) / 7
		out := make([]models.ChartPoint, 0, weeks)
		for w := 0; w < weeks; w++ {
			total := decimal.Zero
			for day := w*7 + 1; day <= min((w+1)*7, days); day++ {
				total = total.Add(idx[clock.Format(time.Date(y, m, day, 0, 0, 0, 0, loc))].Revenue)
			}
			out = append(out, models.ChartPoint{Name: fmt.Sprintf("W%d", w+1), Revenue: total})
		}
		return out

	default:
		totals := make([]decimal.Decimal, 12)
		prefix := fmt.Sprintf("%04d-", y)
		for _, d := range series {
			if !strings.HasPrefix(d.Date, prefix) {
				continue
			}
			mo, err := strconv.Atoi(d.Date[5:7])
			if err != nil || mo < 1 || mo > 12 {
				continue
			}
			totals[mo-1] = totals[mo-1].Add(d.Revenue)
		}
		out := make([]models.ChartPoint, 12)
		for i := range out {
			out[i] = models.ChartPoint{Name: time.Month(i + 1).String()[:3], Revenue: totals[i]}
		}
		return out
	}
}
