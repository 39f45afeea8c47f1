package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/models"
)

type Timeframe string

const (
	Day   Timeframe = "Day"
	Week  Timeframe = "Week"
	Month Timeframe = "Month"
)

func ParseTimeframe(s string) (Timeframe, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "month":
		return Month, true
	case "week":
		return Week, true
	case "day":
		return Day, true
	}
	return "", false
}

// window returns the inclusive date-key range a timeframe covers around today.
func window(tf Timeframe, today time.Time) (string, string) {
	switch tf {
	case Day:
		k := clock.Format(today)
		return k, k
	case Week:
		sun := today.AddDate(0, 0, -int(today.Weekday()))
		return clock.Format(sun), clock.Format(sun.AddDate(0, 0, 6))
	default:
		y, m, _ := today.Date()
		first := time.Date(y, m, 1, 0, 0, 0, 0, today.Location())
		return clock.Format(first), clock.Format(first.AddDate(0, 1, -1))
	}
}

// Reduce sums the series over the timeframe's window.
func Reduce(series []models.DailyData, tf Timeframe, today time.Time) models.Stats {
	from, to := window(tf, today)
	var st models.Stats
	for _, d := range series {
		if d.Date < from || d.Date > to {
			continue
		}
		st.TotalRevenue = st.TotalRevenue.Add(d.Revenue)
		st.TotalDials += d.Dials
		st.TotalDemos += d.DemosBooked
		st.ClientsClosed += d.ClientsClosed
	}
	st.Conversion = Conversion(st.TotalDemos, st.TotalDials)
	return st
}

// Conversion is demos per dial as a percentage with one decimal; "0.0" with no dials.
func Conversion(demos, dials int) string {
	if dials <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(demos)/float64(dials)*100)
}
