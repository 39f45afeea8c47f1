package dashboard

import (
	"sort"
	"time"

	"github.com/angelcm/horizon-crm/internal/models"
)

// Aggregate overlays closings, retainer charges and demo bookings onto a
// fresh copy of the baseline and returns the dense series in date order.
func Aggregate(snap models.Snapshot, today time.Time) []models.DailyData {
	buckets := baselineMap()

	for _, c := range snap.Clients {
		// upfront
		if b, ok := buckets[c.CloseDate]; ok {
			b.Revenue = b.Revenue.Add(c.UpfrontValue)
			b.ClientsClosed++
		}
		for _, d := range RetainerDates(c, today) {
			if b, ok := buckets[d]; ok {
				b.Revenue = b.Revenue.Add(c.MonthlyValue)
			}
		}
	}
	for _, e := range snap.DemoEvents {
		if b, ok := buckets[e.Date]; ok {
			b.DemosBooked++
		}
	}

	out := make([]models.DailyData, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	// orden determinista
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func index(series []models.DailyData) map[string]models.DailyData {
	m := make(map[string]models.DailyData, len(series))
	for _, d := range series {
		m[d.Date] = d
	}
	return m
}
