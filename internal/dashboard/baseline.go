package dashboard

import (
	"sync"
	"time"

	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/models"
)

// The dashboard grid covers these days inclusive. Events outside it have no
// bucket and are dropped.
var (
	BaselineStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	BaselineEnd   = time.Date(2030, time.December, 31, 0, 0, 0, 0, time.UTC)
)

var baselineKeys = sync.OnceValue(func() []string {
	var keys []string
	for d := BaselineStart; !d.After(BaselineEnd); d = d.AddDate(0, 0, 1) {
		keys = append(keys, clock.Format(d))
	}
	return keys
})

// Baseline returns one zero-valued record per day of the grid, in date order.
func Baseline() []models.DailyData {
	keys := baselineKeys()
	out := make([]models.DailyData, len(keys))
	for i, k := range keys {
		out[i] = models.DailyData{Date: k}
	}
	return out
}

// baselineMap is a fresh, mutable copy of the grid keyed by date.
func baselineMap() map[string]*models.DailyData {
	keys := baselineKeys()
	m := make(map[string]*models.DailyData, len(keys))
	for _, k := range keys {
		m[k] = &models.DailyData{Date: k}
	}
	return m
}
