package dashboard

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/models"
)

func TestMonthCalendarLayout(t *testing.T) {
	today := day("2025-07-15")
	series := Aggregate(models.Snapshot{Clients: []models.Client{acme(models.ClientActive)}}, today)

	cal := MonthCalendar(series, today, today, Profits)
	assert.Equal(t, "July 2025", cal.Title)
	// July 1st 2025 is a Tuesday
	require.Len(t, cal.Cells, 2+31)
	assert.True(t, cal.Cells[0].Blank)
	assert.True(t, cal.Cells[1].Blank)
	assert.Equal(t, "2025-07-01", cal.Cells[2].Date)

	tenth := cal.Cells[2+9]
	assert.Equal(t, "2025-07-10", tenth.Date)
	assert.True(t, tenth.HasData)
	assert.True(t, tenth.Active)
	assert.Equal(t, "$500", tenth.RevenueLabel)

	todayCell := cal.Cells[2+14]
	assert.True(t, todayCell.Today)
	assert.False(t, todayCell.HasData)

	demos := MonthCalendar(series, today, today, Demos)
	assert.False(t, demos.Cells[2+9].Active)
}

func TestYearCalendarSums(t *testing.T) {
	today := day("2025-07-15")
	series := Aggregate(models.Snapshot{
		Clients:    []models.Client{acme(models.ClientActive)},
		DemoEvents: []models.DemoEvent{{ID: "d", LeadID: "l", Date: "2025-02-03"}},
	}, today)

	cal := YearCalendar(series, today, today, Profits)
	require.Len(t, cal.Cells, 12)
	assert.Equal(t, "2025", cal.Title)
	assert.Equal(t, "Mar", cal.Cells[2].Label)
	assert.True(t, cal.Cells[2].Revenue.Equal(dec(5000)))
	assert.Equal(t, "$5.0k", cal.Cells[2].RevenueLabel)
	assert.Equal(t, 1, cal.Cells[2].ClientsClosed)
	assert.True(t, cal.Cells[6].Today)
	assert.False(t, cal.Cells[5].Today)

	feb := cal.Cells[1]
	assert.True(t, feb.HasData)
	assert.False(t, feb.Active)
	assert.True(t, YearCalendar(series, today, today, Demos).Cells[1].Active)
}

func TestShift(t *testing.T) {
	v := day("2025-01-31")
	assert.Equal(t, "2024-12-01", clock.Format(Shift(v, MonthGrid, -1)))
	assert.Equal(t, "2025-02-01", clock.Format(Shift(v, MonthGrid, 1)))
	assert.Equal(t, "2026-01-01", clock.Format(Shift(v, YearGrid, 1)))
}

func TestCompactCurrency(t *testing.T) {
	assert.Equal(t, "", CompactCurrency(dec(0)))
	assert.Equal(t, "$850", CompactCurrency(dec(850)))
	assert.Equal(t, "$1.5k", CompactCurrency(dec(1500)))
	assert.Equal(t, "5,000", Money(dec(5000)))
	assert.Equal(t, "1,234,567", Money(dec(1234567)))
}

func TestChartSeries(t *testing.T) {
	today := day("2025-07-15")
	series := Aggregate(models.Snapshot{Clients: []models.Client{acme(models.ClientActive)}}, today)

	week := Chart(series, Day, today)
	require.Len(t, week, 7)
	assert.Equal(t, "Sun", week[0].Name)
	assert.Equal(t, "Sat", week[6].Name)

	buckets := Chart(series, Week, today)
	require.Len(t, buckets, 5)
	assert.Equal(t, "W2", buckets[1].Name)
	assert.True(t, buckets[1].Revenue.Equal(dec(500)))

	months := Chart(series, Month, today)
	require.Len(t, months, 12)
	assert.Equal(t, "Mar", months[2].Name)
	assert.True(t, months[2].Revenue.Equal(dec(5000)))
}

func TestServiceQueries(t *testing.T) {
	svc := NewService(clock.FixedDate("2025-07-15", time.UTC), nil)
	snap := models.Snapshot{Clients: []models.Client{acme(models.ClientActive)}}
	ctx := context.Background()

	st, err := svc.Stats(ctx, snap, url.Values{"timeframe": {"Month"}})
	require.NoError(t, err)
	assert.True(t, st.TotalRevenue.Equal(dec(500)))

	_, err = svc.Stats(ctx, snap, url.Values{"timeframe": {"Year"}})
	assert.ErrorIs(t, err, apperr.Validation)

	cal, err := svc.Calendar(ctx, snap, url.Values{"mode": {"Month"}, "date": {"2025-03"}})
	require.NoError(t, err)
	assert.Equal(t, "March 2025", cal.Title)

	cal, err = svc.Calendar(ctx, snap, url.Values{"mode": {"Year"}, "shift": {"-1"}})
	require.NoError(t, err)
	assert.Equal(t, "2024", cal.Title)

	rows, err := svc.QuerySeries(ctx, snap, url.Values{"from": {"2025-04-01"}, "to": {"2025-06-30"}})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-04-10", rows[0].Date)

	feed, err := svc.Activity(ctx, snap, url.Values{"view": {"full"}})
	require.NoError(t, err)
	// only the 07-10 charge falls inside the 30 day window
	require.Len(t, feed, 1)
	assert.Equal(t, "act-ret-c-1-2025-07-10", feed[0].ID)
}
