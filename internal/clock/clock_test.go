package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonthsClampedKeepsAnchorDay(t *testing.T) {
	start, err := Parse("2025-01-31", time.UTC)
	require.NoError(t, err)

	got := []string{}
	for i := 0; i < 4; i++ {
		got = append(got, Format(AddMonthsClamped(start, i, 31)))
	}
	assert.Equal(t, []string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"}, got)
}

func TestAddMonthsClampedLeapYear(t *testing.T) {
	start, _ := Parse("2024-01-30", time.UTC)
	assert.Equal(t, "2024-02-29", Format(AddMonthsClamped(start, 1, 30)))
	assert.Equal(t, "2025-01-30", Format(AddMonthsClamped(start, 12, 30)))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 31, DaysIn(2025, time.December))
}

func TestFixedDateAndToday(t *testing.T) {
	c := FixedDate("2025-07-15", time.UTC)
	assert.Equal(t, "2025-07-15", Today(c))
	assert.True(t, Valid("2025-07-15"))
	assert.False(t, Valid("2025-7-15"))
}

func TestFromContextPrefersPinnedInstant(t *testing.T) {
	base := FixedDate("2025-01-01", time.UTC)
	pinned := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-01-01", Today(FromContext(context.Background(), base)))
	assert.Equal(t, "2026-03-04", Today(FromContext(WithNow(context.Background(), pinned), base)))
}
