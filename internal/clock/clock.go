package clock

import (
	"context"
	"time"
)

// DateLayout is the bucketing key format used across the CRM.
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

type System struct{ Loc *time.Location }

func (s System) Now() time.Time {
	if s.Loc == nil {
		return time.Now()
	}
	return time.Now().In(s.Loc)
}

// Fixed always reports the same instant. Tests use it to pin "today".
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T }

// FixedDate builds a Fixed clock at noon of the given YYYY-MM-DD in loc.
func FixedDate(s string, loc *time.Location) Fixed {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		panic("clock: bad fixed date " + s)
	}
	return Fixed{T: d.Add(12 * time.Hour)}
}

func Format(t time.Time) string { return t.Format(DateLayout) }

// Parse reads a YYYY-MM-DD key as midnight in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

func Valid(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Today returns the local date key of c's current instant.
func Today(c Clock) string { return Format(c.Now()) }

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddMonthsClamped moves t by n calendar months keeping day-of-month day,
// clamped to the last day of the target month.
func AddMonthsClamped(t time.Time, n, day int) time.Time {
	y, m, _ := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := DaysIn(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

type ctxKey struct{}

// WithNow pins a request-scoped instant on ctx.
func WithNow(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns a clock that reports the instant pinned on ctx, or c
// when nothing was pinned.
func FromContext(ctx context.Context, c Clock) Clock {
	if t, ok := ctx.Value(ctxKey{}).(time.Time); ok {
		return Fixed{T: t}
	}
	return c
}
