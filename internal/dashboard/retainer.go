package dashboard

import (
	"time"

	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/models"
)

// RetainerDates lists every monthly billing date of c from its first retainer
// date through today inclusive. The billing day is re-anchored every month and
// clamped to the month's last day when the month is shorter.
func RetainerDates(c models.Client, today time.Time) []string {
	if !c.BillsMonthly() {
		return nil
	}
	start, err := clock.Parse(c.MonthlyRetainerDate, today.Location())
	if err != nil {
		return nil
	}
	todayKey := clock.Format(today)
	day := start.Day()

	var out []string
	for i := 0; ; i++ {
		k := clock.Format(clock.AddMonthsClamped(start, i, day))
		if k > todayKey {
			break
		}
		out = append(out, k)
	}
	return out
}
