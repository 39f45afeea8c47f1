package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/models"
)

const (
	PreviewSize    = 4
	FullWindowDays = 30
)

// Activity builds the complete feed, newest date first.
func Activity(snap models.Snapshot, today time.Time) []models.ActivityEvent {
	todayKey := clock.Format(today)
	var events []models.ActivityEvent

	for _, c := range snap.Clients {
		events = append(events, models.ActivityEvent{
			ID:       "act-cl-" + c.ID,
			Type:     models.ActivityClientOnboarded,
			Title:    "New Client: " + c.Company,
			Subtitle: fmt.Sprintf("Closed for $%s setup.", Money(c.UpfrontValue)),
			Date:     c.CloseDate,
			Value:    "+$" + Money(c.UpfrontValue),
		})
		for _, d := range RetainerDates(c, today) {
			events = append(events, models.ActivityEvent{
				ID:       fmt.Sprintf("act-ret-%s-%s", c.ID, d),
				Type:     models.ActivityRetainerPaid,
				Title:    c.Company + " Retainer Received",
				Subtitle: "Automated monthly billing processed.",
				Date:     d,
				Value:    "+$" + Money(c.MonthlyValue),
			})
		}
	}

	leads := make(map[string]models.Lead, len(snap.Leads))
	for _, l := range snap.Leads {
		leads[l.ID] = l
	}
	for _, e := range snap.DemoEvents {
		name, company := "Prospect", "Lead"
		if l, ok := leads[e.LeadID]; ok {
			name, company = l.Name, l.Company
		}
		events = append(events, models.ActivityEvent{
			ID:       e.ID,
			Type:     models.ActivityDemoBooked,
			Title:    "Demo Booked: " + name,
			Subtitle: company + " confirmed walkthrough.",
			Date:     e.Date,
		})
	}

	for _, l := range snap.Leads {
		if l.Status != models.StatusDemoBooked && l.Status != models.StatusFollowUp {
			continue
		}
		events = append(events, models.ActivityEvent{
			ID:       "act-msg-" + l.ID,
			Type:     models.ActivityMessageReceived,
			Title:    "Reply from " + l.Name,
			Subtitle: `"` + truncate(l.Summary, 50) + `"`,
			Date:     todayKey,
		})
	}

	// YYYY-MM-DD is fixed width, string order is date order
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date > events[j].Date })
	return events
}

// Preview is the first PreviewSize entries of the sorted feed.
func Preview(all []models.ActivityEvent) []models.ActivityEvent {
	if len(all) > PreviewSize {
		return all[:PreviewSize]
	}
	return all
}

// Full keeps every entry dated within the last FullWindowDays days.
func Full(all []models.ActivityEvent, today time.Time) []models.ActivityEvent {
	cutoff := clock.Format(today.AddDate(0, 0, -FullWindowDays))
	out := make([]models.ActivityEvent, 0, len(all))
	for _, e := range all {
		if e.Date >= cutoff {
			out = append(out, e)
		}
	}
	return out
}
