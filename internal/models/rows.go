package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Table names of the remote row store.
const (
	TableCampaigns  = "campaigns"
	TableLeads      = "leads"
	TableClients    = "clients"
	TableDemoEvents = "demo_events"
)

// ErrInvalidRow marks a row rejected at the store boundary.
var ErrInvalidRow = errors.New("invalid row")

type CampaignRow struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	CreatedAt        string `json:"created_at"`
	LeadCount        int    `json:"lead_count"`
	CreatedTimestamp string `json:"created_timestamp,omitempty"`
}

type LeadRow struct {
	ID               string  `json:"id"`
	UserID           string  `json:"user_id"`
	CampaignID       string  `json:"campaign_id"`
	Name             string  `json:"name"`
	Company          string  `json:"company"`
	Phone            string  `json:"phone"`
	Email            *string `json:"email"`
	Address          *string `json:"address"`
	Website          *string `json:"website"`
	Rating           *string `json:"rating"`
	Reviews          *string `json:"reviews"`
	Summary          *string `json:"summary"`
	Status           string  `json:"status"`
	CreatedTimestamp string  `json:"created_timestamp,omitempty"`
}

type ClientRow struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"user_id"`
	Name                string          `json:"name"`
	Company             string          `json:"company"`
	CloseDate           string          `json:"close_date"`
	UpfrontValue        decimal.Decimal `json:"upfront_value"`
	MonthlyValue        decimal.Decimal `json:"monthly_value"`
	MonthlyRetainerDate *string         `json:"monthly_retainer_date"`
	Status              string          `json:"status"`
	CreatedTimestamp    string          `json:"created_timestamp,omitempty"`
}

type DemoEventRow struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	LeadID           string `json:"lead_id"`
	Date             string `json:"date"`
	CreatedTimestamp string `json:"created_timestamp,omitempty"`
}

// CampaignPatch and the other patches carry only the columns an update touches.
type CampaignPatch struct {
	Name      *string `json:"name,omitempty"`
	LeadCount *int    `json:"lead_count,omitempty"`
}

type LeadPatch struct {
	Name    string  `json:"name"`
	Company string  `json:"company"`
	Phone   string  `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Website *string `json:"website"`
	Rating  *string `json:"rating"`
	Reviews *string `json:"reviews"`
	Summary *string `json:"summary"`
	Status  string  `json:"status"`
}

type LeadStatusPatch struct {
	Status string `json:"status"`
}

type ClientPatch struct {
	Name                string          `json:"name"`
	Company             string          `json:"company"`
	CloseDate           string          `json:"close_date"`
	UpfrontValue        decimal.Decimal `json:"upfront_value"`
	MonthlyValue        decimal.Decimal `json:"monthly_value"`
	MonthlyRetainerDate *string         `json:"monthly_retainer_date"`
	Status              string          `json:"status"`
}

func invalid(table, id, why string) error {
	return fmt.Errorf("%w: %s %q: %s", ErrInvalidRow, table, id, why)
}

// dateKey accepts YYYY-MM-DD or a timestamp starting with one.
func dateKey(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", s[:10]); err != nil {
		return "", false
	}
	return s[:10], true
}

func deref(p *string, def string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return def
	}
	return *p
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func coalesce(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func (r CampaignRow) Model() (Campaign, error) {
	if strings.TrimSpace(r.ID) == "" {
		return Campaign{}, invalid(TableCampaigns, r.ID, "missing id")
	}
	created, ok := dateKey(r.CreatedAt)
	if !ok {
		return Campaign{}, invalid(TableCampaigns, r.ID, "bad created_at")
	}
	return Campaign{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: created,
		LeadCount: max(r.LeadCount, 0),
	}, nil
}

func (r LeadRow) Model() (Lead, error) {
	if strings.TrimSpace(r.ID) == "" {
		return Lead{}, invalid(TableLeads, r.ID, "missing id")
	}
	if strings.TrimSpace(r.CampaignID) == "" {
		return Lead{}, invalid(TableLeads, r.ID, "missing campaign_id")
	}
	status := coalesce(r.Status, StatusNewLead)
	if !ValidLeadStatus(status) {
		return Lead{}, invalid(TableLeads, r.ID, "unknown status "+status)
	}
	return Lead{
		ID:         r.ID,
		CampaignID: r.CampaignID,
		Name:       coalesce(r.Name, PlaceholderName),
		Company:    coalesce(r.Company, PlaceholderCompany),
		Phone:      coalesce(r.Phone, PlaceholderPhone),
		Email:      deref(r.Email, ""),
		Address:    deref(r.Address, ""),
		Website:    deref(r.Website, ""),
		Rating:     deref(r.Rating, DefaultLeadRating),
		Reviews:    deref(r.Reviews, DefaultLeadReviews),
		Summary:    deref(r.Summary, ""),
		Status:     status,
	}, nil
}

func (r ClientRow) Model() (Client, error) {
	if strings.TrimSpace(r.ID) == "" {
		return Client{}, invalid(TableClients, r.ID, "missing id")
	}
	closeDate, ok := dateKey(r.CloseDate)
	if !ok {
		return Client{}, invalid(TableClients, r.ID, "bad close_date")
	}
	if r.UpfrontValue.IsNegative() || r.MonthlyValue.IsNegative() {
		return Client{}, invalid(TableClients, r.ID, "negative value")
	}
	status := coalesce(r.Status, ClientActive)
	if status != ClientActive && status != ClientInactive {
		return Client{}, invalid(TableClients, r.ID, "unknown status "+status)
	}
	retainer := ""
	if raw := deref(r.MonthlyRetainerDate, ""); raw != "" {
		d, ok := dateKey(raw)
		if !ok {
			return Client{}, invalid(TableClients, r.ID, "bad monthly_retainer_date")
		}
		retainer = d
	}
	return Client{
		ID:                  r.ID,
		Name:                r.Name,
		Company:             r.Company,
		CloseDate:           closeDate,
		UpfrontValue:        r.UpfrontValue,
		MonthlyValue:        r.MonthlyValue,
		MonthlyRetainerDate: retainer,
		Status:              status,
	}, nil
}

func (r DemoEventRow) Model() (DemoEvent, error) {
	if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.LeadID) == "" {
		return DemoEvent{}, invalid(TableDemoEvents, r.ID, "missing id or lead_id")
	}
	d, ok := dateKey(r.Date)
	if !ok {
		return DemoEvent{}, invalid(TableDemoEvents, r.ID, "bad date")
	}
	return DemoEvent{ID: r.ID, LeadID: r.LeadID, Date: d}, nil
}

func NewCampaignRow(userID string, c Campaign) CampaignRow {
	return CampaignRow{ID: c.ID, UserID: userID, Name: c.Name, CreatedAt: c.CreatedAt, LeadCount: c.LeadCount}
}

func NewLeadRow(userID string, l Lead) LeadRow {
	return LeadRow{
		ID:         l.ID,
		UserID:     userID,
		CampaignID: l.CampaignID,
		Name:       l.Name,
		Company:    l.Company,
		Phone:      l.Phone,
		Email:      nullable(l.Email),
		Address:    nullable(l.Address),
		Website:    nullable(l.Website),
		Rating:     nullable(l.Rating),
		Reviews:    nullable(l.Reviews),
		Summary:    nullable(l.Summary),
		Status:     l.Status,
	}
}

func NewLeadPatch(l Lead) LeadPatch {
	return LeadPatch{
		Name:    l.Name,
		Company: l.Company,
		Phone:   l.Phone,
		Email:   nullable(l.Email),
		Address: nullable(l.Address),
		Website: nullable(l.Website),
		Rating:  nullable(l.Rating),
		Reviews: nullable(l.Reviews),
		Summary: nullable(l.Summary),
		Status:  l.Status,
	}
}

func NewClientRow(userID string, c Client) ClientRow {
	return ClientRow{
		ID:                  c.ID,
		UserID:              userID,
		Name:                c.Name,
		Company:             c.Company,
		CloseDate:           c.CloseDate,
		UpfrontValue:        c.UpfrontValue,
		MonthlyValue:        c.MonthlyValue,
		MonthlyRetainerDate: nullable(c.MonthlyRetainerDate),
		Status:              c.Status,
	}
}

func NewClientPatch(c Client) ClientPatch {
	return ClientPatch{
		Name:                c.Name,
		Company:             c.Company,
		CloseDate:           c.CloseDate,
		UpfrontValue:        c.UpfrontValue,
		MonthlyValue:        c.MonthlyValue,
		MonthlyRetainerDate: nullable(c.MonthlyRetainerDate),
		Status:              c.Status,
	}
}

func NewDemoEventRow(userID string, d DemoEvent) DemoEventRow {
	return DemoEventRow{ID: d.ID, UserID: userID, LeadID: d.LeadID, Date: d.Date}
}
