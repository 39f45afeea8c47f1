package models

import "github.com/shopspring/decimal"

// Money crosses every JSON boundary as a number, not a quoted string.
func init() { decimal.MarshalJSONWithoutQuotes = true }

const (
	StatusNewLead       = "New Lead"
	StatusDemoBooked    = "Demo Booked"
	StatusNotInterested = "Not Interested"
	StatusWrongNumber   = "Wrong Number"
	StatusVoicemail     = "Voicemail"
	StatusFollowUp      = "Follow-up Required"
	ClientActive        = "active"
	ClientInactive      = "inactive"
	DefaultLeadRating   = "4.0"
	DefaultLeadReviews  = "0"
	ManualLeadSummary   = "Manually added lead."
	ImportedLeadSummary = "Imported from CSV."
	PlaceholderName     = "Unknown Contact"
	PlaceholderCompany  = "Unknown Company"
	PlaceholderPhone    = "N/A"
)

// LeadStatuses is the disposition vocabulary, in display order.
var LeadStatuses = []string{
	StatusNewLead,
	StatusDemoBooked,
	StatusNotInterested,
	StatusWrongNumber,
	StatusVoicemail,
	StatusFollowUp,
}

func ValidLeadStatus(s string) bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Lead struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaignId"`
	Name       string `json:"name"`
	Company    string `json:"company"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	Website    string `json:"website"`
	Rating     string `json:"rating"`
	Reviews    string `json:"reviews"`
	Summary    string `json:"summary"`
	Status     string `json:"status"`
}

type Campaign struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	LeadCount int    `json:"leadCount"`
}

type Client struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Company             string          `json:"company"`
	CloseDate           string          `json:"closeDate"`
	UpfrontValue        decimal.Decimal `json:"upfrontValue"`
	MonthlyValue        decimal.Decimal `json:"monthlyValue"`
	MonthlyRetainerDate string          `json:"monthlyRetainerDate,omitempty"`
	Status              string          `json:"status"`
}

// BillsMonthly reports whether retainer charges are projected for c.
// Inactive clients never bill, whatever retainer date is still stored.
func (c Client) BillsMonthly() bool {
	return c.Status == ClientActive && c.MonthlyValue.IsPositive() && c.MonthlyRetainerDate != ""
}

type DemoEvent struct {
	ID     string `json:"id"`
	LeadID string `json:"leadId"`
	Date   string `json:"date"`
}

// DailyData is one bucket of the dense dashboard series.
type DailyData struct {
	Date          string          `json:"date"`
	Revenue       decimal.Decimal `json:"revenue"`
	ClientsClosed int             `json:"clientsClosed"`
	Dials         int             `json:"dials"`
	DemosBooked   int             `json:"demosBooked"`
}

func (d DailyData) IsZero() bool {
	return d.Revenue.IsZero() && d.ClientsClosed == 0 && d.Dials == 0 && d.DemosBooked == 0
}

const (
	ActivityClientOnboarded = "client_onboarded"
	ActivityDemoBooked      = "demo_booked"
	ActivityMessageReceived = "message_received"
	ActivityRetainerPaid    = "retainer_paid"
)

type ActivityEvent struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Date     string `json:"date"`
	Value    string `json:"value,omitempty"`
}

type Stats struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalDials    int             `json:"totalDials"`
	TotalDemos    int             `json:"totalDemos"`
	ClientsClosed int             `json:"clientsClosed"`
	Conversion    string          `json:"conversion"`
}

type ChartPoint struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

type CalendarCell struct {
	// Blank cells pad the first week of a month grid.
	Blank         bool            `json:"blank"`
	Date          string          `json:"date,omitempty"`
	Label         string          `json:"label"`
	Revenue       decimal.Decimal `json:"revenue"`
	DemosBooked   int             `json:"demosBooked"`
	ClientsClosed int             `json:"clientsClosed"`
	HasData       bool            `json:"hasData"`
	Active        bool            `json:"active"`
	Today         bool            `json:"today"`
	RevenueLabel  string          `json:"revenueLabel,omitempty"`
}

type Calendar struct {
	Mode  string         `json:"mode"`
	Title string         `json:"title"`
	Cells []CalendarCell `json:"cells"`
}

// Snapshot is the read-only input of every dashboard computation.
type Snapshot struct {
	Clients    []Client
	Leads      []Lead
	DemoEvents []DemoEvent
}

// CRM views. Any view is reachable from any other.
const (
	ViewDashboard     = "dashboard"
	ViewLeads         = "leads"
	ViewDialer        = "dialer"
	ViewConversations = "conversations"
	ViewClients       = "clients"
	ViewAnalytics     = "analytics"
	ViewAutomations   = "automations"
)

var Views = []string{ViewDashboard, ViewLeads, ViewDialer, ViewConversations, ViewClients, ViewAnalytics, ViewAutomations}

func ValidView(v string) bool {
	for _, x := range Views {
		if x == v {
			return true
		}
	}
	return false
}

// NavContext is the target a view should open on. The destination consumes it once.
type NavContext struct {
	LeadID     string `json:"leadId,omitempty"`
	CampaignID string `json:"campaignId,omitempty"`
}

func (n NavContext) IsZero() bool { return n.LeadID == "" && n.CampaignID == "" }

type Navigation struct {
	View    string      `json:"view"`
	Context *NavContext `json:"context,omitempty"`
}
