package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestLeadRowModelAppliesDefaults(t *testing.T) {
	l, err := LeadRow{ID: "l-1", CampaignID: "camp-1", Name: "Jane", Company: "Acme", Phone: "555"}.Model()
	require.NoError(t, err)
	assert.Equal(t, StatusNewLead, l.Status)
	assert.Equal(t, DefaultLeadRating, l.Rating)
	assert.Equal(t, DefaultLeadReviews, l.Reviews)
	assert.Equal(t, "", l.Email)
}

func TestLeadRowModelRejectsUnknownStatus(t *testing.T) {
	_, err := LeadRow{ID: "l-1", CampaignID: "camp-1", Status: "Maybe"}.Model()
	assert.True(t, errors.Is(err, ErrInvalidRow))

	_, err = LeadRow{ID: "l-1"}.Model()
	assert.True(t, errors.Is(err, ErrInvalidRow))
}

func TestClientRowModelFromJSON(t *testing.T) {
	raw := `{"id":"c-1","user_id":"u-1","name":"Jane","company":"Acme","close_date":"2025-03-10",
	"upfront_value":5000,"monthly_value":500,"monthly_retainer_date":"2025-04-10","status":"active",
	"created_timestamp":"2025-03-10T15:04:05Z"}`
	var row ClientRow
	require.NoError(t, json.Unmarshal([]byte(raw), &row))

	c, err := row.Model()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", c.CloseDate)
	assert.True(t, c.UpfrontValue.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "2025-04-10", c.MonthlyRetainerDate)
	assert.True(t, c.BillsMonthly())
}

func TestClientRowModelRejectsMalformed(t *testing.T) {
	cases := map[string]ClientRow{
		"bad close date": {ID: "c-1", CloseDate: "10/03/2025"},
		"negative":       {ID: "c-1", CloseDate: "2025-03-10", UpfrontValue: decimal.NewFromInt(-1)},
		"bad status":     {ID: "c-1", CloseDate: "2025-03-10", Status: "paused"},
		"bad retainer":   {ID: "c-1", CloseDate: "2025-03-10", MonthlyRetainerDate: strp("soon")},
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := row.Model()
			assert.True(t, errors.Is(err, ErrInvalidRow))
		})
	}
}

func TestInactiveClientNeverBills(t *testing.T) {
	c, err := ClientRow{
		ID: "c-1", CloseDate: "2025-03-10", MonthlyValue: decimal.NewFromInt(500),
		MonthlyRetainerDate: strp("2025-04-10"), Status: ClientInactive,
	}.Model()
	require.NoError(t, err)
	assert.False(t, c.BillsMonthly())
}

func TestCampaignRowAcceptsTimestamp(t *testing.T) {
	c, err := CampaignRow{ID: "camp-1", Name: "Dentists", CreatedAt: "2025-06-01T10:00:00Z", LeadCount: -3}.Model()
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", c.CreatedAt)
	assert.Equal(t, 0, c.LeadCount)
}

func TestNewLeadRowNullsEmptyOptionals(t *testing.T) {
	row := NewLeadRow("u-1", Lead{ID: "l-1", CampaignID: "camp-1", Name: "Jane", Email: ""})
	assert.Nil(t, row.Email)
	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"email":null`)
	assert.NotContains(t, string(b), "created_timestamp")
}

func TestMoneyEncodesAsJSONNumber(t *testing.T) {
	b, err := json.Marshal(Stats{TotalRevenue: decimal.RequireFromString("5500.50"), Conversion: "0.0"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"totalRevenue":5500.5`)

	b, err = json.Marshal(ClientRow{ID: "c-1", UpfrontValue: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"upfront_value":5000`)
	assert.NotContains(t, string(b), `"upfront_value":"5000"`)
}
