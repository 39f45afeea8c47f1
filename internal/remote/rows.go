package remote

import (
	"context"

	"github.com/angelcm/horizon-crm/internal/models"
)

func (c *Client) ListCampaigns(ctx context.Context, userID string) ([]models.CampaignRow, error) {
	return list[models.CampaignRow](ctx, c, models.TableCampaigns, userID)
}

func (c *Client) ListLeads(ctx context.Context, userID string) ([]models.LeadRow, error) {
	return list[models.LeadRow](ctx, c, models.TableLeads, userID)
}

func (c *Client) ListClients(ctx context.Context, userID string) ([]models.ClientRow, error) {
	return list[models.ClientRow](ctx, c, models.TableClients, userID)
}

func (c *Client) ListDemoEvents(ctx context.Context, userID string) ([]models.DemoEventRow, error) {
	return list[models.DemoEventRow](ctx, c, models.TableDemoEvents, userID)
}

func (c *Client) InsertCampaign(ctx context.Context, row models.CampaignRow) error {
	return c.insert(ctx, models.TableCampaigns, row)
}

func (c *Client) UpdateCampaign(ctx context.Context, userID, id string, p models.CampaignPatch) error {
	return c.update(ctx, models.TableCampaigns, userID, id, p)
}

// DeleteCampaign removes the campaign row; the store cascades to its leads.
func (c *Client) DeleteCampaign(ctx context.Context, userID, id string) error {
	return c.delete(ctx, models.TableCampaigns, userID, id)
}

// InsertLeads sends the whole batch in one request.
func (c *Client) InsertLeads(ctx context.Context, rows []models.LeadRow) error {
	if len(rows) == 0 {
		return nil
	}
	return c.insert(ctx, models.TableLeads, rows)
}

func (c *Client) UpdateLead(ctx context.Context, userID, id string, p models.LeadPatch) error {
	return c.update(ctx, models.TableLeads, userID, id, p)
}

func (c *Client) UpdateLeadStatus(ctx context.Context, userID, id string, p models.LeadStatusPatch) error {
	return c.update(ctx, models.TableLeads, userID, id, p)
}

func (c *Client) DeleteLead(ctx context.Context, userID, id string) error {
	return c.delete(ctx, models.TableLeads, userID, id)
}

func (c *Client) InsertClient(ctx context.Context, row models.ClientRow) error {
	return c.insert(ctx, models.TableClients, row)
}

func (c *Client) UpdateClient(ctx context.Context, userID, id string, p models.ClientPatch) error {
	return c.update(ctx, models.TableClients, userID, id, p)
}

func (c *Client) DeleteClient(ctx context.Context, userID, id string) error {
	return c.delete(ctx, models.TableClients, userID, id)
}

func (c *Client) InsertDemoEvent(ctx context.Context, row models.DemoEventRow) error {
	return c.insert(ctx, models.TableDemoEvents, row)
}
