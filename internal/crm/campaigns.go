package crm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/importer"
	"github.com/angelcm/horizon-crm/internal/models"
)

func (s *Service) Campaigns(ctx context.Context, userID string) ([]models.Campaign, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	return st.Campaigns(), nil
}

// ImportCampaign creates a campaign from an uploaded lead sheet. The
// campaign row goes first, then the leads in one batch; if the batch fails
// the campaign row is deleted again so no half-imported campaign remains.
func (s *Service) ImportCampaign(ctx context.Context, userID, name, filename string, file io.Reader) (models.Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Campaign{}, apperr.New(apperr.CodeValidation, "Please provide a campaign name.")
	}
	if file == nil {
		return models.Campaign{}, apperr.New(apperr.CodeValidation, "Please upload a CSV file.")
	}
	defer s.lock(userID)()
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.Campaign{}, err
	}

	recs, err := importer.Parse(filename, file)
	if err != nil {
		return models.Campaign{}, apperr.Wrap(err, apperr.CodeMalformedImport,
			"Error parsing CSV: "+apperr.MessageOf(err))
	}

	c := models.Campaign{ID: "camp-" + s.newID(), Name: name, CreatedAt: s.today(ctx)}
	leads := importer.BuildLeads(c.ID, recs)
	c.LeadCount = len(leads)

	if err := s.repo.InsertCampaign(ctx, models.NewCampaignRow(userID, c)); err != nil {
		return models.Campaign{}, fmt.Errorf("import campaign: %w", err)
	}
	rows := make([]models.LeadRow, len(leads))
	for i, l := range leads {
		rows[i] = models.NewLeadRow(userID, l)
	}
	if err := s.repo.InsertLeads(ctx, rows); err != nil {
		if derr := s.repo.DeleteCampaign(ctx, userID, c.ID); derr != nil {
			s.log.Error("rollback of campaign failed", slog.String("campaign_id", c.ID), slog.String("err", derr.Error()))
		}
		return models.Campaign{}, fmt.Errorf("import campaign leads: %w", err)
	}

	c = st.AddCampaign(c, leads)
	s.m.AddImportedLeads(len(leads))
	s.log.Info("campaign imported", slog.String("campaign_id", c.ID), slog.Int("leads", c.LeadCount))
	return c, nil
}

func (s *Service) RenameCampaign(ctx context.Context, userID, id, name string) (models.Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Campaign{}, apperr.New(apperr.CodeValidation, "Campaign name is required.")
	}
	defer s.lock(userID)()
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.Campaign{}, err
	}
	if _, ok := st.Campaign(id); !ok {
		return models.Campaign{}, notFound("campaign", id)
	}
	if err := s.repo.UpdateCampaign(ctx, userID, id, models.CampaignPatch{Name: &name}); err != nil {
		return models.Campaign{}, fmt.Errorf("rename campaign: %w", err)
	}
	c, _ := st.RenameCampaign(id, name)
	return c, nil
}

// DeleteCampaign removes the campaign; the row store drops its leads and
// the local state follows.
func (s *Service) DeleteCampaign(ctx context.Context, userID, id string) error {
	defer s.lock(userID)()
	st, err := s.state(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := st.Campaign(id); !ok {
		return notFound("campaign", id)
	}
	if err := s.repo.DeleteCampaign(ctx, userID, id); err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	st.RemoveCampaign(id)
	return nil
}
