package crm

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/models"
)

const PageSize = 50

type LeadPage struct {
	Leads      []models.Lead `json:"leads"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Total      int           `json:"total"`
}

var digits = regexp.MustCompile(`\d+`)

// uploadOrder is the first number in the last dash-separated segment of a
// lead id, 0 when there is none.
func uploadOrder(id string) int {
	seg := id[strings.LastIndex(id, "-")+1:]
	n, err := strconv.Atoi(digits.FindString(seg))
	if err != nil {
		return 0
	}
	return n
}

// ListCampaignLeads pages through a campaign's leads in upload order,
// filtered by a case-insensitive match on name or company.
func (s *Service) ListCampaignLeads(ctx context.Context, userID, campaignID, search string, page int) (LeadPage, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return LeadPage{}, err
	}
	if _, ok := st.Campaign(campaignID); !ok {
		return LeadPage{}, notFound("campaign", campaignID)
	}

	leads := st.CampaignLeads(campaignID)
	sort.SliceStable(leads, func(i, j int) bool { return uploadOrder(leads[i].ID) < uploadOrder(leads[j].ID) })

	if q := strings.ToLower(strings.TrimSpace(search)); q != "" {
		filtered := leads[:0]
		for _, l := range leads {
			if strings.Contains(strings.ToLower(l.Company), q) || strings.Contains(strings.ToLower(l.Name), q) {
				filtered = append(filtered, l)
			}
		}
		leads = filtered
	}

	total := len(leads)
	pages := max(1, (total+PageSize-1)/PageSize)
	page = min(max(page, 1), pages)
	from := (page - 1) * PageSize
	to := min(from+PageSize, total)
	return LeadPage{Leads: append([]models.Lead{}, leads[from:to]...), Page: page, TotalPages: pages, Total: total}, nil
}

// LeadInput is a lead form submission.
type LeadInput struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Website string `json:"website"`
	Rating  string `json:"rating"`
	Reviews string `json:"reviews"`
	Summary string `json:"summary"`
	Status  string `json:"status"`
}

func (in LeadInput) trimmed() LeadInput {
	t := strings.TrimSpace
	return LeadInput{
		Name: t(in.Name), Company: t(in.Company), Phone: t(in.Phone), Email: t(in.Email),
		Address: t(in.Address), Website: t(in.Website), Rating: t(in.Rating), Reviews: t(in.Reviews),
		Summary: t(in.Summary), Status: t(in.Status),
	}
}

func (in LeadInput) validate() error {
	if err := required("Name, company and phone are required.", in.Name, in.Company, in.Phone); err != nil {
		return err
	}
	if in.Status != "" && !models.ValidLeadStatus(in.Status) {
		return apperr.New(apperr.CodeValidation, "Unknown lead status "+strconv.Quote(in.Status)+".")
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// AddLead adds a manual lead to an existing campaign and bumps its count.
func (s *Service) AddLead(ctx context.Context, userID, campaignID string, in LeadInput) (models.Lead, error) {
	in = in.trimmed()
	if err := in.validate(); err != nil {
		return models.Lead{}, err
	}
	defer s.lock(userID)()
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.Lead{}, err
	}
	c, ok := st.Campaign(campaignID)
	if !ok {
		return models.Lead{}, notFound("campaign", campaignID)
	}

	l := models.Lead{
		ID:         "l-" + strconv.FormatInt(s.now(ctx).UnixMilli(), 10),
		CampaignID: campaignID,
		Name:       in.Name,
		Company:    in.Company,
		Phone:      in.Phone,
		Email:      in.Email,
		Address:    in.Address,
		Website:    in.Website,
		Rating:     orDefault(in.Rating, models.DefaultLeadRating),
		Reviews:    orDefault(in.Reviews, models.DefaultLeadReviews),
		Summary:    orDefault(in.Summary, models.ManualLeadSummary),
		Status:     orDefault(in.Status, models.StatusNewLead),
	}
	if _, dup := st.Lead(l.ID); dup {
		return models.Lead{}, apperr.New(apperr.CodeValidation, "Lead was just added, try again.")
	}

	if err := s.repo.InsertLeads(ctx, []models.LeadRow{models.NewLeadRow(userID, l)}); err != nil {
		return models.Lead{}, fmt.Errorf("add lead: %w", err)
	}
	n := st.AddLead(l)
	s.syncLeadCount(ctx, userID, c.ID, n)
	if l.Status == models.StatusDemoBooked {
		s.recordDemo(ctx, userID, st, l.ID)
	}
	return l, nil
}

// UpdateLead saves a lead form. The lead stays in its campaign. Moving the
// lead into Demo Booked records one demo event dated today.
func (s *Service) UpdateLead(ctx context.Context, userID, id string, in LeadInput) (models.Lead, error) {
	in = in.trimmed()
	if err := in.validate(); err != nil {
		return models.Lead{}, err
	}
	defer s.lock(userID)()
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.Lead{}, err
	}
	old, ok := st.Lead(id)
	if !ok {
		return models.Lead{}, notFound("lead", id)
	}

	l := models.Lead{
		ID:         id,
		CampaignID: old.CampaignID,
		Name:       in.Name,
		Company:    in.Company,
		Phone:      in.Phone,
		Email:      in.Email,
		Address:    in.Address,
		Website:    in.Website,
		Rating:     orDefault(in.Rating, models.DefaultLeadRating),
		Reviews:    orDefault(in.Reviews, models.DefaultLeadReviews),
		Summary:    in.Summary,
		Status:     orDefault(in.Status, old.Status),
	}
	if err := s.repo.UpdateLead(ctx, userID, id, models.NewLeadPatch(l)); err != nil {
		return models.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	l, prev, _ := st.UpdateLead(l)
	if prev != models.StatusDemoBooked && l.Status == models.StatusDemoBooked {
		s.recordDemo(ctx, userID, st, id)
	}
	return l, nil
}

// UpdateLeadStatus is the dialer disposition. Same demo rule as UpdateLead.
func (s *Service) UpdateLeadStatus(ctx context.Context, userID, id, status string) (models.Lead, error) {
	status = strings.TrimSpace(status)
	if !models.ValidLeadStatus(status) {
		return models.Lead{}, apperr.New(apperr.CodeValidation, "Unknown lead status "+strconv.Quote(status)+".")
	}
	defer s.lock(userID)()
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.Lead{}, err
	}
	if _, ok := st.Lead(id); !ok {
		return models.Lead{}, notFound("lead", id)
	}
	if err := s.repo.UpdateLeadStatus(ctx, userID, id, models.LeadStatusPatch{Status: status}); err != nil {
		return models.Lead{}, fmt.Errorf("update lead status: %w", err)
	}
	l, prev, _ := st.SetLeadStatus(id, status)
	if prev != models.StatusDemoBooked && status == models.StatusDemoBooked {
		s.recordDemo(ctx, userID, st, id)
	}
	return l, nil
}

// DeleteLead removes the lead and decrements its campaign's count, floored at zero.
func (s *Service) DeleteLead(ctx context.Context, userID, id string) error {
	defer s.lock(userID)()
	st, err := s.state(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := st.Lead(id); !ok {
		return notFound("lead", id)
	}
	if err := s.repo.DeleteLead(ctx, userID, id); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	l, n, ok := st.RemoveLead(id)
	if ok && n >= 0 {
		s.syncLeadCount(ctx, userID, l.CampaignID, n)
	}
	return nil
}

// syncLeadCount writes the campaign's lead count back. The lead row is
// already committed, so a failure is only logged; the next load recounts.
func (s *Service) syncLeadCount(ctx context.Context, userID, campaignID string, n int) {
	if err := s.repo.UpdateCampaign(ctx, userID, campaignID, models.CampaignPatch{LeadCount: &n}); err != nil {
		s.log.Warn("lead count update failed", slog.String("campaign_id", campaignID), slog.String("err", err.Error()))
	}
}
