package crm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/models"
)

// ClientInput is a client form submission. Money fields accept JSON numbers
// or numeric strings.
type ClientInput struct {
	Name                string          `json:"name"`
	Company             string          `json:"company"`
	CloseDate           string          `json:"closeDate"`
	UpfrontValue        decimal.Decimal `json:"upfrontValue"`
	MonthlyValue        decimal.Decimal `json:"monthlyValue"`
	MonthlyRetainerDate string          `json:"monthlyRetainerDate"`
	Status              string          `json:"status"`
}

// client validates in and turns it into a Client with the given id.
func (in ClientInput) client(id string) (models.Client, error) {
	c := models.Client{
		ID:                  id,
		Name:                strings.TrimSpace(in.Name),
		Company:             strings.TrimSpace(in.Company),
		CloseDate:           strings.TrimSpace(in.CloseDate),
		UpfrontValue:        in.UpfrontValue,
		MonthlyValue:        in.MonthlyValue,
		MonthlyRetainerDate: strings.TrimSpace(in.MonthlyRetainerDate),
		Status:              strings.TrimSpace(in.Status),
	}
	if err := required("Please fill out all required fields marked with *", c.Name, c.Company, c.CloseDate); err != nil {
		return models.Client{}, err
	}
	if !clock.Valid(c.CloseDate) {
		return models.Client{}, apperr.New(apperr.CodeValidation, "Close date must be YYYY-MM-DD.")
	}
	if c.UpfrontValue.IsNegative() || c.MonthlyValue.IsNegative() {
		return models.Client{}, apperr.New(apperr.CodeValidation, "Deal values cannot be negative.")
	}

	switch c.Status {
	case "":
		c.Status = models.ClientActive
	case models.ClientActive, models.ClientInactive:
	default:
		return models.Client{}, apperr.New(apperr.CodeValidation, "Status must be active or inactive.")
	}

	// sin suscripción no hay fecha de retainer
	if c.Status == models.ClientInactive {
		c.MonthlyRetainerDate = ""
		return c, nil
	}
	if c.MonthlyValue.IsPositive() && c.MonthlyRetainerDate == "" {
		return models.Client{}, apperr.New(apperr.CodeValidation, "Please provide a First Retainer Date for active subscriptions.")
	}
	if c.MonthlyRetainerDate != "" && !clock.Valid(c.MonthlyRetainerDate) {
		return models.Client{}, apperr.New(apperr.CodeValidation, "First Retainer Date must be YYYY-MM-DD.")
	}
	return c, nil
}

func (s *Service) Clients(ctx context.Context, userID string) ([]models.Client, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	return st.Clients(), nil
}

func (s *Service) AddClient(ctx context.Context, userID string, in ClientInput) (models.Client, error) {
	c, err := in.client("c-" + s.newID())
	if err != nil {
		return models.Client{}, err
	}
	defer s.lock(userID)()
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.Client{}, err
	}
	if err := s.repo.InsertClient(ctx, models.NewClientRow(userID, c)); err != nil {
		return models.Client{}, fmt.Errorf("add client: %w", err)
	}
	st.AddClient(c)
	s.log.Info("client added", slog.String("client_id", c.ID), slog.String("status", c.Status))
	return c, nil
}

func (s *Service) UpdateClient(ctx context.Context, userID, id string, in ClientInput) (models.Client, error) {
	c, err := in.client(id)
	if err != nil {
		return models.Client{}, err
	}
	defer s.lock(userID)()
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.Client{}, err
	}
	if _, ok := st.Client(id); !ok {
		return models.Client{}, notFound("client", id)
	}
	if err := s.repo.UpdateClient(ctx, userID, id, models.NewClientPatch(c)); err != nil {
		return models.Client{}, fmt.Errorf("update client: %w", err)
	}
	st.UpdateClient(c)
	return c, nil
}

func (s *Service) DeleteClient(ctx context.Context, userID, id string) error {
	defer s.lock(userID)()
	st, err := s.state(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := st.Client(id); !ok {
		return notFound("client", id)
	}
	if err := s.repo.DeleteClient(ctx, userID, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	st.RemoveClient(id)
	return nil
}
