package crm

import (
	"context"
	"strconv"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/models"
)

func (s *Service) Navigation(ctx context.Context, userID string) (models.Navigation, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.Navigation{}, err
	}
	return st.Navigation(), nil
}

// Navigate switches view and hands nav to the destination. Plain view
// selection passes a nil nav, which drops any pending context.
func (s *Service) Navigate(ctx context.Context, userID, view string, nav *models.NavContext) (models.Navigation, error) {
	if !models.ValidView(view) {
		return models.Navigation{}, apperr.New(apperr.CodeValidation, "Unknown view "+strconv.Quote(view)+".")
	}
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.Navigation{}, err
	}
	return st.SetNavigation(view, nav), nil
}

// ConsumeNavigation returns the pending context once. The second call reports false.
func (s *Service) ConsumeNavigation(ctx context.Context, userID string) (models.NavContext, bool, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.NavContext{}, false, err
	}
	c, ok := st.ConsumeContext()
	return c, ok, nil
}
