package crm

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/ingest"
	"github.com/angelcm/horizon-crm/internal/metrics"
	"github.com/angelcm/horizon-crm/internal/models"
	"github.com/angelcm/horizon-crm/internal/store"
)

// Repository is the row store the CRM writes through. Both the REST client
// and the Postgres repo implement it.
type Repository interface {
	ingest.Source

	InsertCampaign(ctx context.Context, row models.CampaignRow) error
	UpdateCampaign(ctx context.Context, userID, id string, p models.CampaignPatch) error
	DeleteCampaign(ctx context.Context, userID, id string) error

	InsertLeads(ctx context.Context, rows []models.LeadRow) error
	UpdateLead(ctx context.Context, userID, id string, p models.LeadPatch) error
	UpdateLeadStatus(ctx context.Context, userID, id string, p models.LeadStatusPatch) error
	DeleteLead(ctx context.Context, userID, id string) error

	InsertClient(ctx context.Context, row models.ClientRow) error
	UpdateClient(ctx context.Context, userID, id string, p models.ClientPatch) error
	DeleteClient(ctx context.Context, userID, id string) error

	InsertDemoEvent(ctx context.Context, row models.DemoEventRow) error
}

// Service runs CRM actions for signed-in users. Each action calls the row
// store first and only touches local state once the call succeeded.
// Mutations of one user run one at a time.
type Service struct {
	repo   Repository
	states *store.MemoryStore
	loader *ingest.Loader
	clk    clock.Clock
	log    *slog.Logger
	m      *metrics.Metrics
	newID  func() string
	locks  sync.Map // userID -> *sync.Mutex
}

func NewService(repo Repository, states *store.MemoryStore, clk clock.Clock, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:   repo,
		states: states,
		loader: ingest.NewLoader(repo, states, log, m),
		clk:    clk,
		log:    log,
		m:      m,
		newID:  uuid.NewString,
	}
}

func (s *Service) now(ctx context.Context) time.Time {
	return clock.FromContext(ctx, s.clk).Now()
}

func (s *Service) today(ctx context.Context) string { return clock.Format(s.now(ctx)) }

// lock holds the user's mutation lock until the returned func is called.
// The remote write and the local change it guards both happen under it.
func (s *Service) lock(userID string) func() {
	v, _ := s.locks.LoadOrStore(userID, new(sync.Mutex))
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// LoadSession (re)fetches every collection of the user.
func (s *Service) LoadSession(ctx context.Context, userID string) (ingest.Result, error) {
	_, res, err := s.loader.Run(ctx, userID)
	return res, err
}

// state returns the user's loaded state, loading it on first use.
func (s *Service) state(ctx context.Context, userID string) (*store.State, error) {
	if st, ok := s.states.Get(userID); ok && st.Loaded() {
		return st, nil
	}
	st, _, err := s.loader.Run(ctx, userID)
	return st, err
}

// EndSession forgets the user's in-memory state.
func (s *Service) EndSession(userID string) { s.states.Drop(userID) }

func (s *Service) Snapshot(ctx context.Context, userID string) (models.Snapshot, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return models.Snapshot{}, err
	}
	return st.Snapshot(), nil
}

func (s *Service) DemoEvents(ctx context.Context, userID string) ([]models.DemoEvent, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	return st.DemoEvents(), nil
}

// recordDemo stores a demo event dated today. A failure is logged and does
// not undo the status change that triggered it.
func (s *Service) recordDemo(ctx context.Context, userID string, st *store.State, leadID string) {
	ev := models.DemoEvent{ID: "demo-" + s.newID(), LeadID: leadID, Date: s.today(ctx)}
	if err := s.repo.InsertDemoEvent(ctx, models.NewDemoEventRow(userID, ev)); err != nil {
		s.log.Error("record demo failed", slog.String("lead_id", leadID), slog.String("err", err.Error()))
		return
	}
	st.AddDemoEvent(ev)
	s.m.IncDemo()
	s.log.Info("demo recorded", slog.String("lead_id", leadID), slog.String("date", ev.Date))
}

func required(msg string, vals ...string) error {
	for _, v := range vals {
		if v == "" {
			return apperr.New(apperr.CodeValidation, msg)
		}
	}
	return nil
}

func notFound(kind, id string) error {
	return apperr.New(apperr.CodeNotFound, kind+" "+strconv.Quote(id)+" not found")
}
