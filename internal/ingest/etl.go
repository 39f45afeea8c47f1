package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/metrics"
	"github.com/angelcm/horizon-crm/internal/models"
	"github.com/angelcm/horizon-crm/internal/store"
)

// Source lists a user's rows, newest first.
type Source interface {
	ListCampaigns(ctx context.Context, userID string) ([]models.CampaignRow, error)
	ListLeads(ctx context.Context, userID string) ([]models.LeadRow, error)
	ListClients(ctx context.Context, userID string) ([]models.ClientRow, error)
	ListDemoEvents(ctx context.Context, userID string) ([]models.DemoEventRow, error)
}

type Loader struct {
	src Source
	st  *store.MemoryStore
	log *slog.Logger
	m   *metrics.Metrics
}

func NewLoader(src Source, st *store.MemoryStore, log *slog.Logger, m *metrics.Metrics) *Loader {
	return &Loader{src: src, st: st, log: log, m: m}
}

// Result counts what a load kept and what it dropped at the row boundary.
type Result struct {
	Campaigns  int `json:"campaigns"`
	Leads      int `json:"leads"`
	Clients    int `json:"clients"`
	DemoEvents int `json:"demoEvents"`
	Rejected   int `json:"rejected"`
}

// Run fetches the four collections in parallel and replaces the user's state
// with the rows that validate. If any fetch fails the existing state is left
// untouched.
func (l *Loader) Run(ctx context.Context, userID string) (*store.State, Result, error) {
	start := time.Now()
	var (
		cRows []models.CampaignRow
		lRows []models.LeadRow
		kRows []models.ClientRow
		dRows []models.DemoEventRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { cRows, err = l.src.ListCampaigns(gctx, userID); return })
	g.Go(func() (err error) { lRows, err = l.src.ListLeads(gctx, userID); return })
	g.Go(func() (err error) { kRows, err = l.src.ListClients(gctx, userID); return })
	g.Go(func() (err error) { dRows, err = l.src.ListDemoEvents(gctx, userID); return })
	if err := g.Wait(); err != nil {
		return nil, Result{}, apperr.Wrap(fmt.Errorf("load session: %w", err), apperr.CodeRemote, "could not load CRM data")
	}

	var res Result
	campaigns := keepValid(l, models.TableCampaigns, cRows, models.CampaignRow.Model, &res)
	leads := keepValid(l, models.TableLeads, lRows, models.LeadRow.Model, &res)
	clients := keepValid(l, models.TableClients, kRows, models.ClientRow.Model, &res)
	demos := keepValid(l, models.TableDemoEvents, dRows, models.DemoEventRow.Model, &res)

	leads = l.dropOrphans(campaigns, leads, &res)
	reconcileLeadCounts(campaigns, leads)

	res.Campaigns, res.Leads, res.Clients, res.DemoEvents = len(campaigns), len(leads), len(clients), len(demos)
	st := l.st.Ensure(userID)
	st.Replace(campaigns, leads, clients, demos)

	l.log.Info("session loaded",
		slog.String("user_id", userID),
		slog.Int("campaigns", res.Campaigns),
		slog.Int("leads", res.Leads),
		slog.Int("clients", res.Clients),
		slog.Int("demo_events", res.DemoEvents),
		slog.Int("rejected", res.Rejected),
		slog.Duration("took", time.Since(start)))
	return st, res, nil
}

func keepValid[R any, M any](l *Loader, table string, rows []R, model func(R) (M, error), res *Result) []M {
	out := make([]M, 0, len(rows))
	for _, r := range rows {
		v, err := model(r)
		if err != nil {
			res.Rejected++
			l.m.RejectRow(table)
			l.log.Warn("row rejected", slog.String("table", table), slog.String("err", err.Error()))
			continue
		}
		out = append(out, v)
	}
	return out
}

// dropOrphans removes leads whose campaign did not load.
func (l *Loader) dropOrphans(campaigns []models.Campaign, leads []models.Lead, res *Result) []models.Lead {
	known := make(map[string]struct{}, len(campaigns))
	for _, c := range campaigns {
		known[c.ID] = struct{}{}
	}
	out := leads[:0]
	for _, ld := range leads {
		if _, ok := known[ld.CampaignID]; !ok {
			res.Rejected++
			l.m.RejectRow(models.TableLeads)
			l.log.Warn("row rejected", slog.String("table", models.TableLeads),
				slog.String("id", ld.ID), slog.String("err", "unknown campaign "+ld.CampaignID))
			continue
		}
		out = append(out, ld)
	}
	return out
}

// reconcileLeadCounts sets each campaign's count to the leads actually loaded.
func reconcileLeadCounts(campaigns []models.Campaign, leads []models.Lead) {
	counts := make(map[string]int, len(campaigns))
	for _, ld := range leads {
		counts[ld.CampaignID]++
	}
	for i := range campaigns {
		campaigns[i].LeadCount = counts[campaigns[i].ID]
	}
}
