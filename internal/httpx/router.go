package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelcm/horizon-crm/internal/crm"
	"github.com/angelcm/horizon-crm/internal/dashboard"
	"github.com/angelcm/horizon-crm/internal/metrics"
	"github.com/angelcm/horizon-crm/internal/session"
	"github.com/angelcm/horizon-crm/internal/utils"
)

type Deps struct {
	Log         *slog.Logger
	CRM         *crm.Service
	Dashboard   *dashboard.Service
	Auth        Authenticator
	Sessions    session.Store
	Tokens      *session.TokenParser
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	// Ready reports whether backing stores answer. Nil means always ready.
	Ready func(ctx context.Context) error
}

type api struct {
	log      *slog.Logger
	crm      *crm.Service
	dash     *dashboard.Service
	auth     Authenticator
	sessions session.Store
	tokens   *session.TokenParser
	m        *metrics.Metrics
}

func NewRouter(d Deps) http.Handler {
	a := &api{
		log:      d.Log,
		crm:      d.CRM,
		dash:     d.Dashboard,
		auth:     d.Auth,
		sessions: d.Sessions,
		tokens:   d.Tokens,
		m:        d.Metrics,
	}
	if a.tokens == nil {
		a.tokens = session.NewTokenParser("")
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.Post("/auth/login", a.login)
	mux.With(a.requireSession).Post("/auth/logout", a.logout)

	mux.Route("/api", func(r chi.Router) {
		r.Use(a.requireSession)

		r.Get("/campaigns", a.listCampaigns)
		r.Post("/campaigns", a.importCampaign)
		r.Patch("/campaigns/{id}", a.renameCampaign)
		r.Delete("/campaigns/{id}", a.deleteCampaign)
		r.Get("/campaigns/{id}/leads", a.campaignLeads)

		r.Post("/leads", a.addLead)
		r.Put("/leads/{id}", a.updateLead)
		r.Patch("/leads/{id}/status", a.updateLeadStatus)
		r.Delete("/leads/{id}", a.deleteLead)

		r.Get("/clients", a.listClients)
		r.Post("/clients", a.addClient)
		r.Put("/clients/{id}", a.updateClient)
		r.Delete("/clients/{id}", a.deleteClient)

		r.Get("/demo-events", a.demoEvents)

		r.Get("/dashboard/stats", a.dashStats)
		r.Get("/dashboard/chart", a.dashChart)
		r.Get("/dashboard/calendar", a.dashCalendar)
		r.Get("/dashboard/activity", a.dashActivity)
		r.Get("/dashboard/series", a.dashSeries)

		r.Get("/navigation", a.navigation)
		r.Post("/navigation", a.navigate)
		r.Post("/navigation/consume", a.consumeNavigation)
	})

	return mux
}
