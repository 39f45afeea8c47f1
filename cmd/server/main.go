package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/config"
	"github.com/angelcm/horizon-crm/internal/crm"
	"github.com/angelcm/horizon-crm/internal/dashboard"
	"github.com/angelcm/horizon-crm/internal/httpx"
	"github.com/angelcm/horizon-crm/internal/metrics"
	"github.com/angelcm/horizon-crm/internal/postgres"
	"github.com/angelcm/horizon-crm/internal/remote"
	"github.com/angelcm/horizon-crm/internal/session"
	"github.com/angelcm/horizon-crm/internal/store"
)

var (
	_ crm.Repository = (*remote.Client)(nil)
	_ crm.Repository = (*postgres.Repo)(nil)
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := remote.New(cfg.SupabaseURL, cfg.AnonKey, remote.NewHTTPClient(cfg.HTTPTimeout), logger, remote.WithMetrics(m))

	var (
		repo  crm.Repository = rc
		ready []func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("postgres", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
		pg := postgres.NewRepo(db, m)
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("migrate", slog.String("err", err.Error()))
			os.Exit(1)
		}
		repo = pg
		ready = append(ready, db.PingContext)
		logger.Info("row store: postgres")
	} else {
		logger.Info("row store: rest", slog.String("url", cfg.SupabaseURL))
	}

	var sessions session.Store = session.NewMemoryStore()
	if cfg.RedisURL != "" {
		rs, err := session.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("redis", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer rs.Close()
		sessions = rs
		ready = append(ready, rs.Ping)
		logger.Info("sessions: redis")
	}

	clk := clock.System{Loc: cfg.Location}
	svc := crm.NewService(repo, store.NewMemoryStore(), clk, logger, m)
	dash := dashboard.NewService(clk, m)

	r := httpx.NewRouter(httpx.Deps{
		Log:         logger,
		CRM:         svc,
		Dashboard:   dash,
		Auth:        rc,
		Sessions:    sessions,
		Tokens:      session.NewTokenParser(cfg.JWTSecret),
		Metrics:     m,
		Gatherer:    reg,
		CORSOrigins: cfg.CORSOrigins,
		Ready: func(ctx context.Context) error {
			for _, check := range ready {
				if err := check(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", slog.String("port", cfg.Port), slog.String("tz", cfg.Location.String()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
