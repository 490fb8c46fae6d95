package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shakilabs/ott-price-compare/internal/config"
	"github.com/shakilabs/ott-price-compare/internal/httpx"
	"github.com/shakilabs/ott-price-compare/internal/logging"
	"github.com/shakilabs/ott-price-compare/internal/model"
	"github.com/shakilabs/ott-price-compare/internal/rates"
	"github.com/shakilabs/ott-price-compare/internal/scheduler"
	"github.com/shakilabs/ott-price-compare/internal/seo"
	"github.com/shakilabs/ott-price-compare/internal/service"
	"github.com/shakilabs/ott-price-compare/internal/store"
	"github.com/shakilabs/ott-price-compare/internal/validate"
)

func main() {

	// Loading config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Flat file storage
	fs := store.NewFileStore(cfg.DataDir, store.Options{CacheTTL: cfg.CacheTTL, CacheSize: cfg.CacheSize})
	alertLog := store.NewLog[model.AlertSubscription](filepath.Join(cfg.DataDir, "alerts", "subscriptions.ndjson"))
	posts := store.NewLog[model.Post](filepath.Join(cfg.DataDir, "community", "posts.ndjson"))
	likes := store.NewLog[model.Like](filepath.Join(cfg.DataDir, "community", "likes.ndjson"))
	votes := store.NewLog[model.Vote](filepath.Join(cfg.DataDir, "community", "votes.ndjson"))

	// Creating services
	v := validate.New()
	trendSvc := service.NewTrendService(fs, logger)
	histSvc := service.NewHistoryService(fs, logger)
	alertSvc := service.NewAlertService(alertLog, fs, v)
	updater := rates.NewUpdater(rates.NewClient(cfg.RatesURL, cfg.RatesTimeout), fs, logger)
	limiter := httpx.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	handler, err := httpx.NewRouter(httpx.Deps{
		Config:    cfg,
		Logger:    logger,
		Cache:     fs,
		Catalog:   service.NewCatalogService(fs),
		Trends:    trendSvc,
		History:   histSvc,
		Alerts:    alertSvc,
		Community: service.NewCommunityService(posts, likes, votes, fs, v),
		Reports:   service.NewReportService(fs),
		Pages:     seo.NewPages(fs),
		Limiter:   limiter,
	})
	if err != nil {
		logger.Error("build router", "error", err)
		os.Exit(1)
	}

	// Periodic jobs
	sched := scheduler.New(ctx, histSvc, updater, alertSvc, limiter, logger)
	if err := sched.RegisterAll(scheduler.Specs{History: cfg.HistoryCron, Rates: cfg.RatesCron, Alerts: cfg.AlertsCron}); err != nil {
		logger.Error("register jobs", "error", err)
		os.Exit(1)
	}
	sched.Start()

	// Creation of HTTP server
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0, // live trend streams stay open
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		// Hijacked websocket connections outlive Shutdown; tie them to the signal context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Running http server on a secondary goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "production", cfg.Production, "data_dir", cfg.DataDir)
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			logger.Info("TLS enabled")
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	// graceful shutdown
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	sched.Stop()
}
