// Command server runs the property alerts backend: the HTTP API, the
// inbound email webhook, and the planning-watch poll scheduler, all in
// one process backed by a SQLite database.
//
// Startup order: env + config, logging, database, tracing, mailer,
// scheduler, HTTP server. Shutdown reverses it: stop accepting requests,
// wait for an in-flight poll cycle, flush traces.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/bridgepark/go-alerts-backend/internal/config"
	httpapi "github.com/bridgepark/go-alerts-backend/internal/http"
	"github.com/bridgepark/go-alerts-backend/internal/notify"
	"github.com/bridgepark/go-alerts-backend/internal/observability"
	"github.com/bridgepark/go-alerts-backend/internal/repo"
	"github.com/bridgepark/go-alerts-backend/internal/scheduler"
	"github.com/bridgepark/go-alerts-backend/internal/sources"
	"github.com/bridgepark/go-alerts-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Msg("starting alerts backend")

	// Database
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// Tracing
	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Fatal().Err(err).Msg("instrument database")
		}
	}

	// Mailer (nil host disables delivery; alerts are logged only)
	var mailer notify.Mailer
	if cfg.SMTP.Host != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set; email delivery disabled")
	}

	// Poll scheduler
	registry := sources.NewRegistry(&http.Client{Timeout: cfg.Poll.FetchTimeout})
	poller := scheduler.NewPoller(db, registry, mailer, cfg.Poll.MaxPages, cfg.Poll.NotifyFirstRun)
	runner, err := scheduler.NewRunner(poller, cfg.Poll.Schedule, cfg.Poll.CycleTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("schedule poller")
	}
	runner.Start()
	if cfg.Poll.RunOnStart {
		go func() {
			if _, err := runner.TriggerNow(ctx); err != nil {
				log.Error().Err(err).Msg("startup poll cycle failed")
			}
		}()
	}

	// HTTP
	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, mailer, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	runner.Stop(shutdownCtx)
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	log.Info().Msg("stopped")
}
