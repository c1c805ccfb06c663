// Package main provides the entrypoint for the event footprint API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventfootprint/eventfootprint/internal/api"
	"github.com/eventfootprint/eventfootprint/internal/api/middleware"
	"github.com/eventfootprint/eventfootprint/internal/auth"
	"github.com/eventfootprint/eventfootprint/internal/config"
	"github.com/eventfootprint/eventfootprint/internal/database"
	"github.com/eventfootprint/eventfootprint/internal/intake"
	"github.com/eventfootprint/eventfootprint/internal/notify"
	"github.com/eventfootprint/eventfootprint/internal/resilience"
	"github.com/eventfootprint/eventfootprint/internal/submission"
	"github.com/eventfootprint/eventfootprint/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "eventfootprint-api"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("api stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(log zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Env).
		Str("store", cfg.StoreBackend).
		Msg("starting event footprint API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		return err
	}

	base, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	store := submission.NewResilientStore(base, "submission-store", cfg.StoreMaxRetries, resilience.GlobalRegistry)

	if cfg.JWT.DevKey {
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	tokens := auth.NewJWTService(auth.JWTConfig{
		SigningKey: cfg.JWT.SigningKey,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
	})

	notifier, closeNotifier, err := openNotifier(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	sessions, err := intake.NewSessions(intake.SessionsConfig{
		Store:    store,
		Form:     intake.Config{Policy: cfg.Policy},
		TTL:      cfg.IntakeSessionTTL,
		Notifier: notifier,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	go sessions.Run(ctx, time.Minute)

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Tokens:      tokens,
		Service: submission.NewService(submission.ServiceConfig{
			Store:  store,
			Policy: cfg.Policy,
			Logger: log,
		}),
		Sessions:    sessions,
		Breakers:    resilience.GlobalRegistry,
		CORSOrigins: cfg.CORSOrigins,
		RequireTLS:  cfg.RequireTLS,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore returns the configured submission repository and its cleanup.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (submission.Repository, func(), error) {
	if cfg.StoreBackend == config.StoreMemory {
		log.Warn().Msg("using in-memory store - submissions are lost on restart")
		return submission.NewInMemoryStore(), func() {}, nil
	}

	if cfg.MigrateOnStart {
		applied, err := database.Migrate(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		for _, m := range applied {
			log.Info().Int64("version", m.Version).Str("source", m.Source).Dur("duration", m.Duration).Msg("migration applied")
		}
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	log.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.Database).
		Msg("database connected")

	return submission.NewPostgresStore(pool), pool.Close, nil
}

// openNotifier publishes to Pub/Sub when configured and logs otherwise.
func openNotifier(ctx context.Context, cfg config.Config, log zerolog.Logger) (intake.Notifier, func(), error) {
	if !cfg.PubSub.Enabled() {
		log.Info().Msg("pubsub not configured - submission notifications are logged only")
		return notify.LogNotifier{Logger: log}, func() {}, nil
	}

	pub, err := notify.NewPubSubPublisher(ctx, notify.PublisherConfig{
		ProjectID: cfg.PubSub.ProjectID,
		TopicID:   cfg.PubSub.Topic,
		Logger:    log,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("topic", cfg.PubSub.Topic).Msg("pubsub publisher initialized")

	return pub, func() {
		if err := pub.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close pubsub publisher")
		}
	}, nil
}
