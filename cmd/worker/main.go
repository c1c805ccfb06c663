// Package main runs the report worker. It consumes submission notifications
// from Pub/Sub and exposes health and manual-run endpoints.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/eventfootprint/eventfootprint/internal/api/middleware"
	"github.com/eventfootprint/eventfootprint/internal/api/response"
	"github.com/eventfootprint/eventfootprint/internal/config"
	"github.com/eventfootprint/eventfootprint/internal/database"
	"github.com/eventfootprint/eventfootprint/internal/resilience"
	"github.com/eventfootprint/eventfootprint/internal/submission"
	"github.com/eventfootprint/eventfootprint/internal/telemetry"
	"github.com/eventfootprint/eventfootprint/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "eventfootprint-worker"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("worker stopped with error")
	}
	log.Info().Msg("worker stopped")
}

func run(log zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	log.Info().Str("build_time", BuildTime).Msg("starting report worker")

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

	if cfg.StoreBackend == config.StoreMemory {
		return errors.New("the worker needs the postgres store: it reads what the API wrote")
	}
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := submission.NewResilientStore(submission.NewPostgresStore(pool), "worker-store", cfg.StoreMaxRetries, resilience.GlobalRegistry)
	service := submission.NewService(submission.ServiceConfig{Store: store, Policy: cfg.Policy, Logger: log})

	job := worker.NewReportJob(worker.ReportJobConfig{
		Config: worker.ReportConfig{Concurrency: cfg.ReportConcurrency},
		Source: service,
		Logger: log,
	})

	if cfg.ReportInterval > 0 {
		log.Info().Dur("interval", cfg.ReportInterval).Msg("scheduled report runs enabled")
		go job.Schedule(ctx, cfg.ReportInterval)
	}

	if cfg.PubSub.Enabled() {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSub.ProjectID,
			SubscriptionName: cfg.PubSub.Subscription,
			Dispatcher:       worker.NewDispatcher(job, log),
			Logger:           log,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := handler.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub receive stopped")
				stop()
			}
		}()
	} else {
		log.Warn().Msg("pubsub not configured - reports are only recomputed on schedule or on demand")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           healthRouter(job, service, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// healthRouter serves the worker's health, metrics and manual-run endpoints.
func healthRouter(job *worker.ReportJob, service *submission.Service, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]any{"status": "healthy", "version": Version, "reports": job.MetricsSnapshot()}
		if err := service.Ready(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["error"] = err.Error()
		}
		response.JSON(w, r, status, body)
	})

	r.Get("/reports/{slug}", func(w http.ResponseWriter, r *http.Request) {
		sum, ok := job.Latest(chi.URLParam(r, "slug"))
		if !ok {
			response.NotFound(w, r, "no report computed for this event yet")
			return
		}
		response.JSON(w, r, http.StatusOK, sum)
	})

	r.Post("/run", func(w http.ResponseWriter, r *http.Request) {
		result, err := job.Run(r.Context(), nil)
		if err != nil {
			response.ServiceUnavailable(w, r, err.Error(), 30)
			return
		}
		response.JSON(w, r, http.StatusOK, map[string]any{
			"duration":   result.Duration.String(),
			"total":      result.Total,
			"successful": result.Successful,
			"failed":     result.Failed,
			"errors":     result.Errors,
		})
	})

	return r
}
