// Package api provides the HTTP API of the event footprint service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/eventfootprint/eventfootprint/internal/api/handler"
	"github.com/eventfootprint/eventfootprint/internal/api/middleware"
	"github.com/eventfootprint/eventfootprint/internal/intake"
	"github.com/eventfootprint/eventfootprint/internal/resilience"
	"github.com/eventfootprint/eventfootprint/internal/submission"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Tokens      middleware.TokenValidator
	Service     *submission.Service
	Sessions    *intake.Sessions
	Breakers    *resilience.Registry
	CORSOrigins []string
	RequireTLS  bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "eventfootprint-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Ping:      cfg.Service.Ready,
		Breakers:  cfg.Breakers,
		Sessions:  cfg.Sessions.Len,
	})
	eventsHandler := handler.NewEventsHandler(cfg.Service, cfg.Logger)
	intakeHandler := handler.NewIntakeHandler(cfg.Sessions, cfg.Logger)

	submitRateLimit := middleware.RateLimitByIP(middleware.SubmitRateLimit)     // 10 req/min
	intakeRateLimit := middleware.RateLimitByIP(middleware.IntakeRateLimit)     // 300 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Route("/events", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", eventsHandler.ListEvents)
			r.Route("/{slug}", func(r chi.Router) {
				r.With(standardRateLimit).Get("/", eventsHandler.GetEvent)
				r.With(standardRateLimit).Get("/results", eventsHandler.GetResults)
				r.With(intakeRateLimit).Post("/intake", intakeHandler.CreateSession)
				r.With(submitRateLimit).Post("/submissions", intakeHandler.SubmitNow)
			})
		})

		r.Route("/intake/{sessionId}", func(r chi.Router) {
			r.With(submitRateLimit).Post("/submit", intakeHandler.Submit)

			r.Group(func(r chi.Router) {
				r.Use(intakeRateLimit)
				r.Get("/", intakeHandler.GetSession)
				r.Put("/user-type", intakeHandler.SetUserType)
				r.Put("/accommodation", intakeHandler.SetAccommodation)
				r.Put("/comments", intakeHandler.SetComments)
				r.Put("/mirror", intakeHandler.SetMirror)
				r.Post("/segments/{direction}", intakeHandler.AddSegment)
				r.Put("/segments/{direction}/{index}", intakeHandler.UpdateSegment)
				r.Delete("/segments/{direction}/{index}", intakeHandler.RemoveSegment)
				r.Post("/next", intakeHandler.Next)
				r.Post("/back", intakeHandler.Back)
			})
		})

		// Admin endpoints need a token with the admin role.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Tokens))
			r.Use(middleware.RequireAdmin)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))

			r.Post("/events", eventsHandler.CreateEvent)
			r.Delete("/events/{eventId}", eventsHandler.DeleteEvent)
			r.Get("/events/{slug}/submissions", eventsHandler.ListSubmissions)
		})
	})

	return r
}
