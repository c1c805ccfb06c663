package intake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/eventfootprint/eventfootprint/internal/submission"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

const meterName = "github.com/eventfootprint/eventfootprint/internal/intake"

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("intake session not found")

// Notifier is told about every stored submission.
type Notifier interface {
	SubmissionCompleted(ctx context.Context, r *Receipt) error
}

// SessionsConfig holds configuration for the session registry.
type SessionsConfig struct {
	Store    submission.Store
	Form     Config
	TTL      time.Duration
	Notifier Notifier
	Logger   zerolog.Logger
}

// Session is one attendee's questionnaire. The expiry moves on every
// access, so it is read through ExpiresAt.
type Session struct {
	ID        string
	EventSlug string
	Form      *Form
	CreatedAt time.Time

	mu        sync.Mutex
	expiresAt time.Time
}

// ExpiresAt returns when the session lapses unless it is used again.
func (sess *Session) ExpiresAt() time.Time {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.expiresAt
}

func (sess *Session) expired(now time.Time) bool {
	return now.After(sess.ExpiresAt()) && sess.Form.Step() != StepSubmitting
}

func (sess *Session) extend(until time.Time) {
	sess.mu.Lock()
	sess.expiresAt = until
	sess.mu.Unlock()
}

// Sessions keeps questionnaires in memory until they expire.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	store    submission.Store
	form     Config
	ttl      time.Duration
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time

	footprintKg metric.Float64Histogram
	created     metric.Int64Counter
}

// NewSessions creates a session registry.
func NewSessions(cfg SessionsConfig) (*Sessions, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}

	meter := otel.Meter(meterName)
	footprintKg, err := meter.Float64Histogram(
		"submission.footprint.kg",
		metric.WithDescription("Footprint of stored submissions"),
		metric.WithUnit("kg"),
	)
	if err != nil {
		return nil, err
	}
	created, err := meter.Int64Counter(
		"submission.created",
		metric.WithDescription("Number of stored submissions"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	return &Sessions{
		sessions:    make(map[string]*Session),
		store:       cfg.Store,
		form:        cfg.Form.withDefaults(),
		ttl:         cfg.TTL,
		notifier:    cfg.Notifier,
		logger:      cfg.Logger,
		now:         time.Now,
		footprintKg: footprintKg,
		created:     created,
	}, nil
}

// Create opens a session for an event. Returns submission.ErrEventNotFound
// for an unknown slug.
func (s *Sessions) Create(ctx context.Context, eventSlug string) (*Session, error) {
	if _, err := s.store.GetEventByIdentifier(ctx, eventSlug); err != nil {
		return nil, err
	}

	now := s.now()
	sess := &Session{
		ID:        "ses_" + uuid.New().String()[:22],
		EventSlug: eventSlug,
		Form:      NewForm(eventSlug, s.form),
		CreatedAt: now,
		expiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Debug().Str("session_id", sess.ID).Str("event", eventSlug).Msg("intake session created")
	return sess, nil
}

// Get returns a live session and extends its lifetime.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if sess.expired(now) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess.extend(now.Add(s.ttl))
	return sess, nil
}

// Submit submits the form of a session.
func (s *Sessions) Submit(ctx context.Context, id string) (*Receipt, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, sess.ID, sess.Form)
}

// SubmitNow validates and stores a complete submission without a session.
func (s *Sessions) SubmitNow(ctx context.Context, eventSlug string, sub travel.Submission, mirror bool) (*Receipt, error) {
	return s.submit(ctx, "", NewFormFromSubmission(eventSlug, s.form, sub, mirror))
}

func (s *Sessions) submit(ctx context.Context, sessionID string, form *Form) (*Receipt, error) {
	receipt, err := form.Submit(ctx, s.store)
	if err != nil {
		var verr *travel.ValidationError
		if !errors.As(err, &verr) && !errors.Is(err, ErrSubmitInFlight) {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("submit failed")
		}
		return nil, err
	}

	attrs := metric.WithAttributes(
		attribute.String("event", receipt.EventSlug),
		attribute.String("user_type", string(receipt.Submission.UserType)),
	)
	s.footprintKg.Record(ctx, receipt.TotalFootprintKg, attrs)
	s.created.Add(ctx, 1, attrs)

	s.logger.Info().
		Str("session_id", sessionID).
		Str("submission_id", receipt.SubmissionID).
		Str("event", receipt.EventSlug).
		Int("segments", len(receipt.Segments)).
		Float64("footprint_kg", receipt.TotalFootprintKg).
		Msg("submission stored")

	if s.notifier != nil {
		if err := s.notifier.SubmissionCompleted(ctx, receipt); err != nil {
			s.logger.Error().Err(err).Str("submission_id", receipt.SubmissionID).Msg("failed to publish submission notification")
		}
	}

	return receipt, nil
}

// Sweep removes expired sessions and returns how many were removed.
// Sessions with a submit in flight are kept.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of sessions held.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug().Int("expired", n).Msg("intake sessions expired")
			}
		}
	}
}

// SetClock replaces the clock. Intended for tests.
func (s *Sessions) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
