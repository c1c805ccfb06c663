package submission

import (
	"context"
	"errors"

	"github.com/eventfootprint/eventfootprint/internal/resilience"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// ResilientStore retries transient failures of another Repository behind a
// circuit breaker. Reads and writes use separate breakers so a failing write
// path does not block reports.
//
// CreateSubmission is not idempotent: a retry after a lost response can store
// a second header. The orphan has no segments and is never listed.
type ResilientStore struct {
	next   Repository
	reads  *resilience.Executor
	writes *resilience.Executor
}

var _ Repository = (*ResilientStore)(nil)

// NewResilientStore wraps next. name prefixes the executor names.
func NewResilientStore(next Repository, name string, maxRetries uint64, registry *resilience.Registry) *ResilientStore {
	build := func(suffix string) *resilience.Executor {
		cfg := resilience.DefaultConfig(name + "." + suffix)
		cfg.MaxRetries = maxRetries
		cfg.Retryable = IsTransient
		cfg.Registry = registry
		return resilience.NewExecutor(cfg)
	}
	return &ResilientStore{next: next, reads: build("reads"), writes: build("writes")}
}

// GetEventByIdentifier resolves an event slug.
func (s *ResilientStore) GetEventByIdentifier(ctx context.Context, slug string) (*travel.Event, error) {
	event, err := resilience.Call(ctx, s.reads, func(ctx context.Context) (*travel.Event, error) {
		return s.next.GetEventByIdentifier(ctx, slug)
	})
	return event, breakerError("get event", err)
}

// ListSubmissionsWithSegments lists the submissions of an event.
func (s *ResilientStore) ListSubmissionsWithSegments(ctx context.Context, eventID string) ([]travel.SubmissionWithSegments, error) {
	subs, err := resilience.Call(ctx, s.reads, func(ctx context.Context) ([]travel.SubmissionWithSegments, error) {
		return s.next.ListSubmissionsWithSegments(ctx, eventID)
	})
	return subs, breakerError("list submissions", err)
}

// CreateSubmission stores a submission header.
func (s *ResilientStore) CreateSubmission(ctx context.Context, rec travel.SubmissionRecord) (string, error) {
	id, err := resilience.Call(ctx, s.writes, func(ctx context.Context) (string, error) {
		return s.next.CreateSubmission(ctx, rec)
	})
	return id, breakerError("create submission", err)
}

// CreateSegments stores the segments of a submission.
func (s *ResilientStore) CreateSegments(ctx context.Context, submissionID string, segs []travel.SegmentRecord) error {
	err := s.writes.Do(ctx, func(ctx context.Context) error {
		return s.next.CreateSegments(ctx, submissionID, segs)
	})
	return breakerError("create segments", err)
}

// ListActiveEvents lists active events.
func (s *ResilientStore) ListActiveEvents(ctx context.Context) ([]*travel.Event, error) {
	events, err := resilience.Call(ctx, s.reads, func(ctx context.Context) ([]*travel.Event, error) {
		return s.next.ListActiveEvents(ctx)
	})
	return events, breakerError("list events", err)
}

// CreateEvent stores a new event.
func (s *ResilientStore) CreateEvent(ctx context.Context, event *travel.Event) error {
	err := s.writes.Do(ctx, func(ctx context.Context) error {
		return s.next.CreateEvent(ctx, event)
	})
	return breakerError("create event", err)
}

// DeleteEvent removes an event.
func (s *ResilientStore) DeleteEvent(ctx context.Context, id string) error {
	err := s.writes.Do(ctx, func(ctx context.Context) error {
		return s.next.DeleteEvent(ctx, id)
	})
	return breakerError("delete event", err)
}

// Ping checks the backend once, bypassing retries.
func (s *ResilientStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// breakerError reports an open breaker as a PersistenceError.
func breakerError(op string, err error) error {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return &PersistenceError{Op: op, Err: err}
	}
	return err
}
