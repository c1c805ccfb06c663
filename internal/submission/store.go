// Package submission persists events, attendee submissions and their
// segments, and serves event-level reads on top of them.
package submission

import (
	"context"
	"errors"

	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// Store errors.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrDuplicateSlug      = errors.New("event slug already exists")
	ErrForbidden          = errors.New("admin capability required")
)

// PersistenceError reports a failed call to the backing store. It is
// transient: the same call may succeed when retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "submission store: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err may succeed on retry. Lookups that found
// nothing and constraint violations are final.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrEventNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrDuplicateSlug),
		errors.Is(err, ErrForbidden),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}

// Store is the contract the intake flow and the report flow depend on.
type Store interface {
	// GetEventByIdentifier resolves an event slug.
	// Returns ErrEventNotFound if no event has that slug.
	GetEventByIdentifier(ctx context.Context, slug string) (*travel.Event, error)

	// ListSubmissionsWithSegments returns every submission of an event that
	// has at least one stored segment, each with its segments in
	// segment order.
	ListSubmissionsWithSegments(ctx context.Context, eventID string) ([]travel.SubmissionWithSegments, error)

	// CreateSubmission stores a submission header and returns its ID.
	// Returns ErrEventNotFound if the event does not exist.
	CreateSubmission(ctx context.Context, rec travel.SubmissionRecord) (string, error)

	// CreateSegments stores all segments of a submission at once.
	// Returns ErrSubmissionNotFound if the submission does not exist.
	CreateSegments(ctx context.Context, submissionID string, segs []travel.SegmentRecord) error
}

// EventStore manages the event catalogue.
type EventStore interface {
	// ListActiveEvents returns active events by start date, earliest first.
	ListActiveEvents(ctx context.Context) ([]*travel.Event, error)

	// CreateEvent stores a new event and fills in its ID and CreatedAt.
	// Returns ErrDuplicateSlug if the slug is taken.
	CreateEvent(ctx context.Context, event *travel.Event) error

	// DeleteEvent removes an event with its submissions and segments.
	// Returns ErrEventNotFound if the event does not exist.
	DeleteEvent(ctx context.Context, id string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// Repository is a complete storage backend.
type Repository interface {
	Store
	EventStore
}
