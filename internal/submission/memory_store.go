package submission

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// InMemoryStore is an in-memory implementation of Repository.
// It backs tests and the "memory" store backend.
type InMemoryStore struct {
	mu          sync.RWMutex
	events      map[string]*travel.Event
	submissions map[string]*travel.SubmissionRecord
	segments    map[string][]travel.SegmentRecord
	now         func() time.Time
}

var _ Repository = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		events:      make(map[string]*travel.Event),
		submissions: make(map[string]*travel.SubmissionRecord),
		segments:    make(map[string][]travel.SegmentRecord),
		now:         time.Now,
	}
}

// GetEventByIdentifier resolves an event slug.
func (s *InMemoryStore) GetEventByIdentifier(_ context.Context, slug string) (*travel.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.events {
		if e.Slug == slug {
			cpy := *e
			return &cpy, nil
		}
	}
	return nil, ErrEventNotFound
}

// ListSubmissionsWithSegments returns the submissions of an event with their segments.
func (s *InMemoryStore) ListSubmissionsWithSegments(_ context.Context, eventID string) ([]travel.SubmissionWithSegments, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []travel.SubmissionWithSegments
	for id, sub := range s.submissions {
		if sub.EventID != eventID || len(s.segments[id]) == 0 {
			continue
		}
		segs := append([]travel.SegmentRecord(nil), s.segments[id]...)
		sort.SliceStable(segs, func(i, j int) bool { return segs[i].Order < segs[j].Order })
		out = append(out, travel.SubmissionWithSegments{Submission: *sub, Segments: segs})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Submission, out[j].Submission
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

// CreateSubmission stores a submission header.
func (s *InMemoryStore) CreateSubmission(_ context.Context, rec travel.SubmissionRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[rec.EventID]; !ok {
		return "", ErrEventNotFound
	}

	rec.ID = uuid.New().String()
	rec.CreatedAt = s.now()
	s.submissions[rec.ID] = &rec
	return rec.ID, nil
}

// CreateSegments stores the segments of a submission.
func (s *InMemoryStore) CreateSegments(_ context.Context, submissionID string, segs []travel.SegmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.submissions[submissionID]; !ok {
		return ErrSubmissionNotFound
	}

	for _, seg := range segs {
		seg = seg.WithCountDefaults()
		seg.ID = uuid.New().String()
		seg.SubmissionID = submissionID
		s.segments[submissionID] = append(s.segments[submissionID], seg)
	}
	return nil
}

// ListActiveEvents returns active events by start date.
func (s *InMemoryStore) ListActiveEvents(_ context.Context) ([]*travel.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*travel.Event
	for _, e := range s.events {
		if e.IsActive {
			cpy := *e
			out = append(out, &cpy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

// CreateEvent stores a new event.
func (s *InMemoryStore) CreateEvent(_ context.Context, event *travel.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.Slug == event.Slug {
			return ErrDuplicateSlug
		}
	}

	event.ID = uuid.New().String()
	event.CreatedAt = s.now()
	cpy := *event
	s.events[event.ID] = &cpy
	return nil
}

// DeleteEvent removes an event and everything submitted for it.
func (s *InMemoryStore) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(s.events, id)

	for subID, sub := range s.submissions {
		if sub.EventID == id {
			delete(s.submissions, subID)
			delete(s.segments, subID)
		}
	}
	return nil
}

// Ping always succeeds.
func (s *InMemoryStore) Ping(_ context.Context) error {
	return nil
}
