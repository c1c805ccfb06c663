package submission

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rs/zerolog"

	"github.com/eventfootprint/eventfootprint/internal/report"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ServiceConfig holds configuration for the event service.
type ServiceConfig struct {
	Store  Repository
	Policy travel.OtherPolicy
	Logger zerolog.Logger
}

// Service serves event-level reads and admin operations.
type Service struct {
	store  Repository
	engine report.Engine
	logger zerolog.Logger
}

// NewService creates an event service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		store:  cfg.Store,
		engine: report.Engine{Policy: cfg.Policy},
		logger: cfg.Logger,
	}
}

// Results is the report of one event. Report is nil when NoData is set.
type Results struct {
	Event  *travel.Event
	Report *report.EventResult
	NoData bool
}

// Dump is every stored submission of one event.
type Dump struct {
	Event       *travel.Event
	Submissions []travel.SubmissionWithSegments
}

// CreateEventInput is the data needed to create an event.
type CreateEventInput struct {
	Name        string
	Slug        string
	Description string
	Location    string
	StartDate   string
	EndDate     string
	IsActive    bool
}

// ListEvents returns the active events, earliest first.
func (s *Service) ListEvents(ctx context.Context) ([]*travel.Event, error) {
	return s.store.ListActiveEvents(ctx)
}

// GetEvent resolves an event slug.
func (s *Service) GetEvent(ctx context.Context, slug string) (*travel.Event, error) {
	return s.store.GetEventByIdentifier(ctx, slug)
}

// Results recomputes the report of an event from the stored submissions.
func (s *Service) Results(ctx context.Context, slug string) (*Results, error) {
	event, err := s.store.GetEventByIdentifier(ctx, slug)
	if err != nil {
		return nil, err
	}

	subs, err := s.store.ListSubmissionsWithSegments(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Aggregate(subs)
	if errors.Is(err, report.ErrNoData) {
		return &Results{Event: event, NoData: true}, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("event", event.Slug).
		Int("participants", res.TotalParticipants).
		Float64("footprint_kg", res.TotalFootprintKg).
		Msg("event report computed")

	return &Results{Event: event, Report: res}, nil
}

// Dump returns the raw submissions of an event. It requires the admin
// capability.
func (s *Service) Dump(ctx context.Context, admin bool, slug string) (*Dump, error) {
	if !admin {
		return nil, ErrForbidden
	}

	event, err := s.store.GetEventByIdentifier(ctx, slug)
	if err != nil {
		return nil, err
	}

	subs, err := s.store.ListSubmissionsWithSegments(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	return &Dump{Event: event, Submissions: subs}, nil
}

// CreateEvent stores a new event. It requires the admin capability.
func (s *Service) CreateEvent(ctx context.Context, admin bool, input CreateEventInput) (*travel.Event, error) {
	if !admin {
		return nil, ErrForbidden
	}

	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	if err := validateCreateEvent(input); err != nil {
		return nil, err
	}

	start, _ := time.Parse(travel.DateLayout, input.StartDate)
	end, _ := time.Parse(travel.DateLayout, input.EndDate)

	event := &travel.Event{
		Name:        strings.TrimSpace(input.Name),
		Slug:        input.Slug,
		Description: input.Description,
		Location:    input.Location,
		StartDate:   start,
		EndDate:     end,
		IsActive:    input.IsActive,
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info().Str("event_id", event.ID).Str("slug", event.Slug).Msg("event created")
	return event, nil
}

// DeleteEvent removes an event with all its submissions. It requires the
// admin capability.
func (s *Service) DeleteEvent(ctx context.Context, admin bool, id string) error {
	if !admin {
		return ErrForbidden
	}

	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("event_id", id).Msg("event deleted")
	return nil
}

// Ready checks that the store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func validateCreateEvent(in CreateEventInput) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Slug, validation.Required, validation.Length(1, 100), validation.Match(slugPattern)),
		validation.Field(&in.Description, validation.Length(0, 2000)),
		validation.Field(&in.StartDate, validation.Required, validation.Date(travel.DateLayout)),
		validation.Field(&in.EndDate, validation.Required, validation.Date(travel.DateLayout)),
	)

	fields := travel.FieldErrorsFrom(err)

	start, serr := time.Parse(travel.DateLayout, in.StartDate)
	end, eerr := time.Parse(travel.DateLayout, in.EndDate)
	if serr == nil && eerr == nil && end.Before(start) {
		fields = append(fields, travel.FieldError{Field: "endDate", Code: travel.CodeInvalid, Message: "must not be before startDate"})
	}

	if len(fields) == 0 {
		return nil
	}
	return &travel.ValidationError{Fields: fields}
}
