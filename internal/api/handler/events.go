package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/eventfootprint/eventfootprint/internal/api/middleware"
	"github.com/eventfootprint/eventfootprint/internal/api/models"
	"github.com/eventfootprint/eventfootprint/internal/api/response"
	"github.com/eventfootprint/eventfootprint/internal/submission"
)

// EventsHandler serves events, their results, and the admin operations on
// them.
type EventsHandler struct {
	service *submission.Service
	logger  zerolog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(service *submission.Service, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{service: service, logger: logger}
}

// ListEvents handles GET /v1/events - active events, earliest first.
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	list := models.EventList{Items: make([]models.Event, 0, len(events))}
	for _, e := range events {
		list.Items = append(list.Items, fromEvent(e))
	}
	response.JSON(w, r, http.StatusOK, list)
}

// GetEvent handles GET /v1/events/{slug}.
func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetEvent(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, fromEvent(event))
}

// GetResults handles GET /v1/events/{slug}/results. An event without
// submissions answers 200 with status NO_DATA.
func (h *EventsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Results(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	body := models.EventResults{
		Status:    models.ResultsStatusOK,
		EventSlug: res.Event.Slug,
		EventName: res.Event.Name,
	}
	if res.NoData {
		body.Status = models.ResultsStatusNoData
	} else {
		body.Report = fromReport(res.Report)
	}
	response.JSON(w, r, http.StatusOK, body)
}

// CreateEvent handles POST /v1/admin/events.
func (h *EventsHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if !decode(w, r, &req) {
		return
	}

	input := submission.CreateEventInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}

	event, err := h.service.CreateEvent(r.Context(), middleware.IsAdmin(r.Context()), input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, "/v1/events/"+event.Slug, fromEvent(event))
}

// DeleteEvent handles DELETE /v1/admin/events/{eventId}. Submissions and
// segments of the event are removed with it.
func (h *EventsHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteEvent(r.Context(), middleware.IsAdmin(r.Context()), chi.URLParam(r, "eventId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w, r)
}

// ListSubmissions handles GET /v1/admin/events/{slug}/submissions.
func (h *EventsHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	dump, err := h.service.Dump(r.Context(), middleware.IsAdmin(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	body := models.EventDump{
		Event:       fromEvent(dump.Event),
		Submissions: make([]models.SubmissionDump, 0, len(dump.Submissions)),
	}
	for _, s := range dump.Submissions {
		body.Submissions = append(body.Submissions, models.SubmissionDump{
			ID:                   s.Submission.ID,
			UserType:             string(s.Submission.UserType),
			OtherUserTypeDetails: s.Submission.OtherUserTypeDetails,
			HotelNights:          s.Submission.HotelNights,
			Comments:             s.Submission.Comments,
			CreatedAt:            models.Timestamp(s.Submission.CreatedAt),
			Segments:             mapSegments(s.Segments, fromSegmentRecord),
		})
	}
	response.JSON(w, r, http.StatusOK, body)
}
