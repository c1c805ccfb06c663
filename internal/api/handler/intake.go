package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/eventfootprint/eventfootprint/internal/api/models"
	"github.com/eventfootprint/eventfootprint/internal/api/response"
	"github.com/eventfootprint/eventfootprint/internal/intake"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// IntakeHandler drives intake form sessions over HTTP. Every mutating call
// answers with the full session state.
type IntakeHandler struct {
	sessions *intake.Sessions
	logger   zerolog.Logger
}

// NewIntakeHandler creates a new IntakeHandler.
func NewIntakeHandler(sessions *intake.Sessions, logger zerolog.Logger) *IntakeHandler {
	return &IntakeHandler{sessions: sessions, logger: logger}
}

// CreateSession handles POST /v1/events/{slug}/intake.
func (h *IntakeHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Create(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, "/v1/intake/"+sess.ID, sessionBody(sess))
}

// GetSession handles GET /v1/intake/{sessionId}.
func (h *IntakeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(*intake.Session) error { return nil })
}

// SetUserType handles PUT /v1/intake/{sessionId}/user-type.
func (h *IntakeHandler) SetUserType(w http.ResponseWriter, r *http.Request) {
	var req models.UserTypeRequest
	if !decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(s *intake.Session) error {
		return s.Form.SetUserType(travel.UserType(req.UserType), req.OtherUserTypeDetails)
	})
}

// SetAccommodation handles PUT /v1/intake/{sessionId}/accommodation.
func (h *IntakeHandler) SetAccommodation(w http.ResponseWriter, r *http.Request) {
	var req models.AccommodationRequest
	if !decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(s *intake.Session) error {
		return s.Form.SetHotelNights(req.HotelNights)
	})
}

// SetComments handles PUT /v1/intake/{sessionId}/comments.
func (h *IntakeHandler) SetComments(w http.ResponseWriter, r *http.Request) {
	var req models.CommentsRequest
	if !decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(s *intake.Session) error {
		return s.Form.SetComments(req.Comments)
	})
}

// SetMirror handles PUT /v1/intake/{sessionId}/mirror.
func (h *IntakeHandler) SetMirror(w http.ResponseWriter, r *http.Request) {
	var req models.MirrorRequest
	if !decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(s *intake.Session) error {
		return s.Form.SetMirror(req.Enabled)
	})
}

// AddSegment handles POST /v1/intake/{sessionId}/segments/{direction}.
func (h *IntakeHandler) AddSegment(w http.ResponseWriter, r *http.Request) {
	dir := travel.Direction(chi.URLParam(r, "direction"))
	h.withSession(w, r, func(s *intake.Session) error {
		_, err := s.Form.AddSegment(dir)
		return err
	})
}

// UpdateSegment handles PUT /v1/intake/{sessionId}/segments/{direction}/{index}.
func (h *IntakeHandler) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	index, ok := segmentIndex(w, r)
	if !ok {
		return
	}
	var req models.Segment
	if !decode(w, r, &req) {
		return
	}
	dir := travel.Direction(chi.URLParam(r, "direction"))
	h.withSession(w, r, func(s *intake.Session) error {
		return s.Form.UpdateSegment(dir, index, toSegment(req))
	})
}

// RemoveSegment handles DELETE /v1/intake/{sessionId}/segments/{direction}/{index}.
func (h *IntakeHandler) RemoveSegment(w http.ResponseWriter, r *http.Request) {
	index, ok := segmentIndex(w, r)
	if !ok {
		return
	}
	dir := travel.Direction(chi.URLParam(r, "direction"))
	h.withSession(w, r, func(s *intake.Session) error {
		return s.Form.RemoveSegment(dir, index)
	})
}

// Next handles POST /v1/intake/{sessionId}/next.
func (h *IntakeHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *intake.Session) error { return s.Form.Next() })
}

// Back handles POST /v1/intake/{sessionId}/back.
func (h *IntakeHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *intake.Session) error { return s.Form.Back() })
}

// Submit handles POST /v1/intake/{sessionId}/submit. On a store failure the
// session stays in the failed step and the call can be repeated.
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	if _, err := h.sessions.Submit(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	sess, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, sessionBody(sess))
}

// SubmitNow handles POST /v1/events/{slug}/submissions, which stores a
// complete submission in one call.
func (h *IntakeHandler) SubmitNow(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if !decode(w, r, &req) {
		return
	}

	receipt, err := h.sessions.SubmitNow(r.Context(), chi.URLParam(r, "slug"), toSubmission(req.Submission), req.MirrorReturn)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, "", receiptBody(receipt))
}

func (h *IntakeHandler) withSession(w http.ResponseWriter, r *http.Request, apply func(*intake.Session) error) {
	sess, err := h.sessions.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := apply(sess); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, sessionBody(sess))
}

func segmentIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.BadRequest(w, r, "segment index must be an integer", []models.FieldError{
			{Field: "index", Message: "must be an integer", Code: travel.CodeInvalid},
		})
		return 0, false
	}
	return index, true
}

func sessionBody(s *intake.Session) models.IntakeSession {
	st := s.Form.State()
	body := models.IntakeSession{
		ID:           s.ID,
		EventSlug:    s.EventSlug,
		Step:         st.Step.String(),
		MirrorReturn: st.Mirror,
		Submission:   fromSubmission(st.Submission),
		Errors:       fieldErrors(st.Errors),
		ExpiresAt:    models.Timestamp(s.ExpiresAt()),
	}
	if st.LastError != nil {
		body.LastError = st.LastError.Error()
	}
	if st.Receipt != nil {
		rb := receiptBody(st.Receipt)
		body.Receipt = &rb
	}
	return body
}

func receiptBody(r *intake.Receipt) models.Receipt {
	return models.Receipt{
		SubmissionID:     r.SubmissionID,
		EventSlug:        r.EventSlug,
		TotalFootprintKg: r.TotalFootprintKg,
		Segments:         mapSegments(r.Segments, fromSegmentRecord),
	}
}
