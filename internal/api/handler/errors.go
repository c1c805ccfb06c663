package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eventfootprint/eventfootprint/internal/api/models"
	"github.com/eventfootprint/eventfootprint/internal/api/response"
	"github.com/eventfootprint/eventfootprint/internal/intake"
	"github.com/eventfootprint/eventfootprint/internal/resilience"
	"github.com/eventfootprint/eventfootprint/internal/submission"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// Retry-After hints, in seconds, for 503 responses.
const (
	retryAfterTransient   = 2
	retryAfterCircuitOpen = 30
)

// writeError maps domain errors to problem responses. Unknown errors are
// logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	var verr *travel.ValidationError
	var perr *submission.PersistenceError

	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, r, verr.Error(), fieldErrors(verr.Fields))

	case errors.Is(err, submission.ErrEventNotFound):
		response.NotFound(w, r, "event not found")
	case errors.Is(err, submission.ErrSubmissionNotFound):
		response.NotFound(w, r, "submission not found")
	case errors.Is(err, intake.ErrSessionNotFound):
		response.NotFound(w, r, "intake session not found or expired")
	case errors.Is(err, intake.ErrIndexOutOfRange):
		response.NotFound(w, r, err.Error())

	case errors.Is(err, intake.ErrInvalidDirection):
		response.BadRequest(w, r, err.Error(), []models.FieldError{{Field: "direction", Message: err.Error(), Code: travel.CodeInvalid}})

	case errors.Is(err, submission.ErrForbidden):
		response.Forbidden(w, r, err.Error())

	case errors.Is(err, intake.ErrSubmitInFlight),
		errors.Is(err, intake.ErrAlreadySubmitted),
		errors.Is(err, intake.ErrInvalidTransition),
		errors.Is(err, intake.ErrLastSegment),
		errors.Is(err, intake.ErrMirrorActive),
		errors.Is(err, submission.ErrDuplicateSlug):
		response.Conflict(w, r, err.Error())

	case errors.Is(err, resilience.ErrCircuitOpen):
		response.ServiceUnavailable(w, r, "storage is temporarily unavailable, please retry", retryAfterCircuitOpen)
	case errors.As(err, &perr):
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("store call failed")
		response.ServiceUnavailable(w, r, "storage is temporarily unavailable, please retry", retryAfterTransient)

	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}

func fieldErrors(in []travel.FieldError) []models.FieldError {
	out := make([]models.FieldError, len(in))
	for i, f := range in {
		out[i] = models.FieldError{Field: f.Field, Message: f.Message, Code: f.Code}
	}
	return out
}

// decode reads the request body and writes a 400 when it is not valid JSON.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := response.Decode(r, v); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return false
	}
	return true
}
