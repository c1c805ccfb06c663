// Package notify publishes submission events for asynchronous consumers.
package notify

import (
	"time"

	"github.com/eventfootprint/eventfootprint/internal/intake"
)

// Message types.
const (
	TypeSubmissionCompleted = "submission_completed"
	TypeReportRequested     = "report_requested"
)

// Message is the JSON payload published on the submissions topic.
type Message struct {
	Type         string    `json:"type"`
	EventSlug    string    `json:"event_slug"`
	EventID      string    `json:"event_id,omitempty"`
	SubmissionID string    `json:"submission_id,omitempty"`
	UserType     string    `json:"user_type,omitempty"`
	Segments     int       `json:"segments,omitempty"`
	FootprintKg  float64   `json:"footprint_kg,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// FromReceipt builds the message announcing a stored submission.
func FromReceipt(r *intake.Receipt, at time.Time) Message {
	return Message{
		Type:         TypeSubmissionCompleted,
		EventSlug:    r.EventSlug,
		EventID:      r.EventID,
		SubmissionID: r.SubmissionID,
		UserType:     string(r.Submission.UserType),
		Segments:     len(r.Segments),
		FootprintKg:  r.TotalFootprintKg,
		OccurredAt:   at.UTC(),
	}
}
