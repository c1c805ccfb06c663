package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventfootprint/eventfootprint/internal/footprint"
	"github.com/eventfootprint/eventfootprint/internal/submission"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// Receipt is the summary of a stored submission.
type Receipt struct {
	SubmissionID     string
	EventID          string
	EventSlug        string
	Submission       travel.Submission
	Segments         []travel.SegmentRecord
	TotalFootprintKg float64
}

// BuildSegmentRecords computes the footprint of every segment and numbers
// them from 0, outbound first, return continuing.
func BuildSegmentRecords(sub travel.Submission, calc *footprint.Calculator) ([]travel.SegmentRecord, float64) {
	records := make([]travel.SegmentRecord, 0, len(sub.Outbound)+len(sub.Return))
	var total float64

	for i, seg := range sub.Outbound {
		kg := calc.Compute(seg)
		total += kg
		records = append(records, travel.NewSegmentRecord(seg, travel.Outbound, i, kg))
	}
	for i, seg := range sub.Return {
		kg := calc.Compute(seg)
		total += kg
		records = append(records, travel.NewSegmentRecord(seg, travel.Return, len(sub.Outbound)+i, kg))
	}

	return records, total
}

// Submit validates the whole draft and stores it. It is allowed from the
// comments step and after a failed attempt.
//
// Validation failures leave the step unchanged. Store failures move the form
// to StepFailed with the draft intact, so Submit can be called again.
func (f *Form) Submit(ctx context.Context, store submission.Store) (*Receipt, error) {
	f.mu.Lock()
	switch f.step {
	case StepComments, StepFailed:
	case StepSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StepComplete:
		f.mu.Unlock()
		return nil, ErrAlreadySubmitted
	default:
		f.mu.Unlock()
		return nil, ErrInvalidTransition
	}

	if err := travel.ValidateSubmission(f.draft, f.cfg.Policy); err != nil {
		var verr *travel.ValidationError
		if errors.As(err, &verr) {
			f.errs = verr.Fields
		}
		f.mu.Unlock()
		return nil, err
	}

	draft := f.draft.Clone()
	slug := f.eventSlug
	f.errs = nil
	f.step = StepSubmitting
	f.mu.Unlock()

	receipt, err := f.persist(ctx, store, slug, draft)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.step = StepFailed
		f.lastErr = err
		return nil, err
	}
	f.step = StepComplete
	f.lastErr = nil
	f.receipt = receipt
	return receipt, nil
}

func (f *Form) persist(ctx context.Context, store submission.Store, slug string, draft travel.Submission) (*Receipt, error) {
	event, err := store.GetEventByIdentifier(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("resolve event: %w", err)
	}

	records, total := BuildSegmentRecords(draft, f.cfg.Calculator)

	id, err := store.CreateSubmission(ctx, travel.SubmissionRecord{
		EventID:              event.ID,
		UserType:             draft.UserType,
		OtherUserTypeDetails: f.cfg.Policy.NormalizeUserDetails(draft.UserType, draft.OtherUserTypeDetails),
		HotelNights:          draft.HotelNights,
		Comments:             draft.Comments,
	})
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	if err := store.CreateSegments(ctx, id, records); err != nil {
		return nil, fmt.Errorf("create segments: %w", err)
	}

	for i := range records {
		records[i].SubmissionID = id
	}

	return &Receipt{
		SubmissionID:     id,
		EventID:          event.ID,
		EventSlug:        event.Slug,
		Submission:       draft,
		Segments:         records,
		TotalFootprintKg: total,
	}, nil
}
