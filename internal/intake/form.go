// Package intake runs the multi-step travel questionnaire: it holds the
// draft submission of one attendee, enforces the step order, derives the
// mirrored return trip and hands the finished submission to the store.
package intake

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/eventfootprint/eventfootprint/internal/footprint"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// Form errors.
var (
	ErrInvalidTransition = errors.New("transition not allowed from the current step")
	ErrSubmitInFlight    = errors.New("a submit is already in progress")
	ErrAlreadySubmitted  = errors.New("form already submitted")
	ErrLastSegment       = errors.New("at least one segment is required")
	ErrIndexOutOfRange   = errors.New("segment index out of range")
	ErrMirrorActive      = errors.New("return segments are derived while mirroring is enabled")
	ErrInvalidDirection  = errors.New("direction must be outbound or return")
)

// Step is a position in the questionnaire.
type Step int

// Steps in order.
const (
	StepUserType Step = iota + 1
	StepSegments
	StepAccommodation
	StepComments
	StepSubmitting
	StepComplete
	StepFailed
)

var stepNames = map[Step]string{
	StepUserType:      "user_type_selection",
	StepSegments:      "segment_entry",
	StepAccommodation: "accommodation",
	StepComments:      "comments",
	StepSubmitting:    "submitting",
	StepComplete:      "complete",
	StepFailed:        "failed",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

// Config holds the settings shared by every form.
type Config struct {
	Policy     travel.OtherPolicy
	Defaults   Defaults
	Calculator *footprint.Calculator
}

func (c Config) withDefaults() Config {
	if c.Defaults.Segment.VehicleType == "" {
		c.Defaults = StandardDefaults()
	}
	if c.Calculator == nil {
		c.Calculator = footprint.NewCalculator(footprint.DefaultFactors())
	}
	return c
}

// State is a snapshot of a form.
type State struct {
	EventSlug  string
	Step       Step
	Submission travel.Submission
	Mirror     bool
	Errors     []travel.FieldError
	Receipt    *Receipt
	LastError  error
}

// Form is the state machine of one questionnaire. It is safe for concurrent
// use; a second Submit while one is in flight fails with ErrSubmitInFlight.
type Form struct {
	mu        sync.Mutex
	cfg       Config
	eventSlug string
	step      Step
	draft     travel.Submission
	mirror    bool
	errs      []travel.FieldError
	receipt   *Receipt
	lastErr   error
}

// NewForm starts a questionnaire for an event with one default segment in
// each direction.
func NewForm(eventSlug string, cfg Config) *Form {
	cfg = cfg.withDefaults()
	return &Form{
		cfg:       cfg,
		eventSlug: eventSlug,
		step:      StepUserType,
		draft: travel.Submission{
			Outbound: []travel.Segment{cfg.Defaults.segment(travel.Outbound)},
			Return:   []travel.Segment{cfg.Defaults.segment(travel.Return)},
		},
	}
}

// NewFormFromSubmission builds a form already filled with sub and positioned
// on the last step, ready to submit. Hidden detail fields are cleared and,
// with mirror set, the return list is derived from the outbound list.
func NewFormFromSubmission(eventSlug string, cfg Config, sub travel.Submission, mirror bool) *Form {
	cfg = cfg.withDefaults()
	f := &Form{
		cfg:       cfg,
		eventSlug: eventSlug,
		step:      StepComments,
		mirror:    mirror,
	}

	draft := sub.Clone()
	draft.OtherUserTypeDetails = cfg.Policy.NormalizeUserDetails(draft.UserType, draft.OtherUserTypeDetails)
	for i := range draft.Outbound {
		draft.Outbound[i] = cfg.Policy.Normalize(draft.Outbound[i])
	}
	for i := range draft.Return {
		draft.Return[i] = cfg.Policy.Normalize(draft.Return[i])
	}
	f.draft = draft
	if mirror {
		f.draft.Return = MirrorSegments(f.draft.Outbound)
	}
	return f
}

// State returns a snapshot of the form.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return State{
		EventSlug:  f.eventSlug,
		Step:       f.step,
		Submission: f.draft.Clone(),
		Mirror:     f.mirror,
		Errors:     append([]travel.FieldError(nil), f.errs...),
		Receipt:    f.receipt,
		LastError:  f.lastErr,
	}
}

// Step returns the current step.
func (f *Form) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// editable reports why the draft cannot be changed, if it cannot.
// Callers hold f.mu.
func (f *Form) editable() error {
	switch f.step {
	case StepSubmitting:
		return ErrSubmitInFlight
	case StepComplete:
		return ErrAlreadySubmitted
	default:
		return nil
	}
}

// SetUserType sets the attendee category. The detail is kept only for
// "other".
func (f *Form) SetUserType(u travel.UserType, details string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editable(); err != nil {
		return err
	}

	f.draft.UserType = u
	f.draft.OtherUserTypeDetails = f.cfg.Policy.NormalizeUserDetails(u, details)
	if !f.cfg.Policy.UserTypeNeedsDetails(u) {
		f.dropErrors("otherUserTypeDetails")
	}
	return nil
}

// SetHotelNights sets the accommodation answer.
func (f *Form) SetHotelNights(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editable(); err != nil {
		return err
	}
	f.draft.HotelNights = n
	return nil
}

// SetComments sets the free-text comments.
func (f *Form) SetComments(comments string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editable(); err != nil {
		return err
	}
	f.draft.Comments = comments
	return nil
}

// AddSegment appends a default segment to a list and returns its index.
func (f *Form) AddSegment(dir travel.Direction) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkList(dir); err != nil {
		return 0, err
	}

	segs := f.list(dir)
	*segs = append(*segs, f.cfg.Defaults.segment(dir))
	f.listChanged(dir)
	return len(*segs) - 1, nil
}

// UpdateSegment replaces a segment. Detail and size fields that no longer
// apply to the new vehicle or fuel are cleared.
func (f *Form) UpdateSegment(dir travel.Direction, index int, seg travel.Segment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkList(dir); err != nil {
		return err
	}
	segs := f.list(dir)
	if index < 0 || index >= len(*segs) {
		return ErrIndexOutOfRange
	}

	normalized := f.cfg.Policy.Normalize(seg)
	prefix := segmentPath(dir, index)
	if !f.cfg.Policy.VehicleNeedsDetails(normalized.VehicleType) {
		f.dropErrors(prefix + "otherVehicleTypeDetails")
	}
	if !f.cfg.Policy.FuelNeedsDetails(normalized.FuelType) {
		f.dropErrors(prefix + "fuelTypeOtherDetails")
	}
	if normalized.VehicleType != travel.VehicleVan {
		f.dropErrors(prefix + "vanSize")
	}
	if normalized.VehicleType != travel.VehicleTruck {
		f.dropErrors(prefix + "truckSize")
	}

	(*segs)[index] = normalized
	if dir == travel.Outbound && f.mirror {
		f.rederive()
	}
	return nil
}

// RemoveSegment deletes a segment. The last segment of a list cannot be removed.
func (f *Form) RemoveSegment(dir travel.Direction, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkList(dir); err != nil {
		return err
	}
	segs := f.list(dir)
	if index < 0 || index >= len(*segs) {
		return ErrIndexOutOfRange
	}
	if len(*segs) == 1 {
		return ErrLastSegment
	}

	*segs = append((*segs)[:index], (*segs)[index+1:]...)
	f.listChanged(dir)
	return nil
}

// SetMirror turns return-trip mirroring on or off. Turning it on replaces the
// return list with the mirror of the outbound list. Turning it off keeps the
// derived list as an editable starting point.
func (f *Form) SetMirror(enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editable(); err != nil {
		return err
	}

	f.mirror = enabled
	f.dropErrorsWithPrefix(string(travel.Return))
	if enabled {
		f.rederive()
		return nil
	}
	if len(f.draft.Return) == 0 {
		f.draft.Return = []travel.Segment{f.cfg.Defaults.segment(travel.Return)}
	}
	return nil
}

// Next validates the current step and moves to the following one. The
// comments step is left with Submit.
func (f *Form) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var fields []travel.FieldError
	var next Step
	switch f.step {
	case StepUserType:
		fields = travel.ValidateUserType(f.draft.UserType, f.draft.OtherUserTypeDetails, f.cfg.Policy)
		next = StepSegments
	case StepSegments:
		fields = travel.ValidateSegments(f.draft, f.cfg.Policy)
		next = StepAccommodation
	case StepAccommodation:
		fields = travel.ValidateAccommodation(f.draft.HotelNights)
		next = StepComments
	case StepSubmitting:
		return ErrSubmitInFlight
	default:
		return ErrInvalidTransition
	}

	if len(fields) > 0 {
		f.errs = fields
		return &travel.ValidationError{Fields: fields}
	}
	f.errs = nil
	f.step = next
	return nil
}

// Back returns to the previous step. A failed submit goes back to comments.
func (f *Form) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepSegments:
		f.step = StepUserType
	case StepAccommodation:
		f.step = StepSegments
	case StepComments:
		f.step = StepAccommodation
	case StepFailed:
		f.step = StepComments
	case StepSubmitting:
		return ErrSubmitInFlight
	default:
		return ErrInvalidTransition
	}
	return nil
}

// checkList rejects edits of an unknown list and of the derived return list.
// Callers hold f.mu.
func (f *Form) checkList(dir travel.Direction) error {
	if err := f.editable(); err != nil {
		return err
	}
	if !dir.Valid() {
		return ErrInvalidDirection
	}
	if dir == travel.Return && f.mirror {
		return ErrMirrorActive
	}
	return nil
}

func segmentPath(dir travel.Direction, index int) string {
	return fmt.Sprintf("%s[%d].", dir, index)
}

func (f *Form) list(dir travel.Direction) *[]travel.Segment {
	if dir == travel.Return {
		return &f.draft.Return
	}
	return &f.draft.Outbound
}

// listChanged runs after a segment is added or removed. Indexes shift, so
// errors of that list are dropped.
func (f *Form) listChanged(dir travel.Direction) {
	f.dropErrorsWithPrefix(string(dir))
	if dir == travel.Outbound && f.mirror {
		f.rederive()
	}
}

func (f *Form) rederive() {
	f.draft.Return = MirrorSegments(f.draft.Outbound)
	f.dropErrorsWithPrefix(string(travel.Return))
}

func (f *Form) dropErrors(field string) {
	kept := f.errs[:0]
	for _, e := range f.errs {
		if e.Field != field {
			kept = append(kept, e)
		}
	}
	f.errs = kept
}

func (f *Form) dropErrorsWithPrefix(prefix string) {
	kept := f.errs[:0]
	for _, e := range f.errs {
		if !strings.HasPrefix(e.Field, prefix) {
			kept = append(kept, e)
		}
	}
	f.errs = kept
}
