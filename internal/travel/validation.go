package travel

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Field error codes.
const (
	CodeRequired = "REQUIRED"
	CodeInvalid  = "INVALID"
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationError carries every invalid field of an input. It is reported
// inline and never ends a session.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the invalid fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

const msgBlank = "cannot be blank"

var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New(msgBlank)
	}
	return nil
})

func oneOf[T any](values []T) validation.Rule {
	elems := make([]interface{}, len(values))
	for i, v := range values {
		elems[i] = v
	}
	return validation.In(elems...)
}

// detailRules requires a non-blank detail when needed is true.
func detailRules(needed bool) []validation.Rule {
	if !needed {
		return nil
	}
	return []validation.Rule{notBlank}
}

// ValidateUserType checks the attendee category and its detail.
func ValidateUserType(u UserType, details string, policy OtherPolicy) []FieldError {
	err := validation.Errors{
		"userType":             validation.Validate(u, validation.Required, oneOf(UserTypes)),
		"otherUserTypeDetails": validation.Validate(details, detailRules(policy.UserTypeNeedsDetails(u))...),
	}.Filter()
	return FieldErrorsFrom(err)
}

// ValidateSegment checks one segment. Field names are relative to the segment.
func ValidateSegment(seg Segment, policy OtherPolicy) []FieldError {
	var vanRules, truckRules []validation.Rule
	if seg.VehicleType == VehicleVan {
		vanRules = []validation.Rule{validation.Required, oneOf(VanSizes)}
	}
	if seg.VehicleType == VehicleTruck {
		truckRules = []validation.Rule{validation.Required, oneOf(TruckSizes)}
	}

	err := validation.ValidateStruct(&seg,
		validation.Field(&seg.VehicleType, validation.Required, oneOf(VehicleTypes)),
		validation.Field(&seg.OtherVehicleTypeDetails, detailRules(policy.VehicleNeedsDetails(seg.VehicleType))...),
		validation.Field(&seg.FuelType, oneOf(FuelTypes)),
		validation.Field(&seg.FuelTypeOtherDetails, detailRules(policy.FuelNeedsDetails(seg.FuelType))...),
		validation.Field(&seg.Passengers, validation.Min(1)),
		validation.Field(&seg.NumberOfVehicles, validation.Min(1)),
		validation.Field(&seg.VanSize, vanRules...),
		validation.Field(&seg.TruckSize, truckRules...),
		validation.Field(&seg.Date, validation.Date(DateLayout)),
		validation.Field(&seg.Origin, notBlank),
		validation.Field(&seg.Destination, notBlank),
		validation.Field(&seg.Distance, validation.Min(0.0)),
		validation.Field(&seg.Frequency, validation.Min(1)),
	)
	return FieldErrorsFrom(err)
}

// ValidateSegments checks both segment lists. Each list must be non-empty.
func ValidateSegments(sub Submission, policy OtherPolicy) []FieldError {
	var out []FieldError
	for _, dir := range []Direction{Outbound, Return} {
		segs := sub.Segments(dir)
		if len(segs) == 0 {
			out = append(out, FieldError{Field: string(dir), Code: CodeRequired, Message: "at least one segment is required"})
			continue
		}
		for i, seg := range segs {
			prefix := fmt.Sprintf("%s[%d].", dir, i)
			for _, fe := range ValidateSegment(seg, policy) {
				fe.Field = prefix + fe.Field
				out = append(out, fe)
			}
		}
	}
	return out
}

// ValidateAccommodation checks the hotel night count.
func ValidateAccommodation(hotelNights int) []FieldError {
	if hotelNights < 0 {
		return []FieldError{{Field: "hotelNights", Code: CodeInvalid, Message: "must be no less than 0"}}
	}
	return nil
}

// ValidateSubmission checks every field of a submission and returns a
// *ValidationError, or nil when the submission is complete.
func ValidateSubmission(sub Submission, policy OtherPolicy) error {
	var fields []FieldError
	fields = append(fields, ValidateUserType(sub.UserType, sub.OtherUserTypeDetails, policy)...)
	fields = append(fields, ValidateSegments(sub, policy)...)
	fields = append(fields, ValidateAccommodation(sub.HotelNights)...)
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// FieldErrorsFrom flattens an ozzo validation error into field errors
// sorted by name.
func FieldErrorsFrom(err error) []FieldError {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return []FieldError{{Code: CodeInvalid, Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(errs))
	for name, e := range errs {
		if e == nil {
			continue
		}
		code := CodeInvalid
		if e.Error() == msgBlank {
			code = CodeRequired
		}
		out = append(out, FieldError{Field: lowerFirst(name), Code: code, Message: e.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
