package travel

import "time"

// DateLayout is the calendar-date format used for segment dates.
const DateLayout = "2006-01-02"

// Segment is one leg of a journey.
//
// Optional counts use zero for "not set": Passengers, NumberOfVehicles and
// Frequency are treated as 1 when they are zero.
type Segment struct {
	VehicleType             VehicleType
	OtherVehicleTypeDetails string
	FuelType                FuelType
	FuelTypeOtherDetails    string
	Passengers              int
	NumberOfVehicles        int
	VanSize                 SizeBracket
	TruckSize               SizeBracket
	CarbonCompensated       bool
	Date                    string
	Origin                  string
	Destination             string
	Distance                float64
	ReturnTrip              bool
	Frequency               int
}

// ParsedDate returns the segment date, and false when it is unset or malformed.
func (s Segment) ParsedDate() (time.Time, bool) {
	if s.Date == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Submission is the attendee's answer for one event before it is persisted.
type Submission struct {
	UserType             UserType
	OtherUserTypeDetails string
	Outbound             []Segment
	Return               []Segment
	HotelNights          int
	Comments             string
}

// Clone returns a deep copy of the submission.
func (s Submission) Clone() Submission {
	out := s
	out.Outbound = append([]Segment(nil), s.Outbound...)
	out.Return = append([]Segment(nil), s.Return...)
	return out
}

// Segments returns the list for the given direction.
func (s Submission) Segments(dir Direction) []Segment {
	if dir == Return {
		return s.Return
	}
	return s.Outbound
}
