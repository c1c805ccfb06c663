package models

// Segment is one leg of a journey as entered by an attendee.
type Segment struct {
	VehicleType             string  `json:"vehicleType"`
	OtherVehicleTypeDetails string  `json:"otherVehicleTypeDetails,omitempty"`
	FuelType                string  `json:"fuelType,omitempty"`
	FuelTypeOtherDetails    string  `json:"fuelTypeOtherDetails,omitempty"`
	Passengers              int     `json:"passengers,omitempty"`
	NumberOfVehicles        int     `json:"numberOfVehicles,omitempty"`
	VanSize                 string  `json:"vanSize,omitempty"`
	TruckSize               string  `json:"truckSize,omitempty"`
	CarbonCompensated       bool    `json:"carbonCompensated"`
	Date                    string  `json:"date,omitempty"`
	Origin                  string  `json:"origin"`
	Destination             string  `json:"destination"`
	Distance                float64 `json:"distance"`
	ReturnTrip              bool    `json:"returnTrip"`
	Frequency               int     `json:"frequency,omitempty"`
}

// SegmentRecord is a stored segment with its computed footprint.
type SegmentRecord struct {
	Segment
	Direction   string  `json:"direction"`
	Order       int     `json:"segmentOrder"`
	FootprintKg float64 `json:"calculatedCarbonFootprint"`
}

// Submission is a complete travel answer.
type Submission struct {
	UserType             string    `json:"userType"`
	OtherUserTypeDetails string    `json:"otherUserTypeDetails,omitempty"`
	OutboundSegments     []Segment `json:"outboundSegments"`
	ReturnSegments       []Segment `json:"returnSegments"`
	HotelNights          int       `json:"hotelNights"`
	Comments             string    `json:"comments,omitempty"`
}

// SubmitRequest is the body of POST /v1/events/{slug}/submissions.
type SubmitRequest struct {
	Submission
	MirrorReturn bool `json:"mirrorReturn"`
}

// IntakeSession is the state of an intake form.
type IntakeSession struct {
	ID           string       `json:"id"`
	EventSlug    string       `json:"eventSlug"`
	Step         string       `json:"step"`
	MirrorReturn bool         `json:"mirrorReturn"`
	Submission   Submission   `json:"submission"`
	Errors       []FieldError `json:"errors,omitempty"`
	LastError    string       `json:"lastError,omitempty"`
	Receipt      *Receipt     `json:"receipt,omitempty"`
	ExpiresAt    Timestamp    `json:"expiresAt"`
}

// Receipt summarizes a stored submission.
type Receipt struct {
	SubmissionID     string          `json:"submissionId"`
	EventSlug        string          `json:"eventSlug"`
	TotalFootprintKg float64         `json:"totalFootprintKg"`
	Segments         []SegmentRecord `json:"segments"`
}

// UserTypeRequest is the body of PUT .../user-type.
type UserTypeRequest struct {
	UserType             string `json:"userType"`
	OtherUserTypeDetails string `json:"otherUserTypeDetails"`
}

// AccommodationRequest is the body of PUT .../accommodation.
type AccommodationRequest struct {
	HotelNights int `json:"hotelNights"`
}

// CommentsRequest is the body of PUT .../comments.
type CommentsRequest struct {
	Comments string `json:"comments"`
}

// MirrorRequest is the body of PUT .../mirror.
type MirrorRequest struct {
	Enabled bool `json:"enabled"`
}
