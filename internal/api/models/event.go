package models

// Event is an event open for travel submissions.
type Event struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// EventList is the body of GET /v1/events.
type EventList struct {
	Items []Event `json:"items"`
}

// CreateEventRequest is the body of POST /v1/admin/events.
type CreateEventRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// ResultsStatus tells whether a results body carries a report.
type ResultsStatus string

const (
	ResultsStatusOK     ResultsStatus = "OK"
	ResultsStatusNoData ResultsStatus = "NO_DATA"
)

// EventResults is the body of GET /v1/events/{slug}/results.
type EventResults struct {
	Status    ResultsStatus `json:"status"`
	EventSlug string        `json:"eventSlug"`
	EventName string        `json:"eventName"`
	Report    *Report       `json:"report,omitempty"`
}

// Report is the aggregate of every submission of an event.
type Report struct {
	TotalFootprintKg  float64 `json:"totalFootprintKg"`
	TotalDistanceKm   float64 `json:"totalDistanceKm"`
	TotalHotelNights  int     `json:"totalHotelNights"`
	TotalParticipants int     `json:"totalParticipants"`
	CompensatedKg     float64 `json:"compensatedKg"`
	TreesNeeded       int     `json:"treesNeeded"`

	ByUserType      []Breakdown `json:"byUserType"`
	ByTransportType []Breakdown `json:"byTransportType"`
	ByFuelType      []Breakdown `json:"byFuelType"`
}

// Breakdown is one bucket of a grouped statistic. Key is the display form;
// Category and Detail keep the structured parts.
type Breakdown struct {
	Key          string  `json:"key"`
	Category     string  `json:"category"`
	Detail       string  `json:"detail,omitempty"`
	FootprintKg  float64 `json:"footprintKg"`
	DistanceKm   float64 `json:"distanceKm"`
	Trips        *int    `json:"trips,omitempty"`
	Participants *int    `json:"participants,omitempty"`
}

// SubmissionDump is one stored submission as shown to admins.
type SubmissionDump struct {
	ID                   string          `json:"id"`
	UserType             string          `json:"userType"`
	OtherUserTypeDetails string          `json:"otherUserTypeDetails,omitempty"`
	HotelNights          int             `json:"hotelNights"`
	Comments             string          `json:"comments,omitempty"`
	CreatedAt            Timestamp       `json:"createdAt"`
	Segments             []SegmentRecord `json:"segments"`
}

// EventDump is the body of GET /v1/admin/events/{slug}/submissions.
type EventDump struct {
	Event       Event            `json:"event"`
	Submissions []SubmissionDump `json:"submissions"`
}
