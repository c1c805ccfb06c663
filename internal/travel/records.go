package travel

import "time"

// Event is a gathering attendees travel to.
type Event struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time
	IsActive    bool
	CreatedAt   time.Time
}

// SubmissionRecord is a persisted submission header.
type SubmissionRecord struct {
	ID                   string
	EventID              string
	UserType             UserType
	OtherUserTypeDetails string
	HotelNights          int
	Comments             string
	CreatedAt            time.Time
}

// SegmentRecord is a persisted segment with its computed footprint.
type SegmentRecord struct {
	ID                      string
	SubmissionID            string
	Direction               Direction
	Order                   int
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
	FootprintKg             float64
}

// Segment returns the travel leg described by the record.
func (r SegmentRecord) Segment() Segment {
	return Segment{
		VehicleType:             r.VehicleType,
		OtherVehicleTypeDetails: r.OtherVehicleTypeDetails,
		FuelType:                r.FuelType,
		FuelTypeOtherDetails:    r.FuelTypeOtherDetails,
		Passengers:              r.Passengers,
		NumberOfVehicles:        r.NumberOfVehicles,
		VanSize:                 r.VanSize,
		TruckSize:               r.TruckSize,
		CarbonCompensated:       r.CarbonCompensated,
		Date:                    r.Date,
		Origin:                  r.Origin,
		Destination:             r.Destination,
		Distance:                r.Distance,
		ReturnTrip:              r.ReturnTrip,
		Frequency:               r.Frequency,
	}
}

// WithCountDefaults returns r with passengers, vehicle count and frequency
// raised to 1 when they were left unset. The calculator already reads an
// unset count as 1, so the stored footprint does not change.
func (r SegmentRecord) WithCountDefaults() SegmentRecord {
	r.Passengers = max(r.Passengers, 1)
	r.NumberOfVehicles = max(r.NumberOfVehicles, 1)
	r.Frequency = max(r.Frequency, 1)
	return r
}

// NewSegmentRecord builds the record stored for one segment.
func NewSegmentRecord(seg Segment, dir Direction, order int, footprintKg float64) SegmentRecord {
	rec := SegmentRecord{
		Direction:               dir,
		Order:                   order,
		VehicleType:             seg.VehicleType,
		OtherVehicleTypeDetails: seg.OtherVehicleTypeDetails,
		FuelType:                seg.FuelType,
		FuelTypeOtherDetails:    seg.FuelTypeOtherDetails,
		Passengers:              seg.Passengers,
		NumberOfVehicles:        seg.NumberOfVehicles,
		VanSize:                 seg.VanSize,
		TruckSize:               seg.TruckSize,
		CarbonCompensated:       seg.CarbonCompensated,
		Date:                    seg.Date,
		Origin:                  seg.Origin,
		Destination:             seg.Destination,
		Distance:                seg.Distance,
		ReturnTrip:              seg.ReturnTrip,
		Frequency:               seg.Frequency,
		FootprintKg:             footprintKg,
	}
	return rec.WithCountDefaults()
}

// SubmissionWithSegments is a submission joined with its stored segments.
type SubmissionWithSegments struct {
	Submission SubmissionRecord
	Segments   []SegmentRecord
}
