package intake

import (
	"time"

	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// Defaults describes the segment appended by AddSegment. Return segments
// use the same values with origin and destination swapped.
type Defaults struct {
	Segment travel.Segment

	// Today supplies the date of new segments when Segment.Date is empty.
	Today func() time.Time
}

// StandardDefaults returns a diesel car for one traveller over 500 km.
func StandardDefaults() Defaults {
	return Defaults{
		Segment: travel.Segment{
			VehicleType:      travel.VehicleCar,
			FuelType:         travel.FuelDiesel,
			Passengers:       1,
			NumberOfVehicles: 1,
			Origin:           "Madrid",
			Destination:      "Pontevedra",
			Distance:         500,
			Frequency:        1,
		},
		Today: time.Now,
	}
}

func (d Defaults) segment(dir travel.Direction) travel.Segment {
	seg := d.Segment
	if seg.Date == "" && d.Today != nil {
		seg.Date = d.Today().Format(travel.DateLayout)
	}
	if dir == travel.Return {
		seg.Origin, seg.Destination = seg.Destination, seg.Origin
	}
	return seg
}
