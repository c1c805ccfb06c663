package travel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventfootprint/eventfootprint/internal/travel"
)

func TestNewSegmentRecord_DefaultsUnsetCounts(t *testing.T) {
	rec := travel.NewSegmentRecord(travel.Segment{
		VehicleType: travel.VehicleBus,
		Origin:      "Ourense",
		Destination: "Santiago",
		Distance:    110,
	}, travel.Return, 3, 4.2)

	assert.Equal(t, 1, rec.Passengers)
	assert.Equal(t, 1, rec.NumberOfVehicles)
	assert.Equal(t, 1, rec.Frequency)
	assert.Equal(t, 3, rec.Order)
	assert.Equal(t, travel.Return, rec.Direction)
	assert.Equal(t, 4.2, rec.FootprintKg)
}

func TestSegmentRecord_WithCountDefaultsKeepsSetCounts(t *testing.T) {
	rec := travel.SegmentRecord{Passengers: 4, NumberOfVehicles: 2, Frequency: 10}

	assert.Equal(t, rec, rec.WithCountDefaults())
}
