package travel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventfootprint/eventfootprint/internal/travel"
)

func TestOtherPolicy_FuelNeedsDetails(t *testing.T) {
	var strict travel.OtherPolicy
	strict.FuelUnknownRequiresDetails = true

	assert.True(t, travel.OtherPolicy{}.FuelNeedsDetails(travel.FuelOther))
	assert.False(t, travel.OtherPolicy{}.FuelNeedsDetails(travel.FuelUnknown))
	assert.True(t, strict.FuelNeedsDetails(travel.FuelUnknown))
	assert.False(t, strict.FuelNeedsDetails(travel.FuelDiesel))
}

func TestOtherPolicy_Normalize(t *testing.T) {
	seg := travel.Segment{
		VehicleType:             travel.VehicleCar,
		OtherVehicleTypeDetails: "tuk-tuk",
		FuelType:                travel.FuelDiesel,
		FuelTypeOtherDetails:    "biogas",
		VanSize:                 travel.SizeUpTo7_5t,
		TruckSize:               travel.Size20To26t,
	}

	got := travel.OtherPolicy{}.Normalize(seg)

	assert.Empty(t, got.OtherVehicleTypeDetails)
	assert.Empty(t, got.FuelTypeOtherDetails)
	assert.Empty(t, got.VanSize)
	assert.Empty(t, got.TruckSize)
	assert.Equal(t, travel.FuelDiesel, got.FuelType)
}

func TestOtherPolicy_NormalizeKeepsRelevantDetails(t *testing.T) {
	seg := travel.Segment{
		VehicleType:             travel.VehicleOther,
		OtherVehicleTypeDetails: "ferry",
		FuelType:                travel.FuelOther,
		FuelTypeOtherDetails:    "LNG",
	}

	got := travel.OtherPolicy{}.Normalize(seg)

	assert.Equal(t, "ferry", got.OtherVehicleTypeDetails)
	assert.Equal(t, "LNG", got.FuelTypeOtherDetails)
}

func TestOtherPolicy_NormalizeDropsFuelOnUnpoweredVehicle(t *testing.T) {
	seg := travel.Segment{VehicleType: travel.VehicleBicycle, FuelType: travel.FuelOther, FuelTypeOtherDetails: "legs"}

	got := travel.OtherPolicy{}.Normalize(seg)

	assert.Empty(t, got.FuelType)
	assert.Empty(t, got.FuelTypeOtherDetails)
}

func TestOtherPolicy_NormalizeUserDetails(t *testing.T) {
	p := travel.OtherPolicy{}
	assert.Empty(t, p.NormalizeUserDetails(travel.UserStaff, "volunteer"))
	assert.Equal(t, "volunteer", p.NormalizeUserDetails(travel.UserOther, "volunteer"))
}

func TestSegment_ParsedDate(t *testing.T) {
	_, ok := travel.Segment{}.ParsedDate()
	assert.False(t, ok)

	_, ok = travel.Segment{Date: "31/12/2024"}.ParsedDate()
	assert.False(t, ok)

	d, ok := travel.Segment{Date: "2024-12-31"}.ParsedDate()
	assert.True(t, ok)
	assert.Equal(t, 31, d.Day())
}

func TestSubmission_CloneIsDeep(t *testing.T) {
	orig := travel.Submission{Outbound: []travel.Segment{{Origin: "A"}}}
	cp := orig.Clone()
	cp.Outbound[0].Origin = "B"

	assert.Equal(t, "A", orig.Outbound[0].Origin)
}
