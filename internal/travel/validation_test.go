package travel_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfootprint/eventfootprint/internal/travel"
)

func validSegment() travel.Segment {
	return travel.Segment{
		VehicleType:      travel.VehicleCar,
		FuelType:         travel.FuelDiesel,
		Passengers:       1,
		NumberOfVehicles: 1,
		Date:             "2024-05-01",
		Origin:           "Madrid",
		Destination:      "Pontevedra",
		Distance:         500,
		Frequency:        1,
	}
}

func fields(errs []travel.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateSegment(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*travel.Segment)
		want   []string
	}{
		{"valid", func(*travel.Segment) {}, nil},
		{"missing vehicle", func(s *travel.Segment) { s.VehicleType = "" }, []string{"vehicleType"}},
		{"unknown vehicle", func(s *travel.Segment) { s.VehicleType = "rocket" }, []string{"vehicleType"}},
		{"other vehicle without details", func(s *travel.Segment) { s.VehicleType = travel.VehicleOther }, []string{"otherVehicleTypeDetails"}},
		{"other fuel with blank details", func(s *travel.Segment) {
			s.FuelType = travel.FuelOther
			s.FuelTypeOtherDetails = "   "
		}, []string{"fuelTypeOtherDetails"}},
		{"unknown fuel needs nothing", func(s *travel.Segment) { s.FuelType = travel.FuelUnknown }, nil},
		{"van without size", func(s *travel.Segment) { s.VehicleType = travel.VehicleVan }, []string{"vanSize"}},
		{"van with truck size", func(s *travel.Segment) {
			s.VehicleType = travel.VehicleVan
			s.VanSize = travel.Size34To40t
		}, []string{"vanSize"}},
		{"truck without size", func(s *travel.Segment) { s.VehicleType = travel.VehicleTruck }, []string{"truckSize"}},
		{"blank endpoints", func(s *travel.Segment) {
			s.Origin = " "
			s.Destination = ""
		}, []string{"destination", "origin"}},
		{"negative distance", func(s *travel.Segment) { s.Distance = -1 }, []string{"distance"}},
		{"negative counts", func(s *travel.Segment) {
			s.Passengers = -1
			s.NumberOfVehicles = -2
			s.Frequency = -3
		}, []string{"frequency", "numberOfVehicles", "passengers"}},
		{"bad date", func(s *travel.Segment) { s.Date = "01/05/2024" }, []string{"date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := validSegment()
			tt.mutate(&seg)
			got := travel.ValidateSegment(seg, travel.OtherPolicy{})
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, fields(got))
		})
	}
}

func TestValidateSegment_UnknownFuelPolicy(t *testing.T) {
	seg := validSegment()
	seg.FuelType = travel.FuelUnknown

	got := travel.ValidateSegment(seg, travel.OtherPolicy{FuelUnknownRequiresDetails: true})

	require.Len(t, got, 1)
	assert.Equal(t, "fuelTypeOtherDetails", got[0].Field)
	assert.Equal(t, travel.CodeRequired, got[0].Code)
}

func TestValidateSubmission(t *testing.T) {
	sub := travel.Submission{
		UserType:    travel.UserOther,
		Outbound:    []travel.Segment{validSegment(), {VehicleType: travel.VehicleTrain, Origin: "A"}},
		Return:      nil,
		HotelNights: -1,
	}

	err := travel.ValidateSubmission(sub, travel.OtherPolicy{})

	var verr *travel.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("otherUserTypeDetails"))
	assert.True(t, verr.Has("outbound[1].destination"))
	assert.True(t, verr.Has("return"))
	assert.True(t, verr.Has("hotelNights"))
	assert.False(t, verr.Has("outbound[0].origin"))
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateSubmission_Valid(t *testing.T) {
	sub := travel.Submission{
		UserType: travel.UserParticipant,
		Outbound: []travel.Segment{validSegment()},
		Return:   []travel.Segment{validSegment()},
	}

	assert.NoError(t, travel.ValidateSubmission(sub, travel.OtherPolicy{}))
}
