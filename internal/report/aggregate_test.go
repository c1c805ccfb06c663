package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfootprint/eventfootprint/internal/footprint"
	"github.com/eventfootprint/eventfootprint/internal/report"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

func carRecord(dir travel.Direction, order int) travel.SegmentRecord {
	seg := travel.Segment{
		VehicleType: travel.VehicleCar,
		FuelType:    travel.FuelDiesel,
		Passengers:  2,
		Distance:    500,
		Origin:      "Madrid",
		Destination: "Pontevedra",
	}
	return travel.NewSegmentRecord(seg, dir, order, footprint.Compute(seg))
}

func TestAggregate_EmptyIsNoData(t *testing.T) {
	res, err := report.Aggregate(nil)

	assert.ErrorIs(t, err, report.ErrNoData)
	assert.Nil(t, res)
}

func TestAggregate_CarRoundTripScenario(t *testing.T) {
	subs := []travel.SubmissionWithSegments{{
		Submission: travel.SubmissionRecord{UserType: travel.UserParticipant},
		Segments:   []travel.SegmentRecord{carRecord(travel.Outbound, 0), carRecord(travel.Return, 1)},
	}}
	f := footprint.DefaultFactors().Car[travel.FuelDiesel]

	res, err := report.Aggregate(subs)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, res.TotalDistanceKm)
	assert.InDelta(t, f*500, res.TotalFootprintKg, 1e-9)
	assert.Equal(t, 1, res.TotalParticipants)

	ut := res.ByUserType[report.Known("participant")]
	assert.Equal(t, 1, ut.Participants)
	assert.Equal(t, 1000.0, ut.DistanceKm)

	car := res.ByTransportType[report.Known("car")]
	assert.Equal(t, 2, car.Trips)
	assert.Equal(t, 2, res.ByFuelType[report.Known("diesel")].Trips)
}

func TestAggregate_OtherUserTypeUsesCompositeKey(t *testing.T) {
	subs := []travel.SubmissionWithSegments{
		{Submission: travel.SubmissionRecord{UserType: travel.UserOther, OtherUserTypeDetails: "volunteer"}},
		{Submission: travel.SubmissionRecord{UserType: travel.UserOther, OtherUserTypeDetails: "  "}},
	}

	res, err := report.Aggregate(subs)
	require.NoError(t, err)

	key := report.Other("other", "volunteer")
	assert.Equal(t, "other: volunteer", key.String())
	assert.Equal(t, 1, res.ByUserType[key].Participants)
	assert.Equal(t, 1, res.ByUserType[report.Known("other")].Participants)
	assert.NotContains(t, res.ByUserType, report.Known("volunteer"))
}

func TestAggregate_DelimiterInDetailDoesNotCollide(t *testing.T) {
	subs := []travel.SubmissionWithSegments{
		{Submission: travel.SubmissionRecord{UserType: travel.UserOther, OtherUserTypeDetails: "a: b"}},
		{Submission: travel.SubmissionRecord{UserType: travel.UserOther, OtherUserTypeDetails: "a"}},
	}

	res, err := report.Aggregate(subs)
	require.NoError(t, err)

	assert.Len(t, res.ByUserType, 2)
}

func TestAggregate_FuelBreakdown(t *testing.T) {
	walk := travel.NewSegmentRecord(travel.Segment{VehicleType: travel.VehicleWalking, Distance: 2}, travel.Outbound, 0, 0)
	lng := travel.NewSegmentRecord(travel.Segment{
		VehicleType:          travel.VehicleBus,
		FuelType:             travel.FuelOther,
		FuelTypeOtherDetails: "LNG",
		Distance:             80,
	}, travel.Return, 1, 12)
	unknown := travel.NewSegmentRecord(travel.Segment{
		VehicleType:          travel.VehicleCar,
		FuelType:             travel.FuelUnknown,
		FuelTypeOtherDetails: "rental",
		Distance:             10,
	}, travel.Return, 2, 1.7)

	subs := []travel.SubmissionWithSegments{{
		Submission: travel.SubmissionRecord{UserType: travel.UserStaff},
		Segments:   []travel.SegmentRecord{walk, lng, unknown},
	}}

	res, err := report.Aggregate(subs)
	require.NoError(t, err)

	assert.Len(t, res.ByFuelType, 2, "segments without fuel are skipped")
	assert.Equal(t, 12.0, res.ByFuelType[report.Other("other", "LNG")].FootprintKg)
	assert.Equal(t, 1, res.ByFuelType[report.Known("unknown")].Trips)

	strict := report.Engine{Policy: travel.OtherPolicy{FuelUnknownRequiresDetails: true}}
	res, err = strict.Aggregate(subs)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ByFuelType[report.Other("unknown", "rental")].Trips)
}

func TestAggregate_TransportOtherPolicy(t *testing.T) {
	ferry := travel.NewSegmentRecord(travel.Segment{
		VehicleType:             travel.VehicleOther,
		OtherVehicleTypeDetails: "ferry",
		Distance:                30,
	}, travel.Outbound, 0, 0)
	subs := []travel.SubmissionWithSegments{{
		Submission: travel.SubmissionRecord{UserType: travel.UserPublic},
		Segments:   []travel.SegmentRecord{ferry},
	}}

	res, err := report.Aggregate(subs)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ByTransportType[report.Known("other")].Trips)

	expanded := report.Engine{Policy: travel.OtherPolicy{ExpandOtherVehicleType: true}}
	res, err = expanded.Aggregate(subs)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ByTransportType[report.Other("other", "ferry")].Trips)
}

func TestAggregate_SumLawAndParticipants(t *testing.T) {
	var subs []travel.SubmissionWithSegments
	var want float64
	for i := 0; i < 7; i++ {
		segs := []travel.SegmentRecord{carRecord(travel.Outbound, 0), carRecord(travel.Outbound, 1), carRecord(travel.Return, 2)}
		segs[1].FootprintKg = float64(i) * 0.37
		for _, s := range segs {
			want += s.FootprintKg
		}
		subs = append(subs, travel.SubmissionWithSegments{
			Submission: travel.SubmissionRecord{UserType: travel.UserTypes[i%len(travel.UserTypes)], HotelNights: i},
			Segments:   segs,
		})
	}

	res, err := report.Aggregate(subs)
	require.NoError(t, err)

	assert.Equal(t, want, res.TotalFootprintKg)
	assert.Equal(t, 7, res.TotalParticipants)
	assert.Equal(t, 21, res.TotalHotelNights)

	var participants int
	for _, s := range res.ByUserType {
		participants += s.Participants
	}
	assert.Equal(t, 7, participants)
}

func TestAggregate_Idempotent(t *testing.T) {
	subs := []travel.SubmissionWithSegments{
		{Submission: travel.SubmissionRecord{UserType: travel.UserProvider, HotelNights: 2}, Segments: []travel.SegmentRecord{carRecord(travel.Outbound, 0)}},
		{Submission: travel.SubmissionRecord{UserType: travel.UserLogistics}, Segments: []travel.SegmentRecord{carRecord(travel.Return, 0)}},
	}

	first, err := report.Aggregate(subs)
	require.NoError(t, err)
	second, err := report.Aggregate(subs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEventResult_TreesNeeded(t *testing.T) {
	tests := []struct {
		kg   float64
		want int
	}{
		{0, 0},
		{0.1, 1},
		{22, 1},
		{22.01, 2},
		{1000, 46},
	}

	for _, tt := range tests {
		res := &report.EventResult{TotalFootprintKg: tt.kg}
		assert.Equal(t, tt.want, res.TreesNeeded(), "%v kg", tt.kg)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[report.GroupKey]int{
		report.Known("train"):          1,
		report.Other("other", "ferry"): 1,
		report.Known("car"):            1,
	}

	keys := report.SortedKeys(m)

	assert.Equal(t, []string{"car", "other: ferry", "train"},
		[]string{keys[0].String(), keys[1].String(), keys[2].String()})
}
