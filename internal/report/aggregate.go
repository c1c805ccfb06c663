// Package report reduces stored submissions into per-event statistics.
package report

import (
	"errors"
	"math"
	"sort"

	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// ErrNoData is returned when an event has no submissions yet.
var ErrNoData = errors.New("no submissions for event")

// UserTypeStats accumulates one attendee category.
type UserTypeStats struct {
	FootprintKg  float64
	DistanceKm   float64
	Participants int
}

// TransportStats accumulates one vehicle type.
type TransportStats struct {
	DistanceKm  float64
	FootprintKg float64
	Trips       int
}

// FuelStats accumulates one fuel type.
type FuelStats struct {
	DistanceKm  float64
	FootprintKg float64
	Trips       int
}

// EventResult is the aggregate view over every submission of one event.
type EventResult struct {
	TotalFootprintKg  float64
	TotalDistanceKm   float64
	TotalHotelNights  int
	TotalParticipants int
	CompensatedKg     float64

	ByUserType      map[GroupKey]UserTypeStats
	ByTransportType map[GroupKey]TransportStats
	ByFuelType      map[GroupKey]FuelStats
}

// TreeAbsorptionKgPerYear is the CO2 one tree absorbs in a year.
const TreeAbsorptionKgPerYear = 22.0

// TreesNeeded returns how many trees absorb the event's footprint in a year.
func (r *EventResult) TreesNeeded() int {
	if r.TotalFootprintKg <= 0 {
		return 0
	}
	return int(math.Ceil(r.TotalFootprintKg / TreeAbsorptionKgPerYear))
}

// Engine aggregates submissions under a grouping policy.
type Engine struct {
	Policy travel.OtherPolicy
}

// Aggregate reduces subs with the default policy.
func Aggregate(subs []travel.SubmissionWithSegments) (*EventResult, error) {
	return Engine{}.Aggregate(subs)
}

// Aggregate reduces subs into an EventResult. It returns ErrNoData for an
// empty input so callers can tell "nothing yet" from "all zero".
//
// Stored footprints are summed as-is; nothing is recomputed.
func (e Engine) Aggregate(subs []travel.SubmissionWithSegments) (*EventResult, error) {
	if len(subs) == 0 {
		return nil, ErrNoData
	}

	res := &EventResult{
		ByUserType:      make(map[GroupKey]UserTypeStats),
		ByTransportType: make(map[GroupKey]TransportStats),
		ByFuelType:      make(map[GroupKey]FuelStats),
	}

	for _, sub := range subs {
		rec := sub.Submission
		res.TotalParticipants++
		if rec.HotelNights > 0 {
			res.TotalHotelNights += rec.HotelNights
		}

		userKey := e.userTypeKey(rec)
		us := res.ByUserType[userKey]
		us.Participants++

		for _, seg := range sub.Segments {
			res.TotalFootprintKg += seg.FootprintKg
			res.TotalDistanceKm += seg.Distance
			if seg.CarbonCompensated {
				res.CompensatedKg += seg.FootprintKg
			}

			us.FootprintKg += seg.FootprintKg
			us.DistanceKm += seg.Distance

			tk := e.transportKey(seg)
			ts := res.ByTransportType[tk]
			ts.DistanceKm += seg.Distance
			ts.FootprintKg += seg.FootprintKg
			ts.Trips++
			res.ByTransportType[tk] = ts

			if seg.FuelType == "" {
				continue
			}
			fk := e.fuelKey(seg)
			fs := res.ByFuelType[fk]
			fs.DistanceKm += seg.Distance
			fs.FootprintKg += seg.FootprintKg
			fs.Trips++
			res.ByFuelType[fk] = fs
		}

		res.ByUserType[userKey] = us
	}

	return res, nil
}

func (e Engine) userTypeKey(rec travel.SubmissionRecord) GroupKey {
	return compose(string(rec.UserType), travel.TrimDetail(rec.OtherUserTypeDetails),
		e.Policy.UserTypeNeedsDetails(rec.UserType))
}

func (e Engine) transportKey(seg travel.SegmentRecord) GroupKey {
	return compose(string(seg.VehicleType), travel.TrimDetail(seg.OtherVehicleTypeDetails),
		e.Policy.ExpandOtherVehicleType && e.Policy.VehicleNeedsDetails(seg.VehicleType))
}

func (e Engine) fuelKey(seg travel.SegmentRecord) GroupKey {
	return compose(string(seg.FuelType), travel.TrimDetail(seg.FuelTypeOtherDetails),
		e.Policy.FuelNeedsDetails(seg.FuelType))
}

// SortedKeys returns the keys of m ordered by display string. Breakdown maps
// carry no order of their own.
func SortedKeys[V any](m map[GroupKey]V) []GroupKey {
	keys := make([]GroupKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].String() != keys[j].String() {
			return keys[i].String() < keys[j].String()
		}
		return keys[i].Kind < keys[j].Kind
	})
	return keys
}
