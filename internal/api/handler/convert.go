package handler

import (
	"github.com/eventfootprint/eventfootprint/internal/api/models"
	"github.com/eventfootprint/eventfootprint/internal/report"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

func toSegment(s models.Segment) travel.Segment {
	return travel.Segment{
		VehicleType:             travel.VehicleType(s.VehicleType),
		OtherVehicleTypeDetails: s.OtherVehicleTypeDetails,
		FuelType:                travel.FuelType(s.FuelType),
		FuelTypeOtherDetails:    s.FuelTypeOtherDetails,
		Passengers:              s.Passengers,
		NumberOfVehicles:        s.NumberOfVehicles,
		VanSize:                 travel.SizeBracket(s.VanSize),
		TruckSize:               travel.SizeBracket(s.TruckSize),
		CarbonCompensated:       s.CarbonCompensated,
		Date:                    s.Date,
		Origin:                  s.Origin,
		Destination:             s.Destination,
		Distance:                s.Distance,
		ReturnTrip:              s.ReturnTrip,
		Frequency:               s.Frequency,
	}
}

func fromSegment(s travel.Segment) models.Segment {
	return models.Segment{
		VehicleType:             string(s.VehicleType),
		OtherVehicleTypeDetails: s.OtherVehicleTypeDetails,
		FuelType:                string(s.FuelType),
		FuelTypeOtherDetails:    s.FuelTypeOtherDetails,
		Passengers:              s.Passengers,
		NumberOfVehicles:        s.NumberOfVehicles,
		VanSize:                 string(s.VanSize),
		TruckSize:               string(s.TruckSize),
		CarbonCompensated:       s.CarbonCompensated,
		Date:                    s.Date,
		Origin:                  s.Origin,
		Destination:             s.Destination,
		Distance:                s.Distance,
		ReturnTrip:              s.ReturnTrip,
		Frequency:               s.Frequency,
	}
}

func mapSegments[From, To any](in []From, f func(From) To) []To {
	out := make([]To, len(in))
	for i, s := range in {
		out[i] = f(s)
	}
	return out
}

func toSubmission(s models.Submission) travel.Submission {
	return travel.Submission{
		UserType:             travel.UserType(s.UserType),
		OtherUserTypeDetails: s.OtherUserTypeDetails,
		Outbound:             mapSegments(s.OutboundSegments, toSegment),
		Return:               mapSegments(s.ReturnSegments, toSegment),
		HotelNights:          s.HotelNights,
		Comments:             s.Comments,
	}
}

func fromSubmission(s travel.Submission) models.Submission {
	return models.Submission{
		UserType:             string(s.UserType),
		OtherUserTypeDetails: s.OtherUserTypeDetails,
		OutboundSegments:     mapSegments(s.Outbound, fromSegment),
		ReturnSegments:       mapSegments(s.Return, fromSegment),
		HotelNights:          s.HotelNights,
		Comments:             s.Comments,
	}
}

func fromSegmentRecord(r travel.SegmentRecord) models.SegmentRecord {
	return models.SegmentRecord{
		Segment:     fromSegment(r.Segment()),
		Direction:   string(r.Direction),
		Order:       r.Order,
		FootprintKg: r.FootprintKg,
	}
}

func fromEvent(e *travel.Event) models.Event {
	return models.Event{
		ID:          e.ID,
		Slug:        e.Slug,
		Name:        e.Name,
		Description: e.Description,
		Location:    e.Location,
		StartDate:   e.StartDate.Format(travel.DateLayout),
		EndDate:     e.EndDate.Format(travel.DateLayout),
		IsActive:    e.IsActive,
		CreatedAt:   models.Timestamp(e.CreatedAt),
	}
}

func fromReport(res *report.EventResult) *models.Report {
	out := &models.Report{
		TotalFootprintKg:  res.TotalFootprintKg,
		TotalDistanceKm:   res.TotalDistanceKm,
		TotalHotelNights:  res.TotalHotelNights,
		TotalParticipants: res.TotalParticipants,
		CompensatedKg:     res.CompensatedKg,
		TreesNeeded:       res.TreesNeeded(),
		ByUserType:        []models.Breakdown{},
		ByTransportType:   []models.Breakdown{},
		ByFuelType:        []models.Breakdown{},
	}

	for _, k := range report.SortedKeys(res.ByUserType) {
		s := res.ByUserType[k]
		participants := s.Participants
		out.ByUserType = append(out.ByUserType, breakdown(k, s.FootprintKg, s.DistanceKm, nil, &participants))
	}
	for _, k := range report.SortedKeys(res.ByTransportType) {
		s := res.ByTransportType[k]
		trips := s.Trips
		out.ByTransportType = append(out.ByTransportType, breakdown(k, s.FootprintKg, s.DistanceKm, &trips, nil))
	}
	for _, k := range report.SortedKeys(res.ByFuelType) {
		s := res.ByFuelType[k]
		trips := s.Trips
		out.ByFuelType = append(out.ByFuelType, breakdown(k, s.FootprintKg, s.DistanceKm, &trips, nil))
	}

	return out
}

func breakdown(k report.GroupKey, kg, km float64, trips, participants *int) models.Breakdown {
	return models.Breakdown{
		Key:          k.String(),
		Category:     k.Category,
		Detail:       k.Detail,
		FootprintKg:  kg,
		DistanceKm:   km,
		Trips:        trips,
		Participants: participants,
	}
}
