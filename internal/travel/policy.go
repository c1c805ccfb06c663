package travel

import "strings"

// OtherPolicy decides which categories carry a free-text detail. The same
// policy drives form validation and report grouping so the two stay
// consistent.
type OtherPolicy struct {
	// FuelUnknownRequiresDetails makes "unknown" fuel behave like "other":
	// a detail is required and it becomes part of the fuel group key.
	FuelUnknownRequiresDetails bool

	// ExpandOtherVehicleType groups "other" vehicles by their detail in the
	// transport breakdown instead of a single "other" bucket.
	ExpandOtherVehicleType bool
}

// FuelNeedsDetails reports whether a fuel type requires a free-text detail.
func (p OtherPolicy) FuelNeedsDetails(f FuelType) bool {
	return f == FuelOther || (p.FuelUnknownRequiresDetails && f == FuelUnknown)
}

// VehicleNeedsDetails reports whether a vehicle type requires a free-text detail.
func (p OtherPolicy) VehicleNeedsDetails(v VehicleType) bool {
	return v == VehicleOther
}

// UserTypeNeedsDetails reports whether a user type requires a free-text detail.
func (p OtherPolicy) UserTypeNeedsDetails(u UserType) bool {
	return u == UserOther
}

// Normalize clears detail fields whose category no longer asks for them and
// drops a fuel type on unpowered vehicles.
func (p OtherPolicy) Normalize(seg Segment) Segment {
	if !p.VehicleNeedsDetails(seg.VehicleType) {
		seg.OtherVehicleTypeDetails = ""
	}
	if !seg.VehicleType.Powered() {
		seg.FuelType = ""
	}
	if !p.FuelNeedsDetails(seg.FuelType) {
		seg.FuelTypeOtherDetails = ""
	}
	if seg.VehicleType != VehicleVan {
		seg.VanSize = ""
	}
	if seg.VehicleType != VehicleTruck {
		seg.TruckSize = ""
	}
	return seg
}

// NormalizeUserDetails returns the detail to keep for the given user type.
func (p OtherPolicy) NormalizeUserDetails(u UserType, details string) string {
	if !p.UserTypeNeedsDetails(u) {
		return ""
	}
	return details
}

// TrimDetail normalizes free text used as a grouping detail.
func TrimDetail(s string) string {
	return strings.TrimSpace(s)
}
