// Package travel defines the shared vocabulary for event travel footprints:
// attendee categories, vehicles, fuels, size brackets and the segment and
// submission value types passed between the intake, calculator and report
// packages.
package travel

// UserType is the attendee category of a submission.
type UserType string

// Attendee categories.
const (
	UserPublic      UserType = "public"
	UserParticipant UserType = "participant"
	UserLogistics   UserType = "logistics"
	UserProvider    UserType = "provider"
	UserStaff       UserType = "staff"
	UserOther       UserType = "other"
)

// UserTypes lists every attendee category in display order.
var UserTypes = []UserType{UserPublic, UserParticipant, UserLogistics, UserProvider, UserStaff, UserOther}

// Valid reports whether u is a known attendee category.
func (u UserType) Valid() bool {
	for _, v := range UserTypes {
		if u == v {
			return true
		}
	}
	return false
}

// VehicleType is the mode of transport of a segment.
type VehicleType string

// Vehicle types.
const (
	VehicleWalking    VehicleType = "walking"
	VehicleBicycle    VehicleType = "bicycle"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleCar        VehicleType = "car"
	VehicleVan        VehicleType = "van"
	VehicleBus        VehicleType = "bus"
	VehicleTruck      VehicleType = "truck"
	VehicleTrain      VehicleType = "train"
	VehiclePlane      VehicleType = "plane"
	VehicleOther      VehicleType = "other"
)

// VehicleTypes lists every vehicle type in display order.
var VehicleTypes = []VehicleType{
	VehicleWalking, VehicleBicycle, VehicleMotorcycle, VehicleCar, VehicleVan,
	VehicleBus, VehicleTruck, VehicleTrain, VehiclePlane, VehicleOther,
}

// Valid reports whether v is a known vehicle type.
func (v VehicleType) Valid() bool {
	for _, t := range VehicleTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Powered reports whether the vehicle burns fuel, so a fuel type applies.
func (v VehicleType) Powered() bool {
	return v != VehicleWalking && v != VehicleBicycle
}

// Shared reports whether the vehicle's emissions are split between its
// passengers.
func (v VehicleType) Shared() bool {
	return v == VehicleCar || v == VehicleVan || v == VehicleBus
}

// Fleet reports whether several vehicles of this type can travel together
// on one leg.
func (v VehicleType) Fleet() bool {
	switch v {
	case VehicleCar, VehicleVan, VehicleBus, VehicleMotorcycle, VehicleTruck:
		return true
	default:
		return false
	}
}

// FuelType is the energy source of a powered vehicle.
type FuelType string

// Fuel types.
const (
	FuelGasoline     FuelType = "gasoline"
	FuelDiesel       FuelType = "diesel"
	FuelHybrid       FuelType = "hybrid"
	FuelPluginHybrid FuelType = "pluginHybrid"
	FuelElectric     FuelType = "electric"
	FuelUnknown      FuelType = "unknown"
	FuelOther        FuelType = "other"
)

// FuelTypes lists every fuel type in display order.
var FuelTypes = []FuelType{
	FuelGasoline, FuelDiesel, FuelHybrid, FuelPluginHybrid, FuelElectric, FuelUnknown, FuelOther,
}

// Valid reports whether f is a known fuel type.
func (f FuelType) Valid() bool {
	for _, t := range FuelTypes {
		if f == t {
			return true
		}
	}
	return false
}

// SizeBracket is the weight class of a van or truck.
type SizeBracket string

// Size brackets.
const (
	SizeUpTo7_5t SizeBracket = "<7.5t"
	Size7_5To12t SizeBracket = "7.5-12t"
	Size20To26t  SizeBracket = "20-26t"
	Size34To40t  SizeBracket = "34-40t"
	Size50To60t  SizeBracket = "50-60t"
)

// VanSizes are the brackets a van can declare.
var VanSizes = []SizeBracket{SizeUpTo7_5t, Size7_5To12t}

// TruckSizes are the brackets a truck can declare.
var TruckSizes = []SizeBracket{SizeUpTo7_5t, Size7_5To12t, Size20To26t, Size34To40t, Size50To60t}

// Direction distinguishes the outbound list of segments from the return list.
type Direction string

// Directions.
const (
	Outbound Direction = "outbound"
	Return   Direction = "return"
)

// Valid reports whether d is one of the two directions.
func (d Direction) Valid() bool {
	return d == Outbound || d == Return
}
