package footprint

import "github.com/eventfootprint/eventfootprint/internal/travel"

// Factors are emission factors in kg CO2e per kilometre.
//
// Road vehicle factors are per vehicle; the calculator shares them between
// passengers for car, van and bus. Train and plane factors are already per
// passenger.
type Factors struct {
	// Car maps a fuel to the per-vehicle factor of a passenger car.
	Car map[travel.FuelType]float64
	// CarDefault applies when the car fuel is missing or not in Car.
	CarDefault float64

	// Motorcycle maps a fuel to the per-vehicle factor of a motorcycle.
	Motorcycle        map[travel.FuelType]float64
	MotorcycleDefault float64

	// Van and Truck map a size bracket to the diesel per-vehicle factor.
	Van   map[travel.SizeBracket]float64
	Truck map[travel.SizeBracket]float64
	Bus   float64

	// FuelRatio scales van, bus and truck factors by fuel relative to
	// diesel. Fuels not listed use a ratio of 1.
	FuelRatio map[travel.FuelType]float64

	Train float64
	Plane float64
}

// DefaultFactors returns the factor table used in production.
func DefaultFactors() Factors {
	return Factors{
		Car: map[travel.FuelType]float64{
			travel.FuelGasoline:     0.170,
			travel.FuelDiesel:       0.168,
			travel.FuelHybrid:       0.120,
			travel.FuelPluginHybrid: 0.070,
			travel.FuelElectric:     0.047,
		},
		CarDefault: 0.170,
		Motorcycle: map[travel.FuelType]float64{
			travel.FuelGasoline: 0.114,
			travel.FuelElectric: 0.030,
		},
		MotorcycleDefault: 0.114,
		Van: map[travel.SizeBracket]float64{
			travel.SizeUpTo7_5t: 0.250,
			travel.Size7_5To12t: 0.350,
		},
		Truck: map[travel.SizeBracket]float64{
			travel.SizeUpTo7_5t: 0.450,
			travel.Size7_5To12t: 0.600,
			travel.Size20To26t:  0.850,
			travel.Size34To40t:  1.000,
			travel.Size50To60t:  1.200,
		},
		Bus: 1.050,
		FuelRatio: map[travel.FuelType]float64{
			travel.FuelGasoline:     1.05,
			travel.FuelDiesel:       1.00,
			travel.FuelHybrid:       0.75,
			travel.FuelPluginHybrid: 0.45,
			travel.FuelElectric:     0.30,
		},
		Train: 0.035,
		Plane: 0.150,
	}
}

// Lookup returns the per-kilometre factor for a segment's vehicle, refined
// by fuel and size bracket. Unknown vehicles and missing size brackets
// resolve to 0.
func (f Factors) Lookup(seg travel.Segment) float64 {
	switch seg.VehicleType {
	case travel.VehicleWalking, travel.VehicleBicycle:
		return 0
	case travel.VehicleCar:
		if v, ok := f.Car[seg.FuelType]; ok {
			return v
		}
		return f.CarDefault
	case travel.VehicleMotorcycle:
		if v, ok := f.Motorcycle[seg.FuelType]; ok {
			return v
		}
		return f.MotorcycleDefault
	case travel.VehicleVan:
		return f.Van[seg.VanSize] * f.fuelRatio(seg.FuelType)
	case travel.VehicleTruck:
		return f.Truck[seg.TruckSize] * f.fuelRatio(seg.FuelType)
	case travel.VehicleBus:
		return f.Bus * f.fuelRatio(seg.FuelType)
	case travel.VehicleTrain:
		return f.Train
	case travel.VehiclePlane:
		return f.Plane
	default:
		return 0
	}
}

func (f Factors) fuelRatio(fuel travel.FuelType) float64 {
	if r, ok := f.FuelRatio[fuel]; ok {
		return r
	}
	return 1
}
