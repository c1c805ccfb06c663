// Package footprint converts a single travel segment into kilograms of CO2e.
package footprint

import (
	"math"

	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// Calculator computes segment footprints from a factor table.
// The zero value is not usable; use NewCalculator.
type Calculator struct {
	factors Factors
}

// NewCalculator creates a calculator over the given factors.
func NewCalculator(factors Factors) *Calculator {
	return &Calculator{factors: factors}
}

var defaultCalculator = NewCalculator(DefaultFactors())

// Compute returns the footprint of seg using the default factors.
func Compute(seg travel.Segment) float64 {
	return defaultCalculator.Compute(seg)
}

// Compute returns the footprint of seg in kg CO2e. It never fails: a
// missing or invalid distance and an unknown vehicle contribute 0.
//
// carbonCompensated is not netted against the result.
func (c *Calculator) Compute(seg travel.Segment) float64 {
	distance := seg.Distance
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance <= 0 {
		return 0
	}

	kg := c.factors.Lookup(seg) * distance
	if kg == 0 {
		return 0
	}

	if seg.VehicleType.Shared() && seg.Passengers > 1 {
		kg /= float64(seg.Passengers)
	}
	if seg.VehicleType.Fleet() && seg.NumberOfVehicles > 1 {
		kg *= float64(seg.NumberOfVehicles)
	}
	if seg.Frequency > 1 {
		kg *= float64(seg.Frequency)
	}
	if seg.ReturnTrip {
		kg *= 2
	}

	return kg
}

// Total sums the footprints of all segments.
func (c *Calculator) Total(segs []travel.Segment) float64 {
	var total float64
	for _, s := range segs {
		total += c.Compute(s)
	}
	return total
}
