package fieldtest

import "math"

// Decimal places each result is reported to.
const (
	sandUsedPlaces         = 2
	wetDensityPlaces       = 4
	moistureContentPlaces  = 8
	dryDensityPlaces       = 0
	compactionPlaces       = 1
	rockCorrectionPlaces   = 1
	labMaxCorrectionPlaces = 1
)

// roundN rounds v to n decimal places, half away from zero. Inf and NaN pass
// through unchanged.
func roundN(v float64, n int) float64 {
	p := math.Pow10(n)
	return math.Round(v*p) / p
}
