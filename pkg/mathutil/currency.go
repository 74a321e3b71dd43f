// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Every monetary figure is passed through Round at the point it is stored.
func Round(val float64) float64 {
	rounded := math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
	if rounded == 0 {
		// collapse -0 so a fully amortized balance prints as 0.00
		return 0
	}
	return rounded
}

// IsZero checks if a value is effectively zero (within one cent)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsFinite reports whether a value is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsInf(val, 0) && !math.IsNaN(val)
}

// AllFinite reports whether every value is finite.
func AllFinite(vals ...float64) bool {
	for _, v := range vals {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

// Percent converts a percentage-point figure (12 means 12%) into a fraction.
func Percent(points float64) float64 {
	return points / constants.PercentageMultiplier
}
