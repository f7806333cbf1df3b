package hparam

import (
	"math"
	"reflect"
)

//////
// Helper functions.
//////

// Helper function used by PI and EI to compute the cumulative distribution
// function of the standard normal distribution.
func normalCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// Helper function used by EI to compute the probability density function
// of the standard normal distribution.
func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / math.Sqrt(2.0*math.Pi)
}

// toFloat64 widens any built-in numeric value to float64.
//
// Returns:
// - float64: The widened value
// - bool: false if v is not a numeric type
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uintptr:
		return float64(n), true
	}

	return 0, false
}

// sameValue compares two parameter values. Numbers compare by value across
// types (int 1 equals float 1.0), everything else by deep equality so an
// uncomparable value never panics.
func sameValue(a, b any) bool {
	fa, okA := toFloat64(a)
	fb, okB := toFloat64(b)

	if okA && okB {
		return fa == fb
	}

	return reflect.DeepEqual(a, b)
}

// indexOf returns the position of v in values, or -1.
func indexOf(values []any, v any) int {
	for i, candidate := range values {
		if sameValue(candidate, v) {
			return i
		}
	}

	return -1
}
