package hparam

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

//////
// Const, vars, types.
//////

const (
	// rangeTolerance is the relative slack allowed when deciding whether a
	// generated value reached a range boundary.
	rangeTolerance = 1e-9

	// maxRangeValues caps how many values a single range may generate.
	maxRangeValues = 1 << 20
)

// ParameterSpec describes one tunable axis of a search space.
//
// Implementations must be pure: GenerateValues returns the same ordered
// values on every call and never mutates the spec.
type ParameterSpec interface {
	// ParameterName returns the key under which the chosen value is stored in
	// a Configuration. Names must be unique within one search.
	ParameterName() string

	// GenerateValues returns the ordered, finite set of values this axis can
	// take.
	GenerateValues() ([]any, error)
}

// ListParameter is a finite, explicit set of choices. Values keep the order
// in which they were given.
//
// Usage:
//
//	decay := hparam.List("decay", 1.0, 0.95, 0.9)
//	optimizer := hparam.List("optimizer", "sgd", "adam")
type ListParameter struct {
	// Name of the parameter.
	Name string

	// Values holds the allowed choices. Must not be empty.
	Values []any
}

// RangeParameter is a numeric range discretized by Step.
//
// Type Parameter:
//   - T: The numeric type for this parameter (any integer or float type)
//
// Without LogBase the values are Low, Low+Step, Low+2*Step, ... up to and
// including High. With LogBase set the values are LogBase^k for exponents k
// from floor(log(Low)) to ceil(log(High)) stepping by Step, filtered to
// [Low, High].
//
// Usage:
//
//	// 20, 50, 80
//	epochs := hparam.Range("epochs", 20, 100, 30)
//
//	// 1e-5, 1e-4, 1e-3, 1e-2
//	stepSize := hparam.LogRange("step_size", 1e-5, 1e-2, 1.0, 10)
//
// Validation:
// - Low must be less than or equal to High
// - Step must be positive
// - Logarithmic ranges need Low > 0 and LogBase > 0, LogBase != 1
type RangeParameter[T constraints.Integer | constraints.Float] struct {
	// Name of the parameter.
	Name string

	// Low is the inclusive lower bound.
	Low T

	// High is the inclusive upper bound.
	High T

	// Step between consecutive values, or between consecutive exponents when
	// LogBase is set.
	Step T

	// LogBase enables logarithmic spacing. Zero means linear.
	LogBase float64
}

//////
// Factory.
//////

// List creates a ListParameter.
func List(name string, values ...any) *ListParameter {
	return &ListParameter{Name: name, Values: values}
}

// Range creates a linearly spaced RangeParameter.
func Range[T constraints.Integer | constraints.Float](name string, low, high, step T) *RangeParameter[T] {
	return &RangeParameter[T]{Name: name, Low: low, High: high, Step: step}
}

// LogRange creates a logarithmically spaced RangeParameter. Step is applied to
// the exponent, so LogRange("lr", 1e-4, 1e-1, 1.0, 10) yields four values.
func LogRange[T constraints.Integer | constraints.Float](name string, low, high, step T, base float64) *RangeParameter[T] {
	return &RangeParameter[T]{Name: name, Low: low, High: high, Step: step, LogBase: base}
}

//////
// Methods.
//////

// ParameterName implements ParameterSpec.
func (p *ListParameter) ParameterName() string { return p.Name }

// GenerateValues returns a copy of the configured choices.
func (p *ListParameter) GenerateValues() ([]any, error) {
	if len(p.Values) == 0 {
		return nil, fmt.Errorf("parameter %q: %w: value list is empty", p.Name, ErrInvalidArgument)
	}

	values := make([]any, len(p.Values))
	copy(values, p.Values)

	return values, nil
}

// ParameterName implements ParameterSpec.
func (p *RangeParameter[T]) ParameterName() string { return p.Name }

// Validate reports whether the range is well formed. Every failure wraps
// ErrInvalidRange.
func (p *RangeParameter[T]) Validate() error {
	low, high, step := float64(p.Low), float64(p.High), float64(p.Step)

	if math.IsNaN(low) || math.IsNaN(high) || math.IsNaN(step) {
		return fmt.Errorf("parameter %q: %w: bounds and step must be numbers", p.Name, ErrInvalidRange)
	}

	if p.Low > p.High {
		return fmt.Errorf("parameter %q: %w: low %v is greater than high %v", p.Name, ErrInvalidRange, p.Low, p.High)
	}

	if p.Step <= 0 {
		return fmt.Errorf("parameter %q: %w: step %v must be positive", p.Name, ErrInvalidRange, p.Step)
	}

	if p.LogBase == 0 {
		return nil
	}

	if math.IsNaN(p.LogBase) || math.IsInf(p.LogBase, 0) || p.LogBase < 0 || p.LogBase == 1 {
		return fmt.Errorf("parameter %q: %w: log base %v must be positive and not 1", p.Name, ErrInvalidRange, p.LogBase)
	}

	if low <= 0 {
		return fmt.Errorf("parameter %q: %w: logarithmic range needs low > 0, got %v", p.Name, ErrInvalidRange, p.Low)
	}

	// Step counts exponents, so every value stays an integer power of the base.
	if math.Trunc(step) != step {
		return fmt.Errorf("parameter %q: %w: logarithmic range needs a whole step, got %v", p.Name, ErrInvalidRange, p.Step)
	}

	return nil
}

// GenerateValues returns the discretized values of the range in ascending
// order. Values keep the range's type T.
func (p *RangeParameter[T]) GenerateValues() ([]any, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		typed []T
		err   error
	)

	if p.LogBase != 0 {
		typed, err = p.logValues()
	} else {
		typed, err = p.linearValues()
	}

	if err != nil {
		return nil, err
	}

	values := make([]any, len(typed))
	for i, v := range typed {
		values[i] = v
	}

	return values, nil
}

// linearValues computes Low + i*Step rather than accumulating, so rounding
// never drifts across a long range.
func (p *RangeParameter[T]) linearValues() ([]T, error) {
	low, high, step := float64(p.Low), float64(p.High), float64(p.Step)

	steps := math.Floor((high-low)/step + rangeTolerance)
	if steps+1 > maxRangeValues {
		return nil, fmt.Errorf("parameter %q: %w: range would generate more than %d values", p.Name, ErrInvalidRange, maxRangeValues)
	}

	n := int(steps)
	eps := step * rangeTolerance
	values := make([]T, 0, n+1)

	for i := 0; i <= n; i++ {
		v := p.Low + T(i)*p.Step

		if v > p.High {
			v = p.High
		}

		if i == n && float64(p.High-v) <= eps {
			v = p.High
		}

		values = append(values, v)
	}

	return values, nil
}

func (p *RangeParameter[T]) logValues() ([]T, error) {
	low, high, step := float64(p.Low), float64(p.High), float64(p.Step)

	lnBase := math.Log(p.LogBase)
	a := math.Log(low) / lnBase
	b := math.Log(high) / lnBase

	// A base below 1 flips the exponent order.
	if a > b {
		a, b = b, a
	}

	first := math.Floor(a + rangeTolerance)
	last := math.Ceil(b - rangeTolerance)

	count := math.Floor((last-first)/step+rangeTolerance) + 1
	if count > maxRangeValues {
		return nil, fmt.Errorf("parameter %q: %w: range would generate more than %d values", p.Name, ErrInvalidRange, maxRangeValues)
	}

	half := 0.5
	integral := T(half) == 0

	floats := make([]float64, 0, int(count))

	for i := 0; i < int(count); i++ {
		v := math.Pow(p.LogBase, first+float64(i)*step)

		if v < low*(1-rangeTolerance) || v > high*(1+rangeTolerance) {
			continue
		}

		v = math.Min(math.Max(v, low), high)

		if integral {
			rounded := math.Round(v)
			if math.Abs(rounded-v) > rangeTolerance*v {
				continue
			}

			v = rounded
		}

		floats = append(floats, v)
	}

	sort.Float64s(floats)

	values := make([]T, 0, len(floats))
	for _, v := range floats {
		values = append(values, T(v))
	}

	return values, nil
}
