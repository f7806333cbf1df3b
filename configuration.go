package hparam

import (
	"fmt"
	"math"
	"strings"
)

// Configuration is one fully specified assignment of a value to every
// parameter of a search space. It is immutable: accessors return copies and
// the zero value is an empty configuration.
type Configuration struct {
	names  []string
	values []any
}

// NewConfiguration builds a Configuration from parallel name and value
// slices. Both are copied.
func NewConfiguration(names []string, values []any) (Configuration, error) {
	if len(names) != len(values) {
		return Configuration{}, fmt.Errorf("%w: %d names for %d values", ErrInvalidArgument, len(names), len(values))
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return Configuration{}, fmt.Errorf("%w: duplicate parameter name %q", ErrInvalidArgument, name)
		}

		seen[name] = struct{}{}
	}

	return newConfiguration(names, values), nil
}

func newConfiguration(names []string, values []any) Configuration {
	c := Configuration{
		names:  make([]string, len(names)),
		values: make([]any, len(values)),
	}

	copy(c.names, names)
	copy(c.values, values)

	return c
}

// Len returns the number of parameters.
func (c Configuration) Len() int { return len(c.names) }

// Names returns parameter names in search-space order.
func (c Configuration) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)

	return names
}

// Values returns parameter values in search-space order.
func (c Configuration) Values() []any {
	values := make([]any, len(c.values))
	copy(values, c.values)

	return values
}

// Get returns the value of the named parameter.
func (c Configuration) Get(name string) (any, bool) {
	for i, n := range c.names {
		if n == name {
			return c.values[i], true
		}
	}

	return nil, false
}

// Float64 returns the named parameter widened to float64. It reports false
// when the parameter is missing or not numeric.
func (c Configuration) Float64(name string) (float64, bool) {
	v, ok := c.Get(name)
	if !ok {
		return 0, false
	}

	return toFloat64(v)
}

// Int returns the named parameter as an int. It reports false when the
// parameter is missing, not numeric, or has a fractional part.
func (c Configuration) Int(name string) (int, bool) {
	f, ok := c.Float64(name)
	if !ok || math.Trunc(f) != f {
		return 0, false
	}

	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, false
	}

	return int(f), true
}

// Map returns a copy of the configuration as a map.
func (c Configuration) Map() map[string]any {
	m := make(map[string]any, len(c.names))
	for i, n := range c.names {
		m[n] = c.values[i]
	}

	return m
}

// Equal reports whether both configurations assign the same values to the
// same names in the same order.
func (c Configuration) Equal(other Configuration) bool {
	if len(c.names) != len(other.names) {
		return false
	}

	for i := range c.names {
		if c.names[i] != other.names[i] || !sameValue(c.values[i], other.values[i]) {
			return false
		}
	}

	return true
}

// String renders the configuration as "name=value" pairs, e.g.
// "decay=0.95 epochs=50".
func (c Configuration) String() string {
	var sb strings.Builder

	for i, n := range c.names {
		if i > 0 {
			sb.WriteByte(' ')
		}

		fmt.Fprintf(&sb, "%s=%v", n, c.values[i])
	}

	return sb.String()
}
