package hparam

import (
	"fmt"
	"math/rand"
)

//////
// Const, vars, types.
//////

// Mode selects how a SearchPlan enumerates configurations.
type Mode string

const (
	// ModeGrid evaluates the full Cartesian product of every parameter.
	ModeGrid Mode = "grid"

	// ModeRandom evaluates n configurations drawn uniformly at random.
	ModeRandom Mode = "random"

	// ModeGuided evaluates n configurations chosen by a Gaussian Process
	// surrogate fitted on earlier results. See NewGuidedPlan.
	ModeGuided Mode = "guided"

	// ModeExhaustive is an alias of ModeGrid.
	ModeExhaustive Mode = "exhaustive"

	// ModeSampled is an alias of ModeRandom.
	ModeSampled Mode = "sampled"
)

// maxPlanSize caps the number of configurations a single plan may hold.
const maxPlanSize = 1 << 20

// SearchPlan is the ordered sequence of configurations a Runner evaluates.
// It is read-only once built.
type SearchPlan struct {
	mode           Mode
	names          []string
	configurations []Configuration
}

// space is the resolved form of a set of ParameterSpecs: names in order and
// the generated values of each.
type space struct {
	names  []string
	values [][]any
}

//////
// Factory.
//////

// BuildPlan builds a plan for the given mode. n is the number of
// configurations for random and guided modes and is ignored in grid mode.
// rng is required for random and guided modes; it is never seeded
// implicitly.
//
// Guided mode without history degrades to random sampling; use
// NewGuidedPlan to pass earlier results.
func BuildPlan(mode Mode, n int, rng *rand.Rand, specs ...ParameterSpec) (*SearchPlan, error) {
	switch mode.canonical() {
	case ModeGrid:
		return NewGridPlan(specs...)
	case ModeRandom:
		return NewRandomPlan(rng, n, specs...)
	case ModeGuided:
		return NewGuidedPlan(rng, n, DefaultGuidedOptions(), nil, specs...)
	default:
		return nil, fmt.Errorf("%w: unknown search mode %q", ErrInvalidArgument, mode)
	}
}

// NewGridPlan builds the exhaustive plan. Order is lexicographic over the
// specs as given: the first spec is the outermost loop, the last spec the
// innermost.
//
// Usage example:
//
//	plan, err := hparam.NewGridPlan(
//	    hparam.List("decay", 1.0, 0.95, 0.9),
//	    hparam.List("epochs", 20, 50, 100),
//	)
//	// (1.0,20) (1.0,50) (1.0,100) (0.95,20) ... (0.9,100)
func NewGridPlan(specs ...ParameterSpec) (*SearchPlan, error) {
	s, err := resolveSpace(specs)
	if err != nil {
		return nil, err
	}

	total := 1
	for i, values := range s.values {
		if total > maxPlanSize/len(values) {
			return nil, fmt.Errorf("%w: grid over %q exceeds %d configurations", ErrInvalidArgument, s.names[i], maxPlanSize)
		}

		total *= len(values)
	}

	configurations := make([]Configuration, 0, total)

	// Odometer over value indices, last spec turning fastest.
	indices := make([]int, len(s.values))

	for {
		configurations = append(configurations, s.configuration(indices))

		pos := len(indices) - 1
		for ; pos >= 0; pos-- {
			indices[pos]++
			if indices[pos] < len(s.values[pos]) {
				break
			}

			indices[pos] = 0
		}

		if pos < 0 {
			break
		}
	}

	return s.plan(ModeGrid, configurations), nil
}

// NewRandomPlan draws n configurations independently and uniformly at random,
// choosing each parameter's value uniformly among its generated values.
// Duplicates are not removed.
//
// Parameters:
// - rng: Random source. Required; pass rand.New(rand.NewSource(seed)) for
// reproducible plans
// - n: Number of configurations, must be positive
// - specs: The parameters to sample
func NewRandomPlan(rng *rand.Rand, n int, specs ...ParameterSpec) (*SearchPlan, error) {
	if err := checkSampling(rng, n); err != nil {
		return nil, err
	}

	s, err := resolveSpace(specs)
	if err != nil {
		return nil, err
	}

	configurations := make([]Configuration, n)
	for i := range configurations {
		configurations[i] = s.configuration(s.sample(rng))
	}

	return s.plan(ModeRandom, configurations), nil
}

//////
// Methods.
//////

// Mode returns how the plan was built.
func (p *SearchPlan) Mode() Mode { return p.mode }

// Len returns the number of configurations.
func (p *SearchPlan) Len() int { return len(p.configurations) }

// At returns the i-th configuration.
func (p *SearchPlan) At(i int) Configuration { return p.configurations[i] }

// Names returns the parameter names in search-space order.
func (p *SearchPlan) Names() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)

	return names
}

// Configurations returns a copy of the plan's configurations in order.
func (p *SearchPlan) Configurations() []Configuration {
	configurations := make([]Configuration, len(p.configurations))
	copy(configurations, p.configurations)

	return configurations
}

//////
// Helpers.
//////

// canonical resolves mode aliases.
func (m Mode) canonical() Mode {
	switch m {
	case ModeExhaustive:
		return ModeGrid
	case ModeSampled:
		return ModeRandom
	default:
		return m
	}
}

func checkSampling(rng *rand.Rand, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: sample count must be positive, got %d", ErrInvalidArgument, n)
	}

	if rng == nil {
		return fmt.Errorf("%w: a random source is required for sampling", ErrInvalidArgument)
	}

	return nil
}

// resolveSpace validates specs and generates their values.
func resolveSpace(specs []ParameterSpec) (*space, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: at least one parameter is required", ErrInvalidArgument)
	}

	s := &space{
		names:  make([]string, 0, len(specs)),
		values: make([][]any, 0, len(specs)),
	}

	seen := make(map[string]struct{}, len(specs))

	for i, spec := range specs {
		if spec == nil {
			return nil, fmt.Errorf("%w: parameter %d is nil", ErrInvalidArgument, i)
		}

		name := spec.ParameterName()
		if name == "" {
			return nil, fmt.Errorf("%w: parameter %d has no name", ErrInvalidArgument, i)
		}

		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: duplicate parameter name %q", ErrInvalidArgument, name)
		}

		seen[name] = struct{}{}

		values, err := spec.GenerateValues()
		if err != nil {
			return nil, err
		}

		if len(values) == 0 {
			return nil, fmt.Errorf("parameter %q: %w: no values generated", name, ErrInvalidRange)
		}

		s.names = append(s.names, name)
		s.values = append(s.values, values)
	}

	return s, nil
}

// sample picks one value index per parameter.
func (s *space) sample(rng *rand.Rand) []int {
	indices := make([]int, len(s.values))
	for i, values := range s.values {
		indices[i] = rng.Intn(len(values))
	}

	return indices
}

func (s *space) configuration(indices []int) Configuration {
	values := make([]any, len(indices))
	for i, idx := range indices {
		values[i] = s.values[i][idx]
	}

	return Configuration{names: s.names, values: values}
}

func (s *space) plan(mode Mode, configurations []Configuration) *SearchPlan {
	return &SearchPlan{
		mode:           mode,
		names:          s.names,
		configurations: configurations,
	}
}
