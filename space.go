package hparam

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// Space is a search space and runner options described in YAML.
//
// Example:
//
//	mode: random
//	samples: 20
//	seed: 42
//	threads: 4
//	parameters:
//	  - name: decay
//	    values: [1.0, 0.95, 0.9]
//	  - name: epochs
//	    range: {low: 20, high: 100, step: 40, type: int}
//	  - name: step_size
//	    range: {low: 1.0e-5, high: 1.0e-2, step: 1, log_base: 10}
type Space struct {
	// Mode is grid (default), random or guided. exhaustive and sampled are
	// accepted as aliases.
	Mode Mode `yaml:"mode"`

	// Samples is the number of configurations for random and guided modes.
	Samples int `yaml:"samples"`

	// Seed seeds the random source.
	Seed int64 `yaml:"seed"`

	// Threads is the worker-pool size.
	Threads int `yaml:"threads"`

	// Refit re-trains the best configuration after the search.
	Refit bool `yaml:"refit"`

	// Parameters define the search space, in plan order.
	Parameters []SpaceParameter `yaml:"parameters"`
}

// SpaceParameter is one parameter of a Space. Exactly one of Values and
// Range must be set.
type SpaceParameter struct {
	Name   string      `yaml:"name"`
	Values []any       `yaml:"values,omitempty"`
	Range  *SpaceRange `yaml:"range,omitempty"`
}

// SpaceRange is the YAML form of a RangeParameter.
type SpaceRange struct {
	Low     float64 `yaml:"low"`
	High    float64 `yaml:"high"`
	Step    float64 `yaml:"step"`
	LogBase float64 `yaml:"log_base,omitempty"`

	// Type is "float" (default) or "int".
	Type string `yaml:"type,omitempty"`
}

// LoadSpace loads and validates a search space file.
func LoadSpace(path string) (*Space, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read space file %s: %w", path, err)
	}

	s, err := ParseSpaceYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse space file %s: %w", path, err)
	}

	return s, nil
}

// ParseSpaceYAML parses a Space from YAML bytes and validates it. Unknown
// fields are rejected.
func ParseSpaceYAML(data []byte) (*Space, error) {
	var s Space

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse space yaml: %w", err)
	}

	if s.Mode == "" {
		s.Mode = ModeGrid
	}

	s.Mode = s.Mode.canonical()

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid space: %w", err)
	}

	return &s, nil
}

// Specs builds the ParameterSpecs of the space.
func (s *Space) Specs() ([]ParameterSpec, error) {
	specs := make([]ParameterSpec, 0, len(s.Parameters))

	for i, p := range s.Parameters {
		spec, err := p.spec()
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

// Config returns DefaultConfig with the space's runner options applied.
func (s *Space) Config() Config {
	config := DefaultConfig()

	config.Seed = s.Seed
	config.Refit = s.Refit

	if s.Threads > 0 {
		config.Threads = s.Threads
	}

	return config
}

// Plan builds the plan described by the space. Random and guided plans are
// seeded with Seed.
func (s *Space) Plan() (*SearchPlan, error) {
	specs, err := s.Specs()
	if err != nil {
		return nil, err
	}

	return BuildPlan(s.Mode, s.Samples, rand.New(rand.NewSource(s.Seed)), specs...)
}

func (s *Space) validate() error {
	switch s.Mode {
	case ModeGrid:
	case ModeRandom, ModeGuided:
		if s.Samples <= 0 {
			return fmt.Errorf("%w: %s mode needs samples > 0", ErrInvalidArgument, s.Mode)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q (must be grid, random, or guided)", ErrInvalidArgument, s.Mode)
	}

	if s.Threads < 0 {
		return fmt.Errorf("%w: threads cannot be negative, got %d", ErrInvalidArgument, s.Threads)
	}

	specs, err := s.Specs()
	if err != nil {
		return err
	}

	// Resolving catches empty spaces, duplicate names and bad ranges.
	_, err = resolveSpace(specs)

	return err
}

func (p SpaceParameter) spec() (ParameterSpec, error) {
	switch {
	case p.Range != nil && len(p.Values) > 0:
		return nil, fmt.Errorf("%w: %q sets both values and range", ErrInvalidArgument, p.Name)
	case len(p.Values) > 0:
		return List(p.Name, p.Values...), nil
	case p.Range != nil:
		return p.Range.spec(p.Name)
	default:
		return nil, fmt.Errorf("%w: %q needs values or a range", ErrInvalidArgument, p.Name)
	}
}

func (r *SpaceRange) spec(name string) (ParameterSpec, error) {
	switch r.Type {
	case "", "float":
		return &RangeParameter[float64]{Name: name, Low: r.Low, High: r.High, Step: r.Step, LogBase: r.LogBase}, nil
	case "int":
		for _, v := range []float64{r.Low, r.High, r.Step} {
			if math.Trunc(v) != v || math.Abs(v) > math.MaxInt32 {
				return nil, fmt.Errorf("parameter %q: %w: int range needs integral bounds and step, got %v", name, ErrInvalidRange, v)
			}
		}

		return &RangeParameter[int]{Name: name, Low: int(r.Low), High: int(r.High), Step: int(r.Step), LogBase: r.LogBase}, nil
	default:
		return nil, fmt.Errorf("%w: %q has unknown range type %q (must be float or int)", ErrInvalidArgument, name, r.Type)
	}
}
