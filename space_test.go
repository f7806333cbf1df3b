package hparam

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const randomSpaceYAML = `
mode: random
samples: 20
seed: 42
threads: 4
refit: true
parameters:
  - name: decay
    values: [1.0, 0.95, 0.9]
  - name: epochs
    range: {low: 20, high: 100, step: 40, type: int}
  - name: step_size
    range: {low: 1.0e-5, high: 1.0e-2, step: 1, log_base: 10}
  - name: optimizer
    values: [sgd, adam]
`

func TestParseSpaceYAML(t *testing.T) {
	s, err := ParseSpaceYAML([]byte(randomSpaceYAML))
	require.NoError(t, err)

	assert.Equal(t, ModeRandom, s.Mode)
	assert.Equal(t, 20, s.Samples)
	assert.Equal(t, int64(42), s.Seed)
	require.Len(t, s.Parameters, 4)

	config := s.Config()
	assert.Equal(t, 4, config.Threads)
	assert.Equal(t, int64(42), config.Seed)
	assert.True(t, config.Refit)

	specs, err := s.Specs()
	require.NoError(t, err)
	require.Len(t, specs, 4)

	decay, err := specs[0].GenerateValues()
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 0.95, 0.9}, decay)

	epochs, err := specs[1].GenerateValues()
	require.NoError(t, err)
	assert.Equal(t, []any{20, 60, 100}, epochs)

	stepSize, err := specs[2].GenerateValues()
	require.NoError(t, err)
	assert.Len(t, stepSize, 4)

	optimizer, err := specs[3].GenerateValues()
	require.NoError(t, err)
	assert.Equal(t, []any{"sgd", "adam"}, optimizer)

	plan, err := s.Plan()
	require.NoError(t, err)
	assert.Equal(t, ModeRandom, plan.Mode())
	assert.Equal(t, 20, plan.Len())

	// The seed makes plans reproducible.
	again, err := s.Plan()
	require.NoError(t, err)

	for i := 0; i < plan.Len(); i++ {
		assert.True(t, plan.At(i).Equal(again.At(i)), "configuration %d", i)
	}
}

func TestParseSpaceYAMLDefaults(t *testing.T) {
	s, err := ParseSpaceYAML([]byte(`
parameters:
  - name: x
    values: [1, 2, 3]
  - name: y
    range: {low: 0, high: 1, step: 0.5}
`))
	require.NoError(t, err)

	assert.Equal(t, ModeGrid, s.Mode)

	config := s.Config()
	assert.Equal(t, 1, config.Threads)
	assert.False(t, config.Refit)

	plan, err := s.Plan()
	require.NoError(t, err)
	assert.Equal(t, ModeGrid, plan.Mode())
	assert.Equal(t, 9, plan.Len())
}

func TestParseSpaceYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  error
	}{
		{
			name: "empty document",
			yaml: ``,
			err:  ErrInvalidArgument,
		},
		{
			name: "unknown mode",
			yaml: "mode: bayes\nparameters: [{name: x, values: [1]}]",
			err:  ErrInvalidArgument,
		},
		{
			name: "random without samples",
			yaml: "mode: random\nparameters: [{name: x, values: [1]}]",
			err:  ErrInvalidArgument,
		},
		{
			name: "negative threads",
			yaml: "threads: -1\nparameters: [{name: x, values: [1]}]",
			err:  ErrInvalidArgument,
		},
		{
			name: "values and range",
			yaml: "parameters: [{name: x, values: [1], range: {low: 0, high: 1, step: 1}}]",
			err:  ErrInvalidArgument,
		},
		{
			name: "neither values nor range",
			yaml: "parameters: [{name: x}]",
			err:  ErrInvalidArgument,
		},
		{
			name: "duplicate names",
			yaml: "parameters: [{name: x, values: [1]}, {name: x, values: [2]}]",
			err:  ErrInvalidArgument,
		},
		{
			name: "unknown range type",
			yaml: "parameters: [{name: x, range: {low: 0, high: 1, step: 1, type: complex}}]",
			err:  ErrInvalidArgument,
		},
		{
			name: "fractional int range",
			yaml: "parameters: [{name: x, range: {low: 0, high: 10, step: 0.5, type: int}}]",
			err:  ErrInvalidRange,
		},
		{
			name: "inverted range",
			yaml: "parameters: [{name: x, range: {low: 5, high: 1, step: 1}}]",
			err:  ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpaceYAML([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseSpaceYAMLRejectsUnknownFields(t *testing.T) {
	_, err := ParseSpaceYAML([]byte("iterations: 10\nparameters: [{name: x, values: [1]}]"))
	assert.Error(t, err)

	_, err = ParseSpaceYAML([]byte("parameters: [{name: x, values: [1], min: 0}]"))
	assert.Error(t, err)
}

func TestLoadSpace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "space.yaml")
	require.NoError(t, os.WriteFile(path, []byte(randomSpaceYAML), 0o600))

	s, err := LoadSpace(path)
	require.NoError(t, err)
	assert.Equal(t, ModeRandom, s.Mode)
	assert.Len(t, s.Parameters, 4)

	_, err = LoadSpace(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseSpaceYAMLModeAlias(t *testing.T) {
	s, err := ParseSpaceYAML([]byte("mode: sampled\nsamples: 3\nparameters: [{name: x, values: [1, 2]}]"))
	require.NoError(t, err)

	assert.Equal(t, ModeRandom, s.Mode)
}
