package hparam

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridPlanCardinality(t *testing.T) {
	plan, err := NewGridPlan(
		List("a", 1, 2, 3),
		Range("b", 0.0, 0.3, 0.1),
	)
	require.NoError(t, err)

	assert.Equal(t, ModeGrid, plan.Mode())
	assert.Equal(t, 12, plan.Len())
	assert.Equal(t, []string{"a", "b"}, plan.Names())
}

func TestGridPlanOrder(t *testing.T) {
	plan, err := NewGridPlan(
		List("decay", 1.0, 0.95, 0.9),
		List("epochs", 20, 50, 100),
	)
	require.NoError(t, err)
	require.Equal(t, 9, plan.Len())

	want := [][2]any{
		{1.0, 20}, {1.0, 50}, {1.0, 100},
		{0.95, 20}, {0.95, 50}, {0.95, 100},
		{0.9, 20}, {0.9, 50}, {0.9, 100},
	}

	for i, cfg := range plan.Configurations() {
		assert.Equal(t, []any{want[i][0], want[i][1]}, cfg.Values(), "configuration %d", i)
	}
}

func TestRandomPlanSize(t *testing.T) {
	plan, err := NewRandomPlan(rand.New(rand.NewSource(1)), 5,
		List("decay", 1.0, 0.95, 0.9),
		List("epochs", 20, 50, 100),
	)
	require.NoError(t, err)

	assert.Equal(t, ModeRandom, plan.Mode())
	assert.Equal(t, 5, plan.Len())

	allowedDecay := []any{1.0, 0.95, 0.9}
	allowedEpochs := []any{20, 50, 100}

	for _, cfg := range plan.Configurations() {
		decay, _ := cfg.Get("decay")
		epochs, _ := cfg.Get("epochs")

		assert.Contains(t, allowedDecay, decay)
		assert.Contains(t, allowedEpochs, epochs)
	}
}

func TestRandomPlanReproducible(t *testing.T) {
	build := func(seed int64) []Configuration {
		plan, err := NewRandomPlan(rand.New(rand.NewSource(seed)), 20,
			List("decay", 1.0, 0.95, 0.9),
			LogRange("step_size", 1e-5, 1e-2, 1.0, 10),
			Range("epochs", 10, 100, 10),
		)
		require.NoError(t, err)

		return plan.Configurations()
	}

	first := build(42)
	second := build(42)

	require.Len(t, second, len(first))

	for i := range first {
		assert.True(t, first[i].Equal(second[i]), "configuration %d differs", i)
	}
}

func TestRandomPlanArguments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	spec := List("x", 1, 2)

	_, err := NewRandomPlan(rng, 0, spec)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewRandomPlan(rng, -3, spec)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewRandomPlan(nil, 5, spec)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPlanSpecValidation(t *testing.T) {
	_, err := NewGridPlan()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewGridPlan(List("x", 1), List("x", 2))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewGridPlan(List("", 1))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewGridPlan(List("x", 1), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewGridPlan(Range("x", 5, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewGridPlan(
		List("a", intValues(1, 1024)...),
		List("b", intValues(1, 1024)...),
		List("c", 1, 2),
	)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildPlan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	specs := []ParameterSpec{List("x", 1, 2, 3), List("y", "a", "b")}

	grid, err := BuildPlan(ModeGrid, 0, nil, specs...)
	require.NoError(t, err)
	assert.Equal(t, 6, grid.Len())

	random, err := BuildPlan(ModeRandom, 4, rng, specs...)
	require.NoError(t, err)
	assert.Equal(t, 4, random.Len())

	guided, err := BuildPlan(ModeGuided, 3, rng, specs...)
	require.NoError(t, err)
	assert.Equal(t, ModeGuided, guided.Mode())
	assert.Equal(t, 3, guided.Len())

	_, err = BuildPlan(ModeRandom, 0, rng, specs...)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = BuildPlan("bayes", 3, rng, specs...)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildPlanModeAliases(t *testing.T) {
	specs := []ParameterSpec{List("x", 1, 2, 3)}

	exhaustive, err := BuildPlan(ModeExhaustive, 0, nil, specs...)
	require.NoError(t, err)
	assert.Equal(t, ModeGrid, exhaustive.Mode())
	assert.Equal(t, 3, exhaustive.Len())

	sampled, err := BuildPlan(ModeSampled, 5, rand.New(rand.NewSource(1)), specs...)
	require.NoError(t, err)
	assert.Equal(t, ModeRandom, sampled.Mode())
	assert.Equal(t, 5, sampled.Len())
}
