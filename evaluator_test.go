package hparam

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xConfig(t *testing.T, x float64) Configuration {
	t.Helper()

	cfg, err := NewConfiguration([]string{"x"}, []any{x})
	require.NoError(t, err)

	return cfg
}

func TestEvaluateSuccess(t *testing.T) {
	evaluator := NewEvaluator[dataset, labels](funcFactory(nil, parabola), dataset{}, dataset{offset: 10}, nil)

	args := FitArgs{"n_epochs": 50}

	score, model, diag := evaluator.Evaluate(context.Background(), xConfig(t, 1), args)

	assert.Equal(t, 6.0, score)
	assert.False(t, diag.Failed)
	assert.NoError(t, diag.Err)
	assert.GreaterOrEqual(t, diag.Elapsed.Nanoseconds(), int64(0))

	fm, ok := model.(*funcModel)
	require.True(t, ok)
	assert.True(t, fm.fitted)
	assert.Equal(t, args, fm.fitArgs)

	// Each Fit gets its own copy of the arguments.
	fm.fitArgs["n_epochs"] = 1
	assert.Equal(t, 50, args["n_epochs"])
}

func TestEvaluateDiagnostics(t *testing.T) {
	factory := ModelFactoryFunc[dataset, labels](func(cfg Configuration) (Model[dataset, labels], error) {
		return diagnosedModel{&funcModel{
			cfg:   cfg,
			score: parabola,
			extra: map[string]any{"loss": 0.25, "per_class": []float64{0.9, 0.7}},
		}}, nil
	})

	evaluator := NewEvaluator[dataset, labels](factory, dataset{}, dataset{}, nil)

	_, _, diag := evaluator.Evaluate(context.Background(), xConfig(t, 3), nil)

	assert.False(t, diag.Failed)
	assert.Equal(t, 0.25, diag.Extra["loss"])
	assert.Equal(t, []float64{0.9, 0.7}, diag.Extra["per_class"])
}

func TestEvaluateFailuresAreRecovered(t *testing.T) {
	boom := errors.New("diverged")

	tests := []struct {
		name    string
		factory ModelFactory[dataset, labels]
		message string
	}{
		{
			name: "construct error",
			factory: ModelFactoryFunc[dataset, labels](func(Configuration) (Model[dataset, labels], error) {
				return nil, boom
			}),
			message: "construct",
		},
		{
			name: "nil model",
			factory: ModelFactoryFunc[dataset, labels](func(Configuration) (Model[dataset, labels], error) {
				return nil, nil
			}),
			message: "nil model",
		},
		{
			name: "fit error",
			factory: funcFactory(func(context.Context, Configuration) error {
				return boom
			}, parabola),
			message: "fit",
		},
		{
			name: "score error",
			factory: funcFactory(nil, func(Configuration) (float64, error) {
				return 0, boom
			}),
			message: "score",
		},
		{
			name: "fit panics",
			factory: funcFactory(func(context.Context, Configuration) error {
				panic("numerical overflow")
			}, parabola),
			message: "panic: numerical overflow",
		},
		{
			name: "nan score",
			factory: funcFactory(nil, func(Configuration) (float64, error) {
				return math.NaN(), nil
			}),
			message: "unusable",
		},
		{
			name: "negative infinity score",
			factory: funcFactory(nil, func(Configuration) (float64, error) {
				return math.Inf(-1), nil
			}),
			message: "unusable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluator := NewEvaluator[dataset, labels](tt.factory, dataset{}, dataset{}, nil)

			score, model, diag := evaluator.Evaluate(context.Background(), xConfig(t, 2), nil)

			assert.True(t, math.IsInf(score, -1))
			assert.Nil(t, model)
			assert.True(t, diag.Failed)
			assert.ErrorIs(t, diag.Err, ErrEvaluationFailed)
			assert.Contains(t, diag.Err.Error(), tt.message)
			assert.Contains(t, diag.Err.Error(), "x=2")
		})
	}
}

func TestEvaluateWithoutFactory(t *testing.T) {
	evaluator := &Evaluator[dataset, labels]{}

	_, _, diag := evaluator.Evaluate(context.Background(), xConfig(t, 1), nil)

	assert.True(t, diag.Failed)
	assert.ErrorIs(t, diag.Err, ErrEvaluationFailed)
}
