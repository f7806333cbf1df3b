package hparam

import (
	"context"
	"errors"
)

// dataset and labels stand in for a label matrix and its gold labels.
type dataset struct {
	// offset is added to every score computed on this dataset.
	offset float64
}

type labels []int

// funcModel delegates Fit and Score to test-provided functions.
type funcModel struct {
	cfg     Configuration
	fitted  bool
	fitArgs FitArgs
	fit     func(ctx context.Context, cfg Configuration) error
	score   func(cfg Configuration) (float64, error)
	extra   map[string]any
}

func (m *funcModel) Fit(ctx context.Context, _ dataset, args FitArgs) error {
	m.fitArgs = args

	if m.fit != nil {
		if err := m.fit(ctx, m.cfg); err != nil {
			return err
		}
	}

	m.fitted = true

	return nil
}

func (m *funcModel) Score(_ context.Context, validation dataset, _ labels) (float64, error) {
	if !m.fitted {
		return 0, errors.New("model is not fitted")
	}

	score, err := m.score(m.cfg)
	if err != nil {
		return 0, err
	}

	return score + validation.offset, nil
}

// diagnosedModel is a funcModel that also reports diagnostics.
type diagnosedModel struct {
	*funcModel
}

func (m diagnosedModel) Diagnostics() map[string]any { return m.extra }

func funcFactory(
	fit func(ctx context.Context, cfg Configuration) error,
	score func(cfg Configuration) (float64, error),
) ModelFactoryFunc[dataset, labels] {
	return func(cfg Configuration) (Model[dataset, labels], error) {
		return &funcModel{cfg: cfg, fit: fit, score: score}, nil
	}
}

func funcEvaluator(
	fit func(ctx context.Context, cfg Configuration) error,
	score func(cfg Configuration) (float64, error),
) *Evaluator[dataset, labels] {
	return NewEvaluator[dataset, labels](funcFactory(fit, score), dataset{}, dataset{}, labels{1, 0, 1})
}

// parabola peaks at x = 3.
func parabola(cfg Configuration) (float64, error) {
	x, ok := cfg.Float64("x")
	if !ok {
		return 0, errors.New("missing x")
	}

	return -(x - 3) * (x - 3), nil
}

// product scores decay * epochs, preferring the largest of both.
func product(cfg Configuration) (float64, error) {
	decay, _ := cfg.Float64("decay")
	epochs, _ := cfg.Float64("epochs")

	return decay * epochs, nil
}

func intValues(from, to int) []any {
	values := make([]any, 0, to-from+1)
	for i := from; i <= to; i++ {
		values = append(values, i)
	}

	return values
}
