package hparam

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Model is a trainable, scorable model. D is the dataset handle type and L
// the label set type; both are opaque to the search and passed through
// verbatim.
//
// A Model is owned by a single evaluation. The search never calls one Model
// from more than one goroutine.
type Model[D, L any] interface {
	// Fit trains the model on train. args are the runner's FitArgs.
	Fit(ctx context.Context, train D, args FitArgs) error

	// Score evaluates the fitted model against labeled validation data.
	// Higher is better.
	Score(ctx context.Context, validation D, labels L) (float64, error)
}

// ModelFactory constructs a fresh, untrained Model for a configuration.
type ModelFactory[D, L any] interface {
	Construct(cfg Configuration) (Model[D, L], error)
}

// ModelFactoryFunc adapts a function to ModelFactory.
type ModelFactoryFunc[D, L any] func(cfg Configuration) (Model[D, L], error)

// Construct implements ModelFactory.
func (f ModelFactoryFunc[D, L]) Construct(cfg Configuration) (Model[D, L], error) {
	return f(cfg)
}

// Diagnoser is optionally implemented by models that report training
// diagnostics, e.g. a loss curve or a vector of per-class scores.
type Diagnoser interface {
	Diagnostics() map[string]any
}

// Evaluator trains and scores one configuration at a time against fixed
// training and validation data.
type Evaluator[D, L any] struct {
	// Factory builds one model per evaluation.
	Factory ModelFactory[D, L]

	// Train is the training data handle.
	Train D

	// Validation is the validation data handle.
	Validation D

	// Labels are the validation labels.
	Labels L
}

// NewEvaluator creates an Evaluator.
func NewEvaluator[D, L any](factory ModelFactory[D, L], train, validation D, labels L) *Evaluator[D, L] {
	return &Evaluator[D, L]{
		Factory:    factory,
		Train:      train,
		Validation: validation,
		Labels:     labels,
	}
}

// Evaluate constructs a model for cfg, fits it and scores it.
//
// A failure in any step, a panic, or a NaN/-Inf score yields FailedScore, a
// nil model and Diagnostics.Failed set, with Diagnostics.Err wrapping
// ErrEvaluationFailed. Evaluate itself never fails, so one bad
// configuration cannot halt a search.
func (e *Evaluator[D, L]) Evaluate(ctx context.Context, cfg Configuration, args FitArgs) (float64, Model[D, L], Diagnostics) {
	start := time.Now()

	score, model, extra, err := e.evaluate(ctx, cfg, args)

	diag := Diagnostics{
		Elapsed: time.Since(start),
		Extra:   extra,
	}

	if err != nil {
		diag.Failed = true
		diag.Err = fmt.Errorf("%w: %s: %w", ErrEvaluationFailed, cfg, err)

		return FailedScore, nil, diag
	}

	return score, model, diag
}

func (e *Evaluator[D, L]) evaluate(ctx context.Context, cfg Configuration, args FitArgs) (score float64, model Model[D, L], extra map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, model, extra = 0, nil, nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if e.Factory == nil {
		return 0, nil, nil, errors.New("no model factory")
	}

	model, err = e.Factory.Construct(cfg)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("construct: %w", err)
	}

	if model == nil {
		return 0, nil, nil, errors.New("construct: factory returned a nil model")
	}

	if err := model.Fit(ctx, e.Train, args.clone()); err != nil {
		return 0, nil, nil, fmt.Errorf("fit: %w", err)
	}

	score, err = model.Score(ctx, e.Validation, e.Labels)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("score: %w", err)
	}

	if math.IsNaN(score) || math.IsInf(score, -1) {
		return 0, nil, nil, fmt.Errorf("score: unusable value %v", score)
	}

	if d, ok := model.(Diagnoser); ok {
		extra = d.Diagnostics()
	}

	return score, model, extra, nil
}
