package hparam

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

//////
// Exported functionalities.
//////

// DefaultConfig returns a default configuration: serial evaluation, seed 0,
// reuse of the best model and results in completion order.
func DefaultConfig() Config {
	return Config{
		Threads:     1,
		Seed:        0,
		ReportOrder: CompletionOrder,
	}
}

// GridSearch evaluates every combination of the given parameters and returns
// the best one.
//
// Type Parameters:
//   - D: The dataset handle type passed to Fit and Score
//   - L: The label set type passed to Score
//
// Usage example:
//
//	evaluator := hparam.NewEvaluator[Dataset, Labels](factory, train, dev, devLabels)
//
//	config := hparam.DefaultConfig()
//	config.Threads = 4
//
//	summary, err := hparam.GridSearch(ctx, config, evaluator,
//	    hparam.List("decay", 1.0, 0.95, 0.9),
//	    hparam.List("epochs", 20, 50, 100),
//	)
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println(summary.Best.Configuration, summary.Best.Score)
//
// Returns:
// - *SearchSummary: Best configuration, its fitted model and every result
// - error: ErrInvalidArgument/ErrInvalidRange for a malformed space,
// ErrSearchExhausted when every configuration failed, or ctx.Err()
func GridSearch[D, L any](ctx context.Context, config Config, evaluator *Evaluator[D, L], specs ...ParameterSpec) (*SearchSummary[D, L], error) {
	plan, err := NewGridPlan(specs...)
	if err != nil {
		return nil, err
	}

	return NewRunner[D, L](config).Run(ctx, plan, evaluator)
}

// RandomSearch evaluates n configurations sampled uniformly from the given
// parameters and returns the best one. The random source is seeded with
// config.Seed, so a fixed seed reproduces the same plan.
func RandomSearch[D, L any](ctx context.Context, config Config, n int, evaluator *Evaluator[D, L], specs ...ParameterSpec) (*SearchSummary[D, L], error) {
	rng := rand.New(rand.NewSource(config.Seed))

	plan, err := NewRandomPlan(rng, n, specs...)
	if err != nil {
		return nil, err
	}

	return NewRunner[D, L](config).Run(ctx, plan, evaluator)
}

// GuidedSearch evaluates warmup random configurations, then n configurations
// proposed by a Gaussian Process surrogate fitted on the warm-up results.
//
// How it works:
// 1. Samples and evaluates warmup random configurations
// 2. Fits the surrogate on the warm-up scores
// 3. Builds a guided plan of n configurations (see NewGuidedPlan)
// 4. Evaluates it and returns one summary covering both phases
//
// In the returned summary, guided results follow the warm-up results: their
// Index is offset by warmup. Progress updates of both phases share the
// summary's ID and count towards warmup+n. A warm-up phase in which every configuration
// failed is not fatal; the guided phase then samples at random.
func GuidedSearch[D, L any](
	ctx context.Context,
	config Config,
	warmup, n int,
	opts GuidedOptions,
	evaluator *Evaluator[D, L],
	specs ...ParameterSpec,
) (*SearchSummary[D, L], error) {
	rng := rand.New(rand.NewSource(config.Seed))

	warmPlan, err := NewRandomPlan(rng, warmup, specs...)
	if err != nil {
		return nil, fmt.Errorf("warm-up plan: %w", err)
	}

	runner := NewRunner[D, L](config)

	// Both phases report progress as a single search.
	total := warmup + n

	summary, err := runner.
		withScope(progressScope{id: uuid.NewString(), total: total, bestIndex: -1}).
		Run(ctx, warmPlan, evaluator)
	if err != nil && !errors.Is(err, ErrSearchExhausted) {
		return summary, err
	}

	guidedPlan, err := NewGuidedPlan(rng, n, opts, summary.Results(), specs...)
	if err != nil {
		return summary, fmt.Errorf("guided plan: %w", err)
	}

	guided, err := runner.
		withScope(progressScope{
			id:        summary.ID,
			total:     total,
			completed: summary.Len(),
			offset:    summary.Planned,
			best:      summary.Best,
			bestIndex: summary.BestIndex,
		}).
		Run(ctx, guidedPlan, evaluator)
	if guided != nil {
		summary.merge(guided)
	}

	if err != nil && !errors.Is(err, ErrSearchExhausted) {
		return summary, err
	}

	if summary.BestIndex < 0 {
		return summary, fmt.Errorf("%w: %d configurations evaluated", ErrSearchExhausted, summary.Len())
	}

	return summary, nil
}

// merge appends the results of a follow-up search, offsetting its plan
// indices and sequence numbers, and keeps whichever best is better.
func (s *SearchSummary[D, L]) merge(next *SearchSummary[D, L]) {
	indexOffset := s.Planned
	sequenceOffset := len(s.results)

	for _, r := range next.results {
		r.Index += indexOffset
		r.Sequence += sequenceOffset
		s.results = append(s.results, r)
	}

	if next.BestIndex >= 0 {
		best := next.Best
		best.Index += indexOffset
		best.Sequence += sequenceOffset

		if s.BestIndex < 0 || best.better(s.Best) {
			s.Best = best
			s.BestIndex = best.Index
			s.BestModel = next.BestModel
		}
	}

	s.Mode = next.Mode
	s.Planned += next.Planned
	s.Elapsed += next.Elapsed
}
