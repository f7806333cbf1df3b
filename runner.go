package hparam

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/thalesfsp/hparam/logger"
)

//////
// Const, vars, types.
//////

// Runner evaluates every configuration of a plan, serially or on a bounded
// worker pool, and selects the best one.
type Runner[D, L any] struct {
	config Config
	logger *slog.Logger
	scope  *progressScope
}

// progressScope places one Run inside a search made of several phases, so
// the IDs and counters it reports describe the whole search.
type progressScope struct {
	// id is shared by every phase.
	id string

	// total is the number of configurations across every phase.
	total int

	// completed is the number of evaluations finished by earlier phases.
	completed int

	// offset is added to this phase's plan indices.
	offset int

	// best is the best result of earlier phases, already offset. Only
	// meaningful when bestIndex >= 0.
	best      RunResult
	bestIndex int
}

// SearchSummary is the final report of a search.
type SearchSummary[D, L any] struct {
	// ID uniquely identifies the search.
	ID string

	// Mode of the plan that was evaluated.
	Mode Mode

	// Planned is the number of configurations in the plan.
	Planned int

	// BestIndex is the plan index of the best configuration, -1 if none.
	BestIndex int

	// Best is the winning result. Only meaningful when BestIndex >= 0.
	Best RunResult

	// BestModel is the fitted model for the best configuration.
	BestModel Model[D, L]

	// Elapsed is the wall time of the whole search.
	Elapsed time.Duration

	order   ReportOrder
	results []RunResult
}

// outcome travels from a worker back to the orchestrator.
type outcome[D, L any] struct {
	index int
	score float64
	model Model[D, L]
	diag  Diagnostics
}

//////
// Factory.
//////

// NewRunner creates a Runner. A nil Config.Logger discards logs.
func NewRunner[D, L any](config Config) *Runner[D, L] {
	l := config.Logger
	if l == nil {
		l = logger.Discard()
	}

	return &Runner[D, L]{config: config, logger: l}
}

//////
// Methods.
//////

// withScope returns a copy of r whose Run reports progress as one phase of
// a larger search.
func (r *Runner[D, L]) withScope(scope progressScope) *Runner[D, L] {
	scoped := *r
	scoped.scope = &scope

	return &scoped
}

// Run evaluates plan with evaluator and returns the summary.
//
// How it works:
//  1. Config.Threads workers (at most one per configuration) pull plan
//     indices from a queue. Each evaluation builds its own model.
//  2. Results are funneled back to the calling goroutine, which records
//     them in completion order and tracks the current best.
//  3. Once every configuration finished, the best is the strictly highest
//     score, ties going to the earliest plan index.
//  4. The model trained for the best configuration is reused, or
//     retrained when Config.Refit is set.
//
// Errors:
//   - ErrInvalidArgument: nil plan, empty plan, or nil evaluator
//   - ErrSearchExhausted: every configuration failed
//   - ctx.Err(): the context ended. In-flight evaluations are abandoned and
//     the summary holds the results gathered so far
//
// The summary is non-nil whenever evaluation started, including on error.
func (r *Runner[D, L]) Run(ctx context.Context, plan *SearchPlan, evaluator *Evaluator[D, L]) (*SearchSummary[D, L], error) {
	if plan == nil || plan.Len() == 0 {
		return nil, fmt.Errorf("%w: plan is empty", ErrInvalidArgument)
	}

	if evaluator == nil || evaluator.Factory == nil {
		return nil, fmt.Errorf("%w: evaluator has no model factory", ErrInvalidArgument)
	}

	id := uuid.NewString()
	if r.scope != nil && r.scope.id != "" {
		id = r.scope.id
	}

	summary := &SearchSummary[D, L]{
		ID:        id,
		Mode:      plan.Mode(),
		Planned:   plan.Len(),
		BestIndex: -1,
		order:     r.config.ReportOrder,
		results:   make([]RunResult, 0, plan.Len()),
	}

	threads := r.config.Threads
	if threads < 1 {
		threads = 1
	}

	if threads > plan.Len() {
		threads = plan.Len()
	}

	log := r.logger.With("search_id", summary.ID)

	log.Info("search started",
		"mode", plan.Mode(),
		"configurations", plan.Len(),
		"threads", threads,
	)

	start := time.Now()

	bestModel, err := r.evaluateAll(ctx, plan, evaluator, threads, summary, log)

	summary.Elapsed = time.Since(start)

	if err != nil {
		log.Error("search aborted",
			"completed", len(summary.results),
			"error", err,
		)

		return summary, err
	}

	if summary.BestIndex < 0 {
		log.Error("search exhausted", "configurations", plan.Len())

		return summary, fmt.Errorf("%w: %d configurations evaluated", ErrSearchExhausted, len(summary.results))
	}

	if r.config.Refit || bestModel == nil {
		score, model, diag := evaluator.Evaluate(ctx, summary.Best.Configuration, r.config.FitArgs)
		if diag.Failed {
			return summary, fmt.Errorf("refit best configuration: %w", diag.Err)
		}

		log.Debug("best configuration refit",
			"index", summary.BestIndex,
			"score", score,
			"elapsed", diag.Elapsed,
		)

		bestModel = model
	}

	summary.BestModel = bestModel

	log.Info("search finished",
		"best_index", summary.BestIndex,
		"best_score", summary.Best.Score,
		"best_configuration", summary.Best.Configuration.String(),
		"failed", summary.FailedCount(),
		"elapsed", summary.Elapsed,
	)

	return summary, nil
}

// evaluateAll dispatches every plan index to the pool and records results as
// they arrive. It returns the model of the best result so far, which is only
// retained when it will be reused.
func (r *Runner[D, L]) evaluateAll(
	ctx context.Context,
	plan *SearchPlan,
	evaluator *Evaluator[D, L],
	threads int,
	summary *SearchSummary[D, L],
	log *slog.Logger,
) (Model[D, L], error) {
	n := plan.Len()

	// Both channels are sized to the plan so abandoned workers never block.
	tasks := make(chan int, n)
	for i := 0; i < n; i++ {
		tasks <- i
	}
	close(tasks)

	results := make(chan outcome[D, L], n)

	for w := 0; w < threads; w++ {
		go func() {
			for idx := range tasks {
				if ctx.Err() != nil {
					return
				}

				score, model, diag := evaluator.Evaluate(ctx, plan.At(idx), r.config.FitArgs)
				results <- outcome[D, L]{index: idx, score: score, model: model, diag: diag}
			}
		}()
	}

	var bestModel Model[D, L]

	for len(summary.results) < n {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case o := <-results:
			result := RunResult{
				Index:         o.index,
				Sequence:      len(summary.results),
				Configuration: plan.At(o.index),
				Score:         o.score,
				Diagnostics:   o.diag,
			}

			summary.results = append(summary.results, result)

			if !result.Failed() && (summary.BestIndex < 0 || result.better(summary.Best)) {
				summary.Best = result
				summary.BestIndex = result.Index

				// Only the current best model is kept alive.
				if !r.config.Refit {
					bestModel = o.model
				}
			}

			if result.Failed() {
				log.Warn("evaluation failed",
					"index", result.Index,
					"configuration", result.Configuration.String(),
					"error", result.Diagnostics.Err,
				)
			} else {
				log.Debug("evaluation finished",
					"index", result.Index,
					"configuration", result.Configuration.String(),
					"score", result.Score,
					"elapsed", result.Diagnostics.Elapsed,
				)
			}

			r.sendProgress(summary, result)
		}
	}

	return bestModel, nil
}

// sendProgress emits a progress update without blocking.
func (r *Runner[D, L]) sendProgress(summary *SearchSummary[D, L], last RunResult) {
	if r.config.ProgressChan == nil {
		return
	}

	update := ProgressUpdate{
		SearchID:  summary.ID,
		Completed: len(summary.results),
		Total:     summary.Planned,
		Last:      last,
		BestIndex: summary.BestIndex,
		BestScore: FailedScore,
	}

	best := summary.Best

	if scope := r.scope; scope != nil {
		update.Completed += scope.completed
		update.Total = scope.total
		update.Last.Index += scope.offset
		update.Last.Sequence += scope.completed

		if update.BestIndex >= 0 {
			best.Index += scope.offset
			best.Sequence += scope.completed
			update.BestIndex = best.Index
		}

		// Earlier phases win ties, as in SearchSummary.merge.
		if scope.bestIndex >= 0 && (update.BestIndex < 0 || scope.best.better(best)) {
			best = scope.best
			update.BestIndex = scope.bestIndex
		}
	}

	if update.BestIndex >= 0 {
		update.BestScore = best.Score
	}

	select {
	case r.config.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}

// Results returns a copy of the recorded results in the summary's default
// order: completion order unless Config.ReportOrder asked for plan order.
func (s *SearchSummary[D, L]) Results() []RunResult {
	return s.ResultsIn(s.order)
}

// ResultsIn returns a copy of the recorded results in the given order.
func (s *SearchSummary[D, L]) ResultsIn(order ReportOrder) []RunResult {
	results := make([]RunResult, len(s.results))
	copy(results, s.results)

	if order == PlanOrder {
		sort.Slice(results, func(i, j int) bool {
			return results[i].Index < results[j].Index
		})
	}

	return results
}

// Len returns the number of recorded results.
func (s *SearchSummary[D, L]) Len() int { return len(s.results) }

// FailedCount returns how many recorded results failed.
func (s *SearchSummary[D, L]) FailedCount() int {
	var failed int

	for _, r := range s.results {
		if r.Failed() {
			failed++
		}
	}

	return failed
}
