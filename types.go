package hparam

import (
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// FailedScore is the score recorded for a configuration whose evaluation
// failed. It never wins best-selection.
var FailedScore = math.Inf(-1)

// FitArgs are extra arguments forwarded verbatim to every Model.Fit call,
// e.g. {"n_epochs": 50, "print_every": 10}.
type FitArgs map[string]any

// clone returns a shallow copy so concurrent Fit calls never share one map.
func (a FitArgs) clone() FitArgs {
	if a == nil {
		return nil
	}

	c := make(FitArgs, len(a))
	for k, v := range a {
		c[k] = v
	}

	return c
}

// Diagnostics is the run metadata recorded alongside a score.
type Diagnostics struct {
	// Elapsed is the wall time spent constructing, fitting and scoring.
	Elapsed time.Duration

	// Failed is true when the configuration produced no usable score.
	Failed bool

	// Err is the failure cause. It wraps ErrEvaluationFailed.
	Err error

	// Extra holds whatever the model reported through Diagnoser, e.g.
	// per-class scores or training loss.
	Extra map[string]any
}

// RunResult is the outcome of evaluating one configuration. RunResults are
// never mutated once recorded.
type RunResult struct {
	// Index is the configuration's position in the plan.
	Index int

	// Sequence is the completion order, starting at 0.
	Sequence int

	// Configuration that was evaluated.
	Configuration Configuration

	// Score reported by the model, or FailedScore.
	Score float64

	// Diagnostics of the run.
	Diagnostics Diagnostics
}

// Failed reports whether the run produced no usable score.
func (r RunResult) Failed() bool { return r.Diagnostics.Failed }

// better reports whether r beats other: strictly higher score, ties broken by
// earlier plan position. Failed results never win.
func (r RunResult) better(other RunResult) bool {
	if r.Failed() {
		return false
	}

	if other.Failed() {
		return true
	}

	if r.Score != other.Score {
		return r.Score > other.Score
	}

	return r.Index < other.Index
}

// ReportOrder selects how SearchSummary.Results orders its rows.
type ReportOrder int

const (
	// CompletionOrder lists results in the order evaluations finished.
	CompletionOrder ReportOrder = iota

	// PlanOrder lists results in the order of the plan.
	PlanOrder
)

// ProgressUpdate represents the state of a search after one evaluation
// finished.
type ProgressUpdate struct {
	// SearchID identifies the search emitting the update.
	SearchID string

	// Completed is the number of finished evaluations.
	Completed int

	// Total is the number of configurations in the plan.
	Total int

	// Last is the result that just finished.
	Last RunResult

	// BestIndex is the plan index of the best result so far, -1 if none.
	BestIndex int

	// BestScore is the best score so far, FailedScore if none.
	BestScore float64
}

// Config holds all configuration parameters for a Runner.
//
// Fields explanation:
// - Threads: Worker-pool size. 1 (the default) evaluates serially
// - Seed: Seed for the random source of random and guided plans
// - FitArgs: Forwarded verbatim to each model's Fit call
// - Refit: Re-train the best configuration instead of reusing its model
// - ReportOrder: Default ordering of SearchSummary.Results
// - Logger: Structured logger, silent when nil
// - ProgressChan: Receives one update per evaluation, nil disables
//
// Usage example:
//
//	config := hparam.DefaultConfig()
//	config.Threads = 4
//	config.Seed = 123
//	config.FitArgs = hparam.FitArgs{"n_epochs": 100}
//
// Note:
//   - The pool never runs more than Threads evaluations at once. Size it for
//     the memory each training run needs, not for the CPU count.
type Config struct {
	// Threads is the number of concurrent evaluations. Values below 1 are
	// treated as 1.
	Threads int

	// Seed seeds the random source used by RandomSearch and GuidedSearch.
	// The search never seeds from the clock.
	Seed int64

	// FitArgs are forwarded to every Fit call.
	FitArgs FitArgs

	// Refit re-trains the best configuration once the search is over. When
	// false, the model trained during the search is reused.
	Refit bool

	// ReportOrder is the default order of SearchSummary.Results.
	ReportOrder ReportOrder

	// Logger receives structured search events. Nil discards them.
	Logger *slog.Logger

	// ProgressChan is used to send progress updates during the search.
	// Updates are dropped when the channel is full.
	ProgressChan chan<- ProgressUpdate
}

// AcquisitionFunc defines the signature for acquisition functions used by
// guided plans to rank candidate configurations.
//
// Parameters:
// - mean: Predicted objective at a candidate (lower is better)
// - variance: Uncertainty of that prediction
// - params: Additional parameters needed by specific acquisition functions
//
// Returns:
// - float64: Acquisition value (lower values indicate more promising points)
//
// The objective is the negated score, so a lower objective is a higher score.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// AcquisitionParams holds parameters used by the acquisition functions to
// balance exploring uncertain regions against exploiting known good ones.
type AcquisitionParams struct {
	// Beta controls the exploration weight of UCB. Typical values range
	// from 0.1 to 5.0, with 2.0 being a good default.
	Beta float64

	// Xi is the minimum improvement PI and EI look for. Typical values range
	// from 0.01 to 0.1.
	Xi float64

	// BestSoFar is the lowest objective observed so far. Set by the guided
	// plan builder.
	BestSoFar float64

	// RandomState is the random source used by Thompson sampling. When nil,
	// the guided plan's own random source is used.
	RandomState *rand.Rand
}

// GuidedOptions controls how NewGuidedPlan picks configurations.
type GuidedOptions struct {
	// Candidates is the number of random candidates ranked for each pick.
	// Recommended range: 50-500.
	Candidates int

	// AcquisitionFunc ranks candidates. Defaults to UCB.
	AcquisitionFunc AcquisitionFunc

	// AcqParams holds the parameters for the acquisition function.
	AcqParams AcquisitionParams

	// Sigma is the surrogate's kernel width over normalized parameter
	// positions in [0, 1].
	Sigma float64
}
