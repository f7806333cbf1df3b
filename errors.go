package hparam

import "errors"

//////
// Errors.
//////

var (
	// ErrInvalidRange is returned when a RangeParameter has malformed bounds,
	// a non-positive step, or an unusable logarithmic base.
	ErrInvalidRange = errors.New("invalid parameter range")

	// ErrInvalidArgument is returned when a plan or a runner is given
	// malformed input, e.g. a missing sample count, a nil random source, or
	// duplicated parameter names.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEvaluationFailed marks a single configuration whose construction,
	// training or scoring failed. It is recorded in the run's Diagnostics and
	// never aborts the search.
	ErrEvaluationFailed = errors.New("evaluation failed")

	// ErrSearchExhausted is returned when no configuration produced a usable
	// score.
	ErrSearchExhausted = errors.New("search exhausted: every configuration failed")
)
