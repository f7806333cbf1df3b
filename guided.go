package hparam

import (
	"fmt"
	"math"
	"math/rand"
)

// DefaultGuidedOptions returns default options for guided plans.
func DefaultGuidedOptions() GuidedOptions {
	return GuidedOptions{
		Candidates:      50,
		AcquisitionFunc: UCB,
		AcqParams: AcquisitionParams{
			Beta: 2.0,
			Xi:   0.01,
		},
		Sigma: 0.3,
	}
}

// NewGuidedPlan builds n configurations, each the most promising of
// opts.Candidates random candidates according to a Gaussian Process surrogate
// fitted on history.
//
// Parameters:
// - rng: Random source for candidates and Thompson sampling. Required
// - n: Number of configurations, must be positive
// - opts: Candidate count, acquisition function and kernel width
// - history: Earlier results over the same parameters. Failed results and
// configurations outside the current space are ignored
// - specs: The parameters to search
//
// How it works:
//  1. Every configuration is encoded as the normalized position of each of
//     its values within that parameter's generated values, so list, linear
//     and logarithmic parameters share the [0, 1] scale.
//  2. The surrogate learns the objective -score from history.
//  3. For each pick, candidates are drawn uniformly and the one with the
//     lowest acquisition value wins.
//  4. The winner is added to the surrogate at its predicted mean, which
//     shrinks the variance around it and spreads later picks.
//
// Without usable history there is nothing to learn from and the plan is
// plain random sampling.
func NewGuidedPlan(rng *rand.Rand, n int, opts GuidedOptions, history []RunResult, specs ...ParameterSpec) (*SearchPlan, error) {
	if err := checkSampling(rng, n); err != nil {
		return nil, err
	}

	if opts.Candidates <= 0 {
		return nil, fmt.Errorf("%w: candidate count must be positive, got %d", ErrInvalidArgument, opts.Candidates)
	}

	s, err := resolveSpace(specs)
	if err != nil {
		return nil, err
	}

	acquisition := opts.AcquisitionFunc
	if acquisition == nil {
		acquisition = UCB
	}

	params := opts.AcqParams
	if params.RandomState == nil {
		params.RandomState = rng
	}

	gp := newGaussianProcess(opts.Sigma)
	params.BestSoFar = math.MaxFloat64

	for _, r := range history {
		if r.Failed() {
			continue
		}

		x, ok := s.encodeConfiguration(r.Configuration)
		if !ok {
			continue
		}

		objective := -r.Score

		gp.Update(x, objective)

		if objective < params.BestSoFar {
			params.BestSoFar = objective
		}
	}

	configurations := make([]Configuration, 0, n)

	for len(configurations) < n {
		if gp.Len() == 0 {
			configurations = append(configurations, s.configuration(s.sample(rng)))

			continue
		}

		var (
			pick            []int
			pickX           []float64
			bestAcquisition = math.MaxFloat64
		)

		for c := 0; c < opts.Candidates; c++ {
			candidate := s.sample(rng)
			x := s.encode(candidate)

			mean, variance := gp.Predict(x)

			if acq := acquisition(mean, variance, params); pick == nil || acq < bestAcquisition {
				bestAcquisition = acq
				pick = candidate
				pickX = x
			}
		}

		configurations = append(configurations, s.configuration(pick))

		mean, _ := gp.Predict(pickX)
		gp.Update(pickX, mean)
	}

	return s.plan(ModeGuided, configurations), nil
}

//////
// Helpers.
//////

// encode maps value indices to normalized positions in [0, 1].
func (s *space) encode(indices []int) []float64 {
	x := make([]float64, len(indices))

	for i, idx := range indices {
		if size := len(s.values[i]); size > 1 {
			x[i] = float64(idx) / float64(size-1)
		}
	}

	return x
}

// encodeConfiguration encodes cfg, reporting false when cfg does not assign
// a known value to every parameter of the space.
func (s *space) encodeConfiguration(cfg Configuration) ([]float64, bool) {
	indices := make([]int, len(s.names))

	for i, name := range s.names {
		v, ok := cfg.Get(name)
		if !ok {
			return nil, false
		}

		idx := indexOf(s.values[i], v)
		if idx < 0 {
			return nil, false
		}

		indices[i] = idx
	}

	return s.encode(indices), true
}
