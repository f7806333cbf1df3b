package hparam

import "math"

//////
// Acquisition functions for guided plans.
// Each one scores a candidate from the surrogate's predicted objective
// (negated score) and its variance. Lower values are more promising.
//////

// UCB implements the (lower) confidence bound acquisition function.
//
// How it works:
// - Subtracts a multiple of the uncertainty from the predicted objective
// - params.Beta weights exploration (higher = more exploration)
//
// When to use:
// - General purpose, the default of DefaultGuidedOptions
//
// Example:
//
//	value := UCB(-0.8, 0.2, AcquisitionParams{Beta: 2.0})
func UCB(mean, variance float64, params AcquisitionParams) float64 {
	return mean - params.Beta*math.Sqrt(variance)
}

// ProbabilityOfImprovement (PI) ranks candidates by how likely they are to
// beat params.BestSoFar by at least params.Xi.
//
// When to use:
// - When small, reliable improvements matter more than large ones
func ProbabilityOfImprovement(mean, variance float64, params AcquisitionParams) float64 {
	// mean and BestSoFar are negated scores, so improving means going below
	// BestSoFar and a small z is a likely improvement.
	z := (mean - params.BestSoFar - params.Xi) / math.Sqrt(variance)

	return normalCDF(z)
}

// ExpectedImprovement (EI) combines the probability of improving on
// params.BestSoFar with the size of the improvement.
//
// When to use:
// - When the magnitude of improvement matters
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)

	z := (mean - params.BestSoFar - params.Xi) / sigma

	return (mean-params.BestSoFar-params.Xi)*normalCDF(z) + sigma*normalPDF(z)
}

// ThompsonSampling draws one sample from the predicted distribution.
//
// Warning:
//   - params.RandomState must not be nil. Guided plans fill it with their own
//     random source so draws stay reproducible for a fixed seed.
func ThompsonSampling(mean, variance float64, params AcquisitionParams) float64 {
	return mean + math.Sqrt(variance)*params.RandomState.NormFloat64()
}
