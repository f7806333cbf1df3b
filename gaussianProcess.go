package hparam

import "math"

//////
// Const, vars, types.
//////

// minVariance keeps predicted variance strictly positive so acquisition
// functions never divide by zero or take the root of a negative number.
const minVariance = 1e-12

// gaussianProcess is a lightweight Gaussian Process surrogate over
// configurations encoded as points in [0, 1]^d. It predicts the objective
// (negated score) of configurations that were not evaluated yet.
//
// Fields:
// - X: Observed input points, one per evaluated configuration
// - Y: Observed objective at each input point
// - sigma: Kernel width controlling the smoothness of interpolation
//
// Memory usage:
// - Grows linearly with number of observations
// - Each observation stores a copy of its input point
//
// A gaussianProcess is owned by a single plan builder and is not safe for
// concurrent use.
type gaussianProcess struct {
	// X stores the input points. Length of inner slices must be consistent.
	X [][]float64

	// Y stores the observed objective at each point in X.
	Y []float64

	// sigma is the kernel width parameter.
	// Larger values = smoother interpolation
	// Smaller values = more local influence
	sigma float64
}

//////
// Methods.
//////

// rbfKernel implements the Radial Basis Function (Gaussian) kernel.
//
// Mathematical formula:
//
//	k(x1, x2) = exp(-sum((x1 - x2)^2) / (2 * sigma^2))
//
// Returns 1.0 for identical points and values close to 0.0 for distant
// points. Panics if the vectors have different lengths.
func (gp *gaussianProcess) rbfKernel(x1, x2 []float64) float64 {
	if len(x1) != len(x2) {
		panic("input vectors must have the same length")
	}

	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	return math.Exp(-sum / (2 * gp.sigma * gp.sigma))
}

// Predict estimates the objective and its uncertainty at x.
//
// Returns:
// - mean: Kernel-weighted average of the observed objectives, 0 when x is
// too far from every observation
// - variance: Uncertainty in the prediction, never below minVariance
//
// Returns (0, 1) if no observations exist.
//
// Performance considerations:
// - O(n^2) time where n is the number of observations.
func (gp *gaussianProcess) Predict(x []float64) (mean, variance float64) {
	if len(gp.X) == 0 {
		return 0, 1
	}

	n := float64(len(gp.X))

	k := make([]float64, len(gp.X))
	for i := range gp.X {
		k[i] = gp.rbfKernel(x, gp.X[i])
	}

	var sum, weight float64

	for i := range gp.X {
		sum += k[i] * gp.Y[i]
		weight += k[i]
	}

	// Too far from every observation to say anything: keep the prior mean.
	if weight > minVariance {
		mean = sum / weight
	}

	variance = 1.0

	for i := range gp.X {
		for j := range gp.X {
			variance -= k[i] * k[j] / n
		}
	}

	return mean, math.Max(variance, minVariance)
}

// Update adds an observation. x is copied.
func (gp *gaussianProcess) Update(x []float64, y float64) {
	newX := make([]float64, len(x))
	copy(newX, x)

	gp.X = append(gp.X, newX)
	gp.Y = append(gp.Y, y)
}

// Len returns the number of observations.
func (gp *gaussianProcess) Len() int { return len(gp.X) }

//////
// Factory.
//////

// newGaussianProcess creates an empty surrogate with the given kernel width.
// A non-positive sigma falls back to 1.0.
func newGaussianProcess(sigma float64) *gaussianProcess {
	if sigma <= 0 || math.IsNaN(sigma) {
		sigma = 1.0
	}

	return &gaussianProcess{sigma: sigma}
}
