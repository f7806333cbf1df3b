// Package hparam provides hyperparameter search for any trainable model:
// parameter spaces, grid and random search plans, a Gaussian Process guided
// plan, and a runner that trains candidates on a bounded worker pool and
// keeps the best one.
//
// # Features
//
// The package includes the following key features:
//
//   - Parameter Spaces: explicit value lists, and linear or logarithmic
//     numeric ranges over any integer or float type
//   - Grid Search: the full Cartesian product, in a deterministic order
//   - Random Search: n uniform draws from a caller-seeded random source,
//     reproducible for a fixed seed
//   - Guided Search: candidates ranked by a Gaussian Process surrogate and an
//     acquisition function (UCB, PI, EI or Thompson sampling)
//   - Bounded Parallelism: never more than Config.Threads models training at
//     once, each evaluation owning its own model
//   - Failure Isolation: a configuration that fails to train or score is
//     recorded and skipped, it never stops the search
//   - Progress Monitoring: updates on a channel after every evaluation
//   - YAML Spaces: search spaces and runner options loaded from files
//
// # Models
//
// Any model can be searched as long as it implements Model, and a
// ModelFactory builds one per configuration:
//
//	type Model[D, L any] interface {
//	    Fit(ctx context.Context, train D, args FitArgs) error
//	    Score(ctx context.Context, validation D, labels L) (float64, error)
//	}
//
// Scores are maximized. D and L are whatever the model needs; the search
// passes them through untouched.
//
// # Searching
//
//	factory := hparam.ModelFactoryFunc[Dataset, Labels](func(cfg hparam.Configuration) (hparam.Model[Dataset, Labels], error) {
//	    decay, _ := cfg.Float64("decay")
//	    epochs, _ := cfg.Int("epochs")
//	    return NewLabelModel(decay, epochs), nil
//	})
//
//	evaluator := hparam.NewEvaluator(factory, train, dev, devLabels)
//
//	config := hparam.DefaultConfig()
//	config.Threads = 4
//	config.Seed = 123
//
//	summary, err := hparam.RandomSearch(ctx, config, 20, evaluator,
//	    hparam.List("decay", 1.0, 0.95, 0.9),
//	    hparam.Range("epochs", 20, 100, 10),
//	    hparam.LogRange("step_size", 1e-5, 1e-2, 1.0, 10),
//	)
//
// # Errors
//
//   - ErrInvalidRange, ErrInvalidArgument: malformed spaces or arguments,
//     returned before anything is trained
//   - ErrEvaluationFailed: wrapped in RunResult.Diagnostics.Err for each
//     failed configuration
//   - ErrSearchExhausted: no configuration produced a usable score
//
// # Cancellation
//
// Wrap the context passed to a search with a timeout or cancel function.
// When it ends, the runner stops dispatching, abandons evaluations still in
// flight and returns the results gathered so far together with ctx.Err().
package hparam
