package ports

import (
	"context"

	"gopsis/domain/dataset"
	"gopsis/domain/model"
)

// FitConfig carries the sampler settings for one fit call. Parallelism is
// an explicit per-call parameter, never ambient process-wide state.
type FitConfig struct {
	Chains      int
	Iterations  int // kept iterations per chain, after warmup
	Warmup      int
	Seed        uint64
	Parallelism int
}

// Fitter produces a posterior sample set for a model specification against
// an observation table. Non-convergence is reported as warnings on the
// returned fit, not as an error; errors are reserved for configuration
// failures such as undefined offsets.
type Fitter interface {
	Fit(ctx context.Context, spec model.Spec, table *dataset.Table, cfg FitConfig) (*model.Fit, error)
}
