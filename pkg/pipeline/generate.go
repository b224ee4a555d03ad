package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/dithermask/pkg/bluenoise"
	"github.com/matzehuels/dithermask/pkg/kernel"
	"github.com/matzehuels/dithermask/pkg/mask"
)

// Generated is the output of the generate stage, in the form it is cached.
type Generated struct {
	Mask       *mask.Mask    `json:"mask"`
	Seeds      int           `json:"seeds"`
	Iterations int           `json:"iterations"`
	Inverted   bool          `json:"inverted"`
	Duration   time.Duration `json:"duration"`
}

// Generate builds the filter and seed pattern for opts and ranks the grid.
// It does not touch any cache.
func Generate(ctx context.Context, opts Options) (*Generated, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, err
	}

	k, err := kernel.Gaussian(opts.Dims, opts.Sigma)
	if err != nil {
		return nil, err
	}
	seed, nSeeds, err := kernel.Seed(opts.Dims, opts.SeedFraction, opts.Seed)
	if err != nil {
		return nil, err
	}

	rankOpts := []bluenoise.Option{
		bluenoise.WithContext(ctx),
		bluenoise.WithLogger(opts.Logger),
		bluenoise.WithMaxIterations(opts.MaxIterations),
	}
	if opts.Progress != nil {
		rankOpts = append(rankOpts, bluenoise.WithProgress(opts.Progress))
	}

	res, err := bluenoise.Rank(opts.Dims, nSeeds, seed, k, rankOpts...)
	if err != nil {
		return nil, err
	}
	m, err := mask.New(res.Dims, res.Values)
	if err != nil {
		return nil, err
	}
	return &Generated{
		Mask:       m,
		Seeds:      res.Seeds,
		Iterations: res.Iterations,
		Inverted:   res.Inverted,
		Duration:   res.Duration,
	}, nil
}
