package bluenoise

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// Phase identifies a stage of the ranking run, reported to progress callbacks.
type Phase int

const (
	// PhaseHomogenize relaxes the seed pattern.
	PhaseHomogenize Phase = iota
	// PhaseSeeds ranks the relaxed seed points.
	PhaseSeeds
	// PhaseFill fills voids up to half the grid.
	PhaseFill
	// PhaseDrain drains the complemented pattern.
	PhaseDrain
)

// String returns the phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseHomogenize:
		return "homogenize"
	case PhaseSeeds:
		return "seeds"
	case PhaseFill:
		return "fill"
	case PhaseDrain:
		return "drain"
	}
	return "unknown"
}

// ProgressFunc receives progress updates. For PhaseHomogenize total is the
// iteration cap rather than a known amount of work.
type ProgressFunc func(phase Phase, done, total int)

// Option configures a ranking run.
type Option func(*options)

type options struct {
	maxIterations int
	progress      ProgressFunc
	logger        *log.Logger
	ctx           context.Context
}

// WithMaxIterations caps the number of swaps the homogenize phase may perform
// before the run fails with NON_CONVERGENCE. Zero or a negative value selects
// the default, which is the pixel count.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// WithProgress registers a progress callback. It is called synchronously from
// the ranking loop, so it should return quickly.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// WithLogger sets the logger used for debug-level phase reporting.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithContext makes the run stop with ctx.Err() once ctx is done. The
// context is checked once per ranked pixel.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

func gatherOptions(nPixels int, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxIterations <= 0 {
		o.maxIterations = nPixels
	}
	if o.progress == nil {
		o.progress = func(Phase, int, int) {}
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	if o.logger == nil {
		o.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}
