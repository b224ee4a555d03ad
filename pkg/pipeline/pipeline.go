// Package pipeline provides the mask pipeline shared by the CLI and the HTTP
// API.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Generate: build the Gaussian filter and white-noise seed, then rank
//     every pixel with the void-and-cluster method
//  2. Render: encode the mask in the requested formats (PNG, TIFF, BMP, JSON)
//
// Each stage is cached separately. A generated mask is keyed by every option
// that affects it; an artifact is keyed by the mask's content hash and its
// encoding options, so re-encoding a cached mask never re-runs the generator.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Dims:    []int{64, 64},
//	    Formats: []string{"png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dithermask/pkg/bluenoise"
	"github.com/matzehuels/dithermask/pkg/cache"
	"github.com/matzehuels/dithermask/pkg/errors"
	"github.com/matzehuels/dithermask/pkg/kernel"
	"github.com/matzehuels/dithermask/pkg/mask"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, config file and API
// =============================================================================

const (
	// DefaultSigma is the spatial standard deviation of the Gaussian filter,
	// in pixels.
	DefaultSigma = 1.5

	// DefaultSeedFraction is the share of pixels in the initial pattern.
	DefaultSeedFraction = 0.1

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultDepth is the default grayscale bit depth.
	DefaultDepth = 16

	// DefaultFormat is the output format used when none is requested.
	DefaultFormat = string(mask.FormatPNG)
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the mask pipeline.
// This struct supports JSON serialization for API requests.
//
// Zero values select the defaults, so a zero SeedFraction or Seed cannot be
// requested here; call package bluenoise directly for a seedless run.
type Options struct {
	// Generate options
	Dims          []int   `json:"dims"`
	Sigma         float64 `json:"sigma,omitempty"`
	SeedFraction  float64 `json:"seed_fraction,omitempty"`
	Seed          uint64  `json:"seed,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"` // 0 = pixel count
	Refresh       bool    `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Depth   int      `json:"depth,omitempty"`
	Level   float64  `json:"level,omitempty"` // 0 = grayscale mask

	// Runtime options (not serialized)
	Logger   *log.Logger            `json:"-"`
	Progress bluenoise.ProgressFunc `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Mask is the generated threshold mask.
	Mask *mask.Mask

	// MaskHash is the content hash of the mask's JSON form.
	MaskHash string

	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and generator information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Pixels       int
	Seeds        int
	Iterations   int
	Inverted     bool
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool // Whether the mask came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks every format name and returns them in canonical
// form ("tif" becomes "tiff"), without duplicates.
func ValidateFormats(formats []string) ([]string, error) {
	out := make([]string, 0, len(formats))
	seen := make(map[string]bool, len(formats))
	for _, s := range formats {
		f, err := mask.ParseFormat(s)
		if err != nil {
			return nil, err
		}
		if !seen[string(f)] {
			seen[string(f)] = true
			out = append(out, string(f))
		}
	}
	return out, nil
}

// ValidateDepth checks that a bit depth is 8 or 16.
func ValidateDepth(depth int) error {
	if depth != 8 && depth != 16 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must be 8 or 16, got %d", depth)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForGenerate validates and sets defaults for mask generation.
func (o *Options) ValidateForGenerate() error {
	if err := errors.ValidateDimensions(o.Dims); err != nil {
		return err
	}
	if o.Sigma == 0 {
		o.Sigma = DefaultSigma
	}
	if o.Sigma < 0 || math.IsNaN(o.Sigma) || math.IsInf(o.Sigma, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "sigma must be positive, got %g", o.Sigma)
	}
	if o.SeedFraction == 0 {
		o.SeedFraction = DefaultSeedFraction
	}
	if o.SeedFraction < 0 || o.SeedFraction > kernel.MaxSeedFraction {
		return errors.New(errors.ErrCodeInvalidInput, "seed fraction %g outside (0, %g]", o.SeedFraction, kernel.MaxSeedFraction)
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.MaxIterations < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max iterations must not be negative, got %d", o.MaxIterations)
	}
	o.setLogger()
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	formats, err := ValidateFormats(o.Formats)
	if err != nil {
		return err
	}
	o.Formats = formats
	if o.Depth == 0 {
		o.Depth = DefaultDepth
	}
	if err := ValidateDepth(o.Depth); err != nil {
		return err
	}
	if err := errors.ValidateLevel(o.Level); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Pixels returns the pixel count of the grid.
func (o *Options) Pixels() int {
	n := 1
	for _, d := range o.Dims {
		n *= d
	}
	return n
}

// MaskKeyOpts returns cache key options for mask generation.
func (o *Options) MaskKeyOpts() cache.MaskKeyOpts {
	return cache.MaskKeyOpts{
		Dims:          o.Dims,
		Sigma:         o.Sigma,
		SeedFraction:  o.SeedFraction,
		Seed:          o.Seed,
		MaxIterations: o.MaxIterations,
	}
}

// ArtifactKeyOpts returns cache key options for one encoded format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Depth: o.Depth, Level: o.Level}
	if format == string(mask.FormatJSON) {
		// JSON ignores depth and level.
		opts.Depth, opts.Level = 0, 0
	}
	return opts
}
