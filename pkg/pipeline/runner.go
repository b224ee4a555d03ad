package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dithermask/pkg/cache"
	"github.com/matzehuels/dithermask/pkg/io"
	"github.com/matzehuels/dithermask/pkg/mask"
	"github.com/matzehuels/dithermask/pkg/observability"
)

// Key types reported to cache hooks.
const (
	keyTypeMask     = "mask"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Generate
	genStart := time.Now()
	gen, genHit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Mask = gen.Mask
	result.Stats.Pixels = gen.Mask.Len()
	result.Stats.Seeds = gen.Seeds
	result.Stats.Iterations = gen.Iterations
	result.Stats.Inverted = gen.Inverted
	result.Stats.GenerateTime = time.Since(genStart)
	result.CacheInfo.GenerateHit = genHit

	result.MaskHash, err = MaskHash(gen.Mask)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("generated mask",
		"dims", opts.Dims,
		"seeds", gen.Seeds,
		"iterations", gen.Iterations,
		"cached", genHit,
		"duration", result.Stats.GenerateTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, gen.Mask, result.MaskHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo generates a mask with caching and returns cache hit
// info. With opts.Refresh the cache is not read but the fresh mask is stored.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*Generated, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.MaskKey(opts.MaskKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached Generated
			if err := json.Unmarshal(data, &cached); err == nil && cached.Mask != nil {
				if m, err := mask.New(cached.Mask.Dims, cached.Mask.Values); err == nil {
					cached.Mask = m
					observability.Cache().OnCacheHit(ctx, keyTypeMask)
					return &cached, true, nil
				}
			}
			// Undecodable entry, fall through to regenerate
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeMask)

	observability.Pipeline().OnGenerateStart(ctx, opts.Dims)
	start := time.Now()
	gen, err := Generate(ctx, opts)
	iterations := 0
	if gen != nil {
		iterations = gen.Iterations
	}
	observability.Pipeline().OnGenerateComplete(ctx, opts.Dims, iterations, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(gen); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLMask); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeMask, len(data))
		}
	}

	return gen, false, nil
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (*Generated, error) {
	gen, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return gen, err
}

// RenderWithCacheInfo encodes artifacts with caching and returns whether all
// of them came from cache. Only the formats missing from the cache are
// encoded.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *mask.Mask, maskHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	if maskHash == "" {
		var err error
		if maskHash, err = MaskHash(m); err != nil {
			return nil, false, err
		}
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(maskHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing

	observability.Pipeline().OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := Render(ctx, m, renderOpts)
	observability.Pipeline().OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(maskHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
	}

	r.Logger.Debug("encoded artifacts", "formats", missing, "cached", len(opts.Formats)-len(missing))
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, m *mask.Mask, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, m, "", opts)
	return artifacts, err
}

// MaskHash returns the content hash of a mask's JSON form.
func MaskHash(m *mask.Mask) (string, error) {
	var buf bytes.Buffer
	if err := io.WriteJSON(m, &buf); err != nil {
		return "", fmt.Errorf("hash mask: %w", err)
	}
	return cache.Hash(buf.Bytes()), nil
}

// SortedFormats returns the artifact formats of a result in a stable order.
func (res *Result) SortedFormats() []string {
	formats := make([]string, 0, len(res.Artifacts))
	for f := range res.Artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
