// Package pkg provides the libraries behind dithermask, a generator of
// blue-noise threshold masks.
//
// # Overview
//
// A threshold mask assigns every pixel of a grid a unique rank. Turning on
// the pixels ranked below k yields a binary pattern with exactly k points,
// and because the ranks come from the void-and-cluster method, every such
// pattern is spread evenly with no low-frequency clumps. Ordered dithering
// with the mask compares each image pixel to its mask value.
//
// The pkg directory is organized into three areas:
//
//  1. Generator: [kernel] and [bluenoise]
//  2. Mask handling: [mask] and [io]
//  3. Infrastructure: [pipeline], [cache], [config], [api], [observability]
//
// # Architecture
//
// The data flow through dithermask:
//
//	dims, sigma, seed fraction, rng seed
//	         ↓
//	    [kernel] package (Gaussian frequency response + white-noise seed)
//	         ↓
//	    [bluenoise] package (homogenize, then rank every pixel)
//	         ↓
//	    [mask] package (normalized ranks, thresholds, images)
//	         ↓
//	PNG/TIFF/BMP/JSON output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/dithermask/pkg/bluenoise"
//	    "github.com/matzehuels/dithermask/pkg/kernel"
//	)
//
//	dims := []int{64, 64}
//	k, _ := kernel.Gaussian(dims, 1.5)
//	seed, n, _ := kernel.Seed(dims, 0.1, 42)
//	res, _ := bluenoise.Rank(dims, n, seed, k)
//	// res.Values[i] is the threshold of pixel i, first axis fastest.
//
// # Main Packages
//
// ## Generator
//
// [kernel] - Frequency-domain filters and seed patterns. [kernel.Gaussian]
// evaluates a Gaussian's transfer function on the FFT grid; [kernel.Seed]
// draws a reproducible white-noise pattern.
//
// [bluenoise] - The void-and-cluster generator. [bluenoise.Locate] finds the
// tightest cluster or largest void of a pattern; [bluenoise.Rank] orders
// every pixel and reports how it got there.
//
// ## Mask Handling
//
// [mask] - The threshold mask type, binary patterns at a level, grayscale
// images and image encoders.
//
// [io] - JSON import and export of masks.
//
// ## Infrastructure
//
// [pipeline] - Generate and render with per-stage caching. Used by both the
// CLI and the HTTP API so they behave the same.
//
// [cache] - Cache backends: file (CLI), redis and mongo (shared across API
// instances) and null.
//
// [config] - The TOML config file.
//
// [api] - The HTTP API.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// # Testing
//
//	go test ./...                # All tests
//	go test ./pkg/bluenoise/...  # Specific package
//	go test -run Example ./...   # Examples only
//
// Tests against real redis and mongo servers run when DITHERMASK_REDIS_ADDR
// or DITHERMASK_MONGO_URI is set.
//
// [kernel]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/kernel
// [bluenoise]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/bluenoise
// [mask]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/mask
// [io]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/config
// [api]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/api
// [observability]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/observability
// [kernel.Gaussian]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/kernel#Gaussian
// [kernel.Seed]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/kernel#Seed
// [bluenoise.Locate]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/bluenoise#Locate
// [bluenoise.Rank]: https://pkg.go.dev/github.com/matzehuels/dithermask/pkg/bluenoise#Rank
package pkg
