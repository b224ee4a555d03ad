// Package bluenoise ranks the pixels of an n-dimensional grid with the
// void-and-cluster method, producing a blue-noise threshold mask.
//
// # Overview
//
// A blue-noise mask assigns every pixel a rank such that thresholding the
// normalized ranks at any level yields a homogeneous, non-clumped point set.
// The ranking is computed by repeatedly measuring local point density with a
// low-pass filter and moving points between the tightest cluster and the
// largest void:
//
//  1. Homogenize: the seed pattern is relaxed until removing its tightest
//     cluster and refilling the largest void puts the point back where it was.
//  2. Rank seeds: the relaxed seed points are removed tightest-first; the last
//     point removed gets rank 0.
//  3. Rank the rest: voids are filled up to half the grid, then the pattern is
//     complemented and the remaining pixels are drained tightest-first.
//
// # Density
//
// Density is the circular convolution of the binary pattern with the filter,
// computed in the frequency domain. The filter is supplied by the caller as a
// frequency response with one real multiplier per pixel (see package kernel
// for a Gaussian). The transform plans are built once per call and reused for
// every iteration.
//
// # Layout
//
// Grids are flattened with the first axis varying fastest. A kernel, seed and
// result all use the same order.
//
// # Usage
//
//	k, _ := kernel.Gaussian([]int{64, 64}, 1.5)
//	seed, n, _ := kernel.Seed([]int{64, 64}, 0.1, 42)
//	values, err := bluenoise.Generate([]int{64, 64}, n, seed, k)
//
// The result is deterministic: identical input always yields bit-identical
// output.
package bluenoise
