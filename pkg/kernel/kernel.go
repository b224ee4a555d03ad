// Package kernel builds the inputs the blue-noise generator borrows: the
// spectral filter it applies in the frequency domain and a white-noise seed
// pattern to start from.
//
// Both use the generator's flattening order, where the first axis of dims
// varies fastest.
package kernel

import (
	"math"

	"github.com/matzehuels/dithermask/pkg/errors"
)

// Gaussian returns the frequency response of a periodic isotropic Gaussian
// blur with spatial standard deviation sigma, in pixels.
//
// Bin f on an axis of length N uses the signed frequency f' (f for the lower
// half of the spectrum, f-N for the upper half) and contributes the factor
// exp(-2π²σ²(f'/N)²). The response is the product over all axes, so the DC
// term is exactly 1.
func Gaussian(dims []int, sigma float64) ([]float64, error) {
	if err := errors.ValidateDimensions(dims); err != nil {
		return nil, err
	}
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sigma must be positive and finite, got %g", sigma)
	}

	n := 1
	for _, d := range dims {
		n *= d
	}

	// Per-axis factors, reused for every pixel.
	factors := make([][]float64, len(dims))
	for axis, length := range dims {
		factors[axis] = axisResponse(length, sigma)
	}

	response := make([]float64, n)
	coord := make([]int, len(dims))
	for i := range response {
		v := 1.0
		for axis, c := range coord {
			v *= factors[axis][c]
		}
		response[i] = v

		// Advance the coordinate, first axis fastest.
		for axis := range coord {
			coord[axis]++
			if coord[axis] < dims[axis] {
				break
			}
			coord[axis] = 0
		}
	}
	return response, nil
}

func axisResponse(length int, sigma float64) []float64 {
	out := make([]float64, length)
	scale := -2 * math.Pi * math.Pi * sigma * sigma
	for f := range out {
		out[f] = math.Exp(scale * square(float64(signedFrequency(f, length))/float64(length)))
	}
	return out
}

// signedFrequency maps bin f of an n-point transform to its signed frequency.
// For even n the Nyquist bin maps to +n/2; the response is even so the sign
// does not matter.
func signedFrequency(f, n int) int {
	if 2*f <= n {
		return f
	}
	return f - n
}

func square(x float64) float64 { return x * x }

// Flat returns an all-ones response of length n. Filtering with it leaves the
// pattern unchanged up to the transform's scale factor.
func Flat(n int) []float64 {
	k := make([]float64, n)
	for i := range k {
		k[i] = 1
	}
	return k
}
