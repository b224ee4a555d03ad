package kernel

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/dithermask/pkg/errors"
)

// MaxSeedFraction is the largest share of the grid a seed pattern may cover.
const MaxSeedFraction = 0.5

// Seed returns a white-noise pattern over dims with floor(n·fraction) points,
// each marked by a 1.0 entry, and the number of points. The points are drawn
// from a PCG generator seeded with rngSeed, so the same arguments always yield
// the same pattern.
func Seed(dims []int, fraction float64, rngSeed uint64) ([]float64, int, error) {
	if err := errors.ValidateDimensions(dims); err != nil {
		return nil, 0, err
	}
	if math.IsNaN(fraction) || fraction < 0 || fraction > MaxSeedFraction {
		return nil, 0, errors.New(errors.ErrCodeInvalidInput,
			"seed fraction %g outside [0, %g]", fraction, MaxSeedFraction)
	}

	n := 1
	for _, d := range dims {
		n *= d
	}
	count := min(int(math.Floor(float64(n)*fraction)), n/2)

	rng := rand.New(rand.NewPCG(rngSeed, rngSeed^0x9e3779b97f4a7c15))
	seed := make([]float64, n)
	for _, i := range rng.Perm(n)[:count] {
		seed[i] = 1
	}
	return seed, count, nil
}
