package bluenoise_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dithermask/pkg/bluenoise"
	"github.com/matzehuels/dithermask/pkg/errors"
	"github.com/matzehuels/dithermask/pkg/kernel"
)

// assertPermutation checks that ranks hold every value of 0..n-1 exactly once.
func assertPermutation(t *testing.T, ranks []int) {
	t.Helper()
	sorted := slices.Clone(ranks)
	slices.Sort(sorted)
	for i, r := range sorted {
		if !assert.Equal(t, i, r, "ranks must be a permutation of 0..n-1") {
			return
		}
	}
}

func gaussianInput(t *testing.T, dims []int, sigma, fraction float64, rngSeed uint64) ([]float64, int, []float64) {
	t.Helper()
	k, err := kernel.Gaussian(dims, sigma)
	require.NoError(t, err)
	seed, n, err := kernel.Seed(dims, fraction, rngSeed)
	require.NoError(t, err)
	return seed, n, k
}

func TestRank_PermutationAndBounds(t *testing.T) {
	dims := []int{8, 8}
	seed, nSeeds, k := gaussianInput(t, dims, 1.5, 0.1, 7)

	res, err := bluenoise.Rank(dims, nSeeds, seed, k)
	require.NoError(t, err)
	require.Len(t, res.Ranks, 64)
	require.Len(t, res.Values, 64)

	assertPermutation(t, res.Ranks)
	assert.Equal(t, 0.0, slices.Min(res.Values))
	assert.Equal(t, 1.0, slices.Max(res.Values))
	for i, v := range res.Values {
		assert.InDelta(t, float64(res.Ranks[i])/63, v, 1e-15)
	}
}

func TestRank_SeedPointsTakeLowestRanks(t *testing.T) {
	dims := []int{8, 8}
	seed, nSeeds, k := gaussianInput(t, dims, 1.5, 0.1, 3)
	require.Equal(t, 6, nSeeds)

	res, err := bluenoise.Rank(dims, nSeeds, seed, k)
	require.NoError(t, err)

	// The homogenized pattern is exactly the set of pixels ranked below
	// nSeeds, so thresholding at that level reproduces a pattern with the
	// same number of points.
	low := 0
	for _, r := range res.Ranks {
		if r < nSeeds {
			low++
		}
	}
	assert.Equal(t, nSeeds, low)
}

func TestRank_Deterministic(t *testing.T) {
	dims := []int{8, 6}
	seed, nSeeds, k := gaussianInput(t, dims, 1.3, 0.2, 11)

	a, err := bluenoise.Generate(dims, nSeeds, seed, k)
	require.NoError(t, err)
	b, err := bluenoise.Generate(dims, nSeeds, seed, k)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRank_HomogenizeConservesPoints(t *testing.T) {
	dims := []int{8, 8}
	seed, nSeeds, k := gaussianInput(t, dims, 1.5, 0.15, 5)

	res, err := bluenoise.Rank(dims, nSeeds, seed, k)
	require.NoError(t, err)
	assert.Equal(t, res.Points[0], res.Points[1])
	assert.Equal(t, nSeeds, res.Points[0])
}

func TestRank_FlatKernelScenario(t *testing.T) {
	dims := []int{4, 4}
	res, err := bluenoise.Rank(dims, 2, []float64{1, 1}, kernel.Flat(16))
	require.NoError(t, err)

	assert.False(t, res.Inverted, "2 of 16 pixels is a minority")
	assertPermutation(t, res.Ranks)

	// The two seed pixels are the last ones removed in the seed phase.
	got := []int{res.Ranks[0], res.Ranks[1]}
	slices.Sort(got)
	assert.Equal(t, []int{0, 1}, got)

	assert.Equal(t, 0.0, slices.Min(res.Values))
	assert.Equal(t, 1.0, slices.Max(res.Values))
}

func TestRank_NoSeeds(t *testing.T) {
	dims := []int{6, 6}
	k, err := kernel.Gaussian(dims, 1.5)
	require.NoError(t, err)

	res, err := bluenoise.Rank(dims, 0, nil, k)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Iterations)
	assertPermutation(t, res.Ranks)
}

func TestRank_SinglePixel(t *testing.T) {
	res, err := bluenoise.Rank([]int{1}, 0, []float64{1}, []float64{1})
	require.NoError(t, err)

	assert.True(t, res.Inverted, "1 of 1 pixel triggers the majority inversion")
	assert.Equal(t, []int{0}, res.Ranks)
	assert.Equal(t, []float64{0}, res.Values)
}

func TestRank_MajoritySeedIsInverted(t *testing.T) {
	dims := []int{4, 4}
	seed := make([]float64, 16)
	for i := 0; i < 10; i++ {
		seed[i] = 1
	}
	k, err := kernel.Gaussian(dims, 1)
	require.NoError(t, err)

	res, err := bluenoise.Rank(dims, 6, seed, k)
	require.NoError(t, err)
	assert.True(t, res.Inverted)
	assertPermutation(t, res.Ranks)

	// The complement of the seed occupies pixels 10..15; after
	// homogenizing, six points are ranked first.
	low := 0
	for _, r := range res.Ranks {
		if r < 6 {
			low++
		}
	}
	assert.Equal(t, 6, low)
}

func TestRank_HalfFullSeed(t *testing.T) {
	dims := []int{4, 2}
	seed := []float64{1, 0, 1, 0, 1, 0, 1, 0}
	k, err := kernel.Gaussian(dims, 0.8)
	require.NoError(t, err)

	res, err := bluenoise.Rank(dims, 4, seed, k)
	require.NoError(t, err)
	assert.True(t, res.Inverted)
	assertPermutation(t, res.Ranks)
}

func TestRank_HigherDimensions(t *testing.T) {
	for _, dims := range [][]int{{16}, {4, 4, 2}, {3, 2, 2, 2}} {
		seed, nSeeds, k := gaussianInput(t, dims, 1, 0.125, 9)
		res, err := bluenoise.Rank(dims, nSeeds, seed, k)
		require.NoError(t, err, "dims %v", dims)
		assertPermutation(t, res.Ranks)
	}
}

func TestRank_NonFloatOneSeedValuesAreEmpty(t *testing.T) {
	dims := []int{4, 4}
	// Only exact 1.0 marks a point; anything else would break the count.
	seed := []float64{0.999, 2, -1, 1}
	res, err := bluenoise.Rank(dims, 1, seed, kernel.Flat(16))
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 1}, res.Points)

	// A flat filter sees every empty pixel as equally void, so the single
	// point moves to the lowest index and stays there.
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 0, res.Ranks[0])
}

func TestRank_Progress(t *testing.T) {
	dims := []int{4, 4}
	calls := map[bluenoise.Phase]int{}
	_, err := bluenoise.Rank(dims, 2, []float64{1, 1}, kernel.Flat(16),
		bluenoise.WithProgress(func(p bluenoise.Phase, done, total int) {
			calls[p]++
			assert.LessOrEqual(t, done, total)
		}))
	require.NoError(t, err)

	assert.Equal(t, 2, calls[bluenoise.PhaseSeeds])
	assert.Equal(t, 6, calls[bluenoise.PhaseFill])
	assert.Equal(t, 8, calls[bluenoise.PhaseDrain])
}

func TestRank_Errors(t *testing.T) {
	flat16 := kernel.Flat(16)
	tests := []struct {
		name   string
		dims   []int
		nSeeds int
		seed   []float64
		kernel []float64
		code   errors.Code
	}{
		{"empty dims", nil, 0, nil, nil, errors.ErrCodeInvalidDimensions},
		{"zero extent", []int{4, 0}, 0, nil, nil, errors.ErrCodeInvalidDimensions},
		{"short kernel", []int{4, 4}, 0, nil, kernel.Flat(15), errors.ErrCodeShapeMismatch},
		{"long kernel", []int{4, 4}, 0, nil, kernel.Flat(17), errors.ErrCodeShapeMismatch},
		{"long seed", []int{4, 4}, 0, make([]float64, 17), flat16, errors.ErrCodeShapeMismatch},
		{"negative seeds", []int{4, 4}, -1, nil, flat16, errors.ErrCodeInvalidSeedCount},
		{"too many seeds", []int{4, 4}, 9, nil, flat16, errors.ErrCodeInvalidSeedCount},
		{"seed count disagrees", []int{4, 4}, 2, []float64{1, 1, 1}, flat16, errors.ErrCodeInvalidSeedCount},
		{"nan kernel", []int{2}, 0, nil, []float64{1, nan()}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := bluenoise.Rank(tt.dims, tt.nSeeds, tt.seed, tt.kernel)
			require.Error(t, err)
			assert.Nil(t, res, "no partial results")
			assert.True(t, errors.Is(err, tt.code), "got %v, want code %s", err, tt.code)
		})
	}
}

func TestRank_NonConvergence(t *testing.T) {
	dims := []int{8, 8}
	k, err := kernel.Gaussian(dims, 1.5)
	require.NoError(t, err)

	// Six adjacent points need several moves to spread out.
	seed := []float64{1, 1, 1, 1, 1, 1}
	_, err = bluenoise.Rank(dims, 6, seed, k, bluenoise.WithMaxIterations(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNonConvergence), "got %v", err)

	res, err := bluenoise.Rank(dims, 6, seed, k)
	require.NoError(t, err)
	assert.Greater(t, res.Iterations, 1)
}

func TestGenerate_KernelNotModified(t *testing.T) {
	dims := []int{4, 4}
	k, err := kernel.Gaussian(dims, 1)
	require.NoError(t, err)
	orig := slices.Clone(k)

	_, err = bluenoise.Generate(dims, 2, []float64{1, 1}, k)
	require.NoError(t, err)
	assert.Equal(t, orig, k)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestRank_Cancelled(t *testing.T) {
	dims := []int{8, 8}
	seed, nSeeds, k := gaussianInput(t, dims, 1.5, 0.1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := bluenoise.Rank(dims, nSeeds, seed, k, bluenoise.WithContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}
