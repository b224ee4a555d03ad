package bluenoise

import (
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dithermask/pkg/errors"
)

// Result holds the outcome of a ranking run.
type Result struct {
	// Dims is the grid extent, first axis fastest.
	Dims []int

	// Ranks holds the integer rank of every pixel, a permutation of 0..n-1.
	Ranks []int

	// Values holds Ranks divided by n-1, in [0, 1]. A single-pixel grid
	// yields a single 0.
	Values []float64

	// Seeds is the number of seed points ranked first.
	Seeds int

	// Inverted reports whether the seed pattern was complemented because it
	// covered at least half of the grid.
	Inverted bool

	// Iterations is the number of point moves the homogenize phase made.
	Iterations int

	// Points is the occupied pixel count going into and coming out of the
	// homogenize phase. The two are always equal.
	Points [2]int

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Generate ranks every pixel of the grid and returns the normalized ranks.
// See Rank for the meaning of the arguments.
func Generate(dims []int, nSeeds int, seed, kernel []float64, opts ...Option) ([]float64, error) {
	res, err := Rank(dims, nSeeds, seed, kernel, opts...)
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}

// Rank runs the void-and-cluster method over a grid of extent dims.
//
// seed is the initial pattern: an entry equal to 1.0 marks an occupied pixel,
// anything else an empty one. It may be shorter than the grid; missing
// entries are empty. A pattern covering at least half the grid is
// complemented first, and the resulting point count must equal nSeeds, which
// must lie in [0, n/2].
//
// kernel is the filter's frequency response, one real multiplier per pixel in
// the grid's flattened order. It is read but never modified.
//
// Errors carry the codes INVALID_DIMENSIONS, SHAPE_MISMATCH,
// INVALID_SEED_COUNT, INVALID_INPUT and NON_CONVERGENCE. A run cancelled
// through WithContext returns the context's error.
func Rank(dims []int, nSeeds int, seed, kernel []float64, opts ...Option) (*Result, error) {
	start := time.Now()

	n, err := validate(dims, nSeeds, seed, kernel)
	if err != nil {
		return nil, err
	}
	o := gatherOptions(n, opts)

	state := make([]bool, n)
	occupied := 0
	for i, v := range seed {
		if v == 1.0 {
			state[i] = true
			occupied++
		}
	}

	inverted := 2*occupied >= n
	if inverted {
		complement(state)
		occupied = n - occupied
	}
	if occupied != nSeeds {
		return nil, errors.New(errors.ErrCodeInvalidSeedCount,
			"seed pattern holds %d points after majority inversion, want %d", occupied, nSeeds)
	}

	a := &assembler{
		n:      n,
		nSeeds: nSeeds,
		state:  state,
		ranks:  make([]int, n),
		tf:     newTransform(dims, kernel),
		opts:   o,
		logger: o.logger.With("pixels", n, "seeds", nSeeds),
	}

	iterations, err := a.homogenize()
	if err != nil {
		return nil, err
	}
	after := count(a.state)

	if err := a.rankSeeds(); err != nil {
		return nil, err
	}
	if err := a.rankRemainder(); err != nil {
		return nil, err
	}

	res := &Result{
		Dims:       append([]int(nil), dims...),
		Ranks:      a.ranks,
		Values:     normalize(a.ranks),
		Seeds:      nSeeds,
		Inverted:   inverted,
		Iterations: iterations,
		Points:     [2]int{occupied, after},
		Duration:   time.Since(start),
	}
	a.logger.Debug("ranked grid", "iterations", iterations, "inverted", inverted, "duration", res.Duration)
	return res, nil
}

func validate(dims []int, nSeeds int, seed, kernel []float64) (int, error) {
	if err := errors.ValidateDimensions(dims); err != nil {
		return 0, err
	}
	n := 1
	for _, d := range dims {
		n *= d
	}

	if len(kernel) != n {
		return 0, errors.New(errors.ErrCodeShapeMismatch, "kernel has %d values, grid %v has %d pixels", len(kernel), dims, n)
	}
	if len(seed) > n {
		return 0, errors.New(errors.ErrCodeShapeMismatch, "seed has %d values, grid %v has %d pixels", len(seed), dims, n)
	}
	if nSeeds < 0 || nSeeds > n/2 {
		return 0, errors.New(errors.ErrCodeInvalidSeedCount, "seed count %d outside [0, %d]", nSeeds, n/2)
	}
	for i, k := range kernel {
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return 0, errors.New(errors.ErrCodeInvalidInput, "kernel value %d is not finite", i)
		}
	}
	return n, nil
}

// assembler drives the three ranking phases. It exclusively owns the binary
// state and rank array for the duration of one run.
type assembler struct {
	n      int
	nSeeds int
	state  []bool
	ranks  []int
	tf     *transform
	opts   options
	logger *log.Logger
}

// locate measures the density of the current state and searches it.
func (a *assembler) locate(mode Mode) int {
	return Locate(a.state, a.tf.densityOf(a.state), mode)
}

// homogenize moves points from the tightest cluster to the largest void until
// the two coincide. It returns the number of moves made.
func (a *assembler) homogenize() (int, error) {
	moves := 0
	for {
		t := a.locate(Tightest)
		if t < 0 {
			// An empty pattern is trivially balanced.
			return moves, nil
		}
		a.state[t] = false

		v := a.locate(Voidest)
		if v == t {
			a.state[t] = true
			a.logger.Debug("homogenized seed pattern", "moves", moves)
			return moves, nil
		}
		if err := a.opts.ctx.Err(); err != nil {
			return moves, err
		}
		if moves == a.opts.maxIterations {
			return moves, errors.New(errors.ErrCodeNonConvergence,
				"seed pattern did not settle within %d moves", a.opts.maxIterations)
		}
		a.state[v] = true
		moves++
		a.opts.progress(PhaseHomogenize, moves, a.opts.maxIterations)
	}
}

// rankSeeds removes the seed points tightest-first from a copy of the
// homogenized state, giving the last one removed rank 0.
func (a *assembler) rankSeeds() error {
	snapshot := append([]bool(nil), a.state...)
	for i := a.nSeeds; i > 0; i-- {
		if err := a.opts.ctx.Err(); err != nil {
			return err
		}
		t := a.locate(Tightest)
		a.state[t] = false
		a.ranks[t] = i - 1
		a.opts.progress(PhaseSeeds, a.nSeeds-i+1, a.nSeeds)
	}
	copy(a.state, snapshot)
	return nil
}

// rankRemainder fills voids up to half the grid, then complements the pattern
// so the unranked pixels are the occupied ones and drains them
// tightest-first.
func (a *assembler) rankRemainder() error {
	half := a.n / 2
	for i := a.nSeeds; i < half; i++ {
		if err := a.opts.ctx.Err(); err != nil {
			return err
		}
		v := a.locate(Voidest)
		a.state[v] = true
		a.ranks[v] = i
		a.opts.progress(PhaseFill, i-a.nSeeds+1, half-a.nSeeds)
	}

	complement(a.state)
	for i := half; i < a.n; i++ {
		if err := a.opts.ctx.Err(); err != nil {
			return err
		}
		t := a.locate(Tightest)
		a.state[t] = false
		a.ranks[t] = i
		a.opts.progress(PhaseDrain, i-half+1, a.n-half)
	}
	a.logger.Debug("ranked remainder", "filled", half-a.nSeeds, "drained", a.n-half)
	return nil
}

func normalize(ranks []int) []float64 {
	values := make([]float64, len(ranks))
	if len(ranks) < 2 {
		return values
	}
	scale := float64(len(ranks) - 1)
	for i, r := range ranks {
		values[i] = float64(r) / scale
	}
	return values
}

func complement(state []bool) {
	for i := range state {
		state[i] = !state[i]
	}
}

func count(state []bool) int {
	c := 0
	for _, on := range state {
		if on {
			c++
		}
	}
	return c
}
