package bluenoise

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// resolutionBits sets the density grid used when comparing energies. Values
// are snapped to a multiple of densityScale·2^-resolutionBits so that pixels
// with mathematically equal density compare equal despite transform rounding,
// and the lowest-index tie-break applies to them.
const resolutionBits = 42

// axisPlan is a 1-D transform along one grid axis.
type axisPlan struct {
	axis int
	fft  *fourier.CmplxFFT
}

// transform owns the transform plans and scratch buffers for one ranking run.
// It is not safe for concurrent use; every run builds its own.
type transform struct {
	dims    []int
	strides []int
	plans   []axisPlan
	kernel  []float64
	quantum float64

	spectral []complex128
	density  []float64
	line     []complex128
	out      []complex128
}

// newTransform builds plans for every axis longer than one pixel. Axes are
// planned in reverse declaration order, the last declared axis first.
func newTransform(dims []int, kernel []float64) *transform {
	n := 1
	longest := 1
	strides := make([]int, len(dims))
	for i, d := range dims {
		strides[i] = n
		n *= d
		longest = max(longest, d)
	}

	var plans []axisPlan
	for axis := len(dims) - 1; axis >= 0; axis-- {
		if dims[axis] > 1 {
			plans = append(plans, axisPlan{axis: axis, fft: fourier.NewCmplxFFT(dims[axis])})
		}
	}

	var peak float64
	for _, k := range kernel {
		peak = max(peak, math.Abs(k))
	}

	return &transform{
		dims:     dims,
		strides:  strides,
		plans:    plans,
		kernel:   kernel,
		quantum:  float64(n) * peak * math.Ldexp(1, -resolutionBits),
		spectral: make([]complex128, n),
		density:  make([]float64, n),
		line:     make([]complex128, longest),
		out:      make([]complex128, longest),
	}
}

// densityOf computes the filtered energy of state. The returned slice is
// owned by the transform and overwritten by the next call.
func (t *transform) densityOf(state []bool) []float64 {
	for i, on := range state {
		if on {
			t.spectral[i] = 1
		} else {
			t.spectral[i] = 0
		}
	}

	for _, p := range t.plans {
		t.apply(p, false)
	}
	for i, k := range t.kernel {
		c := t.spectral[i]
		t.spectral[i] = complex(real(c)*k, imag(c)*k)
	}
	for _, p := range t.plans {
		t.apply(p, true)
	}

	for i, c := range t.spectral {
		t.density[i] = t.snap(real(c))
	}
	return t.density
}

func (t *transform) snap(v float64) float64 {
	if t.quantum == 0 {
		return v
	}
	return math.Round(v/t.quantum) * t.quantum
}

// apply runs the plan's 1-D transform over every line of the buffer that
// runs along the plan's axis. The inverse is unnormalized.
func (t *transform) apply(p axisPlan, inverse bool) {
	length := t.dims[p.axis]
	stride := t.strides[p.axis]
	block := stride * length
	line := t.line[:length]
	out := t.out[:length]

	for base := 0; base < len(t.spectral); base += block {
		for off := 0; off < stride; off++ {
			start := base + off
			for j := range line {
				line[j] = t.spectral[start+j*stride]
			}
			if inverse {
				p.fft.Sequence(out, line)
			} else {
				p.fft.Coefficients(out, line)
			}
			for j, c := range out {
				t.spectral[start+j*stride] = c
			}
		}
	}
}
