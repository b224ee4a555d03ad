// Package mask holds a generated threshold mask and turns it into images.
//
// A Mask is the normalized rank of every pixel of a grid, with the first
// axis varying fastest. Two-dimensional masks map directly onto images; for
// grids with more axes every axis after the first is stacked into rows, so a
// 16x16x4 volume renders as a 16x64 image.
package mask

import (
	"image"
	"image/color"
	"math"

	"github.com/matzehuels/dithermask/pkg/errors"
)

// Mask is a normalized threshold mask.
type Mask struct {
	Dims   []int     `json:"dims"`
	Values []float64 `json:"values"`
}

// Stats summarizes the values of a mask.
type Stats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// New validates dims and values and returns a mask that owns both slices.
// Every value must be finite and lie in [0, 1].
func New(dims []int, values []float64) (*Mask, error) {
	if err := errors.ValidateDimensions(dims); err != nil {
		return nil, err
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	if len(values) != n {
		return nil, errors.New(errors.ErrCodeShapeMismatch, "mask has %d values, grid %v has %d pixels", len(values), dims, n)
	}
	for i, v := range values {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mask value %d is %g, want [0, 1]", i, v)
		}
	}
	return &Mask{Dims: dims, Values: values}, nil
}

// Len returns the pixel count.
func (m *Mask) Len() int { return len(m.Values) }

// Width returns the extent of the first axis.
func (m *Mask) Width() int { return m.Dims[0] }

// Height returns the number of image rows: the product of every axis after
// the first.
func (m *Mask) Height() int { return m.Len() / m.Width() }

// At returns the value at image coordinates (x, y).
func (m *Mask) At(x, y int) float64 { return m.Values[x+y*m.Width()] }

// Rank returns the integer rank of pixel i, recovered from its normalized
// value.
func (m *Mask) Rank(i int) int {
	return int(math.Round(m.Values[i] * float64(m.Len()-1)))
}

// Cutoff returns the number of pixels a threshold at level turns on.
func (m *Mask) Cutoff(level float64) int {
	return int(math.Round(level * float64(m.Len())))
}

// Threshold returns the binary pattern at level: a pixel is on when its rank
// is below Cutoff(level). Since ranks are a permutation, exactly Cutoff(level)
// pixels are on.
func (m *Mask) Threshold(level float64) []bool {
	cut := m.Cutoff(level)
	on := make([]bool, m.Len())
	for i := range on {
		on[i] = m.Rank(i) < cut
	}
	return on
}

// Gray16 renders the mask as a 16-bit grayscale image.
func (m *Mask) Gray16() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, m.Width(), m.Height()))
	w := m.Width()
	for i, v := range m.Values {
		img.SetGray16(i%w, i/w, color.Gray16{Y: uint16(math.Round(v * math.MaxUint16))})
	}
	return img
}

// Gray renders the mask as an 8-bit grayscale image.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	w := m.Width()
	for i, v := range m.Values {
		img.SetGray(i%w, i/w, color.Gray{Y: uint8(math.Round(v * math.MaxUint8))})
	}
	return img
}

// Binary renders the threshold pattern at level, on pixels white.
func (m *Mask) Binary(level float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	w := m.Width()
	for i, on := range m.Threshold(level) {
		if on {
			img.SetGray(i%w, i/w, color.Gray{Y: math.MaxUint8})
		}
	}
	return img
}

// Stats returns the min, max and mean of the values.
func (m *Mask) Stats() Stats {
	if m.Len() == 0 {
		return Stats{}
	}
	s := Stats{Min: m.Values[0], Max: m.Values[0]}
	var sum float64
	for _, v := range m.Values {
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
		sum += v
	}
	s.Mean = sum / float64(m.Len())
	return s
}
