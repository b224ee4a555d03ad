package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dithermask/pkg/errors"
)

// ramp returns a mask whose pixel i has rank i.
func ramp(t *testing.T, dims ...int) *Mask {
	t.Helper()
	n := 1
	for _, d := range dims {
		n *= d
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i) / float64(n-1)
	}
	m, err := New(dims, values)
	require.NoError(t, err)
	return m
}

func TestNew_Errors(t *testing.T) {
	_, err := New([]int{2, 2}, []float64{0, 1, 0.5})
	assert.True(t, errors.Is(err, errors.ErrCodeShapeMismatch))

	_, err = New([]int{2}, []float64{0, 1.5})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = New(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDimensions))
}

func TestGeometry(t *testing.T) {
	m := ramp(t, 4, 3, 2)
	assert.Equal(t, 24, m.Len())
	assert.Equal(t, 4, m.Width())
	assert.Equal(t, 6, m.Height())
	assert.Equal(t, m.Values[1+5*4], m.At(1, 5))

	line := ramp(t, 7)
	assert.Equal(t, 1, line.Height())
}

func TestRank(t *testing.T) {
	m := ramp(t, 5, 5)
	for i := 0; i < m.Len(); i++ {
		assert.Equal(t, i, m.Rank(i))
	}
}

func TestThreshold_TurnsOnExactCount(t *testing.T) {
	m := ramp(t, 8, 8)
	n := m.Len()
	for i := 0; i < n; i++ {
		level := float64(i+1) / float64(n)
		on := 0
		for _, b := range m.Threshold(level) {
			if b {
				on++
			}
		}
		assert.Equal(t, i+1, on, "level %g", level)
	}
	assert.NotContains(t, m.Threshold(0), true)
	assert.NotContains(t, m.Threshold(1), false)
}

func TestThreshold_Nested(t *testing.T) {
	m := ramp(t, 6, 6)
	low := m.Threshold(0.25)
	high := m.Threshold(0.75)
	for i := range low {
		if low[i] {
			assert.True(t, high[i], "pixel %d on at 0.25 but off at 0.75", i)
		}
	}
}

func TestImages(t *testing.T) {
	m := ramp(t, 4, 2)

	g16 := m.Gray16()
	assert.Equal(t, 4, g16.Bounds().Dx())
	assert.Equal(t, 2, g16.Bounds().Dy())
	assert.Equal(t, uint16(0), g16.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(65535), g16.Gray16At(3, 1).Y)

	g8 := m.Gray()
	assert.Equal(t, uint8(0), g8.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), g8.GrayAt(3, 1).Y)

	bin := m.Binary(0.5)
	assert.Equal(t, uint8(255), bin.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), bin.GrayAt(3, 0).Y)
	assert.Equal(t, uint8(0), bin.GrayAt(0, 1).Y)
}

func TestStats(t *testing.T) {
	s := ramp(t, 3, 3).Stats()
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 1.0, s.Max)
	assert.InDelta(t, 0.5, s.Mean, 1e-12)
}
