package bluenoise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dithermask/pkg/kernel"
)

func TestDensity_FlatKernelIsScaledPattern(t *testing.T) {
	dims := []int{4, 4}
	tf := newTransform(dims, kernel.Flat(16))

	state := make([]bool, 16)
	state[5] = true
	state[10] = true

	d := tf.densityOf(state)
	for i, on := range state {
		want := 0.0
		if on {
			want = 16 // unnormalized inverse scales by the pixel count
		}
		assert.InDelta(t, want, d[i], 1e-9, "pixel %d", i)
	}
}

func TestDensity_SinglePixelGrid(t *testing.T) {
	tf := newTransform([]int{1}, []float64{2.5})
	assert.Empty(t, tf.plans, "no axis longer than one pixel")

	d := tf.densityOf([]bool{true})
	assert.InDelta(t, 2.5, d[0], 1e-12)
}

func TestDensity_GaussianPeaksAtPointAndIsSymmetric(t *testing.T) {
	dims := []int{9, 7}
	k, err := kernel.Gaussian(dims, 1.2)
	require.NoError(t, err)
	tf := newTransform(dims, k)

	const px, py = 4, 3
	state := make([]bool, 63)
	state[px+py*9] = true

	d := tf.densityOf(state)
	center := d[px+py*9]
	for i, v := range d {
		if i != px+py*9 {
			assert.Less(t, v, center, "pixel %d", i)
		}
	}

	for dx := 1; dx <= 3; dx++ {
		assert.InDelta(t, d[(px+dx)+py*9], d[(px-dx)+py*9], 1e-9, "x offset %d", dx)
	}
	for dy := 1; dy <= 2; dy++ {
		assert.InDelta(t, d[px+(py+dy)*9], d[px+(py-dy)*9], 1e-9, "y offset %d", dy)
	}
}

func TestDensity_WrapsAround(t *testing.T) {
	dims := []int{8}
	k, err := kernel.Gaussian(dims, 1)
	require.NoError(t, err)
	tf := newTransform(dims, k)

	state := make([]bool, 8)
	state[0] = true
	d := append([]float64(nil), tf.densityOf(state)...)

	assert.InDelta(t, d[1], d[7], 1e-9, "neighbours across the boundary")
	assert.InDelta(t, d[2], d[6], 1e-9)
}

func TestDensity_IsLinear(t *testing.T) {
	dims := []int{6, 5, 3}
	k, err := kernel.Gaussian(dims, 0.9)
	require.NoError(t, err)
	tf := newTransform(dims, k)

	a := make([]bool, 90)
	b := make([]bool, 90)
	both := make([]bool, 90)
	for _, i := range []int{0, 17, 44} {
		a[i] = true
		both[i] = true
	}
	for _, i := range []int{3, 61, 89} {
		b[i] = true
		both[i] = true
	}

	da := append([]float64(nil), tf.densityOf(a)...)
	db := append([]float64(nil), tf.densityOf(b)...)
	dboth := tf.densityOf(both)
	for i := range dboth {
		assert.InDelta(t, da[i]+db[i], dboth[i], 1e-9, "pixel %d", i)
	}
}

func TestDensity_ReusesBuffers(t *testing.T) {
	tf := newTransform([]int{4, 4}, kernel.Flat(16))
	first := tf.densityOf(make([]bool, 16))
	second := tf.densityOf(make([]bool, 16))
	assert.Same(t, &first[0], &second[0])
}
