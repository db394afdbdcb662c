package nn

import (
	"testing"

	"github.com/born-ml/convnet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMaxPool_ForwardShape tests forward pass output shape.
func TestMaxPool_ForwardShape(t *testing.T) {
	// Input: [2, 3, 28, 28], 2x2 windows, stride 2
	input := tensor.Zeros[float32](tensor.Shape{2, 3, 28, 28})

	output, _, err := MaxPoolForwardNaive(input, DefaultPoolParam())
	require.NoError(t, err)

	// out_h = (28 - 2) / 2 + 1 = 14
	assert.True(t, output.Shape().Equal(tensor.Shape{2, 3, 14, 14}), "got %v", output.Shape())
}

// TestMaxPool_ForwardValues tests forward pass with known values.
func TestMaxPool_ForwardValues(t *testing.T) {
	x := tensor.Linspace[float64](-0.3, 0.4, tensor.Shape{2, 3, 4, 4})

	out, _, err := MaxPoolForwardNaive(x, DefaultPoolParam())
	require.NoError(t, err)

	// Linspace increases row-major, so each window's maximum is its bottom-right corner.
	for n := 0; n < 2; n++ {
		for c := 0; c < 3; c++ {
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					assert.Equal(t, x.At(n, c, 2*i+1, 2*j+1), out.At(n, c, i, j))
				}
			}
		}
	}
}

// TestMaxPool_Gradient checks dx against finite differences.
func TestMaxPool_Gradient(t *testing.T) {
	rng := newRNG(231)
	x := randn(rng, tensor.Shape{3, 2, 8, 8}, 1, 0)
	dout := randn(rng, tensor.Shape{3, 2, 4, 4}, 1, 0)

	_, cache, err := MaxPoolForwardNaive(x, DefaultPoolParam())
	require.NoError(t, err)
	dx, err := MaxPoolBackwardNaive(dout, cache)
	require.NoError(t, err)

	requireGradClose(t, "dx", dx, numericGradient(x, dout, func(v *tensor.Tensor[float64]) *tensor.Tensor[float64] {
		out, _, _ := MaxPoolForwardNaive(v, DefaultPoolParam())
		return out
	}))
}

// TestMaxPool_GradientMassConserved checks that routing neither creates nor loses gradient,
// including overlapping windows.
func TestMaxPool_GradientMassConserved(t *testing.T) {
	rng := newRNG(5)
	params := []PoolParam{
		DefaultPoolParam(),
		{PoolHeight: 3, PoolWidth: 3, Stride: 1},
		{PoolHeight: 2, PoolWidth: 4, Stride: 2},
	}

	for _, param := range params {
		x := randn(rng, tensor.Shape{2, 2, 6, 6}, 1, 0)
		out, cache, err := MaxPoolForwardNaive(x, param)
		require.NoError(t, err)

		dout := randn(rng, out.Shape(), 1, 0)
		dx, err := MaxPoolBackwardNaive(dout, cache)
		require.NoError(t, err)

		assert.InDelta(t, meanOf(dout)*float64(dout.NumElements()), meanOf(dx)*float64(dx.NumElements()), 1e-9,
			"pool %dx%d stride %d", param.PoolHeight, param.PoolWidth, param.Stride)
	}
}

func TestMaxPool_Errors(t *testing.T) {
	tests := []struct {
		name  string
		x     tensor.Shape
		param PoolParam
		want  error
	}{
		{"non-integral", tensor.Shape{1, 1, 5, 5}, DefaultPoolParam(), ErrGeometry},
		{"window too large", tensor.Shape{1, 1, 2, 2}, PoolParam{PoolHeight: 3, PoolWidth: 3, Stride: 1}, ErrGeometry},
		{"zero stride", tensor.Shape{1, 1, 4, 4}, PoolParam{PoolHeight: 2, PoolWidth: 2}, ErrInvalidConfig},
		{"not 4D", tensor.Shape{4, 4}, DefaultPoolParam(), ErrShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := MaxPoolForwardNaive(tensor.Zeros[float64](tt.x), tt.param)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, cache, err := MaxPoolForwardNaive(tensor.Zeros[float64](tensor.Shape{1, 1, 4, 4}), DefaultPoolParam())
	require.NoError(t, err)
	_, err = MaxPoolBackwardNaive(tensor.Zeros[float64](tensor.Shape{1, 1, 4, 4}), cache)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
