package nn

import (
	"testing"

	"github.com/born-ml/convnet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// channelStats returns the mean and biased variance of every channel of [N, C, H, W].
func channelStats(x *tensor.Tensor[float64]) (mean, variance []float64) {
	s := x.Shape()
	n, c, h, w := s[0], s[1], s[2], s[3]
	count := float64(n * h * w)
	mean = make([]float64, c)
	variance = make([]float64, c)
	for ch := 0; ch < c; ch++ {
		for i := 0; i < n; i++ {
			for y := 0; y < h; y++ {
				for z := 0; z < w; z++ {
					mean[ch] += x.At(i, ch, y, z) / count
				}
			}
		}
		for i := 0; i < n; i++ {
			for y := 0; y < h; y++ {
				for z := 0; z < w; z++ {
					d := x.At(i, ch, y, z) - mean[ch]
					variance[ch] += d * d / count
				}
			}
		}
	}
	return mean, variance
}

func TestSpatialBatchNorm_Forward(t *testing.T) {
	rng := newRNG(231)
	x := randn(rng, tensor.Shape{2, 3, 4, 5}, 4, 10)
	gamma := tensor.MustFromSlice([]float64{3, 4, 5}, tensor.Shape{3})
	beta := tensor.MustFromSlice([]float64{0, 1, 2}, tensor.Shape{3})
	param := DefaultBatchNormParam[float64](ModeTrain)

	out, _, err := SpatialBatchNormForward(x, gamma, beta, param)
	require.NoError(t, err)
	assert.Equal(t, x.Shape(), out.Shape())

	mean, variance := channelStats(out)
	for c := 0; c < 3; c++ {
		assert.InDelta(t, beta.At(c), mean[c], 1e-9, "channel %d mean", c)
		assert.InDelta(t, gamma.At(c)*gamma.At(c), variance[c], 1e-3, "channel %d var", c)
	}

	// Per-channel running statistics.
	require.NotNil(t, param.RunningMean)
	assert.Equal(t, tensor.Shape{3}, param.RunningMean.Shape())
	xMean, _ := channelStats(x)
	for c := 0; c < 3; c++ {
		assert.InDelta(t, 0.1*xMean[c], param.RunningMean.At(c), 1e-9)
	}
}

func TestSpatialBatchNorm_Gradients(t *testing.T) {
	rng := newRNG(231)
	n, c, h, w := 2, 3, 4, 5
	x := randn(rng, tensor.Shape{n, c, h, w}, 5, 12)
	gamma := randn(rng, tensor.Shape{c}, 1, 0)
	beta := randn(rng, tensor.Shape{c}, 1, 0)
	dout := randn(rng, tensor.Shape{n, c, h, w}, 1, 0)

	forward := func(x, gamma, beta *tensor.Tensor[float64]) *tensor.Tensor[float64] {
		out, _, err := SpatialBatchNormForward(x, gamma, beta, DefaultBatchNormParam[float64](ModeTrain))
		require.NoError(t, err)
		return out
	}

	_, cache, err := SpatialBatchNormForward(x, gamma, beta, DefaultBatchNormParam[float64](ModeTrain))
	require.NoError(t, err)
	dx, dgamma, dbeta, err := SpatialBatchNormBackward(dout, cache)
	require.NoError(t, err)

	assert.Equal(t, x.Shape(), dx.Shape())
	requireGradClose(t, "dx", dx, numericGradient(x, dout, func(v *tensor.Tensor[float64]) *tensor.Tensor[float64] {
		return forward(v, gamma, beta)
	}))
	requireGradClose(t, "dgamma", dgamma, numericGradient(gamma, dout, func(v *tensor.Tensor[float64]) *tensor.Tensor[float64] {
		return forward(x, v, beta)
	}))
	requireGradClose(t, "dbeta", dbeta, numericGradient(beta, dout, func(v *tensor.Tensor[float64]) *tensor.Tensor[float64] {
		return forward(x, gamma, v)
	}))
}

func TestSpatialBatchNorm_Errors(t *testing.T) {
	_, _, err := SpatialBatchNormForward(
		tensor.Ones[float64](tensor.Shape{2, 3}),
		tensor.Ones[float64](tensor.Shape{3}),
		tensor.Zeros[float64](tensor.Shape{3}),
		DefaultBatchNormParam[float64](ModeTrain),
	)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, _, err = SpatialBatchNormForward(
		tensor.Ones[float64](tensor.Shape{2, 3, 2, 2}),
		tensor.Ones[float64](tensor.Shape{3}),
		tensor.Zeros[float64](tensor.Shape{3}),
		DefaultBatchNormParam[float64]("bogus"),
	)
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, cache, err := SpatialBatchNormForward(
		tensor.Ones[float64](tensor.Shape{2, 3, 2, 2}),
		tensor.Ones[float64](tensor.Shape{3}),
		tensor.Zeros[float64](tensor.Shape{3}),
		DefaultBatchNormParam[float64](ModeTrain),
	)
	require.NoError(t, err)
	_, _, _, err = SpatialBatchNormBackward(tensor.Ones[float64](tensor.Shape{2, 3, 2, 3}), cache)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
