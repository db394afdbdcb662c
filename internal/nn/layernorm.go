package nn

import (
	"math"

	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
)

// LayerNormForward normalizes each sample of x over its features.
//
// LayerNorm(x) = gamma * (x - mean) / sqrt(var + eps) + beta
// where mean and var are computed across the feature dimension of each row.
//
// Unlike batch norm there are no running statistics and train and test behave the same.
//
// Input shape: [N, D]. gamma and beta have shape [D].
//
// References:
//   - "Layer Normalization" (Ba et al., 2016)
func LayerNormForward[T tensor.Float](
	x, gamma, beta *tensor.Tensor[T],
	param LayerNormParam,
) (*tensor.Tensor[T], *NormCache[T], error) {
	const op = "layernorm"
	if param.Eps < 0 || math.IsNaN(param.Eps) {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "%s: eps %v", op, param.Eps)
	}
	if err := checkRank(op, "x", x, 2); err != nil {
		return nil, nil, err
	}
	n, d := x.Dim(0), x.Dim(1)
	if err := checkShape(op, "gamma", gamma, tensor.Shape{d}); err != nil {
		return nil, nil, err
	}
	if err := checkShape(op, "beta", beta, tensor.Shape{d}); err != nil {
		return nil, nil, err
	}

	// Same routine as batch norm, reducing along rows instead of columns.
	stats := normalizeForward(x.AsFloat64(), normLayout{rows: n, cols: d, axis: 1}, param.Eps)

	g := gamma.AsFloat64()
	out := scaleShiftColumns(stats.xhat, g, beta.AsFloat64())
	cache := &NormCache[T]{
		stats: stats,
		gamma: g,
		shape: x.Shape(),
	}
	return tensor.FromFloat64[T](out, x.Shape()), cache, nil
}

// LayerNormBackward returns dx [N, D], dgamma [D] and dbeta [D].
func LayerNormBackward[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *NormCache[T],
) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	if cache == nil {
		return nil, nil, nil, errNilCache("layernorm backward")
	}
	return normBackward(dout, cache, cache.stats.backwardAlt, "layernorm backward")
}
