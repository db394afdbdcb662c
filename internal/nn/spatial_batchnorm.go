package nn

import (
	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
)

// SpatialBatchNormForward applies batch norm per channel of a [N, C, H, W] input.
//
// Statistics are computed over (N, H, W) for each channel by moving channels last,
// flattening to [N*H*W, C] and running BatchNormForward. gamma and beta have shape [C].
// The running statistics on param are per channel.
func SpatialBatchNormForward[T tensor.Float](
	x, gamma, beta *tensor.Tensor[T],
	param *BatchNormParam[T],
) (*tensor.Tensor[T], *NormCache[T], error) {
	if err := checkRank("spatial batchnorm", "x", x, 4); err != nil {
		return nil, nil, err
	}
	n, c, h, w := x.Dim(0), x.Dim(1), x.Dim(2), x.Dim(3)

	flat := x.Transpose(0, 2, 3, 1).MustReshape(n*h*w, c)
	out, cache, err := BatchNormForward(flat, gamma, beta, param)
	if err != nil {
		return nil, nil, errors.Wrap(err, "spatial batchnorm")
	}
	return out.MustReshape(n, h, w, c).Transpose(0, 3, 1, 2), cache, nil
}

// SpatialBatchNormBackward returns dx [N, C, H, W], dgamma [C] and dbeta [C].
func SpatialBatchNormBackward[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *NormCache[T],
) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	const op = "spatial batchnorm backward"
	if cache == nil {
		return nil, nil, nil, errNilCache(op)
	}
	if err := checkRank(op, "dout", dout, 4); err != nil {
		return nil, nil, nil, err
	}
	n, c, h, w := dout.Dim(0), dout.Dim(1), dout.Dim(2), dout.Dim(3)
	if err := checkShape(op, "dout", dout, tensor.Shape{n, len(cache.gamma), h, w}); err != nil {
		return nil, nil, nil, err
	}

	flat := dout.Transpose(0, 2, 3, 1).MustReshape(n*h*w, c)
	dxFlat, dgamma, dbeta, err := BatchNormBackwardAlt(flat, cache)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "spatial batchnorm backward")
	}
	return dxFlat.MustReshape(n, h, w, c).Transpose(0, 3, 1, 2), dgamma, dbeta, nil
}
