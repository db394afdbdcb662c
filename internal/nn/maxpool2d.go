package nn

import (
	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
)

// PoolCache holds the argmax positions recorded by MaxPoolForwardNaive.
type PoolCache[T tensor.Float] struct {
	argmax     []int
	inputShape tensor.Shape
	outShape   tensor.Shape
}

// MaxPoolForwardNaive takes the maximum over each PoolHeight x PoolWidth window.
//
// Input shape:  [N, C, H, W]
// Output shape: [N, C, H', W'] with
//
//	H' = (H - PoolHeight) / stride + 1
//	W' = (W - PoolWidth) / stride + 1
//
// Both divisions must be exact; otherwise ErrGeometry is returned. When a window
// holds its maximum more than once the first position in row-major order wins.
func MaxPoolForwardNaive[T tensor.Float](x *tensor.Tensor[T], param PoolParam) (*tensor.Tensor[T], *PoolCache[T], error) {
	const op = "maxpool"
	if param.PoolHeight <= 0 || param.PoolWidth <= 0 || param.Stride <= 0 {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "%s: pool %dx%d, stride %d",
			op, param.PoolHeight, param.PoolWidth, param.Stride)
	}
	if err := checkRank(op, "x", x, 4); err != nil {
		return nil, nil, err
	}
	if _, err := outputSize(op, "height", x.Dim(2), param.PoolHeight, param.Stride); err != nil {
		return nil, nil, err
	}
	if _, err := outputSize(op, "width", x.Dim(3), param.PoolWidth, param.Stride); err != nil {
		return nil, nil, err
	}

	out, argmax := cpu.MaxPool2DNaive(x, param.PoolHeight, param.PoolWidth, param.Stride)
	cache := &PoolCache[T]{
		argmax:     argmax,
		inputShape: x.Shape(),
		outShape:   out.Shape(),
	}
	return out, cache, nil
}

// MaxPoolBackwardNaive routes each upstream gradient to the position that held its
// window's maximum. Overlapping windows that share a maximum add up.
func MaxPoolBackwardNaive[T tensor.Float](dout *tensor.Tensor[T], cache *PoolCache[T]) (*tensor.Tensor[T], error) {
	const op = "maxpool backward"
	if cache == nil {
		return nil, errNilCache(op)
	}
	if err := checkShape(op, "dout", dout, cache.outShape); err != nil {
		return nil, err
	}
	return cpu.MaxPool2DBackward(dout, cache.inputShape, cache.argmax), nil
}
