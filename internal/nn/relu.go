package nn

import (
	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
)

// ReLUCache holds the input of ReLUForward.
type ReLUCache[T tensor.Float] struct {
	x *tensor.Tensor[T]
}

// ReLUForward computes max(0, x) element-wise. Any shape is accepted.
func ReLUForward[T tensor.Float](x *tensor.Tensor[T]) (*tensor.Tensor[T], *ReLUCache[T], error) {
	if x == nil {
		return nil, nil, errors.Wrap(ErrShapeMismatch, "relu: x is nil")
	}
	out := tensor.ZerosLike(x)
	outData := out.Data()
	for i, v := range x.Data() {
		if v > 0 {
			outData[i] = v
		}
	}
	return out, &ReLUCache[T]{x: x}, nil
}

// ReLUBackward passes dout through where the forward input was positive.
// The gradient at exactly zero is zero.
func ReLUBackward[T tensor.Float](dout *tensor.Tensor[T], cache *ReLUCache[T]) (*tensor.Tensor[T], error) {
	const op = "relu backward"
	if cache == nil {
		return nil, errNilCache(op)
	}
	if err := checkShape(op, "dout", dout, cache.x.Shape()); err != nil {
		return nil, err
	}

	dx := tensor.ZerosLike(dout)
	dxData, x := dx.Data(), cache.x.Data()
	for i, g := range dout.Data() {
		if x[i] > 0 {
			dxData[i] = g
		}
	}
	return dx, nil
}
