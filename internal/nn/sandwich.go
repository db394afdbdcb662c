package nn

import (
	"github.com/born-ml/convnet/internal/tensor"
)

// Convenience layers that chain primitives commonly used together. Each cache is
// the tuple of its inner caches and each backward runs the inner backwards in
// reverse order.

// AffineReLUCache holds the caches of AffineReLUForward.
type AffineReLUCache[T tensor.Float] struct {
	affine *AffineCache[T]
	relu   *ReLUCache[T]
}

// AffineReLUForward computes relu(x @ w + b).
func AffineReLUForward[T tensor.Float](x, w, b *tensor.Tensor[T]) (*tensor.Tensor[T], *AffineReLUCache[T], error) {
	a, fc, err := AffineForward(x, w, b)
	if err != nil {
		return nil, nil, err
	}
	out, rc, err := ReLUForward(a)
	if err != nil {
		return nil, nil, err
	}
	return out, &AffineReLUCache[T]{affine: fc, relu: rc}, nil
}

// AffineReLUBackward returns dx, dw and db for AffineReLUForward.
func AffineReLUBackward[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *AffineReLUCache[T],
) (dx, dw, db *tensor.Tensor[T], err error) {
	if cache == nil {
		return nil, nil, nil, errNilCache("affine-relu backward")
	}
	da, err := ReLUBackward(dout, cache.relu)
	if err != nil {
		return nil, nil, nil, err
	}
	return AffineBackward(da, cache.affine)
}

// ConvReLUCache holds the caches of ConvReLUForward.
type ConvReLUCache[T tensor.Float] struct {
	conv *ConvCache[T]
	relu *ReLUCache[T]
}

// ConvReLUForward computes relu(conv(x, w, b)).
func ConvReLUForward[T tensor.Float](x, w, b *tensor.Tensor[T], param ConvParam) (*tensor.Tensor[T], *ConvReLUCache[T], error) {
	a, cc, err := ConvForwardNaive(x, w, b, param)
	if err != nil {
		return nil, nil, err
	}
	out, rc, err := ReLUForward(a)
	if err != nil {
		return nil, nil, err
	}
	return out, &ConvReLUCache[T]{conv: cc, relu: rc}, nil
}

// ConvReLUBackward returns dx, dw and db for ConvReLUForward.
func ConvReLUBackward[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *ConvReLUCache[T],
) (dx, dw, db *tensor.Tensor[T], err error) {
	if cache == nil {
		return nil, nil, nil, errNilCache("conv-relu backward")
	}
	da, err := ReLUBackward(dout, cache.relu)
	if err != nil {
		return nil, nil, nil, err
	}
	return ConvBackwardNaive(da, cache.conv)
}

// ConvReLUPoolCache holds the caches of ConvReLUPoolForward.
type ConvReLUPoolCache[T tensor.Float] struct {
	conv *ConvCache[T]
	relu *ReLUCache[T]
	pool *PoolCache[T]
}

// ConvReLUPoolForward computes maxpool(relu(conv(x, w, b))).
func ConvReLUPoolForward[T tensor.Float](
	x, w, b *tensor.Tensor[T],
	convParam ConvParam,
	poolParam PoolParam,
) (*tensor.Tensor[T], *ConvReLUPoolCache[T], error) {
	a, cc, err := ConvForwardNaive(x, w, b, convParam)
	if err != nil {
		return nil, nil, err
	}
	s, rc, err := ReLUForward(a)
	if err != nil {
		return nil, nil, err
	}
	out, pc, err := MaxPoolForwardNaive(s, poolParam)
	if err != nil {
		return nil, nil, err
	}
	return out, &ConvReLUPoolCache[T]{conv: cc, relu: rc, pool: pc}, nil
}

// ConvReLUPoolBackward returns dx, dw and db for ConvReLUPoolForward.
func ConvReLUPoolBackward[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *ConvReLUPoolCache[T],
) (dx, dw, db *tensor.Tensor[T], err error) {
	if cache == nil {
		return nil, nil, nil, errNilCache("conv-relu-pool backward")
	}
	ds, err := MaxPoolBackwardNaive(dout, cache.pool)
	if err != nil {
		return nil, nil, nil, err
	}
	da, err := ReLUBackward(ds, cache.relu)
	if err != nil {
		return nil, nil, nil, err
	}
	return ConvBackwardNaive(da, cache.conv)
}
