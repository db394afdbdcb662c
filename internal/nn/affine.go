package nn

import (
	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
)

// AffineCache holds the inputs of AffineForward.
type AffineCache[T tensor.Float] struct {
	x *tensor.Tensor[T]
	w *tensor.Tensor[T]
}

// AffineForward computes a fully connected layer.
//
// Performs: out = x @ w + b
// where:
//   - x has shape [N, d1, ..., dk] and is flattened to [N, D], D = d1*...*dk
//   - w has shape [D, M]
//   - b has shape [M]
//   - out has shape [N, M]
//
// Example:
//
//	x := tensor.Randn[float64](tensor.Shape{2, 4, 5, 6}, rng) // D = 120
//	w := tensor.Randn[float64](tensor.Shape{120, 3}, rng)
//	b := tensor.Zeros[float64](tensor.Shape{3})
//	out, cache, err := nn.AffineForward(x, w, b) // out: [2, 3]
func AffineForward[T tensor.Float](x, w, b *tensor.Tensor[T]) (*tensor.Tensor[T], *AffineCache[T], error) {
	const op = "affine"
	if x == nil || x.NDim() < 1 {
		return nil, nil, errors.Wrapf(ErrShapeMismatch, "%s: x must have a batch dimension", op)
	}
	if err := checkRank(op, "w", w, 2); err != nil {
		return nil, nil, err
	}
	n := x.Dim(0)
	d, m := w.Dim(0), w.Dim(1)
	if x.NumElements() != n*d {
		return nil, nil, errors.Wrapf(ErrShapeMismatch, "%s: x %v flattens to %d features, w expects %d",
			op, x.Shape(), x.NumElements()/n, d)
	}
	if err := checkShape(op, "b", b, tensor.Shape{m}); err != nil {
		return nil, nil, err
	}

	rows := x.MustReshape(n, d)
	out := cpu.MatMul(rows, w, false, false)

	// Broadcast bias over rows.
	outData, bias := out.Data(), b.Data()
	for i := range outData {
		outData[i] += bias[i%m]
	}

	return out, &AffineCache[T]{x: x, w: w}, nil
}

// AffineBackward returns dx shaped like x, dw [D, M] and db [M].
//
//	dx = dout @ w.T
//	dw = x.T @ dout
//	db = sum(dout, axis=0)
func AffineBackward[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *AffineCache[T],
) (dx, dw, db *tensor.Tensor[T], err error) {
	const op = "affine backward"
	if cache == nil {
		return nil, nil, nil, errNilCache(op)
	}
	n := cache.x.Dim(0)
	d, m := cache.w.Dim(0), cache.w.Dim(1)
	if err := checkShape(op, "dout", dout, tensor.Shape{n, m}); err != nil {
		return nil, nil, nil, err
	}

	rows := cache.x.MustReshape(n, d)
	dx = cpu.MatMul(dout, cache.w, false, true).MustReshape(cache.x.Shape()...)
	dw = cpu.MatMul(rows, dout, true, false)
	db = cpu.SumDim(dout, 0)
	return dx, dw, db, nil
}
