package nn

import (
	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
)

// ConvCache holds the inputs of ConvForwardNaive.
type ConvCache[T tensor.Float] struct {
	x, w     *tensor.Tensor[T]
	param    ConvParam
	outShape tensor.Shape
}

// ConvForwardNaive computes a 2D convolution (cross-correlation) with explicit loops.
//
// Input shape:  [N, C, H, W]
// Weight shape: [F, C, HH, WW]
// Bias shape:   [F]
// Output shape: [N, F, H', W'] with
//
//	H' = (H + 2*pad - HH) / stride + 1
//	W' = (W + 2*pad - WW) / stride + 1
//
// Both divisions must be exact; otherwise ErrGeometry is returned.
//
// Example:
//
//	out, cache, err := nn.ConvForwardNaive(x, w, b, nn.ConvParam{Stride: 1, Pad: 1})
func ConvForwardNaive[T tensor.Float](x, w, b *tensor.Tensor[T], param ConvParam) (*tensor.Tensor[T], *ConvCache[T], error) {
	const op = "conv"
	if param.Stride <= 0 || param.Pad < 0 {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "%s: stride %d, pad %d", op, param.Stride, param.Pad)
	}
	if err := checkRank(op, "x", x, 4); err != nil {
		return nil, nil, err
	}
	if err := checkRank(op, "w", w, 4); err != nil {
		return nil, nil, err
	}
	n, c, h, wd := x.Dim(0), x.Dim(1), x.Dim(2), x.Dim(3)
	f, hh, ww := w.Dim(0), w.Dim(2), w.Dim(3)
	if w.Dim(1) != c {
		return nil, nil, errors.Wrapf(ErrShapeMismatch, "%s: x has %d channels, w expects %d", op, c, w.Dim(1))
	}
	if err := checkShape(op, "b", b, tensor.Shape{f}); err != nil {
		return nil, nil, err
	}

	hOut, err := outputSize(op, "height", h+2*param.Pad, hh, param.Stride)
	if err != nil {
		return nil, nil, err
	}
	wOut, err := outputSize(op, "width", wd+2*param.Pad, ww, param.Stride)
	if err != nil {
		return nil, nil, err
	}

	out := cpu.Conv2DNaive(x, w, b, param.Stride, param.Pad)
	cache := &ConvCache[T]{
		x:        x,
		w:        w,
		param:    param,
		outShape: tensor.Shape{n, f, hOut, wOut},
	}
	return out, cache, nil
}

// ConvBackwardNaive returns dx [N, C, H, W], dw [F, C, HH, WW] and db [F].
func ConvBackwardNaive[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *ConvCache[T],
) (dx, dw, db *tensor.Tensor[T], err error) {
	const op = "conv backward"
	if cache == nil {
		return nil, nil, nil, errNilCache(op)
	}
	if err := checkShape(op, "dout", dout, cache.outShape); err != nil {
		return nil, nil, nil, err
	}

	dx, dw, db = cpu.Conv2DBackwardNaive(dout, cache.x, cache.w, cache.param.Stride, cache.param.Pad)
	return dx, dw, db, nil
}

// outputSize returns (in - window)/stride + 1, or ErrGeometry when the window does
// not fit or the stride does not tile the input exactly.
func outputSize(op, dim string, in, window, stride int) (int, error) {
	if window > in || (in-window)%stride != 0 {
		return 0, errors.Wrapf(ErrGeometry, "%s: %s %d, window %d, stride %d", op, dim, in, window, stride)
	}
	return (in-window)/stride + 1, nil
}
