package nn

import (
	"math/rand"

	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
)

// DropoutCache holds the mask drawn by a train-mode DropoutForward.
type DropoutCache[T tensor.Float] struct {
	mask []T
	mode Mode
}

// DropoutForward applies inverted dropout.
//
// In train mode each unit is kept with probability param.P and kept units are
// scaled by 1/P, so the expected activation is unchanged and test mode is the
// identity. With param.Seed set the mask is drawn from a generator seeded for this
// call only; otherwise it comes from the shared math/rand source.
//
// Example:
//
//	out, cache, err := nn.DropoutForward(x, nn.DefaultDropoutParam(0.5).WithSeed(123))
func DropoutForward[T tensor.Float](x *tensor.Tensor[T], param DropoutParam) (*tensor.Tensor[T], *DropoutCache[T], error) {
	const op = "dropout"
	if !param.Mode.valid() {
		return nil, nil, errors.Wrapf(ErrInvalidMode, "%s: %q", op, param.Mode)
	}
	if !(param.P > 0 && param.P <= 1) {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "%s: keep probability %v not in (0, 1]", op, param.P)
	}
	if x == nil {
		return nil, nil, errors.Wrapf(ErrShapeMismatch, "%s: x is nil", op)
	}

	if param.Mode == ModeTest {
		return x.Clone(), &DropoutCache[T]{mode: ModeTest}, nil
	}

	draw := rand.Float64
	if param.Seed != nil {
		draw = rand.New(rand.NewSource(*param.Seed)).Float64
	}

	scale := T(1 / param.P)
	out := tensor.ZerosLike(x)
	mask := make([]T, x.NumElements())
	outData := out.Data()
	for i, v := range x.Data() {
		if draw() < param.P {
			mask[i] = scale
		}
		outData[i] = v * mask[i]
	}
	return out, &DropoutCache[T]{mask: mask, mode: ModeTrain}, nil
}

// DropoutBackward returns dout*mask in train mode and a copy of dout in test mode.
func DropoutBackward[T tensor.Float](dout *tensor.Tensor[T], cache *DropoutCache[T]) (*tensor.Tensor[T], error) {
	const op = "dropout backward"
	if cache == nil {
		return nil, errNilCache(op)
	}
	if dout == nil {
		return nil, errors.Wrapf(ErrShapeMismatch, "%s: dout is nil", op)
	}
	if cache.mode == ModeTest {
		return dout.Clone(), nil
	}
	if dout.NumElements() != len(cache.mask) {
		return nil, errors.Wrapf(ErrShapeMismatch, "%s: dout has %d elements, mask has %d",
			op, dout.NumElements(), len(cache.mask))
	}

	dx := tensor.ZerosLike(dout)
	dxData := dx.Data()
	for i, g := range dout.Data() {
		dxData[i] = g * cache.mask[i]
	}
	return dx, nil
}
