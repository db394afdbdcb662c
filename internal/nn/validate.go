package nn

import (
	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
)

func checkRank[T tensor.Float](op, name string, t *tensor.Tensor[T], ndim int) error {
	if t == nil {
		return errors.Wrapf(ErrShapeMismatch, "%s: %s is nil", op, name)
	}
	if t.NDim() != ndim {
		return errors.Wrapf(ErrShapeMismatch, "%s: %s must be %dD, got shape %v", op, name, ndim, t.Shape())
	}
	return nil
}

func checkShape[T tensor.Float](op, name string, t *tensor.Tensor[T], want tensor.Shape) error {
	if t == nil {
		return errors.Wrapf(ErrShapeMismatch, "%s: %s is nil", op, name)
	}
	if !t.Shape().Equal(want) {
		return errors.Wrapf(ErrShapeMismatch, "%s: %s has shape %v, expected %v", op, name, t.Shape(), want)
	}
	return nil
}

// checkSize accepts any shape holding n elements, such as [C] or [1, C, 1, 1].
func checkSize[T tensor.Float](op, name string, t *tensor.Tensor[T], n int) error {
	if t == nil {
		return errors.Wrapf(ErrShapeMismatch, "%s: %s is nil", op, name)
	}
	if t.NumElements() != n {
		return errors.Wrapf(ErrShapeMismatch, "%s: %s has shape %v, expected %d elements", op, name, t.Shape(), n)
	}
	return nil
}

func errNilCache(op string) error {
	return errors.Wrapf(ErrInvalidConfig, "%s: nil cache", op)
}
