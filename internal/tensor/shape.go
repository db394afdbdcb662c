package tensor

import "github.com/pkg/errors"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return errors.Wrapf(ErrInvalidShape, "dimension at index %d is %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Resolve replaces a single -1 entry with the size that makes the shape hold n elements.
//
// Examples:
//
//	Shape{2, -1}.Resolve(12)    → (2, 6)
//	Shape{-1, 3, 2}.Resolve(12) → (2, 3, 2)
//	Shape{5, -1}.Resolve(12)    → error
func (s Shape) Resolve(n int) (Shape, error) {
	out := s.Clone()
	infer := -1
	known := 1
	for i, dim := range out {
		switch {
		case dim == -1:
			if infer >= 0 {
				return nil, errors.Wrapf(ErrInvalidShape, "shape %v has more than one -1", s)
			}
			infer = i
		case dim <= 0:
			return nil, errors.Wrapf(ErrInvalidShape, "dimension at index %d is %d", i, dim)
		default:
			known *= dim
		}
	}

	if infer >= 0 {
		if known == 0 || n%known != 0 {
			return nil, errors.Wrapf(ErrInvalidShape, "cannot infer -1 in %v for %d elements", s, n)
		}
		out[infer] = n / known
	}

	if out.NumElements() != n {
		return nil, errors.Wrapf(ErrInvalidShape, "shape %v holds %d elements, need %d", s, out.NumElements(), n)
	}
	return out, nil
}
