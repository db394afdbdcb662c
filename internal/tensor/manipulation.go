package tensor

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Reshape returns a view of the tensor with a new shape.
//
// The view shares data with t. A single -1 dimension is inferred from the element
// count, so Reshape(n, -1) flattens every trailing dimension into one.
//
// Example:
//
//	x := tensor.Zeros[float64](Shape{4, 3, 2})
//	rows, _ := x.Reshape(4, -1) // Shape: [4, 6]
func (t *Tensor[T]) Reshape(dims ...int) (*Tensor[T], error) {
	shape, err := Shape(dims).Resolve(len(t.data))
	if err != nil {
		return nil, errors.Wrapf(err, "reshape %v", t.shape)
	}
	return &Tensor[T]{
		data:   t.data,
		shape:  shape,
		stride: shape.ComputeStrides(),
	}, nil
}

// MustReshape is like Reshape but panics on error.
func (t *Tensor[T]) MustReshape(dims ...int) *Tensor[T] {
	r, err := t.Reshape(dims...)
	if err != nil {
		panic(err)
	}
	return r
}

// Transpose permutes the tensor's dimensions and returns a contiguous copy.
//
// With no axes the dimensions are reversed. Panics on an invalid permutation.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{2, 3, 4, 5})
//	y := x.Transpose(0, 2, 3, 1) // Shape: [2, 4, 5, 3]
func (t *Tensor[T]) Transpose(axes ...int) *Tensor[T] {
	ndim := len(t.shape)

	// Default: reverse all dimensions
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(Shape, ndim)
	srcStrides := make([]int, ndim)
	for i, ax := range axes {
		newShape[i] = t.shape[ax]
		srcStrides[i] = t.stride[ax]
	}

	result := Zeros[T](newShape)

	// Walk the destination in row-major order, advancing a multi-index counter
	// and the matching source offset together.
	idx := make([]int, ndim)
	src := 0
	for dst := range result.data {
		result.data[dst] = t.data[src]
		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			src += srcStrides[d]
			if idx[d] < newShape[d] {
				break
			}
			src -= idx[d] * srcStrides[d]
			idx[d] = 0
		}
	}
	return result
}

// AllClose reports whether a and b have the same shape and every pair of elements
// satisfies |a-b| <= atol + rtol*|b|.
func AllClose[T Float](a, b *Tensor[T], rtol, atol float64) bool {
	if !a.shape.Equal(b.shape) {
		return false
	}
	for i := range a.data {
		x, y := float64(a.data[i]), float64(b.data[i])
		if math.Abs(x-y) > atol+rtol*math.Abs(y) {
			return false
		}
	}
	return true
}
