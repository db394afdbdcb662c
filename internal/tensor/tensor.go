package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Tensor is a dense row-major array of T.
//
// Layers treat tensors as immutable: every operation allocates its result and never
// writes into its inputs. Reshape is the only view operation and shares data with
// the tensor it was called on.
//
// Example:
//
//	x := tensor.Zeros[float64](tensor.Shape{2, 3})
//	x.Set(1.5, 0, 2)
//	v := x.At(0, 2) // 1.5
type Tensor[T Float] struct {
	data   []T
	shape  Shape
	stride []int
}

// New creates a zero-filled tensor with the given shape.
func New[T Float](shape Shape) (*Tensor[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Tensor[T]{
		data:   make([]T, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T Float](data []T, shape Shape) (*Tensor[T], error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Wrapf(ErrDataLength, "shape %v requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}

	t, err := New[T](shape)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)
	return t, nil
}

// MustFromSlice is like FromSlice but panics on error.
// Intended for literals in tests and examples.
func MustFromSlice[T Float](data []T, shape Shape) *Tensor[T] {
	t, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor[T]) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's row-major strides.
func (t *Tensor[T]) Strides() []int {
	return t.stride
}

// Dim returns the size of dimension i. Negative i counts from the end.
func (t *Tensor[T]) Dim(i int) int {
	if i < 0 {
		i += len(t.shape)
	}
	return t.shape[i]
}

// NDim returns the number of dimensions.
func (t *Tensor[T]) NDim() int {
	return len(t.shape)
}

// DType returns the tensor's data type.
func (t *Tensor[T]) DType() DataType {
	var dummy T
	return inferDataType(dummy)
}

// NumElements returns the total number of elements.
func (t *Tensor[T]) NumElements() int {
	return len(t.data)
}

// Data returns the tensor's backing slice.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor[T]) Data() []T {
	return t.data
}

// offset converts indices to a flat offset, panicking when out of bounds.
func (t *Tensor[T]) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}

	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		off += idx * t.stride[i]
	}
	return off
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) At(indices ...int) T {
	return t.data[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) Set(value T, indices ...int) {
	t.data[t.offset(indices)] = value
}

// String returns a human-readable representation of the tensor.
func (t *Tensor[T]) String() string {
	return fmt.Sprintf("Tensor[%s]%v", t.DType(), t.shape)
}

// Clone creates a deep copy of the tensor.
func (t *Tensor[T]) Clone() *Tensor[T] {
	data := make([]T, len(t.data))
	copy(data, t.data)
	return &Tensor[T]{
		data:   data,
		shape:  t.shape.Clone(),
		stride: append([]int(nil), t.stride...),
	}
}

// AsFloat64 returns a float64 copy of the tensor's data.
func (t *Tensor[T]) AsFloat64() []float64 {
	out := make([]float64, len(t.data))
	for i, v := range t.data {
		out[i] = float64(v)
	}
	return out
}

// FromFloat64 creates a tensor of T from float64 data, rounding when T is float32.
// Panics if len(data) does not match the shape.
func FromFloat64[T Float](data []float64, shape Shape) *Tensor[T] {
	t := Zeros[T](shape)
	if len(data) != len(t.data) {
		panic(fmt.Sprintf("FromFloat64: shape %v requires %d elements, but got %d",
			shape, len(t.data), len(data)))
	}
	for i, v := range data {
		t.data[i] = T(v)
	}
	return t
}
