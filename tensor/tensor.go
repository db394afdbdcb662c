// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/convnet/internal/tensor"
)

// Type aliases for public API

// Float is a constraint for tensor element types: float32 or float64.
type Float = tensor.Float

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a dense row-major array of T.
//
// Example:
//
//	x := tensor.Zeros[float64](tensor.Shape{2, 3})
//	x.Set(1.5, 0, 2)
type Tensor[T Float] = tensor.Tensor[T]

// Errors returned by tensor construction.
var (
	ErrInvalidShape = tensor.ErrInvalidShape
	ErrDataLength   = tensor.ErrDataLength
)

// Creation functions

// New creates a zero-filled tensor, returning an error for an invalid shape.
func New[T Float](shape Shape) (*Tensor[T], error) {
	return tensor.New[T](shape)
}

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	x := tensor.Zeros[float32](tensor.Shape{2, 3})
func Zeros[T Float](shape Shape) *Tensor[T] {
	return tensor.Zeros[T](shape)
}

// ZerosLike creates a zero tensor with the shape of t.
func ZerosLike[T Float](t *Tensor[T]) *Tensor[T] {
	return tensor.ZerosLike(t)
}

// Ones creates a tensor filled with ones.
func Ones[T Float](shape Shape) *Tensor[T] {
	return tensor.Ones[T](shape)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	x := tensor.Full[float32](tensor.Shape{2, 3}, 3.14)
func Full[T Float](shape Shape, value T) *Tensor[T] {
	return tensor.Full(shape, value)
}

// Randn creates a tensor of standard normal samples drawn from rng.
// A nil rng uses the shared math/rand source.
//
// Example:
//
//	rng := rand.New(rand.NewSource(231))
//	w := tensor.Randn[float64](tensor.Shape{3, 3, 5, 5}, rng)
func Randn[T Float](shape Shape, rng *rand.Rand) *Tensor[T] {
	return tensor.Randn[T](shape, rng)
}

// Rand creates a tensor of uniform [0, 1) samples drawn from rng.
// A nil rng uses the shared math/rand source.
func Rand[T Float](shape Shape, rng *rand.Rand) *Tensor[T] {
	return tensor.Rand[T](shape, rng)
}

// Linspace fills a tensor of the given shape with evenly spaced values from
// start to stop inclusive, in row-major order.
//
// Example:
//
//	x := tensor.Linspace[float64](-0.1, 0.5, tensor.Shape{2, 3, 4, 4})
func Linspace[T Float](start, stop float64, shape Shape) *Tensor[T] {
	return tensor.Linspace[T](start, stop, shape)
}

// FromSlice creates a tensor from a Go slice. The data is copied.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3})
func FromSlice[T Float](data []T, shape Shape) (*Tensor[T], error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice[T Float](data []T, shape Shape) *Tensor[T] {
	return tensor.MustFromSlice(data, shape)
}

// AllClose reports whether a and b have the same shape and
// |a-b| <= atol + rtol*|b| holds element-wise.
func AllClose[T Float](a, b *Tensor[T], rtol, atol float64) bool {
	return tensor.AllClose(a, b, rtol, atol)
}
