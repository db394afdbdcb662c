// Package cpu implements the CPU kernels behind the layer primitives.
//
// Kernels operate on tensors whose shapes the calling layer has already validated:
// a shape violation here is a programming error and panics, following the
// backend convention. Layers in internal/nn turn user-facing problems into errors
// before any kernel runs.
package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// asFloat64 returns data as []float64, sharing memory when T is already float64.
func asFloat64[T tensor.Float](data []T) []float64 {
	if f, ok := any(data).([]float64); ok {
		return f
	}
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// mustRank panics with the kernel name when x is not ndim-dimensional.
func mustRank[T tensor.Float](op string, x *tensor.Tensor[T], ndim int) tensor.Shape {
	shape := x.Shape()
	if len(shape) != ndim {
		panic(fmt.Sprintf("%s: expected %dD tensor, got shape %v", op, ndim, shape))
	}
	return shape
}
