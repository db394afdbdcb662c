// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensors the convnet layers compute on.
//
// # Overview
//
// A Tensor[T] is a row-major array of float32 or float64 values with a Shape.
// Layers treat tensors as immutable: every operation allocates its result.
// Reshape is the only view and shares data with its source.
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/born-ml/convnet/tensor"
//	)
//
//	func main() {
//	    rng := rand.New(rand.NewSource(0))
//
//	    x := tensor.Randn[float64](tensor.Shape{2, 3, 4, 4}, rng)
//	    flat, _ := x.Reshape(2, -1)          // [2, 48], shares data
//	    nhwc := x.Transpose(0, 2, 3, 1)      // [2, 4, 4, 3], copy
//	}
//
// # Supported Data Types
//
// The Float constraint admits float32 and float64. Gradient checks are run in
// float64; float32 halves memory for forward passes.
package tensor
