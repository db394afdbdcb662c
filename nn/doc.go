// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the forward and backward passes of convolutional network layers.
//
// # Overview
//
// This package contains:
//   - Layers: Affine, ReLU, Dropout, ConvNaive, MaxPoolNaive
//   - Normalization: BatchNorm, SpatialBatchNorm, LayerNorm, SpatialGroupNorm
//   - Losses: SVMLoss, SoftmaxLoss
//   - Composites: AffineReLU, ConvReLU, ConvReLUPool
//   - Configuration: typed parameter records and structpb decoding
//
// Every layer is a pair of functions. Forward returns the output and an opaque
// cache; Backward takes the upstream gradient and that cache and returns one
// gradient per forward input, shaped like it. Gradients are derived by hand;
// there is no autodiff.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convnet/nn"
//	    "github.com/born-ml/convnet/tensor"
//	)
//
//	func step(x *tensor.Tensor[float64], y []int, w1, b1, w2, b2 *tensor.Tensor[float64]) (float64, error) {
//	    h, c1, err := nn.AffineReLUForward(x, w1, b1)
//	    if err != nil {
//	        return 0, err
//	    }
//	    scores, c2, err := nn.AffineForward(h, w2, b2)
//	    if err != nil {
//	        return 0, err
//	    }
//	    loss, dscores, err := nn.SoftmaxLoss(scores, y)
//	    if err != nil {
//	        return 0, err
//	    }
//	    dh, dw2, db2, err := nn.AffineBackward(dscores, c2)
//	    ...
//	}
//
// # Batch Normalization State
//
// Running statistics live on the caller's *BatchNormParam and are updated in place
// by train-mode forward passes. Pass the same record to every call of one layer.
//
// # Errors
//
// Invalid inputs return one of ErrInvalidMode, ErrInvalidConfig, ErrShapeMismatch,
// ErrGeometry or ErrLabelRange, wrapped with context. Match them with errors.Is.
package nn
