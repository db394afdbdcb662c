// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/tensor"
	"google.golang.org/protobuf/types/known/structpb"
)

// Errors

// Sentinel errors returned by the layers.
var (
	ErrInvalidMode   = nn.ErrInvalidMode
	ErrInvalidConfig = nn.ErrInvalidConfig
	ErrShapeMismatch = nn.ErrShapeMismatch
	ErrGeometry      = nn.ErrGeometry
	ErrLabelRange    = nn.ErrLabelRange
)

// Configuration

// Mode selects training or inference behavior.
type Mode = nn.Mode

// Supported modes.
const (
	ModeTrain = nn.ModeTrain
	ModeTest  = nn.ModeTest
)

// Default hyperparameters.
const (
	DefaultEps      = nn.DefaultEps
	DefaultMomentum = nn.DefaultMomentum
)

// BatchNormParam configures batch norm and carries its running statistics.
type BatchNormParam[T tensor.Float] = nn.BatchNormParam[T]

// LayerNormParam configures layer norm.
type LayerNormParam = nn.LayerNormParam

// GroupNormParam configures spatial group norm.
type GroupNormParam = nn.GroupNormParam

// DropoutParam configures inverted dropout.
type DropoutParam = nn.DropoutParam

// ConvParam configures naive convolution.
type ConvParam = nn.ConvParam

// PoolParam configures naive max pooling.
type PoolParam = nn.PoolParam

// DefaultBatchNormParam returns a batch norm config with eps=1e-5 and momentum=0.9.
//
// Example:
//
//	bn := nn.DefaultBatchNormParam[float64](nn.ModeTrain)
func DefaultBatchNormParam[T tensor.Float](mode Mode) *BatchNormParam[T] {
	return nn.DefaultBatchNormParam[T](mode)
}

// DefaultLayerNormParam returns a layer norm config with eps=1e-5.
func DefaultLayerNormParam() LayerNormParam {
	return nn.DefaultLayerNormParam()
}

// DefaultGroupNormParam returns a group norm config with eps=1e-5.
func DefaultGroupNormParam() GroupNormParam {
	return nn.DefaultGroupNormParam()
}

// DefaultDropoutParam returns a train-mode dropout config keeping units with probability p.
func DefaultDropoutParam(p float64) DropoutParam {
	return nn.DefaultDropoutParam(p)
}

// DefaultConvParam returns stride 1, no padding.
func DefaultConvParam() ConvParam {
	return nn.DefaultConvParam()
}

// DefaultPoolParam returns 2x2 windows with stride 2.
func DefaultPoolParam() PoolParam {
	return nn.DefaultPoolParam()
}

// DecodeBatchNormParam reads a batch norm config from a named-option record.
func DecodeBatchNormParam[T tensor.Float](s *structpb.Struct) (*BatchNormParam[T], error) {
	return nn.DecodeBatchNormParam[T](s)
}

// DecodeLayerNormParam reads a layer norm config from a named-option record.
func DecodeLayerNormParam(s *structpb.Struct) (LayerNormParam, error) {
	return nn.DecodeLayerNormParam(s)
}

// DecodeGroupNormParam reads a group norm config from a named-option record.
func DecodeGroupNormParam(s *structpb.Struct) (GroupNormParam, error) {
	return nn.DecodeGroupNormParam(s)
}

// DecodeDropoutParam reads a dropout config from a named-option record.
func DecodeDropoutParam(s *structpb.Struct) (DropoutParam, error) {
	return nn.DecodeDropoutParam(s)
}

// DecodeConvParam reads a convolution config from a named-option record.
func DecodeConvParam(s *structpb.Struct) (ConvParam, error) {
	return nn.DecodeConvParam(s)
}

// DecodePoolParam reads a pooling config from a named-option record.
func DecodePoolParam(s *structpb.Struct) (PoolParam, error) {
	return nn.DecodePoolParam(s)
}

// Caches

// AffineCache holds what AffineBackward needs.
type AffineCache[T tensor.Float] = nn.AffineCache[T]

// ReLUCache holds what ReLUBackward needs.
type ReLUCache[T tensor.Float] = nn.ReLUCache[T]

// NormCache holds what batch, spatial batch and layer norm backward passes need.
type NormCache[T tensor.Float] = nn.NormCache[T]

// GroupNormCache holds what SpatialGroupNormBackward needs.
type GroupNormCache[T tensor.Float] = nn.GroupNormCache[T]

// DropoutCache holds the dropout mask.
type DropoutCache[T tensor.Float] = nn.DropoutCache[T]

// ConvCache holds what ConvBackwardNaive needs.
type ConvCache[T tensor.Float] = nn.ConvCache[T]

// PoolCache holds the argmax positions of a max pooling pass.
type PoolCache[T tensor.Float] = nn.PoolCache[T]

// AffineReLUCache holds the caches of AffineReLUForward.
type AffineReLUCache[T tensor.Float] = nn.AffineReLUCache[T]

// ConvReLUCache holds the caches of ConvReLUForward.
type ConvReLUCache[T tensor.Float] = nn.ConvReLUCache[T]

// ConvReLUPoolCache holds the caches of ConvReLUPoolForward.
type ConvReLUPoolCache[T tensor.Float] = nn.ConvReLUPoolCache[T]

// Layers

// AffineForward computes x @ w + b with x flattened to [N, D].
//
// Example:
//
//	out, cache, err := nn.AffineForward(x, w, b)
func AffineForward[T tensor.Float](x, w, b *tensor.Tensor[T]) (*tensor.Tensor[T], *AffineCache[T], error) {
	return nn.AffineForward(x, w, b)
}

// AffineBackward returns dx, dw and db.
func AffineBackward[T tensor.Float](dout *tensor.Tensor[T], cache *AffineCache[T]) (dx, dw, db *tensor.Tensor[T], err error) {
	return nn.AffineBackward(dout, cache)
}

// ReLUForward computes max(0, x).
func ReLUForward[T tensor.Float](x *tensor.Tensor[T]) (*tensor.Tensor[T], *ReLUCache[T], error) {
	return nn.ReLUForward(x)
}

// ReLUBackward passes dout where the forward input was positive.
func ReLUBackward[T tensor.Float](dout *tensor.Tensor[T], cache *ReLUCache[T]) (*tensor.Tensor[T], error) {
	return nn.ReLUBackward(dout, cache)
}

// BatchNormForward normalizes each feature of x [N, D] over the batch.
//
// Example:
//
//	bn := nn.DefaultBatchNormParam[float64](nn.ModeTrain)
//	out, cache, err := nn.BatchNormForward(x, gamma, beta, bn)
func BatchNormForward[T tensor.Float](x, gamma, beta *tensor.Tensor[T], param *BatchNormParam[T]) (*tensor.Tensor[T], *NormCache[T], error) {
	return nn.BatchNormForward(x, gamma, beta, param)
}

// BatchNormBackward returns dx, dgamma and dbeta via the staged computation graph.
func BatchNormBackward[T tensor.Float](dout *tensor.Tensor[T], cache *NormCache[T]) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	return nn.BatchNormBackward(dout, cache)
}

// BatchNormBackwardAlt returns dx, dgamma and dbeta via the simplified closed form.
func BatchNormBackwardAlt[T tensor.Float](dout *tensor.Tensor[T], cache *NormCache[T]) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	return nn.BatchNormBackwardAlt(dout, cache)
}

// LayerNormForward normalizes each sample of x [N, D] over its features.
func LayerNormForward[T tensor.Float](x, gamma, beta *tensor.Tensor[T], param LayerNormParam) (*tensor.Tensor[T], *NormCache[T], error) {
	return nn.LayerNormForward(x, gamma, beta, param)
}

// LayerNormBackward returns dx, dgamma and dbeta.
func LayerNormBackward[T tensor.Float](dout *tensor.Tensor[T], cache *NormCache[T]) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	return nn.LayerNormBackward(dout, cache)
}

// SpatialBatchNormForward applies batch norm per channel of x [N, C, H, W].
func SpatialBatchNormForward[T tensor.Float](x, gamma, beta *tensor.Tensor[T], param *BatchNormParam[T]) (*tensor.Tensor[T], *NormCache[T], error) {
	return nn.SpatialBatchNormForward(x, gamma, beta, param)
}

// SpatialBatchNormBackward returns dx, dgamma and dbeta.
func SpatialBatchNormBackward[T tensor.Float](dout *tensor.Tensor[T], cache *NormCache[T]) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	return nn.SpatialBatchNormBackward(dout, cache)
}

// SpatialGroupNormForward normalizes each of g channel groups of each sample of x [N, C, H, W].
func SpatialGroupNormForward[T tensor.Float](x, gamma, beta *tensor.Tensor[T], g int, param GroupNormParam) (*tensor.Tensor[T], *GroupNormCache[T], error) {
	return nn.SpatialGroupNormForward(x, gamma, beta, g, param)
}

// SpatialGroupNormBackward returns dx, dgamma and dbeta.
func SpatialGroupNormBackward[T tensor.Float](dout *tensor.Tensor[T], cache *GroupNormCache[T]) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	return nn.SpatialGroupNormBackward(dout, cache)
}

// DropoutForward applies inverted dropout.
//
// Example:
//
//	out, cache, err := nn.DropoutForward(x, nn.DefaultDropoutParam(0.5).WithSeed(123))
func DropoutForward[T tensor.Float](x *tensor.Tensor[T], param DropoutParam) (*tensor.Tensor[T], *DropoutCache[T], error) {
	return nn.DropoutForward(x, param)
}

// DropoutBackward returns dout masked by the forward pass.
func DropoutBackward[T tensor.Float](dout *tensor.Tensor[T], cache *DropoutCache[T]) (*tensor.Tensor[T], error) {
	return nn.DropoutBackward(dout, cache)
}

// ConvForwardNaive computes a 2D convolution with explicit loops.
//
// Example:
//
//	out, cache, err := nn.ConvForwardNaive(x, w, b, nn.ConvParam{Stride: 1, Pad: 1})
func ConvForwardNaive[T tensor.Float](x, w, b *tensor.Tensor[T], param ConvParam) (*tensor.Tensor[T], *ConvCache[T], error) {
	return nn.ConvForwardNaive(x, w, b, param)
}

// ConvBackwardNaive returns dx, dw and db.
func ConvBackwardNaive[T tensor.Float](dout *tensor.Tensor[T], cache *ConvCache[T]) (dx, dw, db *tensor.Tensor[T], err error) {
	return nn.ConvBackwardNaive(dout, cache)
}

// MaxPoolForwardNaive takes the maximum over each pooling window.
func MaxPoolForwardNaive[T tensor.Float](x *tensor.Tensor[T], param PoolParam) (*tensor.Tensor[T], *PoolCache[T], error) {
	return nn.MaxPoolForwardNaive(x, param)
}

// MaxPoolBackwardNaive routes each upstream gradient to its window's maximum.
func MaxPoolBackwardNaive[T tensor.Float](dout *tensor.Tensor[T], cache *PoolCache[T]) (*tensor.Tensor[T], error) {
	return nn.MaxPoolBackwardNaive(dout, cache)
}

// Losses

// SVMLoss returns the multiclass hinge loss of scores x [N, C] and its gradient.
func SVMLoss[T tensor.Float](x *tensor.Tensor[T], y []int) (float64, *tensor.Tensor[T], error) {
	return nn.SVMLoss(x, y)
}

// SoftmaxLoss returns the softmax cross-entropy loss of scores x [N, C] and its gradient.
func SoftmaxLoss[T tensor.Float](x *tensor.Tensor[T], y []int) (float64, *tensor.Tensor[T], error) {
	return nn.SoftmaxLoss(x, y)
}

// Composites

// AffineReLUForward computes relu(x @ w + b).
func AffineReLUForward[T tensor.Float](x, w, b *tensor.Tensor[T]) (*tensor.Tensor[T], *AffineReLUCache[T], error) {
	return nn.AffineReLUForward(x, w, b)
}

// AffineReLUBackward returns dx, dw and db.
func AffineReLUBackward[T tensor.Float](dout *tensor.Tensor[T], cache *AffineReLUCache[T]) (dx, dw, db *tensor.Tensor[T], err error) {
	return nn.AffineReLUBackward(dout, cache)
}

// ConvReLUForward computes relu(conv(x, w, b)).
func ConvReLUForward[T tensor.Float](x, w, b *tensor.Tensor[T], param ConvParam) (*tensor.Tensor[T], *ConvReLUCache[T], error) {
	return nn.ConvReLUForward(x, w, b, param)
}

// ConvReLUBackward returns dx, dw and db.
func ConvReLUBackward[T tensor.Float](dout *tensor.Tensor[T], cache *ConvReLUCache[T]) (dx, dw, db *tensor.Tensor[T], err error) {
	return nn.ConvReLUBackward(dout, cache)
}

// ConvReLUPoolForward computes maxpool(relu(conv(x, w, b))).
func ConvReLUPoolForward[T tensor.Float](x, w, b *tensor.Tensor[T], convParam ConvParam, poolParam PoolParam) (*tensor.Tensor[T], *ConvReLUPoolCache[T], error) {
	return nn.ConvReLUPoolForward(x, w, b, convParam, poolParam)
}

// ConvReLUPoolBackward returns dx, dw and db.
func ConvReLUPoolBackward[T tensor.Float](dout *tensor.Tensor[T], cache *ConvReLUPoolCache[T]) (dx, dw, db *tensor.Tensor[T], err error) {
	return nn.ConvReLUPoolBackward(dout, cache)
}
