package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// MaxPool2DBackward computes gradient w.r.t. input for MaxPool2DNaive.
//
// Algorithm: Route gradients to max positions.
//   - Gradients flow only to the position that held the window maximum
//   - All other positions in the window receive zero
//   - A position that is the maximum of several overlapping windows accumulates
//     the gradient of each of them
//
// Example (2x2 pool, stride=2):
//
//	Input:  [[1, 2],  Output: [4]  Input Grad: [[0, 0],
//	         [3, 4]]                             [0, grad]]
//
// References:
//   - CS231n: Backprop for pooling layers
func MaxPool2DBackward[T tensor.Float](dout *tensor.Tensor[T], inputShape tensor.Shape, argmax []int) *tensor.Tensor[T] {
	if len(argmax) != dout.NumElements() {
		panic(fmt.Sprintf("maxpool2d backward: argmax length %d != gradient elements %d",
			len(argmax), dout.NumElements()))
	}

	inputGrad := tensor.Zeros[T](inputShape)
	dxData := inputGrad.Data()
	for outIdx, g := range dout.Data() {
		dxData[argmax[outIdx]] += g
	}
	return inputGrad
}
