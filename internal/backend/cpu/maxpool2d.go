package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/convnet/internal/tensor"
)

// MaxPool2DNaive performs 2D max pooling over poolH x poolW windows.
//
// Input shape:  [N, C, H, W]
// Output shape: [N, C, H_out, W_out]
//
// Where:
//
//	H_out = (H - poolH) / stride + 1
//	W_out = (W - poolW) / stride + 1
//
// Besides the output it returns, for every output element in row-major order, the
// flat index into x of the element that produced the maximum. Windows are scanned
// row-major and only a strictly greater value replaces the current maximum, so ties
// resolve to the first occurrence. A NaN in a window is the output for that window.
//
// Example (2x2 pool, stride=2):
//
//	Input: [[1,2,3,4],    Output: [[6,8],
//	        [5,6,7,8],             [14,16]]
//	        [9,10,11,12],
//	        [13,14,15,16]]
func MaxPool2DNaive[T tensor.Float](x *tensor.Tensor[T], poolH, poolW, stride int) (*tensor.Tensor[T], []int) {
	shape := mustRank("maxpool2d", x, 4)
	N, C, H, W := shape[0], shape[1], shape[2], shape[3]

	if poolH <= 0 || poolW <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid pool size %dx%d", poolH, poolW))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	if poolH > H || poolW > W {
		panic(fmt.Sprintf("maxpool2d: pool %dx%d too large for input %dx%d", poolH, poolW, H, W))
	}

	HOut := (H-poolH)/stride + 1
	WOut := (W-poolW)/stride + 1

	output := tensor.Zeros[T](tensor.Shape{N, C, HOut, WOut})
	outData := output.Data()
	inData := x.Data()
	argmax := make([]int, len(outData))

	outIdx := 0
	for plane := 0; plane < N*C; plane++ {
		// Pre-slice channel plane
		planeOff := plane * H * W
		channel := inData[planeOff : planeOff+H*W]

		for i := 0; i < HOut; i++ {
			hStart := i * stride
			for j := 0; j < WOut; j++ {
				wStart := j * stride

				best := hStart*W + wStart
				maxVal := channel[best]
				for kh := 0; kh < poolH; kh++ {
					row := (hStart + kh) * W
					for kw := 0; kw < poolW; kw++ {
						pos := row + wStart + kw
						// NaN propagates: the first NaN in the window wins.
						if channel[pos] > maxVal || (math.IsNaN(float64(channel[pos])) && !math.IsNaN(float64(maxVal))) {
							maxVal = channel[pos]
							best = pos
						}
					}
				}

				outData[outIdx] = maxVal
				argmax[outIdx] = planeOff + best
				outIdx++
			}
		}
	}

	return output, argmax
}
