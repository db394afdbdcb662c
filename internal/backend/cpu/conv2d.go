package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// Conv2DNaive performs 2D cross-correlation with one index loop per output element.
//
// Input shape:  [N, C, H, W]
// Weight shape: [F, C, HH, WW]
// Bias shape:   [F]
// Output shape: [N, F, H_out, W_out]
//
// Where:
//
//	H_out = (H + 2*pad - HH) / stride + 1
//	W_out = (W + 2*pad - WW) / stride + 1
//
// Algorithm:
//  1. Zero-pad the input spatially by pad
//  2. For each (n, f, out_h, out_w), sum the elementwise product of the receptive
//     field xp[n, :, out_h*stride : out_h*stride+HH, out_w*stride : out_w*stride+WW]
//     with w[f]
//  3. Add b[f]
//
// This is a correctness reference: no im2col, no blocking.
func Conv2DNaive[T tensor.Float](x, w, b *tensor.Tensor[T], stride, pad int) *tensor.Tensor[T] {
	xShape := mustRank("conv2d", x, 4)
	wShape := mustRank("conv2d", w, 4)

	N, C, H, W := xShape[0], xShape[1], xShape[2], xShape[3]
	F, CW, HH, WW := wShape[0], wShape[1], wShape[2], wShape[3]

	if C != CW {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", C, CW))
	}
	if b.NumElements() != F {
		panic(fmt.Sprintf("conv2d: bias has %d elements, want %d", b.NumElements(), F))
	}

	HOut := (H+2*pad-HH)/stride + 1
	WOut := (W+2*pad-WW)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	xp := Pad2D(x, pad)
	HP, WP := H+2*pad, W+2*pad

	xpData := xp.Data()
	wData := w.Data()
	bData := b.Data()

	output := tensor.Zeros[T](tensor.Shape{N, F, HOut, WOut})
	outData := output.Data()

	for n := 0; n < N; n++ {
		// Pre-slice batch sample
		sample := xpData[n*C*HP*WP : (n+1)*C*HP*WP]

		for f := 0; f < F; f++ {
			filter := wData[f*C*HH*WW : (f+1)*C*HH*WW]

			for i := 0; i < HOut; i++ {
				for j := 0; j < WOut; j++ {
					hStart := i * stride
					wStart := j * stride

					var sum T
					for c := 0; c < C; c++ {
						for kh := 0; kh < HH; kh++ {
							rowOff := (c*HP+hStart+kh)*WP + wStart
							row := sample[rowOff : rowOff+WW]
							kRow := filter[(c*HH+kh)*WW : (c*HH+kh+1)*WW]
							for kw, v := range row {
								sum += v * kRow[kw]
							}
						}
					}

					outData[((n*F+f)*HOut+i)*WOut+j] = sum + bData[f]
				}
			}
		}
	}

	return output
}
