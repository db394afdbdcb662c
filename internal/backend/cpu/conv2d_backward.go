package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// Conv2DBackwardNaive computes the gradients of Conv2DNaive.
//
// Algorithm: for every (n, f, out_h, out_w) the upstream value g = dout[n, f, out_h, out_w]
// contributes
//
//	dxp[n, :, window] += w[f] * g
//	dw[f]             += xp[n, :, window] * g
//	db[f]             += g
//
// where window is the receptive field of that output. An input pixel covered by
// several receptive fields receives the sum of their contributions, so dx is
// accumulated in the padded buffer dxp and cropped by pad at the end.
//
// References:
//   - CS231n: Backprop for convolutional layers
//   - "A guide to convolution arithmetic for deep learning" (Dumoulin & Visin, 2016)
//
//nolint:gocognit // High complexity inherent to convolution backprop
func Conv2DBackwardNaive[T tensor.Float](
	dout, x, w *tensor.Tensor[T],
	stride, pad int,
) (dx, dw, db *tensor.Tensor[T]) {
	xShape := mustRank("conv2d backward", x, 4)
	wShape := mustRank("conv2d backward", w, 4)
	gShape := mustRank("conv2d backward", dout, 4)

	N, C, H, W := xShape[0], xShape[1], xShape[2], xShape[3]
	F, HH, WW := wShape[0], wShape[2], wShape[3]
	HOut, WOut := gShape[2], gShape[3]

	if gShape[0] != N || gShape[1] != F {
		panic(fmt.Sprintf("conv2d backward: gradient shape %v does not match input %v and kernel %v",
			gShape, xShape, wShape))
	}

	HP, WP := H+2*pad, W+2*pad
	xp := Pad2D(x, pad)
	dxp := tensor.Zeros[T](tensor.Shape{N, C, HP, WP})
	dw = tensor.ZerosLike(w)
	db = tensor.Zeros[T](tensor.Shape{F})

	xpData := xp.Data()
	dxpData := dxp.Data()
	wData := w.Data()
	dwData := dw.Data()
	dbData := db.Data()
	gData := dout.Data()

	for n := 0; n < N; n++ {
		// Pre-slice batch planes
		sample := xpData[n*C*HP*WP : (n+1)*C*HP*WP]
		dSample := dxpData[n*C*HP*WP : (n+1)*C*HP*WP]

		for f := 0; f < F; f++ {
			filter := wData[f*C*HH*WW : (f+1)*C*HH*WW]
			dFilter := dwData[f*C*HH*WW : (f+1)*C*HH*WW]

			for i := 0; i < HOut; i++ {
				for j := 0; j < WOut; j++ {
					g := gData[((n*F+f)*HOut+i)*WOut+j]
					h1 := i * stride
					w1 := j * stride

					for c := 0; c < C; c++ {
						for kh := 0; kh < HH; kh++ {
							rowOff := (c*HP+h1+kh)*WP + w1
							kOff := (c*HH + kh) * WW
							for kw := 0; kw < WW; kw++ {
								dSample[rowOff+kw] += filter[kOff+kw] * g
								dFilter[kOff+kw] += sample[rowOff+kw] * g
							}
						}
					}
					dbData[f] += g
				}
			}
		}
	}

	dx = Crop2D(dxp, pad)
	return dx, dw, db
}
