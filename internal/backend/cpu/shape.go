package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// Pad2D zero-pads the two spatial dimensions of an [N, C, H, W] tensor by pad on
// every side, returning [N, C, H+2*pad, W+2*pad].
func Pad2D[T tensor.Float](x *tensor.Tensor[T], pad int) *tensor.Tensor[T] {
	shape := mustRank("pad2d", x, 4)
	if pad < 0 {
		panic(fmt.Sprintf("pad2d: negative padding %d", pad))
	}
	if pad == 0 {
		return x.Clone()
	}

	N, C, H, W := shape[0], shape[1], shape[2], shape[3]
	HP, WP := H+2*pad, W+2*pad

	result := tensor.Zeros[T](tensor.Shape{N, C, HP, WP})
	src := x.Data()
	dst := result.Data()
	for plane := 0; plane < N*C; plane++ {
		for h := 0; h < H; h++ {
			srcRow := src[(plane*H+h)*W : (plane*H+h+1)*W]
			dstOff := (plane*HP+h+pad)*WP + pad
			copy(dst[dstOff:dstOff+W], srcRow)
		}
	}
	return result
}

// Crop2D removes pad rows and columns from every side of the spatial dimensions
// of an [N, C, H, W] tensor. It is the inverse of Pad2D.
func Crop2D[T tensor.Float](x *tensor.Tensor[T], pad int) *tensor.Tensor[T] {
	shape := mustRank("crop2d", x, 4)
	if pad < 0 {
		panic(fmt.Sprintf("crop2d: negative padding %d", pad))
	}
	if pad == 0 {
		return x.Clone()
	}

	N, C, HP, WP := shape[0], shape[1], shape[2], shape[3]
	H, W := HP-2*pad, WP-2*pad
	if H <= 0 || W <= 0 {
		panic(fmt.Sprintf("crop2d: padding %d too large for spatial size %dx%d", pad, HP, WP))
	}

	result := tensor.Zeros[T](tensor.Shape{N, C, H, W})
	src := x.Data()
	dst := result.Data()
	for plane := 0; plane < N*C; plane++ {
		for h := 0; h < H; h++ {
			srcOff := (plane*HP+h+pad)*WP + pad
			copy(dst[(plane*H+h)*W:(plane*H+h+1)*W], src[srcOff:srcOff+W])
		}
	}
	return result
}
