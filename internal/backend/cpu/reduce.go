package cpu

import (
	"fmt"
	"sort"

	"github.com/born-ml/convnet/internal/tensor"
)

// SumDim sums tensor elements along the specified dimension, removing it.
//
// Supports negative indexing (-1 = last dim).
//
// Example:
//
//	x := tensor.Zeros[float64](tensor.Shape{2, 3, 4})
//	y := cpu.SumDim(x, 0)  // shape: [3, 4]
//	z := cpu.SumDim(x, -1) // shape: [2, 3]
func SumDim[T tensor.Float](x *tensor.Tensor[T], dim int) *tensor.Tensor[T] {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("sumdim: dimension %d out of range for %dD tensor", dim, ndim))
	}

	outShape := make(tensor.Shape, 0, ndim)
	outShape = append(outShape, shape[:dim]...)
	outShape = append(outShape, shape[dim+1:]...)

	result := tensor.Zeros[T](outShape)
	sumDim(x.Data(), result.Data(), shape, dim)
	return result
}

// SumDims sums over several dimensions at once.
//
// Example:
//
//	// per-channel sum of an [N, C, H, W] tensor
//	perChannel := cpu.SumDims(x, 0, 2, 3) // shape: [C]
func SumDims[T tensor.Float](x *tensor.Tensor[T], dims ...int) *tensor.Tensor[T] {
	ndim := x.NDim()
	sorted := make([]int, len(dims))
	for i, d := range dims {
		if d < 0 {
			d += ndim
		}
		sorted[i] = d
	}
	// Reduce the highest dimension first so lower indices stay valid.
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	result := x
	for i, d := range sorted {
		if i > 0 && d == sorted[i-1] {
			panic(fmt.Sprintf("sumdims: duplicate dimension %d", d))
		}
		result = SumDim(result, d)
	}
	return result
}

// sumDim reduces data of the given shape along dim into result.
//
// The tensor is viewed as [outer, size, inner] where outer is the product of the
// dimensions before dim and inner the product of those after it.
func sumDim[T tensor.Float](data, result []T, shape tensor.Shape, dim int) {
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	size := shape[dim]
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	for o := 0; o < outer; o++ {
		dst := result[o*inner : (o+1)*inner]
		for k := 0; k < size; k++ {
			base := (o*size + k) * inner
			src := data[base : base+inner]
			for i, v := range src {
				dst[i] += v
			}
		}
	}
}
