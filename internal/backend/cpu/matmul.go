package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// MatMul computes op(a) @ op(b) for 2D tensors, where op transposes its operand
// when the matching flag is set.
//
// The product is computed in float64 by gonum; float32 operands are widened first
// and the result is rounded back once.
//
// Example:
//
//	// dx = dout @ w.T
//	dx := cpu.MatMul(dout, w, false, true)
func MatMul[T tensor.Float](a, b *tensor.Tensor[T], transA, transB bool) *tensor.Tensor[T] {
	aShape := mustRank("matmul", a, 2)
	bShape := mustRank("matmul", b, 2)

	var ma mat.Matrix = mat.NewDense(aShape[0], aShape[1], asFloat64(a.Data()))
	var mb mat.Matrix = mat.NewDense(bShape[0], bShape[1], asFloat64(b.Data()))
	if transA {
		ma = ma.T()
	}
	if transB {
		mb = mb.T()
	}

	m, k := ma.Dims()
	k2, n := mb.Dims()
	if k != k2 {
		panic(fmt.Sprintf("matmul: inner dimensions differ: [%d,%d] @ [%d,%d]", m, k, k2, n))
	}

	out := mat.NewDense(m, n, nil)
	out.Mul(ma, mb)

	result := tensor.Zeros[T](tensor.Shape{m, n})
	raw := out.RawMatrix()
	data := result.Data()
	for i := 0; i < m; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+n]
		for j, v := range row {
			data[i*n+j] = T(v)
		}
	}
	return result
}
