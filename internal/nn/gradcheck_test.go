package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/convnet/internal/tensor"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
)

// gradTol is the maximum relative error accepted between analytic and numeric gradients.
const gradTol = 1e-5

var centralDiff = &fd.Settings{Formula: fd.Central, Step: 1e-5}

// numericGradient estimates d/dx of sum(forward(x) * dout) by central differences.
func numericGradient(
	x *tensor.Tensor[float64],
	dout *tensor.Tensor[float64],
	forward func(x *tensor.Tensor[float64]) *tensor.Tensor[float64],
) []float64 {
	shape := x.Shape()
	f := func(v []float64) float64 {
		out := forward(tensor.MustFromSlice(v, shape))
		return floats.Dot(out.Data(), dout.Data())
	}
	return fd.Gradient(nil, f, x.Data(), centralDiff)
}

// numericScalarGradient estimates the gradient of a scalar function of x.
func numericScalarGradient(x *tensor.Tensor[float64], f func(x *tensor.Tensor[float64]) float64) []float64 {
	shape := x.Shape()
	return fd.Gradient(nil, func(v []float64) float64 {
		return f(tensor.MustFromSlice(v, shape))
	}, x.Data(), centralDiff)
}

// relError returns max |a-b| / max(1e-8, |a|+|b|) over all elements.
func relError(a, b []float64) float64 {
	var worst float64
	for i := range a {
		den := math.Max(1e-8, math.Abs(a[i])+math.Abs(b[i]))
		worst = math.Max(worst, math.Abs(a[i]-b[i])/den)
	}
	return worst
}

// requireGradClose fails the test when the analytic gradient is off the numeric one.
func requireGradClose(t *testing.T, name string, analytic *tensor.Tensor[float64], numeric []float64) {
	t.Helper()
	require.Len(t, numeric, analytic.NumElements(), "%s: gradient size", name)
	err := relError(analytic.Data(), numeric)
	require.Less(t, err, gradTol, "%s: relative error %.3g", name, err)
}

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// randn returns scale*N(0,1) + shift samples.
func randn(rng *rand.Rand, shape tensor.Shape, scale, shift float64) *tensor.Tensor[float64] {
	t := tensor.Randn[float64](shape, rng)
	for i, v := range t.Data() {
		t.Data()[i] = scale*v + shift
	}
	return t
}
