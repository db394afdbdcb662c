package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

// TestSoftmaxLoss_Uniform tests the loss of equal scores: -log(1/C).
func TestSoftmaxLoss_Uniform(t *testing.T) {
	x := tensor.MustFromSlice([]float64{0, 0, 0}, tensor.Shape{1, 3})

	loss, dx, err := nn.SoftmaxLoss(x, []int{0})
	require.NoError(t, err)

	assert.InDelta(t, math.Log(3), loss, 1e-12)
	assert.InDeltaSlice(t, []float64{-2.0 / 3, 1.0 / 3, 1.0 / 3}, dx.Data(), 1e-12)
}

// TestSoftmaxLoss_LargeScores tests that the row-max shift prevents overflow.
func TestSoftmaxLoss_LargeScores(t *testing.T) {
	x := tensor.MustFromSlice([]float64{1000, 1000, 990}, tensor.Shape{1, 3})

	loss, dx, err := nn.SoftmaxLoss(x, []int{2})
	require.NoError(t, err)

	assert.False(t, math.IsInf(loss, 0) || math.IsNaN(loss))
	// log(2 + e^-10) + 10
	assert.InDelta(t, math.Log(2+math.Exp(-10))+10, loss, 1e-9)
	for _, v := range dx.Data() {
		assert.False(t, math.IsNaN(v))
	}
}

// TestSoftmaxLoss_RandomScores tests that small random scores give a loss near log(C).
func TestSoftmaxLoss_RandomScores(t *testing.T) {
	rng := rand.New(rand.NewSource(231))
	n, c := 50, 10
	x := tensor.Randn[float64](tensor.Shape{n, c}, rng)
	for i := range x.Data() {
		x.Data()[i] *= 0.001
	}
	y := make([]int, n)
	for i := range y {
		y[i] = rng.Intn(c)
	}

	loss, _, err := nn.SoftmaxLoss(x, y)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(float64(c)), loss, 0.01)
}

// TestSVMLoss_ZeroMargin tests that a correct score ahead by exactly 1 has no loss.
func TestSVMLoss_ZeroMargin(t *testing.T) {
	x := tensor.MustFromSlice([]float64{1, 0, 0}, tensor.Shape{1, 3})

	loss, dx, err := nn.SVMLoss(x, []int{0})
	require.NoError(t, err)

	assert.Equal(t, 0.0, loss)
	assert.Equal(t, []float64{0, 0, 0}, dx.Data())
}

// TestSVMLoss_Values tests loss and gradient on a hand-computed batch.
func TestSVMLoss_Values(t *testing.T) {
	// Row 0, y=1: margins [3-2+1, -, 0-2+1] = [2, -, 0] -> 2
	// Row 1, y=0: margins [-, 1-1+1, 4-1+1] = [-, 1, 4] -> 5
	x := tensor.MustFromSlice([]float64{
		3, 2, 0,
		1, 1, 4,
	}, tensor.Shape{2, 3})

	loss, dx, err := nn.SVMLoss(x, []int{1, 0})
	require.NoError(t, err)

	assert.InDelta(t, 3.5, loss, 1e-12)
	expected := []float64{
		0.5, -0.5, 0,
		-1, 0.5, 0.5,
	}
	assert.InDeltaSlice(t, expected, dx.Data(), 1e-12)
}

// TestLoss_Gradients checks both losses against finite differences.
func TestLoss_Gradients(t *testing.T) {
	rng := rand.New(rand.NewSource(231))
	n, c := 50, 10
	x := tensor.Randn[float64](tensor.Shape{n, c}, rng)
	for i := range x.Data() {
		x.Data()[i] *= 0.001
	}
	y := make([]int, n)
	for i := range y {
		y[i] = rng.Intn(c)
	}

	losses := map[string]func(*tensor.Tensor[float64], []int) (float64, *tensor.Tensor[float64], error){
		"svm":     nn.SVMLoss[float64],
		"softmax": nn.SoftmaxLoss[float64],
	}
	for name, lossFn := range losses {
		t.Run(name, func(t *testing.T) {
			_, dx, err := lossFn(x, y)
			require.NoError(t, err)

			numeric := fd.Gradient(nil, func(v []float64) float64 {
				loss, _, _ := lossFn(tensor.MustFromSlice(v, x.Shape()), y)
				return loss
			}, x.Data(), &fd.Settings{Formula: fd.Central, Step: 1e-5})

			for i, want := range numeric {
				got := dx.Data()[i]
				rel := math.Abs(got-want) / math.Max(1e-8, math.Abs(got)+math.Abs(want))
				require.Less(t, rel, 1e-5, "dx[%d]: analytic %v, numeric %v", i, got, want)
			}
		})
	}
}

func TestLoss_Errors(t *testing.T) {
	x := tensor.Zeros[float64](tensor.Shape{2, 3})

	for name, lossFn := range map[string]func(*tensor.Tensor[float64], []int) (float64, *tensor.Tensor[float64], error){
		"svm":     nn.SVMLoss[float64],
		"softmax": nn.SoftmaxLoss[float64],
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := lossFn(x, []int{0, 3})
			assert.ErrorIs(t, err, nn.ErrLabelRange)

			_, _, err = lossFn(x, []int{-1, 0})
			assert.ErrorIs(t, err, nn.ErrLabelRange)

			_, _, err = lossFn(x, []int{0})
			assert.ErrorIs(t, err, nn.ErrShapeMismatch)

			_, _, err = lossFn(tensor.Zeros[float64](tensor.Shape{6}), []int{0})
			assert.ErrorIs(t, err, nn.ErrShapeMismatch)
		})
	}
}
