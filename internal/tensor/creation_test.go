package tensor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandn(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := Randn[float64](Shape{100, 100}, rng)

	var sum, sumSq float64
	for _, v := range x.Data() {
		sum += v
		sumSq += v * v
	}
	n := float64(x.NumElements())
	mean := sum / n
	variance := sumSq/n - mean*mean

	assert.InDelta(t, 0.0, mean, 0.05, "mean should be ~0")
	assert.InDelta(t, 1.0, variance, 0.05, "variance should be ~1")
}

func TestRandnOddLength(t *testing.T) {
	x := Randn[float32](Shape{3}, rand.New(rand.NewSource(2)))
	for _, v := range x.Data() {
		assert.False(t, math.IsNaN(float64(v)))
	}
}

func TestRandnSeeded(t *testing.T) {
	a := Randn[float64](Shape{4, 5}, rand.New(rand.NewSource(42)))
	b := Randn[float64](Shape{4, 5}, rand.New(rand.NewSource(42)))
	assert.Equal(t, a.Data(), b.Data())
}

func TestRand(t *testing.T) {
	x := Rand[float32](Shape{50, 50}, nil)
	for i, v := range x.Data() {
		if v < 0 || v >= 1 {
			t.Fatalf("Rand[%d] = %v outside [0, 1)", i, v)
		}
	}
}

func TestZerosOnesFull(t *testing.T) {
	z := Zeros[float64](Shape{2, 2})
	o := Ones[float64](Shape{2, 2})
	f := Full[float32](Shape{3}, 2.5)

	assert.Equal(t, []float64{0, 0, 0, 0}, z.Data())
	assert.Equal(t, []float64{1, 1, 1, 1}, o.Data())
	assert.Equal(t, []float32{2.5, 2.5, 2.5}, f.Data())
	assert.Equal(t, Shape{2, 2}, ZerosLike(o).Shape())
	assert.Panics(t, func() { Zeros[float64](Shape{0}) })
}

func TestLinspace(t *testing.T) {
	x := Linspace[float64](-0.1, 0.5, Shape{2, 3})

	expected := []float64{-0.1, 0.02, 0.14, 0.26, 0.38, 0.5}
	assert.Equal(t, Shape{2, 3}, x.Shape())
	for i, want := range expected {
		assert.InDelta(t, want, x.Data()[i], 1e-12, "index %d", i)
	}
	assert.Equal(t, 0.5, x.Data()[5], "endpoint is exact")

	single := Linspace[float32](3, 9, Shape{1})
	assert.Equal(t, []float32{3}, single.Data())
}
