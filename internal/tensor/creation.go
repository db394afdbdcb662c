package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros[float32](Shape{3, 4})
func Zeros[T Float](shape Shape) *Tensor[T] {
	t, err := New[T](shape)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return t
}

// ZerosLike creates a zero tensor with the same shape as t.
func ZerosLike[T Float](t *Tensor[T]) *Tensor[T] {
	return Zeros[T](t.Shape())
}

// Ones creates a tensor filled with ones.
func Ones[T Float](shape Shape) *Tensor[T] {
	return Full[T](shape, 1)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float64](Shape{3, 3}, 3.14)
func Full[T Float](shape Shape, value T) *Tensor[T] {
	t := Zeros[T](shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a tensor with values from a normal distribution (mean=0, std=1).
// Uses Box-Muller transform for generating normal distribution.
// A nil rng draws from the package-level math/rand source.
// Note: Uses math/rand (not crypto/rand) - appropriate for ML/statistical purposes.
//
// Example:
//
//	rng := rand.New(rand.NewSource(231))
//	t := tensor.Randn[float64](Shape{100, 100}, rng)
func Randn[T Float](shape Shape, rng *rand.Rand) *Tensor[T] {
	t := Zeros[T](shape)
	data := t.data
	for i := 0; i < len(data); i += 2 {
		u1 := uniform(rng)
		for u1 == 0 {
			u1 = uniform(rng)
		}
		u2 := uniform(rng)
		z0 := math.Sqrt(-2.0*math.Log(u1)) * math.Cos(2.0*math.Pi*u2)
		z1 := math.Sqrt(-2.0*math.Log(u1)) * math.Sin(2.0*math.Pi*u2)
		data[i] = T(z0)
		if i+1 < len(data) {
			data[i+1] = T(z1)
		}
	}
	return t
}

// Rand creates a tensor with random values uniformly distributed in [0, 1).
// A nil rng draws from the package-level math/rand source.
func Rand[T Float](shape Shape, rng *rand.Rand) *Tensor[T] {
	t := Zeros[T](shape)
	for i := range t.data {
		t.data[i] = T(uniform(rng))
	}
	return t
}

// Linspace creates a tensor of the given shape filled row-major with evenly spaced
// values over [start, stop], both endpoints included.
//
// Example:
//
//	x := tensor.Linspace[float64](-0.1, 0.5, Shape{2, 3}) // [-0.1 0.02 0.14 0.26 0.38 0.5]
func Linspace[T Float](start, stop float64, shape Shape) *Tensor[T] {
	t := Zeros[T](shape)
	n := len(t.data)
	if n == 1 {
		t.data[0] = T(start)
		return t
	}
	step := (stop - start) / float64(n-1)
	for i := range t.data {
		t.data[i] = T(start + float64(i)*step)
	}
	t.data[n-1] = T(stop)
	return t
}

func uniform(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64() //nolint:gosec // G404: ML uses math/rand intentionally
	}
	return rng.Float64()
}
