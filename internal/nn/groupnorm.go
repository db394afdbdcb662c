package nn

import (
	"math"

	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
)

// GroupNormCache holds what SpatialGroupNormBackward needs.
type GroupNormCache[T tensor.Float] struct {
	stats      *normStats
	gamma      []float64
	gammaShape tensor.Shape
	shape      tensor.Shape // [N, C, H, W]
}

// SpatialGroupNormForward normalizes each group of channels of each sample.
//
// The C channels of x [N, C, H, W] are split into g contiguous groups; mean and
// variance are computed per (sample, group) over C/g*H*W values. gamma and beta
// hold one value per channel and may have shape [C] or [1, C, 1, 1]; gradients
// come back in the same shape.
//
// C must be divisible by g.
//
// References:
//   - "Group Normalization" (Wu & He, 2018)
func SpatialGroupNormForward[T tensor.Float](
	x, gamma, beta *tensor.Tensor[T],
	g int,
	param GroupNormParam,
) (*tensor.Tensor[T], *GroupNormCache[T], error) {
	const op = "groupnorm"
	if param.Eps < 0 || math.IsNaN(param.Eps) {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "%s: eps %v", op, param.Eps)
	}
	if err := checkRank(op, "x", x, 4); err != nil {
		return nil, nil, err
	}
	n, c := x.Dim(0), x.Dim(1)
	if g <= 0 || c%g != 0 {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "%s: %d channels cannot be split into %d groups", op, c, g)
	}
	if err := checkSize(op, "gamma", gamma, c); err != nil {
		return nil, nil, err
	}
	if err := checkSize(op, "beta", beta, c); err != nil {
		return nil, nil, err
	}

	// One row per (sample, group).
	layout := normLayout{rows: n * g, cols: x.NumElements() / (n * g), axis: 1}
	stats := normalizeForward(x.AsFloat64(), layout, param.Eps)

	gm, bt := gamma.AsFloat64(), beta.AsFloat64()
	spatial := x.Dim(2) * x.Dim(3)
	out := make([]float64, len(stats.xhat))
	for i, v := range stats.xhat {
		ch := (i / spatial) % c
		out[i] = gm[ch]*v + bt[ch]
	}

	cache := &GroupNormCache[T]{
		stats:      stats,
		gamma:      gm,
		gammaShape: gamma.Shape(),
		shape:      x.Shape(),
	}
	return tensor.FromFloat64[T](out, x.Shape()), cache, nil
}

// SpatialGroupNormBackward returns dx [N, C, H, W] and dgamma, dbeta shaped like gamma.
func SpatialGroupNormBackward[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *GroupNormCache[T],
) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	const op = "groupnorm backward"
	if cache == nil {
		return nil, nil, nil, errNilCache(op)
	}
	if err := checkShape(op, "dout", dout, cache.shape); err != nil {
		return nil, nil, nil, err
	}

	c := cache.shape[1]
	spatial := cache.shape[2] * cache.shape[3]
	d := dout.AsFloat64()
	scaled := make([]float64, len(d))
	dxhat := make([]float64, len(d))
	for i, v := range d {
		scaled[i] = v * cache.stats.xhat[i]
		dxhat[i] = v * cache.gamma[(i/spatial)%c]
	}
	// Per-channel sums over N, H and W.
	dg := cpu.SumDims(tensor.FromFloat64[float64](scaled, cache.shape), 0, 2, 3)
	db := cpu.SumDims(dout, 0, 2, 3)

	return tensor.FromFloat64[T](cache.stats.backwardAlt(dxhat), cache.shape),
		tensor.FromFloat64[T](dg.Data(), cache.gammaShape),
		db.MustReshape(cache.gammaShape...),
		nil
}
