package nn

import (
	"math"

	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
)

// NormCache holds what the backward pass of batch norm, spatial batch norm and
// layer norm needs. Its contents are private to this package.
type NormCache[T tensor.Float] struct {
	stats *normStats
	gamma []float64
	shape tensor.Shape // [rows, cols] of the normalized view
}

// BatchNormForward normalizes each feature of x over the batch.
//
// x has shape [N, D]; gamma and beta have shape [D]. In train mode the per-feature
// batch mean and biased variance normalize x, and the running statistics on param
// are updated in place:
//
//	running = momentum*running + (1-momentum)*batch
//
// In test mode the running statistics normalize x and nothing is updated.
// Nil running statistics are initialized to zeros in either mode.
//
// Output: out = gamma*xhat + beta, shape [N, D].
//
// Example:
//
//	param := nn.DefaultBatchNormParam[float64](nn.ModeTrain)
//	out, cache, err := nn.BatchNormForward(x, gamma, beta, param)
//	...
//	dx, dgamma, dbeta, err := nn.BatchNormBackward(dout, cache)
func BatchNormForward[T tensor.Float](
	x, gamma, beta *tensor.Tensor[T],
	param *BatchNormParam[T],
) (*tensor.Tensor[T], *NormCache[T], error) {
	const op = "batchnorm"
	if param == nil {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "%s: nil param", op)
	}
	if !param.Mode.valid() {
		return nil, nil, errors.Wrapf(ErrInvalidMode, "%s: %q", op, param.Mode)
	}
	if param.Eps < 0 || math.IsNaN(param.Eps) {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "%s: eps %v", op, param.Eps)
	}
	if param.Momentum < 0 || param.Momentum > 1 || math.IsNaN(param.Momentum) {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "%s: momentum %v not in [0, 1]", op, param.Momentum)
	}
	if err := checkRank(op, "x", x, 2); err != nil {
		return nil, nil, err
	}
	n, d := x.Dim(0), x.Dim(1)
	vec := tensor.Shape{d}
	if err := checkShape(op, "gamma", gamma, vec); err != nil {
		return nil, nil, err
	}
	if err := checkShape(op, "beta", beta, vec); err != nil {
		return nil, nil, err
	}
	if param.RunningMean != nil {
		if err := checkShape(op, "running_mean", param.RunningMean, vec); err != nil {
			return nil, nil, err
		}
	}
	if param.RunningVar != nil {
		if err := checkShape(op, "running_var", param.RunningVar, vec); err != nil {
			return nil, nil, err
		}
	}

	if param.RunningMean == nil {
		param.RunningMean = tensor.Zeros[T](vec)
	}
	if param.RunningVar == nil {
		param.RunningVar = tensor.Zeros[T](vec)
	}

	layout := normLayout{rows: n, cols: d, axis: 0}
	var stats *normStats
	switch param.Mode {
	case ModeTrain:
		stats = normalizeForward(x.AsFloat64(), layout, param.Eps)
		m := param.Momentum
		runMean, runVar := param.RunningMean.Data(), param.RunningVar.Data()
		for k := 0; k < d; k++ {
			runMean[k] = T(m*float64(runMean[k]) + (1-m)*stats.mean[k])
			runVar[k] = T(m*float64(runVar[k]) + (1-m)*stats.variance[k])
		}
	case ModeTest:
		stats = normalizeFrozen(x.AsFloat64(), param.RunningMean.AsFloat64(),
			param.RunningVar.AsFloat64(), layout, param.Eps)
	}

	g := gamma.AsFloat64()
	out := scaleShiftColumns(stats.xhat, g, beta.AsFloat64())
	cache := &NormCache[T]{
		stats: stats,
		gamma: g,
		shape: x.Shape(),
	}
	return tensor.FromFloat64[T](out, x.Shape()), cache, nil
}

// BatchNormBackward computes gradients by walking the forward computation graph
// node by node.
//
// Returns dx [N, D], dgamma [D], dbeta [D]. For a cache produced in test mode the
// statistics are constants and dx = dout*gamma/sqrt(running_var+eps).
func BatchNormBackward[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *NormCache[T],
) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	if cache == nil {
		return nil, nil, nil, errNilCache("batchnorm backward")
	}
	return normBackward(dout, cache, cache.stats.backwardGraph, "batchnorm backward")
}

// BatchNormBackwardAlt computes the same gradients as BatchNormBackward with the
// simplified closed form
//
//	dx = (1/N) * ivar * (N*dxhat - sum(dxhat) - xhat*sum(dxhat*xhat))
//
// where dxhat = dout*gamma and ivar = 1/sqrt(var+eps).
func BatchNormBackwardAlt[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *NormCache[T],
) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	if cache == nil {
		return nil, nil, nil, errNilCache("batchnorm backward")
	}
	return normBackward(dout, cache, cache.stats.backwardAlt, "batchnorm backward")
}

// normBackward computes the per-column affine gradients and hands dxhat to the
// normalization backward pass.
func normBackward[T tensor.Float](
	dout *tensor.Tensor[T],
	cache *NormCache[T],
	backward func(dxhat []float64) []float64,
	op string,
) (dx, dgamma, dbeta *tensor.Tensor[T], err error) {
	if err := checkShape(op, "dout", dout, cache.shape); err != nil {
		return nil, nil, nil, err
	}

	cols := len(cache.gamma)
	d := dout.AsFloat64()
	scaled := make([]float64, len(d))
	dxhat := make([]float64, len(d))
	for i, v := range d {
		scaled[i] = v * cache.stats.xhat[i]
		dxhat[i] = v * cache.gamma[i%cols]
	}
	dg := cpu.SumDim(tensor.FromFloat64[float64](scaled, cache.shape), 0)

	return tensor.FromFloat64[T](backward(dxhat), cache.shape),
		tensor.FromFloat64[T](dg.Data(), tensor.Shape{cols}),
		cpu.SumDim(dout, 0),
		nil
}

// scaleShiftColumns computes gamma[c]*xhat + beta[c] for each column c of a row-major
// matrix with len(gamma) columns.
func scaleShiftColumns(xhat, gamma, beta []float64) []float64 {
	cols := len(gamma)
	out := make([]float64, len(xhat))
	for i, v := range xhat {
		c := i % cols
		out[i] = gamma[c]*v + beta[c]
	}
	return out
}
