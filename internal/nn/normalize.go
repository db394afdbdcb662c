package nn

import (
	"math"
)

// normLayout describes a 2D [rows, cols] view and the axis statistics are reduced over.
//
// axis 0 reduces down each column (batch norm: one statistic per feature);
// axis 1 reduces along each row (layer and group norm: one statistic per sample).
type normLayout struct {
	rows, cols int
	axis       int
}

// groups returns the number of statistics.
func (l normLayout) groups() int {
	if l.axis == 0 {
		return l.cols
	}
	return l.rows
}

// count returns the number of elements each statistic is computed over.
func (l normLayout) count() int {
	if l.axis == 0 {
		return l.rows
	}
	return l.cols
}

// group maps a flat row-major index to its statistic.
func (l normLayout) group(i int) int {
	if l.axis == 0 {
		return i % l.cols
	}
	return i / l.cols
}

// normStats holds the intermediates of one normalization, kept for the backward pass.
type normStats struct {
	layout   normLayout
	eps      float64
	xhat     []float64
	xmu      []float64
	mean     []float64
	variance []float64
	sqrtvar  []float64
	ivar     []float64

	// frozen marks statistics supplied by the caller (inference), which the
	// backward pass treats as constants.
	frozen bool
}

// normalizeForward standardizes x with statistics computed from x itself.
// Variance is biased (divides by the group size).
func normalizeForward(x []float64, layout normLayout, eps float64) *normStats {
	g, m := layout.groups(), float64(layout.count())

	mean := make([]float64, g)
	for i, v := range x {
		mean[layout.group(i)] += v
	}
	for k := range mean {
		mean[k] /= m
	}

	xmu := make([]float64, len(x))
	variance := make([]float64, g)
	for i, v := range x {
		k := layout.group(i)
		xmu[i] = v - mean[k]
		variance[k] += xmu[i] * xmu[i]
	}
	for k := range variance {
		variance[k] /= m
	}

	return finishNormalize(xmu, mean, variance, layout, eps, false)
}

// normalizeFrozen standardizes x with the given per-group mean and variance.
func normalizeFrozen(x, mean, variance []float64, layout normLayout, eps float64) *normStats {
	xmu := make([]float64, len(x))
	for i, v := range x {
		xmu[i] = v - mean[layout.group(i)]
	}
	return finishNormalize(xmu, mean, variance, layout, eps, true)
}

func finishNormalize(xmu, mean, variance []float64, layout normLayout, eps float64, frozen bool) *normStats {
	g := layout.groups()
	sqrtvar := make([]float64, g)
	ivar := make([]float64, g)
	for k := range sqrtvar {
		sqrtvar[k] = math.Sqrt(variance[k] + eps)
		ivar[k] = 1 / sqrtvar[k]
	}

	xhat := make([]float64, len(xmu))
	for i, v := range xmu {
		xhat[i] = v * ivar[layout.group(i)]
	}

	return &normStats{
		layout:   layout,
		eps:      eps,
		xhat:     xhat,
		xmu:      xmu,
		mean:     mean,
		variance: variance,
		sqrtvar:  sqrtvar,
		ivar:     ivar,
		frozen:   frozen,
	}
}

// backwardFrozen is the gradient through fixed statistics: dx = dxhat * ivar.
func (s *normStats) backwardFrozen(dxhat []float64) []float64 {
	dx := make([]float64, len(dxhat))
	for i, d := range dxhat {
		dx[i] = d * s.ivar[s.layout.group(i)]
	}
	return dx
}

// backwardGraph propagates dxhat through each node of the forward computation:
// xmu = x - mean, var = mean(xmu^2), sqrtvar = sqrt(var + eps), ivar = 1/sqrtvar,
// xhat = xmu * ivar.
func (s *normStats) backwardGraph(dxhat []float64) []float64 {
	if s.frozen {
		return s.backwardFrozen(dxhat)
	}
	l := s.layout
	g, m := l.groups(), float64(l.count())

	// xhat = xmu * ivar
	divar := make([]float64, g)
	dxmu := make([]float64, len(dxhat))
	for i, d := range dxhat {
		k := l.group(i)
		divar[k] += d * s.xmu[i]
		dxmu[i] = d * s.ivar[k]
	}

	// ivar = 1/sqrtvar, sqrtvar = sqrt(var + eps)
	dvar := make([]float64, g)
	for k := range dvar {
		dsqrtvar := -divar[k] / (s.sqrtvar[k] * s.sqrtvar[k])
		dvar[k] = 0.5 / math.Sqrt(s.variance[k]+s.eps) * dsqrtvar
	}

	// var = mean(xmu^2)
	dmu := make([]float64, g)
	for i := range dxmu {
		k := l.group(i)
		dxmu[i] += 2 * s.xmu[i] * dvar[k] / m
		dmu[k] -= dxmu[i]
	}

	// xmu = x - mean
	dx := dxmu
	for i := range dx {
		dx[i] += dmu[l.group(i)] / m
	}
	return dx
}

// backwardAlt is the simplified closed form of backwardGraph:
// dx = ivar/M * (M*dxhat - sum(dxhat) - xhat*sum(dxhat*xhat)).
func (s *normStats) backwardAlt(dxhat []float64) []float64 {
	if s.frozen {
		return s.backwardFrozen(dxhat)
	}
	l := s.layout
	g, m := l.groups(), float64(l.count())

	sum := make([]float64, g)
	dot := make([]float64, g)
	for i, d := range dxhat {
		k := l.group(i)
		sum[k] += d
		dot[k] += d * s.xhat[i]
	}

	dx := make([]float64, len(dxhat))
	for i, d := range dxhat {
		k := l.group(i)
		dx[i] = s.ivar[k] / m * (m*d - sum[k] - s.xhat[i]*dot[k])
	}
	return dx
}
