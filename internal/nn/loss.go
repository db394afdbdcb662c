package nn

import (
	"math"

	"github.com/born-ml/convnet/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// SVMLoss computes the multiclass hinge loss and its gradient.
//
// For each sample i with correct class y[i]:
//
//	margin[i, j] = max(0, x[i, j] - x[i, y[i]] + 1)   for j != y[i]
//	loss         = sum(margin) / N
//
// Every positive margin contributes +1/N to dx[i, j] and -1/N to dx[i, y[i]].
//
// Parameters:
//   - x: class scores with shape [N, C]
//   - y: labels with len(y) == N and 0 <= y[i] < C
//
// Returns the scalar loss and dx [N, C].
func SVMLoss[T tensor.Float](x *tensor.Tensor[T], y []int) (float64, *tensor.Tensor[T], error) {
	n, c, err := checkScores("svm loss", x, y)
	if err != nil {
		return 0, nil, err
	}

	scores := x.AsFloat64()
	dx := make([]float64, len(scores))
	var loss float64
	for i := 0; i < n; i++ {
		row := scores[i*c : (i+1)*c]
		grad := dx[i*c : (i+1)*c]
		correct := row[y[i]]
		for j, s := range row {
			if j == y[i] {
				continue
			}
			if margin := s - correct + 1; margin > 0 {
				loss += margin
				grad[j]++
				grad[y[i]]--
			}
		}
	}

	floats.Scale(1/float64(n), dx)
	return loss / float64(n), tensor.FromFloat64[T](dx, x.Shape()), nil
}

// SoftmaxLoss computes the cross-entropy of softmax probabilities and its gradient.
//
// Probabilities are computed from row-max shifted scores (log-sum-exp), so large
// scores do not overflow:
//
//	log p[i, j] = x[i, j] - logsumexp(x[i, :])
//	loss        = -mean(log p[i, y[i]])
//	dx          = (p - onehot(y)) / N
//
// Parameters:
//   - x: class scores with shape [N, C]
//   - y: labels with len(y) == N and 0 <= y[i] < C
//
// Returns the scalar loss and dx [N, C].
func SoftmaxLoss[T tensor.Float](x *tensor.Tensor[T], y []int) (float64, *tensor.Tensor[T], error) {
	n, c, err := checkScores("softmax loss", x, y)
	if err != nil {
		return 0, nil, err
	}

	scores := x.AsFloat64()
	dx := make([]float64, len(scores))
	var loss float64
	for i := 0; i < n; i++ {
		row := scores[i*c : (i+1)*c]
		grad := dx[i*c : (i+1)*c]

		// floats.LogSumExp shifts by the row maximum internally.
		lse := floats.LogSumExp(row)
		loss -= row[y[i]] - lse
		for j, s := range row {
			grad[j] = math.Exp(s - lse)
		}
		grad[y[i]]--
	}

	floats.Scale(1/float64(n), dx)
	return loss / float64(n), tensor.FromFloat64[T](dx, x.Shape()), nil
}

// checkScores validates a [N, C] score matrix against its labels.
func checkScores[T tensor.Float](op string, x *tensor.Tensor[T], y []int) (n, c int, err error) {
	if err := checkRank(op, "x", x, 2); err != nil {
		return 0, 0, err
	}
	n, c = x.Dim(0), x.Dim(1)
	if len(y) != n {
		return 0, 0, errors.Wrapf(ErrShapeMismatch, "%s: %d labels for %d samples", op, len(y), n)
	}
	for i, label := range y {
		if label < 0 || label >= c {
			return 0, 0, errors.Wrapf(ErrLabelRange, "%s: y[%d] = %d, want [0, %d)", op, i, label, c)
		}
	}
	return n, c, nil
}
