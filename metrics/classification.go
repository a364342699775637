// Package metrics provides evaluation metrics for classifiers.
package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vfdt/pkg/errors"
)

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	errRate, err := ClassificationError(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1.0 - errRate, nil
}

// ClassificationError は誤分類率を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("ClassificationError", "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("ClassificationError", n, yPred.Len(), 0)
	}

	wrong := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != yPred.AtVec(i) {
			wrong++
		}
	}
	return float64(wrong) / float64(n), nil
}

// AccuracyMatrix は列ベクトル（n×1行列）形式の入力に対して正解率を計算する
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("AccuracyMatrix", "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return 0, errors.NewDimensionError("AccuracyMatrix", rTrue, rPred, 0)
	}
	if cTrue != 1 {
		return 0, errors.NewValueError("AccuracyMatrix", "must be a column vector (n×1 matrix)")
	}

	yTrueVec := mat.NewVecDense(rTrue, nil)
	yPredVec := mat.NewVecDense(rPred, nil)
	for i := 0; i < rTrue; i++ {
		yTrueVec.SetVec(i, yTrue.At(i, 0))
		yPredVec.SetVec(i, yPred.At(i, 0))
	}
	return Accuracy(yTrueVec, yPredVec)
}

// PrequentialAccuracy accumulates weighted test-then-train outcomes.
// The zero value is ready to use; it is not safe for concurrent use.
type PrequentialAccuracy struct {
	correct float64
	total   float64
}

// Add records one weighted outcome.
func (p *PrequentialAccuracy) Add(correct bool, weight float64) {
	if weight <= 0 {
		return
	}
	p.total += weight
	if correct {
		p.correct += weight
	}
}

// Value returns the weighted accuracy so far, 0 before any outcome.
func (p *PrequentialAccuracy) Value() float64 {
	return errors.SafeDivide(p.correct, p.total)
}

// Weight returns the total weight seen.
func (p *PrequentialAccuracy) Weight() float64 { return p.total }
