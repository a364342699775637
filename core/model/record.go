package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vfdt/pkg/errors"
)

// Record は学習・予測の単位となる1レコード（ラベル付きインスタンス）
// 欠損した特徴量は NaN で表す
type Record interface {
	// Label はクラスインデックスを返す（ラベルなしの場合は -1）
	Label() int

	// Feature は i 番目の特徴量の値を返す
	Feature(i int) float64

	// NumFeatures は特徴量の数を返す
	NumFeatures() int

	// Weight はレコードの重み（非負）を返す
	Weight() float64
}

// Example is the dense in-memory Record.
type Example struct {
	features []float64
	label    int
	weight   float64
}

// NewExample creates a record. features is not copied.
func NewExample(features []float64, label int, weight float64) *Example {
	return &Example{features: features, label: label, weight: weight}
}

// NewUnlabeledExample creates a record used only for prediction.
func NewUnlabeledExample(features []float64) *Example {
	return &Example{features: features, label: -1, weight: 1}
}

func (e *Example) Label() int { return e.label }

func (e *Example) NumFeatures() int { return len(e.features) }

func (e *Example) Weight() float64 { return e.weight }

// Features returns the underlying feature slice.
func (e *Example) Features() []float64 { return e.features }

// Feature returns NaN for indices outside the record.
func (e *Example) Feature(i int) float64 {
	if i < 0 || i >= len(e.features) {
		return math.NaN()
	}
	return e.features[i]
}

// IsMissing reports whether v encodes a missing feature value.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// RecordsFromMatrix は特徴量行列 X とラベル列 y からレコード列を作成する
// weights が nil の場合はすべて重み 1 とする
func RecordsFromMatrix(X, y mat.Matrix, weights []float64) ([]Record, error) {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError("RecordsFromMatrix", "empty feature matrix")
	}
	yRows, yCols := y.Dims()
	if yRows != rows {
		return nil, errors.NewDimensionError("RecordsFromMatrix", rows, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewValueError("RecordsFromMatrix", "y must be a column vector (n×1 matrix)")
	}
	if weights != nil && len(weights) != rows {
		return nil, errors.NewDimensionError("RecordsFromMatrix", rows, len(weights), 0)
	}

	records := make([]Record, rows)
	for i := 0; i < rows; i++ {
		features := make([]float64, cols)
		mat.Row(features, i, X)

		label := y.At(i, 0)
		if label < 0 || label != math.Trunc(label) {
			return nil, errors.NewValidationError("y", "labels must be non-negative integers", label)
		}

		w := 1.0
		if weights != nil {
			w = weights[i]
			if w < 0 || math.IsNaN(w) {
				return nil, errors.NewValidationError("sample_weight", "weights must be non-negative", w)
			}
		}
		records[i] = NewExample(features, int(label), w)
	}
	return records, nil
}

// UnlabeledFromMatrix converts every row of X into an unlabeled record.
func UnlabeledFromMatrix(X mat.Matrix) []Record {
	rows, cols := X.Dims()
	records := make([]Record, rows)
	for i := 0; i < rows; i++ {
		features := make([]float64, cols)
		mat.Row(features, i, X)
		records[i] = NewUnlabeledExample(features)
	}
	return records
}
