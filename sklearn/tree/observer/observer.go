// Package observer provides the per-feature statistics accumulators used by
// the learning leaves of a Hoeffding tree.
package observer

import (
	"github.com/YuminosukeSato/vfdt/sklearn/tree/split"
)

// FeatureType は特徴量の種類
type FeatureType int

const (
	// Numeric は連続値の特徴量
	Numeric FeatureType = iota
	// Nominal は非負整数でエンコードされたカテゴリ特徴量
	Nominal
)

func (t FeatureType) String() string {
	switch t {
	case Nominal:
		return "nominal"
	default:
		return "numeric"
	}
}

// FeatureSpec describes one feature. NumValues is the number of values of a
// nominal feature (values outside [0, NumValues) count as missing, zero means
// up to MaxNominalValues); NumBins is the number of candidate thresholds for
// numeric ones.
type FeatureSpec struct {
	Type      FeatureType
	NumValues int
	NumBins   int
}

// Observer は1つの特徴量についてクラス別の統計量を逐次蓄積する
type Observer interface {
	// ObserveClass は (クラス, 特徴量の値, 重み) を1件取り込む
	ObserveClass(classIndex int, value, weight float64)

	// BestSplit はこの特徴量での最良の分割候補を返す（候補がなければ nil）
	BestSplit(criterion split.Criterion, preSplit []float64, featureIndex int, binaryOnly bool) *split.Suggestion

	// ProbabilityOfValueGivenClass は P(value | class) の推定値
	ProbabilityOfValueGivenClass(value float64, classIndex int) float64

	// Merge は other の統計量をこの Observer に加算する
	Merge(other Observer, trySplit bool) error

	// Clone はディープコピーを返す
	Clone() Observer

	// TotalWeight は観測済みの重みの合計（欠損値を除く）
	TotalWeight() float64
}

// Factory creates the observer for one feature.
type Factory interface {
	New(spec FeatureSpec, numClasses, featureIndex int) Observer
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(spec FeatureSpec, numClasses, featureIndex int) Observer

// New implements Factory.
func (f FactoryFunc) New(spec FeatureSpec, numClasses, featureIndex int) Observer {
	return f(spec, numClasses, featureIndex)
}

// DefaultNumBins is used when a numeric FeatureSpec leaves NumBins at zero.
const DefaultNumBins = 10

// DefaultFactory picks NominalObserver or GaussianObserver by feature type.
var DefaultFactory Factory = FactoryFunc(func(spec FeatureSpec, numClasses, _ int) Observer {
	if spec.Type == Nominal {
		if spec.NumValues > 0 {
			return NewBoundedNominalObserver(numClasses, spec.NumValues)
		}
		return NewNominalObserver(numClasses, 0)
	}
	bins := spec.NumBins
	if bins <= 0 {
		bins = DefaultNumBins
	}
	return NewGaussianObserver(numClasses, bins)
})
