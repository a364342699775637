package tree

import (
	"github.com/YuminosukeSato/vfdt/core/model"
	"github.com/YuminosukeSato/vfdt/sklearn/naive_bayes"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/observer"
)

// Scorer は naive-Bayes 予測のポート
// 葉ノードは確定済みクラス分布と特徴量ごとの Observer を渡してクラス別スコアを得る
type Scorer interface {
	Predict(r model.Record, classDistribution []float64, observers []observer.Observer) []float64
}

// Config is the read-only driver configuration seen by nodes. A node never
// modifies it and never stores it.
type Config struct {
	// NumClasses is the length of every class distribution in the tree.
	NumClasses int

	// Features describes each feature; features past the end are numeric.
	Features []observer.FeatureSpec

	// BinaryOnly restricts observers to two-way splits.
	BinaryOnly bool

	// PrePrune adds the "do not split" candidate to split suggestions.
	PrePrune bool

	// NBThreshold is the weight a LearningNodeNB must exceed before it
	// switches to naive-Bayes scoring.
	NBThreshold float64

	ObserverFactory observer.Factory
	Scorer          Scorer
}

// NewConfig returns a configuration with the default observer factory and
// naive-Bayes scorer.
func NewConfig(numClasses int) *Config {
	return &Config{
		NumClasses:      numClasses,
		ObserverFactory: observer.DefaultFactory,
		Scorer:          naive_bayes.NewGaussianScorer(),
	}
}

func (c *Config) featureSpec(i int) observer.FeatureSpec {
	if i < len(c.Features) {
		return c.Features[i]
	}
	return observer.FeatureSpec{Type: observer.Numeric}
}

func (c *Config) factory() observer.Factory {
	if c.ObserverFactory == nil {
		return observer.DefaultFactory
	}
	return c.ObserverFactory
}
