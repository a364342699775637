// Package naive_bayes provides the naive-Bayes scoring routine used by the
// hybrid leaves of the Hoeffding tree.
package naive_bayes

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/vfdt/core/model"
	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/observer"
)

// GaussianScorer は特徴量ごとの Observer を尤度として用いる naive-Bayes スコアラー
// 数値特徴量はクラス別ガウス密度、カテゴリ特徴量はラプラス平滑化された頻度を使う
type GaussianScorer struct{}

// NewGaussianScorer creates a scorer.
func NewGaussianScorer() *GaussianScorer {
	return &GaussianScorer{}
}

// Predict returns per-class posteriors that sum to 1, or a zero vector when
// the class distribution carries no weight. Missing features and features
// without an observer are skipped.
func (s *GaussianScorer) Predict(r model.Record, classDistribution []float64, observers []observer.Observer) []float64 {
	total := floats.Sum(classDistribution)
	if total <= 0 {
		return make([]float64, len(classDistribution))
	}

	logScores := make([]float64, len(classDistribution))
	for c, w := range classDistribution {
		if w <= 0 {
			logScores[c] = math.Inf(-1)
			continue
		}
		score := math.Log(w / total)
		for i, obs := range observers {
			if obs == nil || i >= r.NumFeatures() {
				continue
			}
			v := r.Feature(i)
			if model.IsMissing(v) {
				continue
			}
			score += errors.StabilizeLog(obs.ProbabilityOfValueGivenClass(v, c))
		}
		logScores[c] = score
	}
	return errors.Softmax(logScores)
}
