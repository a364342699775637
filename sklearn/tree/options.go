package tree

import (
	"github.com/YuminosukeSato/vfdt/sklearn/drift"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/observer"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/split"
)

// Option は HoeffdingTreeClassifier の設定オプション
type Option func(*HoeffdingTreeClassifier)

// WithLeafPrediction selects the variant of newly created leaves.
func WithLeafPrediction(p LeafPrediction) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.leafPrediction = p
	}
}

// WithNBThreshold sets the weight a LearningNodeNB must exceed before it
// uses naive Bayes.
func WithNBThreshold(threshold float64) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.nbThreshold = threshold
	}
}

// WithBinaryOnly restricts splits to two branches.
func WithBinaryOnly(binaryOnly bool) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.binaryOnly = binaryOnly
	}
}

// WithPrePrune adds the "do not split" baseline to every split evaluation.
func WithPrePrune(prePrune bool) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.prePrune = prePrune
	}
}

// WithGracePeriod sets the weight a leaf accumulates between split attempts.
func WithGracePeriod(weight float64) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.gracePeriod = weight
	}
}

// WithSplitCriterion sets the split-quality criterion.
func WithSplitCriterion(c split.Criterion) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.criterion = c
	}
}

// WithSplitPolicy sets the split-admission policy.
func WithSplitPolicy(p SplitPolicy) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.policy = p
	}
}

// WithFeatureSpecs describes the features; unspecified ones are numeric.
func WithFeatureSpecs(specs ...observer.FeatureSpec) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.features = append([]observer.FeatureSpec(nil), specs...)
	}
}

// WithPartitions sets how many block-local copies a batch is learned on.
// Zero uses one copy per CPU.
func WithPartitions(n int) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.partitions = n
	}
}

// WithObserverFactory replaces the per-feature observer factory.
func WithObserverFactory(f observer.Factory) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.factory = f
	}
}

// WithScorer replaces the naive-Bayes scorer.
func WithScorer(s Scorer) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.scorer = s
	}
}

// WithDriftDetector attaches a detector fed by FitPredictStream.
func WithDriftDetector(d drift.Detector) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.detector = d
	}
}

// WithMetrics records training metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(ht *HoeffdingTreeClassifier) {
		ht.metrics = m
	}
}
