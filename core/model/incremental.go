package model

import "gonum.org/v1/gonum/mat"

// IncrementalEstimator はオンライン学習（逐次学習）可能なモデルのインターフェース
// scikit-learnのpartial_fit APIと互換性を持つ
type IncrementalEstimator interface {
	Estimator

	// PartialFit はミニバッチでモデルを逐次的に学習させる
	// classes は全クラスラベルを指定（最初の呼び出し時のみ必須）
	PartialFit(X, y mat.Matrix, classes []int) error

	// NIterations は処理したミニバッチ数を返す
	NIterations() int

	// IsWarmStart が true の場合、Fit 呼び出し時に既存の木から学習を継続
	IsWarmStart() bool

	// SetWarmStart はウォームスタートの有効/無効を設定
	SetWarmStart(warmStart bool)
}

// IncrementalClassifier is an online classifier.
type IncrementalClassifier interface {
	IncrementalEstimator
	Classifier
}
