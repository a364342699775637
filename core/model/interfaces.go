// Package model provides the estimator interfaces and the record abstraction
// shared by the streaming classifiers.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the mean accuracy on the given data.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Scorer

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the class indices known to the model.
	Classes() []int
}

// RecordClassifier classifies single records without a matrix round trip.
type RecordClassifier interface {
	// PredictRecord returns the class-weight vector for one record.
	PredictRecord(r Record) ([]float64, error)
}
