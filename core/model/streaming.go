package model

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Batch represents a micro-batch for streaming learning
type Batch struct {
	X       mat.Matrix // Feature matrix
	Y       mat.Matrix // Target column
	Weights []float64  // Optional per-row weights; nil means 1 for every row
}

// StreamingEstimator provides a channel-based streaming learning interface
type StreamingEstimator interface {
	IncrementalEstimator

	// FitStream trains the model from a data stream.
	// Every batch is fully drained before its statistics are merged.
	// Continues until the context is canceled or the channel is closed.
	FitStream(ctx context.Context, dataChan <-chan *Batch) error

	// PredictStream performs predictions on an input stream.
	// The output channel is closed when the input channel is closed.
	PredictStream(ctx context.Context, inputChan <-chan mat.Matrix) <-chan mat.Matrix

	// FitPredictStream predicts each batch before training on it
	// (test-then-train) and emits the predictions.
	FitPredictStream(ctx context.Context, dataChan <-chan *Batch) <-chan mat.Matrix
}
