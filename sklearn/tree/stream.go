package tree

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vfdt/core/model"
	"github.com/YuminosukeSato/vfdt/pkg/log"
)

// FitStream はデータストリームからモデルを学習
// 各バッチは次のバッチを受け取る前に完全にマージされる
func (ht *HoeffdingTreeClassifier) FitStream(ctx context.Context, dataChan <-chan *model.Batch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-dataChan:
			if !ok {
				return nil
			}
			records, err := model.RecordsFromMatrix(batch.X, batch.Y, batch.Weights)
			if err != nil {
				return err
			}
			if err := ht.PartialFitContext(ctx, records, nil); err != nil {
				return err
			}
		}
	}
}

// PredictStream は入力ストリームに対してリアルタイム予測
func (ht *HoeffdingTreeClassifier) PredictStream(ctx context.Context, inputChan <-chan mat.Matrix) <-chan mat.Matrix {
	outputChan := make(chan mat.Matrix)

	go func() {
		defer close(outputChan)

		for {
			select {
			case <-ctx.Done():
				return
			case X, ok := <-inputChan:
				if !ok {
					return
				}

				pred, err := ht.Predict(X)
				if err != nil {
					ht.logger.Warn("prediction failed", err, log.OperationKey, log.OperationPredict)
					continue
				}

				select {
				case outputChan <- pred:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return outputChan
}

// FitPredictStream predicts every batch before learning it (test-then-train)
// and emits the predictions. Batches that arrive before the model has been
// fitted are learned without emitting. Outcomes feed the drift detector.
func (ht *HoeffdingTreeClassifier) FitPredictStream(ctx context.Context, dataChan <-chan *model.Batch) <-chan mat.Matrix {
	outputChan := make(chan mat.Matrix)

	go func() {
		defer close(outputChan)

		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-dataChan:
				if !ok {
					return
				}

				var pred mat.Matrix
				if ht.state.IsFitted() {
					p, err := ht.Predict(batch.X)
					if err != nil {
						ht.logger.Warn("prediction failed", err, log.OperationKey, log.OperationPredict)
					} else {
						pred = p
						ht.observeOutcomes(batch, p)
					}
				}

				if err := ht.PartialFitWeighted(batch.X, batch.Y, batch.Weights, nil); err != nil {
					ht.logger.Error("partial fit failed", err, log.OperationKey, log.OperationPartialFit)
				}

				if pred == nil {
					continue
				}
				select {
				case outputChan <- pred:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return outputChan
}

func (ht *HoeffdingTreeClassifier) observeOutcomes(batch *model.Batch, pred mat.Matrix) {
	if ht.detector == nil {
		return
	}
	rows, _ := pred.Dims()
	for i := 0; i < rows; i++ {
		w := 1.0
		if i < len(batch.Weights) {
			w = batch.Weights[i]
		}
		result := ht.detector.UpdateWeighted(pred.At(i, 0) == batch.Y.At(i, 0), w)
		if result.DriftDetected {
			ht.logger.Warn("concept drift detected",
				log.PhaseKey, log.PhaseEvaluation,
				"error_rate", result.ErrorRate,
			)
		}
	}
}
