package tree

import (
	"math"

	"github.com/YuminosukeSato/vfdt/sklearn/tree/split"
)

// SplitPolicy は葉の分割候補から適用する分割を選ぶ
// 統計的な確信度に基づく判定はこのインターフェースの実装側の責務
type SplitPolicy interface {
	// Choose returns the suggestion to apply, or nil to keep the leaf.
	// weight is the leaf's total observed weight.
	Choose(suggestions []split.Suggestion, criterion split.Criterion, weight float64) *split.Suggestion
}

// MarginPolicy splits when the best real candidate beats the "do not split"
// baseline by more than Margin. Without a baseline candidate, or when the
// baseline merit is not finite, the baseline is 0, so pre-pruning never
// admits a split the plain rule would reject.
type MarginPolicy struct {
	Margin float64
}

// DefaultMargin is the margin used by NewHoeffdingTreeClassifier.
const DefaultMargin = 0.05

// Choose implements SplitPolicy.
func (p MarginPolicy) Choose(suggestions []split.Suggestion, _ split.Criterion, _ float64) *split.Suggestion {
	var best *split.Suggestion
	baseline := 0.0
	for i := range suggestions {
		s := &suggestions[i]
		if s.IsNullSplit() {
			// 単一ブランチの基準値は -Inf になりうるので有限値のみ採用
			if !math.IsNaN(s.Merit) && !math.IsInf(s.Merit, 0) {
				baseline = s.Merit
			}
			continue
		}
		if math.IsNaN(s.Merit) || math.IsInf(s.Merit, -1) {
			continue
		}
		if best == nil || s.Merit > best.Merit {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	if best.Merit-baseline > p.Margin {
		return best
	}
	return nil
}
