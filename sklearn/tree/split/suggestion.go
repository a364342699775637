package split

import (
	"sort"
)

// Suggestion は分割候補
// Test が nil の場合は「分割しない」候補を表す
type Suggestion struct {
	Test                        ConditionalTest
	ResultingClassDistributions [][]float64
	Merit                       float64
}

// IsNullSplit reports whether s is the "do not split" candidate.
func (s *Suggestion) IsNullSplit() bool {
	return s.Test == nil
}

// NumSplits returns the number of resulting branches.
func (s *Suggestion) NumSplits() int {
	return len(s.ResultingClassDistributions)
}

// ResultingClassDistribution returns a copy of branch i's distribution.
func (s *Suggestion) ResultingClassDistribution(i int) []float64 {
	out := make([]float64, len(s.ResultingClassDistributions[i]))
	copy(out, s.ResultingClassDistributions[i])
	return out
}

// SortByMerit sorts suggestions in descending order of merit. Ties keep
// their input order.
func SortByMerit(suggestions []Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Merit > suggestions[j].Merit
	})
}
