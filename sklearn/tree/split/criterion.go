// Package split provides split-quality criteria, the conditional tests owned
// by branch nodes and the candidate split returned by feature observers.
package split

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Criterion は分割品質の評価基準
// Merit は大きいほど良い分割を表す
type Criterion interface {
	// Merit は分割前の分布と分割後の各ブランチの分布から分割の良さを計算する
	Merit(preSplit []float64, postSplit [][]float64) float64

	// Range は Merit が取りうる値の幅（Hoeffding bound の計算用）
	Range(preSplit []float64) float64

	// Name は基準の名前
	Name() string
}

// InfoGain is the entropy-reduction criterion. Splits where fewer than two
// branches carry more than MinBranchFraction of the weight score -Inf.
type InfoGain struct {
	MinBranchFraction float64
}

// NewInfoGain returns InfoGain with the usual 1% minimum branch fraction.
func NewInfoGain() *InfoGain {
	return &InfoGain{MinBranchFraction: 0.01}
}

func (c *InfoGain) Name() string { return "info_gain" }

// Merit implements Criterion.
func (c *InfoGain) Merit(preSplit []float64, postSplit [][]float64) float64 {
	if branchesAboveFraction(postSplit, c.MinBranchFraction) < 2 {
		return math.Inf(-1)
	}
	return Entropy(preSplit) - weightedEntropy(postSplit)
}

// Range implements Criterion.
func (c *InfoGain) Range(preSplit []float64) float64 {
	n := len(preSplit)
	if n < 2 {
		n = 2
	}
	return math.Log2(float64(n))
}

// Gini is the Gini-impurity criterion.
type Gini struct{}

func (Gini) Name() string { return "gini" }

// Merit implements Criterion.
func (Gini) Merit(_ []float64, postSplit [][]float64) float64 {
	total := 0.0
	for _, d := range postSplit {
		total += floats.Sum(d)
	}
	if total <= 0 {
		return 0
	}
	impurity := 0.0
	for _, d := range postSplit {
		w := floats.Sum(d)
		if w <= 0 {
			continue
		}
		impurity += (w / total) * GiniImpurity(d)
	}
	return 1.0 - impurity
}

// Range implements Criterion.
func (Gini) Range(_ []float64) float64 { return 1.0 }

// Entropy returns the base-2 entropy of a weight vector, 0 for an empty one.
func Entropy(dist []float64) float64 {
	total := floats.Sum(dist)
	if total <= 0 {
		return 0
	}
	h := 0.0
	for _, w := range dist {
		if w > 0 {
			p := w / total
			h -= p * math.Log2(p)
		}
	}
	return h
}

// GiniImpurity returns 1 - Σp², 0 for an empty vector.
func GiniImpurity(dist []float64) float64 {
	total := floats.Sum(dist)
	if total <= 0 {
		return 0
	}
	s := 0.0
	for _, w := range dist {
		p := w / total
		s += p * p
	}
	return 1.0 - s
}

func weightedEntropy(postSplit [][]float64) float64 {
	total := 0.0
	for _, d := range postSplit {
		total += floats.Sum(d)
	}
	if total <= 0 {
		return 0
	}
	h := 0.0
	for _, d := range postSplit {
		w := floats.Sum(d)
		if w > 0 {
			h += (w / total) * Entropy(d)
		}
	}
	return h
}

func branchesAboveFraction(postSplit [][]float64, fraction float64) int {
	sums := make([]float64, len(postSplit))
	total := 0.0
	for i, d := range postSplit {
		sums[i] = floats.Sum(d)
		total += sums[i]
	}
	if total <= 0 {
		return 0
	}
	count := 0
	for _, s := range sums {
		if s/total > fraction {
			count++
		}
	}
	return count
}

// NewCriterion returns the criterion registered under name.
func NewCriterion(name string) (Criterion, bool) {
	switch name {
	case "info_gain", "entropy":
		return NewInfoGain(), true
	case "gini":
		return Gini{}, true
	default:
		return nil, false
	}
}
