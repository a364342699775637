package tree

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/vfdt/core/model"
)

// LearningNodeNBAdaptive は多数決と naive-Bayes のどちらがより正解したかを記録し、
// 確定済みのカウンタで優れている方を予測に使う葉
type LearningNodeNBAdaptive struct {
	activeState

	mcCorrectWeight      float64
	nbCorrectWeight      float64
	blockMCCorrectWeight float64
	blockNBCorrectWeight float64
}

// NewLearningNodeNBAdaptive creates an adaptive naive-Bayes leaf.
func NewLearningNodeNBAdaptive(classDistribution []float64) *LearningNodeNBAdaptive {
	return &LearningNodeNBAdaptive{activeState: newActiveState(classDistribution)}
}

func (n *LearningNodeNBAdaptive) state() *activeState { return &n.activeState }

// CorrectWeights returns the confirmed majority-class and naive-Bayes
// correct-weight counters.
func (n *LearningNodeNBAdaptive) CorrectWeights() (majorityClass, naiveBayes float64) {
	return n.mcCorrectWeight, n.nbCorrectWeight
}

// BlockCorrectWeights returns the block-local counters.
func (n *LearningNodeNBAdaptive) BlockCorrectWeights() (majorityClass, naiveBayes float64) {
	return n.blockMCCorrectWeight, n.blockNBCorrectWeight
}

// Learn scores r with both strategies before absorbing it and credits the
// block-local counter of every strategy that predicted the label.
func (n *LearningNodeNBAdaptive) Learn(cfg *Config, r model.Record) {
	label, w := r.Label(), r.Weight()
	if w > 0 && label >= 0 && label < len(n.classDistribution) {
		if argmax(n.classDistribution) == label {
			n.blockMCCorrectWeight += w
		}
		if argmax(n.nbVotes(cfg, r)) == label {
			n.blockNBCorrectWeight += w
		}
	}
	n.absorb(cfg, r)
}

// ClassVotes uses naive Bayes unless the confirmed majority-class counter
// strictly exceeds the confirmed naive-Bayes counter.
func (n *LearningNodeNBAdaptive) ClassVotes(cfg *Config, r model.Record) []float64 {
	if n.mcCorrectWeight > n.nbCorrectWeight {
		return copyDist(n.classDistribution)
	}
	return n.nbVotes(cfg, r)
}

// Merge folds the shared statistics and, when other is also adaptive, the
// correct-weight counters with the same two-mode rule.
func (n *LearningNodeNBAdaptive) Merge(other Node, trySplit bool) (Node, error) {
	folded, err := foldLeaf(n, other, trySplit)
	if err != nil {
		return nil, err
	}
	if o, ok := other.(*LearningNodeNBAdaptive); ok && folded {
		if trySplit {
			n.mcCorrectWeight += o.mcCorrectWeight
			n.nbCorrectWeight += o.nbCorrectWeight
		} else {
			n.mcCorrectWeight += o.blockMCCorrectWeight
			n.nbCorrectWeight += o.blockNBCorrectWeight
		}
	}
	return n, nil
}

// Description implements Node.
func (n *LearningNodeNBAdaptive) Description() string { return description(n) }

func (n *LearningNodeNBAdaptive) describe(sb *strings.Builder) {
	describeLeaf(sb, fmt.Sprintf("nb-adaptive mc=%g nb=%g", n.mcCorrectWeight, n.nbCorrectWeight), &n.nodeBase)
}
