package tree

import (
	"strings"

	"github.com/YuminosukeSato/vfdt/core/model"
)

// LearningNodeNB は重みが閾値を超えると naive-Bayes 予測に切り替わるアクティブな葉
type LearningNodeNB struct {
	activeState
}

// NewLearningNodeNB creates a naive-Bayes leaf.
func NewLearningNodeNB(classDistribution []float64) *LearningNodeNB {
	return &LearningNodeNB{activeState: newActiveState(classDistribution)}
}

func (n *LearningNodeNB) state() *activeState { return &n.activeState }

// Learn implements LearningNode.
func (n *LearningNodeNB) Learn(cfg *Config, r model.Record) {
	n.absorb(cfg, r)
}

// ClassVotes uses the naive-Bayes scorer once Weight exceeds
// cfg.NBThreshold and the majority-class vote before that.
func (n *LearningNodeNB) ClassVotes(cfg *Config, r model.Record) []float64 {
	if cfg != nil && n.Weight() > cfg.NBThreshold {
		return n.nbVotes(cfg, r)
	}
	return copyDist(n.classDistribution)
}

// Merge implements Node.
func (n *LearningNodeNB) Merge(other Node, trySplit bool) (Node, error) {
	if _, err := foldLeaf(n, other, trySplit); err != nil {
		return nil, err
	}
	return n, nil
}

// Description implements Node.
func (n *LearningNodeNB) Description() string { return description(n) }

func (n *LearningNodeNB) describe(sb *strings.Builder) {
	describeLeaf(sb, "nb", &n.nodeBase)
}
