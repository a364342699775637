package tree

import (
	"strings"

	"github.com/YuminosukeSato/vfdt/core/model"
)

// InactiveLearningNode はクラス分布のみを保持する凍結された葉
// Learn も Merge も何もしない
type InactiveLearningNode struct {
	nodeBase
}

// NewInactiveLearningNode creates a frozen leaf.
func NewInactiveLearningNode(classDistribution []float64) *InactiveLearningNode {
	return &InactiveLearningNode{nodeBase: newNodeBase(classDistribution)}
}

// Learn is a no-op.
func (n *InactiveLearningNode) Learn(_ *Config, _ model.Record) {}

func (n *InactiveLearningNode) IsActive() bool { return false }

// ClassVotes returns a copy of the confirmed distribution.
func (n *InactiveLearningNode) ClassVotes(_ *Config, _ model.Record) []float64 {
	return copyDist(n.classDistribution)
}

// Merge returns n unchanged.
func (n *InactiveLearningNode) Merge(_ Node, _ bool) (Node, error) {
	return n, nil
}

// Description implements Node.
func (n *InactiveLearningNode) Description() string { return description(n) }

func (n *InactiveLearningNode) describe(sb *strings.Builder) {
	describeLeaf(sb, "inactive", &n.nodeBase)
}
