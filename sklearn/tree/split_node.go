package tree

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/vfdt/core/model"
	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/split"
)

// SplitNode は条件テストで子ノードにルーティングする分岐ノード
// ルーティングできないレコードはこのノード自身のブロック内分布に記録される
type SplitNode struct {
	nodeBase
	test     split.ConditionalTest
	children []Node
}

// NewSplitNode creates a branch with test.NumBranches() absent child slots.
func NewSplitNode(test split.ConditionalTest, classDistribution []float64) *SplitNode {
	n := 0
	if test != nil {
		n = test.NumBranches()
	}
	return &SplitNode{
		nodeBase: newNodeBase(classDistribution),
		test:     test,
		children: make([]Node, n),
	}
}

// Test returns the conditional test.
func (n *SplitNode) Test() split.ConditionalTest { return n.test }

func (n *SplitNode) IsLeaf() bool { return false }

// NumChildren counts the slots that hold a node.
func (n *SplitNode) NumChildren() int {
	count := 0
	for _, c := range n.children {
		if c != nil {
			count++
		}
	}
	return count
}

// NumSlots returns the length of the child array, absent slots included.
func (n *SplitNode) NumSlots() int { return len(n.children) }

// Child returns the node at index, or nil when the slot is absent.
func (n *SplitNode) Child(index int) Node {
	if index < 0 || index >= len(n.children) {
		return nil
	}
	return n.children[index]
}

// ChildIndex returns the branch for r, negative when r cannot be routed.
func (n *SplitNode) ChildIndex(r model.Record) int {
	return n.test.Branch(r)
}

// FilterToLeaf descends to the node responsible for r. parent and index
// describe where n itself hangs and are returned unchanged when r cannot be
// routed past n, either because the outcome is negative or because it lies
// beyond the next free slot.
func (n *SplitNode) FilterToLeaf(r model.Record, parent *SplitNode, index int) FoundNode {
	cIndex := n.ChildIndex(r)
	// 範囲外の結果は接ぎ木できないので、負の結果と同じく分岐ノードで受ける
	if cIndex < 0 || cIndex > len(n.children) {
		return FoundNode{Node: n, Parent: parent, Index: index}
	}
	if cIndex < len(n.children) && n.children[cIndex] != nil {
		if child, ok := n.children[cIndex].(*SplitNode); ok {
			return child.FilterToLeaf(r, n, cIndex)
		}
		return FoundNode{Node: n.children[cIndex], Parent: n, Index: cIndex}
	}
	return FoundNode{Node: nil, Parent: n, Index: cIndex}
}

// SetChild overwrites slot index or appends when index equals the current
// length. Larger indices are rejected with MisroutedGraftError.
func (n *SplitNode) SetChild(index int, child Node) error {
	switch {
	case index < 0 || index > len(n.children):
		return errors.NewMisroutedGraftError(index, len(n.children))
	case index == len(n.children):
		n.children = append(n.children, child)
	default:
		n.children[index] = child
	}
	if child != nil {
		child.SetDepth(n.depth + 1)
	}
	return nil
}

// SetDepth implements Node and recurses into every child.
func (n *SplitNode) SetDepth(d int) {
	n.depth = d
	for _, c := range n.children {
		if c != nil {
			c.SetDepth(d + 1)
		}
	}
}

// Observe records the label weight of an unroutable record.
func (n *SplitNode) Observe(r model.Record) {
	n.observe(r.Label(), r.Weight())
}

// ClassVotes returns a copy of the confirmed distribution.
func (n *SplitNode) ClassVotes(_ *Config, _ model.Record) []float64 {
	return copyDist(n.classDistribution)
}

// Merge folds other into n child by child. other must be a SplitNode with
// the same number of slots.
func (n *SplitNode) Merge(other Node, trySplit bool) (Node, error) {
	if other == nil {
		return n, nil
	}
	o, ok := other.(*SplitNode)
	if !ok {
		return nil, errors.NewStructuralMismatchError("SplitNode.Merge", "branch merged with a leaf",
			kindName(n), kindName(other), n.depth)
	}
	if len(o.children) != len(n.children) {
		return nil, errors.NewStructuralMismatchError("SplitNode.Merge",
			fmt.Sprintf("child counts differ (%d != %d)", len(n.children), len(o.children)),
			kindName(n), kindName(other), n.depth)
	}
	if len(o.classDistribution) != len(n.classDistribution) {
		return nil, errors.NewDimensionError("SplitNode.Merge", len(n.classDistribution), len(o.classDistribution), 0)
	}

	// 分岐ノード自身のフォールバック統計
	if trySplit {
		floats.Add(n.classDistribution, o.classDistribution)
	} else {
		floats.Add(n.classDistribution, o.blockClassDistribution)
	}

	for i, oc := range o.children {
		if oc == nil {
			continue
		}
		target := n.children[i]
		if target == nil {
			target = emptyLike(oc, len(n.classDistribution))
		}
		merged, err := target.Merge(oc, trySplit)
		if err != nil {
			return nil, errors.Wrapf(err, "merging child %d", i)
		}
		if err := n.SetChild(i, merged); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Description implements Node.
func (n *SplitNode) Description() string { return description(n) }

func (n *SplitNode) describe(sb *strings.Builder) {
	labels := n.test.Description()
	indent(sb, n.depth)
	fmt.Fprintf(sb, "Split on f%d dist=%s\n", n.test.Feature(), formatDist(n.classDistribution))
	for i, c := range n.children {
		label := fmt.Sprintf("branch %d", i)
		if i < len(labels) {
			label = labels[i]
		}
		indent(sb, n.depth)
		fmt.Fprintf(sb, "if %s:\n", label)
		if c == nil {
			indent(sb, n.depth+1)
			sb.WriteString("<absent>\n")
			continue
		}
		c.describe(sb)
	}
}
