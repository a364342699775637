// Package tree implements an incremental Hoeffding tree (VFDT) whose
// statistics are accumulated on block-local copies and reconciled into one
// canonical tree through a two-mode merge.
package tree

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/vfdt/core/model"
)

// Node は木の構造・統計の単位
// SplitNode, ActiveLearningNode, InactiveLearningNode, LearningNodeNB,
// LearningNodeNBAdaptive の5種類のみが実装する（sealed）
type Node interface {
	// ClassVotes はクラス別の重みベクトルを返す（呼び出し側が自由に変更してよいコピー）
	ClassVotes(cfg *Config, r model.Record) []float64

	// IsLeaf は分岐ノード以外で true
	IsLeaf() bool

	// NumChildren は存在する子ノードの数
	NumChildren() int

	// Merge は other の統計量をこのノードに畳み込み、結果のノードを返す
	Merge(other Node, trySplit bool) (Node, error)

	// Description は部分木の複数行表現（深さに比例したインデント）
	Description() string

	// SetDepth は深さを設定し、分岐ノードなら子に d+1 を再帰的に設定する
	SetDepth(d int)

	Depth() int

	// ClassDistribution は確定済みクラス分布のコピー
	ClassDistribution() []float64

	// BlockClassDistribution は未マージのブロック内クラス分布のコピー
	BlockClassDistribution() []float64

	describe(sb *strings.Builder)
	sealed()
}

// LearningNode is a leaf that can absorb records.
type LearningNode interface {
	Node

	// Learn absorbs one record into the block-local statistics.
	Learn(cfg *Config, r model.Record)

	// IsActive reports whether the leaf still keeps per-feature observers.
	IsActive() bool
}

// FoundNode is the transient result of a descent. Node is nil when the slot
// Parent.children[Index] has not been created yet. Parent is nil when Node
// is the root. It is never stored on a node.
type FoundNode struct {
	Node   Node
	Parent *SplitNode
	Index  int
}

// IsGraftSignal reports whether the caller must create the node at
// Parent/Index.
func (f FoundNode) IsGraftSignal() bool {
	return f.Node == nil && f.Parent != nil
}

// Route descends from root to the node responsible for r.
func Route(root Node, r model.Record) FoundNode {
	if sn, ok := root.(*SplitNode); ok {
		return sn.FilterToLeaf(r, nil, -1)
	}
	return FoundNode{Node: root, Parent: nil, Index: -1}
}

// nodeBase は全ノード共通の状態
type nodeBase struct {
	classDistribution      []float64
	blockClassDistribution []float64
	depth                  int
}

func newNodeBase(classDistribution []float64) nodeBase {
	return nodeBase{
		classDistribution:      classDistribution,
		blockClassDistribution: make([]float64, len(classDistribution)),
	}
}

func (n *nodeBase) IsLeaf() bool { return true }

func (n *nodeBase) NumChildren() int { return 0 }

func (n *nodeBase) Depth() int { return n.depth }

func (n *nodeBase) SetDepth(d int) { n.depth = d }

func (n *nodeBase) ClassDistribution() []float64 {
	return copyDist(n.classDistribution)
}

func (n *nodeBase) BlockClassDistribution() []float64 {
	return copyDist(n.blockClassDistribution)
}

func (n *nodeBase) observe(label int, weight float64) bool {
	if label < 0 || label >= len(n.blockClassDistribution) || weight <= 0 {
		return false
	}
	n.blockClassDistribution[label] += weight
	return true
}

func (n *nodeBase) sealed() {}

func copyDist(d []float64) []float64 {
	out := make([]float64, len(d))
	copy(out, d)
	return out
}

// argmax returns -1 for a vector without positive weight.
func argmax(d []float64) int {
	if len(d) == 0 || floats.Max(d) <= 0 {
		return -1
	}
	return floats.MaxIdx(d)
}

func countNonZero(d []float64) int {
	n := 0
	for _, w := range d {
		if w != 0 {
			n++
		}
	}
	return n
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func formatDist(d []float64) string {
	parts := make([]string, len(d))
	for i, w := range d {
		parts[i] = strconv.FormatFloat(w, 'g', 6, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func describeLeaf(sb *strings.Builder, kind string, n *nodeBase) {
	indent(sb, n.depth)
	fmt.Fprintf(sb, "Leaf(%s) class=%d dist=%s", kind, argmax(n.classDistribution), formatDist(n.classDistribution))
	if floats.Sum(n.blockClassDistribution) > 0 {
		fmt.Fprintf(sb, " block=%s", formatDist(n.blockClassDistribution))
	}
	sb.WriteByte('\n')
}

func description(n Node) string {
	var sb strings.Builder
	n.describe(&sb)
	return sb.String()
}
