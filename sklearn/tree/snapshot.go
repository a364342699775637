package tree

// LeafPrediction は新しく作る葉のバリアント
type LeafPrediction int

const (
	// MajorityClass creates ActiveLearningNode leaves.
	MajorityClass LeafPrediction = iota
	// NaiveBayes creates LearningNodeNB leaves.
	NaiveBayes
	// NaiveBayesAdaptive creates LearningNodeNBAdaptive leaves.
	NaiveBayesAdaptive
)

func (p LeafPrediction) String() string {
	switch p {
	case NaiveBayes:
		return "nb"
	case NaiveBayesAdaptive:
		return "nba"
	default:
		return "mc"
	}
}

// ParseLeafPrediction accepts "mc", "nb" and "nba".
func ParseLeafPrediction(s string) (LeafPrediction, bool) {
	switch s {
	case "mc":
		return MajorityClass, true
	case "nb":
		return NaiveBayes, true
	case "nba":
		return NaiveBayesAdaptive, true
	default:
		return MajorityClass, false
	}
}

// NewLeaf creates an active leaf of the given variant.
func NewLeaf(p LeafPrediction, classDistribution []float64) LearningNode {
	switch p {
	case NaiveBayes:
		return NewLearningNodeNB(classDistribution)
	case NaiveBayesAdaptive:
		return NewLearningNodeNBAdaptive(classDistribution)
	default:
		return NewActiveLearningNode(classDistribution)
	}
}

func kindName(n Node) string {
	switch n.(type) {
	case nil:
		return "<absent>"
	case *SplitNode:
		return "SplitNode"
	case *ActiveLearningNode:
		return "ActiveLearningNode"
	case *InactiveLearningNode:
		return "InactiveLearningNode"
	case *LearningNodeNB:
		return "LearningNodeNB"
	case *LearningNodeNBAdaptive:
		return "LearningNodeNBAdaptive"
	default:
		return "unknown"
	}
}

// emptyLike は n と同じ形でゼロ統計のノードを作る
func emptyLike(n Node, numClasses int) Node {
	zero := make([]float64, numClasses)
	switch v := n.(type) {
	case *SplitNode:
		sn := NewSplitNode(v.test, zero)
		sn.children = make([]Node, len(v.children))
		return sn
	case *InactiveLearningNode:
		return NewInactiveLearningNode(zero)
	case *LearningNodeNB:
		return NewLearningNodeNB(zero)
	case *LearningNodeNBAdaptive:
		return NewLearningNodeNBAdaptive(zero)
	default:
		return NewActiveLearningNode(zero)
	}
}

// blockCopy は学習フェーズ用のブロックローカルコピーを作る
// 構造と確定済みクラス分布を複製し、ブロック内統計と Observer は空で開始する。
// 元の木の Observer は予測専用のスナップショットとして参照するだけで変更しない
func blockCopy(n Node) Node {
	switch v := n.(type) {
	case nil:
		return nil
	case *SplitNode:
		sn := NewSplitNode(v.test, copyDist(v.classDistribution))
		sn.children = make([]Node, len(v.children))
		for i, c := range v.children {
			sn.children[i] = blockCopy(c)
		}
		sn.depth = v.depth
		return sn
	case *InactiveLearningNode:
		c := NewInactiveLearningNode(copyDist(v.classDistribution))
		c.depth = v.depth
		return c
	case *ActiveLearningNode:
		c := NewActiveLearningNode(copyDist(v.classDistribution))
		c.copySnapshot(&v.activeState)
		return c
	case *LearningNodeNB:
		c := NewLearningNodeNB(copyDist(v.classDistribution))
		c.copySnapshot(&v.activeState)
		return c
	case *LearningNodeNBAdaptive:
		c := NewLearningNodeNBAdaptive(copyDist(v.classDistribution))
		c.copySnapshot(&v.activeState)
		c.mcCorrectWeight = v.mcCorrectWeight
		c.nbCorrectWeight = v.nbCorrectWeight
		return c
	default:
		return n
	}
}

func (s *activeState) copySnapshot(src *activeState) {
	s.depth = src.depth
	s.snapshot = src.scoringObservers()
}

// walkLeaves は木の全ての葉を親とインデックス付きで訪問する
func walkLeaves(root Node, fn func(found FoundNode)) {
	var walk func(n Node, parent *SplitNode, index int)
	walk = func(n Node, parent *SplitNode, index int) {
		if sn, ok := n.(*SplitNode); ok {
			for i, c := range sn.children {
				if c != nil {
					walk(c, sn, i)
				}
			}
			return
		}
		if n != nil {
			fn(FoundNode{Node: n, Parent: parent, Index: index})
		}
	}
	walk(root, nil, -1)
}
