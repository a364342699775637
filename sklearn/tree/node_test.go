package tree

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/vfdt/core/model"
	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/observer"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/split"
)

// outcomeTest routes every record to int(feature 0), negative for missing.
type outcomeTest struct {
	branches int
}

func (t outcomeTest) Branch(r model.Record) int {
	v := r.Feature(0)
	if model.IsMissing(v) {
		return -1
	}
	return int(v)
}

func (t outcomeTest) NumBranches() int { return t.branches }

func (t outcomeTest) Description() []string {
	out := make([]string, t.branches)
	for i := range out {
		out[i] = "outcome " + string(rune('0'+i))
	}
	return out
}

func (t outcomeTest) Feature() int { return 0 }

// fixedScorer always returns the same scores.
type fixedScorer []float64

func (s fixedScorer) Predict(_ model.Record, _ []float64, _ []observer.Observer) []float64 {
	return append([]float64(nil), s...)
}

func rec(label int, weight float64, features ...float64) model.Record {
	return model.NewExample(features, label, weight)
}

func TestActiveLearningNode_WeightConservation(t *testing.T) {
	cfg := NewConfig(3)
	leaf := NewActiveLearningNode(make([]float64, 3))

	total := 0.0
	for i, w := range []float64{1, 0.5, 2, 0, 3.25} {
		leaf.Learn(cfg, rec(i%3, w, float64(i)))
		total += w
		assert.InDelta(t, total, leaf.Weight(), 1e-12)
		assert.InDelta(t, total, leaf.BlockWeight(), 1e-12)
	}

	assert.Equal(t, []float64{0, 0, 0}, leaf.ClassDistribution(), "learn never touches the confirmed distribution")
	assert.Equal(t, []float64{1, 0.5 + 3.25, 2}, leaf.BlockClassDistribution())
	assert.Equal(t, total, leaf.AddOnWeight())
}

func TestActiveLearningNode_ZeroWeightIsNoop(t *testing.T) {
	cfg := NewConfig(2)
	leaf := NewActiveLearningNode(make([]float64, 2))
	leaf.Learn(cfg, rec(1, 0, 4.2))
	leaf.Learn(cfg, rec(5, 1, 4.2)) // label outside the class range

	assert.Equal(t, 0.0, leaf.Weight())
	assert.Nil(t, leaf.Observers(), "observers are created on first real use")
}

func TestActiveLearningNode_AddOnWeight(t *testing.T) {
	cfg := NewConfig(2)
	canonical := NewActiveLearningNode([]float64{0, 0})

	block := blockCopy(canonical).(*ActiveLearningNode)
	block.Learn(cfg, rec(0, 4, 1))
	_, err := canonical.Merge(block, false)
	require.NoError(t, err)
	assert.Equal(t, 4.0, canonical.AddOnWeight(), "carried-over weight without a fresh block")

	canonical.Learn(cfg, rec(1, 1.5, 2))
	assert.Equal(t, 1.5, canonical.AddOnWeight(), "block weight wins when non-zero")
}

func TestMerge_ZeroNodeIsIdentity(t *testing.T) {
	cfg := NewConfig(2)
	for _, trySplit := range []bool{false, true} {
		a := NewActiveLearningNode([]float64{3, 4})
		a.addonWeight = 2
		a.Learn(cfg, rec(1, 1, 0.5))

		beforeObs := a.Observers()[0].TotalWeight()
		zero := NewActiveLearningNode([]float64{0, 0})

		merged, err := a.Merge(zero, trySplit)
		require.NoError(t, err)
		assert.Same(t, a, merged)
		assert.Equal(t, []float64{3, 4}, a.ClassDistribution(), "trySplit=%v", trySplit)
		assert.Equal(t, []float64{0, 1}, a.BlockClassDistribution(), "trySplit=%v", trySplit)
		assert.Equal(t, 2.0, a.addonWeight, "trySplit=%v", trySplit)
		assert.Equal(t, beforeObs, a.Observers()[0].TotalWeight())
	}
}

func TestMerge_ModeDistinction(t *testing.T) {
	cfg := NewConfig(2)
	newB := func() *ActiveLearningNode {
		b := NewActiveLearningNode([]float64{2, 0})
		b.addonWeight = 7
		for i := 0; i < 3; i++ {
			b.Learn(cfg, rec(1, 1, float64(i)))
		}
		return b
	}

	pre := NewActiveLearningNode([]float64{1, 1})
	_, err := pre.Merge(newB(), false)
	require.NoError(t, err)

	post := NewActiveLearningNode([]float64{1, 1})
	_, err = post.Merge(newB(), true)
	require.NoError(t, err)

	// trySplit=false: block distribution and its sum
	assert.Equal(t, []float64{1, 4}, pre.ClassDistribution())
	assert.Equal(t, 3.0, pre.addonWeight)

	// trySplit=true: confirmed distribution and addonWeight
	assert.Equal(t, []float64{3, 1}, post.ClassDistribution())
	assert.Equal(t, 7.0, post.addonWeight)

	assert.NotEqual(t, pre.ClassDistribution(), post.ClassDistribution())

	// observers are merged in both modes
	assert.Equal(t, 3.0, pre.Observers()[0].TotalWeight())
	assert.Equal(t, 3.0, post.Observers()[0].TotalWeight())
}

func TestMerge_EndToEndScenario(t *testing.T) {
	cfg := NewConfig(2)

	// A holds ten confirmed records of class 0
	a := NewActiveLearningNode([]float64{10, 0})

	b := blockCopy(a).(*ActiveLearningNode)
	for i := 0; i < 5; i++ {
		b.Learn(cfg, rec(1, 1, float64(i)))
	}

	merged, err := a.Merge(b, false)
	require.NoError(t, err)
	assert.Same(t, a, merged)
	assert.Equal(t, []float64{10, 5}, a.ClassDistribution())
	assert.Equal(t, 5.0, a.addonWeight)
	assert.Equal(t, []float64{0, 0}, a.BlockClassDistribution())
}

func TestMerge_LeavesOwnBlockUntouched(t *testing.T) {
	cfg := NewConfig(2)
	a := NewActiveLearningNode([]float64{10, 0})
	a.Learn(cfg, rec(0, 2, 1))

	b := blockCopy(a).(*ActiveLearningNode)
	for i := 0; i < 5; i++ {
		b.Learn(cfg, rec(1, 1, float64(i)))
	}

	_, err := a.Merge(b, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 5}, a.ClassDistribution())
	assert.Equal(t, []float64{2, 0}, a.BlockClassDistribution(), "A's own un-merged block stays as it was")
	assert.Equal(t, 2.0, a.AddOnWeight())
	assert.Equal(t, 17.0, a.Weight())
}

func TestMerge_ObserversInitialisedLazily(t *testing.T) {
	cfg := NewConfig(2)
	canonical := NewActiveLearningNode([]float64{0, 0})
	block := NewActiveLearningNode([]float64{0, 0})
	block.Learn(cfg, rec(0, 1, 1, 2))

	_, err := canonical.Merge(block, false)
	require.NoError(t, err)
	require.Len(t, canonical.Observers(), 2)
	assert.NotSame(t, block.Observers()[0], canonical.Observers()[0], "observers are cloned, not shared")

	first := canonical.Observers()[0]
	canonical.initObservers(cfg, 2)
	assert.Same(t, first, canonical.Observers()[0], "re-initialisation is a no-op")

	block.Learn(cfg, rec(1, 1, 3, 4))
	assert.Equal(t, 1.0, canonical.Observers()[0].TotalWeight())
}

func TestMerge_StructuralMismatch(t *testing.T) {
	var mismatch *errors.StructuralMismatchError

	two := NewSplitNode(outcomeTest{branches: 2}, []float64{0, 0})
	three := NewSplitNode(outcomeTest{branches: 3}, []float64{0, 0})
	_, err := two.Merge(three, false)
	require.Error(t, err)
	assert.True(t, errors.As(err, &mismatch))

	_, err = two.Merge(NewActiveLearningNode([]float64{0, 0}), true)
	assert.True(t, errors.As(err, &mismatch), "branch merged with a leaf")

	_, err = NewActiveLearningNode([]float64{0, 0}).Merge(two, false)
	assert.True(t, errors.As(err, &mismatch), "leaf merged with a branch")

	_, err = NewActiveLearningNode([]float64{0, 0}).Merge(NewLearningNodeNB([]float64{0, 0}), true)
	assert.True(t, errors.As(err, &mismatch), "variants must match after a split decision")
	assert.Equal(t, "LearningNodeNB", mismatch.Right)

	merged, err := NewActiveLearningNode([]float64{0, 0}).Merge(NewLearningNodeNB([]float64{1, 0}), false)
	require.NoError(t, err, "block folds accept any active variant")
	assert.IsType(t, &ActiveLearningNode{}, merged)
}

func TestMerge_MismatchInsideSubtree(t *testing.T) {
	a := NewSplitNode(outcomeTest{branches: 2}, []float64{0, 0})
	require.NoError(t, a.SetChild(0, NewActiveLearningNode([]float64{0, 0})))
	b := NewSplitNode(outcomeTest{branches: 2}, []float64{0, 0})
	require.NoError(t, b.SetChild(0, NewSplitNode(outcomeTest{branches: 2}, []float64{0, 0})))

	_, err := a.Merge(b, false)
	var mismatch *errors.StructuralMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 1, mismatch.Depth)
}

func TestInactiveLearningNode(t *testing.T) {
	cfg := NewConfig(2)
	n := NewInactiveLearningNode([]float64{4, 1})
	n.Learn(cfg, rec(1, 10, 0))
	assert.False(t, n.IsActive())
	assert.Equal(t, []float64{4, 1}, n.ClassDistribution())
	assert.Equal(t, []float64{0, 0}, n.BlockClassDistribution())

	other := NewActiveLearningNode([]float64{100, 100})
	other.Learn(cfg, rec(0, 1, 0))
	for _, trySplit := range []bool{false, true} {
		merged, err := n.Merge(other, trySplit)
		require.NoError(t, err)
		assert.Same(t, n, merged)
		assert.Equal(t, []float64{4, 1}, n.ClassDistribution())
	}

	active := NewActiveLearningNode([]float64{1, 1})
	merged, err := active.Merge(n, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, merged.ClassDistribution(), "inactive nodes carry no block statistics")

	_, err = active.Merge(NewInactiveLearningNode([]float64{50, 50}), true)
	var mismatch *errors.StructuralMismatchError
	require.True(t, errors.As(err, &mismatch), "confirmed statistics cannot be reconciled across variants")
	assert.Equal(t, "ActiveLearningNode", mismatch.Left)
	assert.Equal(t, "InactiveLearningNode", mismatch.Right)
	assert.Equal(t, []float64{1, 1}, active.ClassDistribution())

	nba := NewLearningNodeNBAdaptive([]float64{1, 1})
	_, err = nba.Merge(NewInactiveLearningNode([]float64{2, 2}), true)
	assert.True(t, errors.As(err, &mismatch))
}

func TestIsPure(t *testing.T) {
	cfg := NewConfig(3)
	n := NewActiveLearningNode([]float64{5, 0, 0})
	assert.True(t, n.IsPure())

	n.Learn(cfg, rec(2, 1, 0))
	assert.True(t, n.IsPure(), "each distribution is checked on its own")

	n.Learn(cfg, rec(1, 1, 0))
	assert.False(t, n.IsPure())
}

func TestClassVotesReturnsCopy(t *testing.T) {
	cfg := NewConfig(2)
	nodes := []Node{
		NewActiveLearningNode([]float64{1, 2}),
		NewInactiveLearningNode([]float64{1, 2}),
		NewLearningNodeNB([]float64{1, 2}),
		NewSplitNode(outcomeTest{branches: 1}, []float64{1, 2}),
	}
	for _, n := range nodes {
		votes := n.ClassVotes(cfg, rec(0, 1, 0))
		votes[0] = 99
		assert.Equal(t, []float64{1, 2}, n.ClassDistribution(), kindName(n))
	}
}

func TestLearningNodeNB_Threshold(t *testing.T) {
	cfg := NewConfig(2)
	cfg.Scorer = fixedScorer{0.1, 0.9}
	cfg.NBThreshold = 10

	n := NewLearningNodeNB([]float64{3, 1})
	assert.Equal(t, []float64{3, 1}, n.ClassVotes(cfg, rec(0, 1, 0)), "below the threshold")

	n = NewLearningNodeNB([]float64{8, 3})
	assert.Equal(t, []float64{0.1, 0.9}, n.ClassVotes(cfg, rec(0, 1, 0)), "above the threshold")

	n = NewLearningNodeNB([]float64{8, 2})
	assert.Equal(t, []float64{8, 2}, n.ClassVotes(cfg, rec(0, 1, 0)), "weight must exceed the threshold")
}

func TestLearningNodeNBAdaptive_Switch(t *testing.T) {
	cfg := NewConfig(2)
	cfg.Scorer = fixedScorer{0.2, 0.8}

	n := NewLearningNodeNBAdaptive([]float64{3, 1})
	n.mcCorrectWeight, n.nbCorrectWeight = 5, 2
	assert.Equal(t, []float64{3, 1}, n.ClassVotes(cfg, rec(0, 1, 0)), "majority class is more accurate")

	n.mcCorrectWeight, n.nbCorrectWeight = 2, 5
	assert.Equal(t, []float64{0.2, 0.8}, n.ClassVotes(cfg, rec(0, 1, 0)), "naive Bayes is more accurate")

	n.mcCorrectWeight, n.nbCorrectWeight = 4, 4
	assert.Equal(t, []float64{0.2, 0.8}, n.ClassVotes(cfg, rec(0, 1, 0)), "ties go to naive Bayes")

	// block-local counters never influence predictions
	n.blockMCCorrectWeight = 100
	assert.Equal(t, []float64{0.2, 0.8}, n.ClassVotes(cfg, rec(0, 1, 0)))
}

func TestLearningNodeNBAdaptive_LearnAndMerge(t *testing.T) {
	cfg := NewConfig(2)
	cfg.Scorer = fixedScorer{0, 1}

	canonical := NewLearningNodeNBAdaptive([]float64{3, 1})
	block := blockCopy(canonical).(*LearningNodeNBAdaptive)

	block.Learn(cfg, rec(0, 2, 0.5)) // majority class correct
	block.Learn(cfg, rec(1, 1, 0.5)) // naive Bayes correct
	mc, nb := block.BlockCorrectWeights()
	assert.Equal(t, 2.0, mc)
	assert.Equal(t, 1.0, nb)
	assert.Equal(t, []float64{2, 1}, block.BlockClassDistribution())

	_, err := canonical.Merge(block, false)
	require.NoError(t, err)
	mc, nb = canonical.CorrectWeights()
	assert.Equal(t, 2.0, mc)
	assert.Equal(t, 1.0, nb)
	assert.Equal(t, []float64{5, 2}, canonical.ClassDistribution())

	replica := NewLearningNodeNBAdaptive([]float64{1, 1})
	replica.mcCorrectWeight, replica.nbCorrectWeight = 10, 20
	replica.blockMCCorrectWeight = 1000
	_, err = canonical.Merge(replica, true)
	require.NoError(t, err)
	mc, nb = canonical.CorrectWeights()
	assert.Equal(t, 12.0, mc)
	assert.Equal(t, 21.0, nb)
}

func TestLearningNodeNBAdaptive_EmptyDistributionEarnsNoCredit(t *testing.T) {
	cfg := NewConfig(2)
	n := NewLearningNodeNBAdaptive([]float64{0, 0})
	n.Learn(cfg, rec(0, 1, 1.0))
	mc, nb := n.BlockCorrectWeights()
	assert.Equal(t, 0.0, mc)
	assert.Equal(t, 0.0, nb)
}

func TestSplitNode_RoutingCompleteness(t *testing.T) {
	root := NewSplitNode(outcomeTest{branches: 3}, []float64{0, 0})
	leaf := NewActiveLearningNode([]float64{0, 0})
	inner := NewSplitNode(outcomeTest{branches: 1}, []float64{0, 0})
	innerLeaf := NewActiveLearningNode([]float64{0, 0})
	require.NoError(t, root.SetChild(0, leaf))
	require.NoError(t, root.SetChild(1, inner))
	require.NoError(t, inner.SetChild(0, innerLeaf))

	n := root.NumSlots()
	for outcome := -1; outcome <= n; outcome++ {
		found := root.FilterToLeaf(rec(0, 1, float64(outcome)), nil, -1)
		switch {
		case outcome < 0:
			assert.Same(t, root, found.Node)
			assert.Nil(t, found.Parent)
			assert.Equal(t, -1, found.Index)
		case found.Node == nil:
			require.True(t, found.IsGraftSignal())
			assert.GreaterOrEqual(t, found.Index, 0)
			assert.LessOrEqual(t, found.Index, found.Parent.NumSlots())
		default:
			assert.True(t, found.Node.IsLeaf())
		}
	}

	// 次の空きスロットより先の結果は分岐ノードで受ける
	for _, outcome := range []float64{float64(n + 1), 5, 1e9} {
		found := root.FilterToLeaf(rec(0, 1, outcome), nil, -1)
		assert.Same(t, root, found.Node, "outcome %v", outcome)
		assert.False(t, found.IsGraftSignal())
	}
	found := inner.FilterToLeaf(rec(0, 1, 2), root, 1)
	assert.Same(t, inner, found.Node)
	assert.Same(t, root, found.Parent)
	assert.Equal(t, 1, found.Index)

	found = root.FilterToLeaf(rec(0, 1, 0), nil, -1)
	assert.Same(t, leaf, found.Node)
	assert.Equal(t, 0, found.Index)

	// outcome 1 descends into inner, which routes 1 to its frontier slot
	found = root.FilterToLeaf(rec(0, 1, 1), nil, -1)
	assert.Nil(t, found.Node)
	assert.Same(t, inner, found.Parent)
	assert.Equal(t, 1, found.Index)

	found = root.FilterToLeaf(rec(0, 1, 2), nil, -1)
	assert.Nil(t, found.Node)
	assert.Same(t, root, found.Parent)
	assert.Equal(t, 2, found.Index)

	// unroutable below inner keeps the caller-supplied linkage
	found = inner.FilterToLeaf(rec(0, 1, math.NaN()), root, 1)
	assert.Same(t, inner, found.Node)
	assert.Same(t, root, found.Parent)
	assert.Equal(t, 1, found.Index)
}

func TestSplitNode_SetChild(t *testing.T) {
	sn := NewSplitNode(outcomeTest{branches: 1}, []float64{0, 0})
	sn.SetDepth(2)

	require.NoError(t, sn.SetChild(0, NewActiveLearningNode([]float64{0, 0})))
	require.NoError(t, sn.SetChild(1, NewActiveLearningNode([]float64{0, 0})), "append at the current length")
	assert.Equal(t, 2, sn.NumSlots())
	assert.Equal(t, 2, sn.NumChildren())
	assert.Equal(t, 3, sn.Child(1).Depth())

	replacement := NewInactiveLearningNode([]float64{0, 0})
	require.NoError(t, sn.SetChild(0, replacement), "overwrite an existing slot")
	assert.Same(t, replacement, sn.Child(0))

	err := sn.SetChild(5, NewActiveLearningNode([]float64{0, 0}))
	var graft *errors.MisroutedGraftError
	require.True(t, errors.As(err, &graft))
	assert.Equal(t, 5, graft.Index)
	assert.Equal(t, 2, graft.Len)
	assert.Equal(t, 2, sn.NumSlots(), "a rejected graft does not change the node")

	assert.Error(t, sn.SetChild(-1, nil))
}

func checkDepths(t *testing.T, n Node, want int) {
	t.Helper()
	assert.Equal(t, want, n.Depth(), kindName(n))
	if sn, ok := n.(*SplitNode); ok {
		for _, c := range sn.children {
			if c != nil {
				checkDepths(t, c, want+1)
			}
		}
	}
}

func TestDepthConsistency(t *testing.T) {
	root := NewSplitNode(outcomeTest{branches: 2}, []float64{0, 0})
	require.NoError(t, root.SetChild(0, NewActiveLearningNode([]float64{0, 0})))

	// subtree built off to the side with arbitrary depths
	sub := NewSplitNode(outcomeTest{branches: 2}, []float64{0, 0})
	sub.SetDepth(7)
	deep := NewSplitNode(outcomeTest{branches: 1}, []float64{0, 0})
	require.NoError(t, deep.SetChild(0, NewLearningNodeNB([]float64{0, 0})))
	require.NoError(t, sub.SetChild(1, deep))
	require.NoError(t, sub.SetChild(0, NewInactiveLearningNode([]float64{0, 0})))

	require.NoError(t, root.SetChild(1, sub))
	checkDepths(t, root, 0)

	root.SetDepth(3)
	checkDepths(t, root, 3)
	root.SetDepth(0)
	checkDepths(t, root, 0)
	assert.Equal(t, 3, Measure(root).Depth)
}

func TestSplitNode_MergeGraftsAbsentChildren(t *testing.T) {
	cfg := NewConfig(2)
	canonical := NewSplitNode(outcomeTest{branches: 3}, []float64{4, 4})
	require.NoError(t, canonical.SetChild(0, NewActiveLearningNode([]float64{4, 0})))
	require.NoError(t, canonical.SetChild(1, NewActiveLearningNode([]float64{0, 4})))

	block := blockCopy(canonical).(*SplitNode)
	for _, r := range []model.Record{rec(0, 1, 0), rec(1, 2, 2), rec(1, 1, math.NaN())} {
		found := Route(block, r)
		switch n := found.Node.(type) {
		case nil:
			leaf := NewActiveLearningNode([]float64{0, 0})
			require.NoError(t, found.Parent.SetChild(found.Index, leaf))
			leaf.Learn(cfg, r)
		case *SplitNode:
			n.Observe(r)
		case LearningNode:
			n.Learn(cfg, r)
		}
	}
	assert.Nil(t, canonical.Child(2), "the canonical tree is untouched during learning")

	merged, err := canonical.Merge(block, false)
	require.NoError(t, err)
	assert.Same(t, canonical, merged)

	assert.Equal(t, []float64{4, 5}, canonical.ClassDistribution(), "unroutable weight folds into the branch")
	assert.Equal(t, []float64{5, 0}, canonical.Child(0).ClassDistribution())
	assert.Equal(t, []float64{0, 4}, canonical.Child(1).ClassDistribution())

	grafted := canonical.Child(2)
	require.NotNil(t, grafted)
	assert.Equal(t, []float64{0, 2}, grafted.ClassDistribution())
	assert.Equal(t, 1, grafted.Depth())
	assert.Equal(t, 3, canonical.NumChildren())
}

func TestSplitNode_MergeModes(t *testing.T) {
	a := NewSplitNode(outcomeTest{branches: 1}, []float64{1, 1})
	b := NewSplitNode(outcomeTest{branches: 1}, []float64{5, 5})
	b.Observe(rec(0, 2, math.NaN()))

	_, err := a.Merge(b, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, a.ClassDistribution())

	_, err = a.Merge(b, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 6}, a.ClassDistribution())
	assert.Nil(t, a.Child(0), "absent on both sides stays absent")
}

func TestBestSplitSuggestions(t *testing.T) {
	cfg := NewConfig(2)
	cfg.Features = []observer.FeatureSpec{{Type: observer.Numeric}, {Type: observer.Nominal}}
	leaf := NewActiveLearningNode([]float64{0, 0})
	for i := 0; i < 20; i++ {
		leaf.Learn(cfg, rec(0, 1, float64(i%4), 0))
		leaf.Learn(cfg, rec(1, 1, 10+float64(i%4), 1))
	}

	suggestions := leaf.BestSplitSuggestions(split.NewInfoGain(), cfg)
	require.Len(t, suggestions, 2)
	for _, s := range suggestions {
		assert.False(t, s.IsNullSplit())
	}
	assert.InDelta(t, 1.0, suggestions[0].Merit, 1e-2, "gaussian estimate of a separable feature")
	assert.InDelta(t, 1.0, suggestions[1].Merit, 1e-12)
	assert.IsType(t, &split.NumericBinaryTest{}, suggestions[0].Test)
	assert.IsType(t, &split.NominalMultiwayTest{}, suggestions[1].Test)

	cfg.PrePrune = true
	cfg.BinaryOnly = true
	suggestions = leaf.BestSplitSuggestions(split.Gini{}, cfg)
	require.Len(t, suggestions, 3)
	null := suggestions[0]
	assert.True(t, null.IsNullSplit())
	assert.InDelta(t, 0.5, null.Merit, 1e-12, "baseline is the merit of the unsplit distribution")
	assert.IsType(t, &split.NominalBinaryTest{}, suggestions[2].Test)
}

func TestDescription(t *testing.T) {
	root := NewSplitNode(&split.NumericBinaryTest{FeatureIndex: 0, Threshold: 1.5}, []float64{3, 2})
	require.NoError(t, root.SetChild(0, NewActiveLearningNode([]float64{3, 0})))

	desc := root.Description()
	lines := strings.Split(strings.TrimRight(desc, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Split on f0 dist=[3, 2]", lines[0])
	assert.Equal(t, "if f0 <= 1.5:", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "  Leaf(active) class=0"))
	assert.Equal(t, "if f0 > 1.5:", lines[3])
	assert.Equal(t, "  <absent>", lines[4])
}

func TestRouteLeafRoot(t *testing.T) {
	leaf := NewActiveLearningNode([]float64{0, 0})
	found := Route(leaf, rec(0, 1, 3))
	assert.Same(t, leaf, found.Node)
	assert.Nil(t, found.Parent)
	assert.False(t, found.IsGraftSignal())
}
