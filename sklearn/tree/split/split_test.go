package split

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/vfdt/core/model"
)

func TestEntropy(t *testing.T) {
	assert.InDelta(t, 1.0, Entropy([]float64{5, 5}), 1e-12)
	assert.Equal(t, 0.0, Entropy([]float64{7, 0}))
	assert.Equal(t, 0.0, Entropy([]float64{0, 0}), "empty distribution must not divide by zero")
}

func TestInfoGainMerit(t *testing.T) {
	c := NewInfoGain()
	pre := []float64{5, 5}

	perfect := c.Merit(pre, [][]float64{{5, 0}, {0, 5}})
	assert.InDelta(t, 1.0, perfect, 1e-12)

	useless := c.Merit(pre, [][]float64{{2.5, 2.5}, {2.5, 2.5}})
	assert.InDelta(t, 0.0, useless, 1e-12)

	// a single effective branch is not a split
	assert.True(t, math.IsInf(c.Merit(pre, [][]float64{pre}), -1))
	assert.True(t, math.IsInf(c.Merit(pre, [][]float64{{5, 5}, {0, 0}}), -1))

	assert.InDelta(t, math.Log2(3), c.Range([]float64{1, 1, 1}), 1e-12)
	assert.Equal(t, 1.0, c.Range([]float64{1}))
}

func TestGiniMerit(t *testing.T) {
	var c Gini
	pre := []float64{4, 4}
	assert.InDelta(t, 1.0, c.Merit(pre, [][]float64{{4, 0}, {0, 4}}), 1e-12)
	assert.InDelta(t, 0.5, c.Merit(pre, [][]float64{pre}), 1e-12)
	assert.Equal(t, 0.0, c.Merit(pre, [][]float64{{0, 0}}))
	assert.Equal(t, 1.0, c.Range(pre))
}

func TestNewCriterion(t *testing.T) {
	c, ok := NewCriterion("gini")
	require.True(t, ok)
	assert.Equal(t, "gini", c.Name())

	c, ok = NewCriterion("entropy")
	require.True(t, ok)
	assert.Equal(t, "info_gain", c.Name())

	_, ok = NewCriterion("mse")
	assert.False(t, ok)
}

func TestNumericBinaryTest(t *testing.T) {
	test := &NumericBinaryTest{FeatureIndex: 1, Threshold: 2.5}

	assert.Equal(t, 0, test.Branch(model.NewUnlabeledExample([]float64{9, 2.5})))
	assert.Equal(t, 1, test.Branch(model.NewUnlabeledExample([]float64{9, 3})))
	assert.Equal(t, -1, test.Branch(model.NewUnlabeledExample([]float64{9, math.NaN()})))
	assert.Equal(t, -1, test.Branch(model.NewUnlabeledExample([]float64{9})), "absent feature is unroutable")
	assert.Equal(t, []string{"f1 <= 2.5", "f1 > 2.5"}, test.Description())
}

func TestNominalTests(t *testing.T) {
	multi := &NominalMultiwayTest{FeatureIndex: 0, Values: []int{3, 1}}
	assert.Equal(t, 3, multi.NumBranches())
	assert.Equal(t, 0, multi.Branch(model.NewUnlabeledExample([]float64{3})))
	assert.Equal(t, 1, multi.Branch(model.NewUnlabeledExample([]float64{1})))
	assert.Equal(t, 2, multi.Branch(model.NewUnlabeledExample([]float64{7})), "unseen values go to the last branch")
	assert.Equal(t, -1, multi.Branch(model.NewUnlabeledExample([]float64{1.5})))
	assert.Equal(t, -1, multi.Branch(model.NewUnlabeledExample([]float64{1e15})), "values beyond the int32 range are missing")
	assert.Len(t, multi.Description(), multi.NumBranches())

	binary := &NominalBinaryTest{FeatureIndex: 0, Value: 2}
	assert.Equal(t, 0, binary.Branch(model.NewUnlabeledExample([]float64{2})))
	assert.Equal(t, 1, binary.Branch(model.NewUnlabeledExample([]float64{0})))
	assert.Equal(t, -1, binary.Branch(model.NewUnlabeledExample([]float64{-1})))
}

func TestSortByMerit(t *testing.T) {
	s := []Suggestion{
		{Merit: 0.1},
		{Test: &NumericBinaryTest{}, Merit: 0.7},
		{Merit: math.Inf(-1)},
	}
	SortByMerit(s)
	assert.Equal(t, 0.7, s[0].Merit)
	assert.False(t, s[0].IsNullSplit())
	assert.True(t, math.IsInf(s[2].Merit, -1))
}

func TestResultingClassDistributionIsCopy(t *testing.T) {
	s := Suggestion{ResultingClassDistributions: [][]float64{{1, 2}}}
	d := s.ResultingClassDistribution(0)
	d[0] = 100
	assert.Equal(t, 1.0, s.ResultingClassDistributions[0][0])
	assert.Equal(t, 1, s.NumSplits())
}
