package split

import (
	"fmt"
	"math"
	"strconv"

	"github.com/YuminosukeSato/vfdt/core/model"
)

// ConditionalTest は分岐ノードが保持するルーティング関数
// 構築後は読み取り専用で、複数のゴルーチンから共有される
type ConditionalTest interface {
	// Branch はレコードの分岐先インデックスを返す（ルーティング不能なら負の値）
	Branch(r model.Record) int

	// NumBranches は取りうる分岐数
	NumBranches() int

	// Description は分岐ごとのラベルを返す
	Description() []string

	// Feature は判定に使う特徴量のインデックス
	Feature() int
}

// NominalMultiwayTest routes a nominal feature to one branch per value seen
// when the split was made. Unseen values share the last branch.
type NominalMultiwayTest struct {
	FeatureIndex int
	Values       []int
}

func (t *NominalMultiwayTest) Feature() int { return t.FeatureIndex }

// NumBranches is len(Values)+1; the extra branch collects unseen values.
func (t *NominalMultiwayTest) NumBranches() int { return len(t.Values) + 1 }

// Branch implements ConditionalTest.
func (t *NominalMultiwayTest) Branch(r model.Record) int {
	v, ok := nominalValue(r.Feature(t.FeatureIndex))
	if !ok {
		return -1
	}
	for i, known := range t.Values {
		if known == v {
			return i
		}
	}
	return len(t.Values)
}

// Description implements ConditionalTest.
func (t *NominalMultiwayTest) Description() []string {
	out := make([]string, 0, t.NumBranches())
	for _, v := range t.Values {
		out = append(out, fmt.Sprintf("f%d = %d", t.FeatureIndex, v))
	}
	return append(out, fmt.Sprintf("f%d = <other>", t.FeatureIndex))
}

// NominalBinaryTest routes value == Value to branch 0, everything else to 1.
type NominalBinaryTest struct {
	FeatureIndex int
	Value        int
}

func (t *NominalBinaryTest) Feature() int { return t.FeatureIndex }

func (t *NominalBinaryTest) NumBranches() int { return 2 }

// Branch implements ConditionalTest.
func (t *NominalBinaryTest) Branch(r model.Record) int {
	v, ok := nominalValue(r.Feature(t.FeatureIndex))
	if !ok {
		return -1
	}
	if v == t.Value {
		return 0
	}
	return 1
}

// Description implements ConditionalTest.
func (t *NominalBinaryTest) Description() []string {
	return []string{
		fmt.Sprintf("f%d = %d", t.FeatureIndex, t.Value),
		fmt.Sprintf("f%d != %d", t.FeatureIndex, t.Value),
	}
}

// NumericBinaryTest routes value <= Threshold to branch 0 and the rest to 1.
type NumericBinaryTest struct {
	FeatureIndex int
	Threshold    float64
}

func (t *NumericBinaryTest) Feature() int { return t.FeatureIndex }

func (t *NumericBinaryTest) NumBranches() int { return 2 }

// Branch implements ConditionalTest.
func (t *NumericBinaryTest) Branch(r model.Record) int {
	v := r.Feature(t.FeatureIndex)
	if model.IsMissing(v) {
		return -1
	}
	if v <= t.Threshold {
		return 0
	}
	return 1
}

// Description implements ConditionalTest.
func (t *NumericBinaryTest) Description() []string {
	th := strconv.FormatFloat(t.Threshold, 'g', 6, 64)
	return []string{
		fmt.Sprintf("f%d <= %s", t.FeatureIndex, th),
		fmt.Sprintf("f%d > %s", t.FeatureIndex, th),
	}
}

// nominalValue converts an encoded category. Negative, fractional and
// missing values are not routable.
func nominalValue(v float64) (int, bool) {
	if model.IsMissing(v) || v < 0 || v > math.MaxInt32 || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
