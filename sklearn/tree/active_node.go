package tree

import (
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/vfdt/core/model"
	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/observer"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/split"
)

// activeState はアクティブな葉ノード3種が共有する状態
// 各バリアントはこの構造体の absorb / fold を明示的に呼び出してから固有の処理を行う
type activeState struct {
	nodeBase

	// addonWeight は過去の trySplit=false マージで加算された重みの累計
	addonWeight float64

	// observers は特徴量ごとの統計量（最初の Learn / Merge で遅延初期化）
	observers []observer.Observer

	// snapshot はブロックローカルコピーが複製元から引き継ぐ読み取り専用の Observer
	// naive-Bayes 予測にのみ使い、マージ対象にはならない
	snapshot []observer.Observer
}

func newActiveState(classDistribution []float64) activeState {
	return activeState{nodeBase: newNodeBase(classDistribution)}
}

// activeLeaf is implemented by the three active variants.
type activeLeaf interface {
	LearningNode
	state() *activeState
}

// Weight returns confirmed plus block-local weight.
func (s *activeState) Weight() float64 {
	return floats.Sum(s.classDistribution) + floats.Sum(s.blockClassDistribution)
}

// BlockWeight returns the block-local weight.
func (s *activeState) BlockWeight() float64 {
	return floats.Sum(s.blockClassDistribution)
}

// AddOnWeight returns BlockWeight when non-zero, otherwise the weight carried
// over from earlier merges.
func (s *activeState) AddOnWeight() float64 {
	if bw := s.BlockWeight(); bw != 0 {
		return bw
	}
	return s.addonWeight
}

// IsPure reports whether the confirmed and block-local distributions each
// have at most one non-zero class.
func (s *activeState) IsPure() bool {
	return countNonZero(s.classDistribution) <= 1 && countNonZero(s.blockClassDistribution) <= 1
}

// Observers returns the per-feature observers; nil entries are features not
// seen yet.
func (s *activeState) Observers() []observer.Observer {
	return s.observers
}

func (s *activeState) IsActive() bool { return true }

func (s *activeState) resetAddOnWeight() { s.addonWeight = 0 }

// initObservers は不足している Observer を作成する。既に存在するものは変更しない
func (s *activeState) initObservers(cfg *Config, numFeatures int) {
	if len(s.observers) < numFeatures {
		grown := make([]observer.Observer, numFeatures)
		copy(grown, s.observers)
		s.observers = grown
	}
	for i := range s.observers {
		if s.observers[i] == nil {
			s.observers[i] = cfg.factory().New(cfg.featureSpec(i), len(s.classDistribution), i)
		}
	}
}

// absorb は1レコードをブロック内分布と各 Observer に取り込む
func (s *activeState) absorb(cfg *Config, r model.Record) {
	label, w := r.Label(), r.Weight()
	if !s.observe(label, w) {
		return
	}
	s.initObservers(cfg, r.NumFeatures())
	for i := 0; i < r.NumFeatures(); i++ {
		s.observers[i].ObserveClass(label, r.Feature(i), w)
	}
}

// fold は other の統計量を2つのモードで畳み込む
//
//	trySplit=false: other のブロック内分布のみを新しい情報として扱う
//	trySplit=true:  other の確定済み分布と addonWeight をそのまま加算する
func (s *activeState) fold(other *activeState, trySplit bool) error {
	if len(other.classDistribution) != len(s.classDistribution) {
		return errors.NewDimensionError("LearningNode.Merge", len(s.classDistribution), len(other.classDistribution), 0)
	}
	if trySplit {
		s.addonWeight += other.addonWeight
		floats.Add(s.classDistribution, other.classDistribution)
	} else {
		s.addonWeight += floats.Sum(other.blockClassDistribution)
		floats.Add(s.classDistribution, other.blockClassDistribution)
	}
	return s.mergeObservers(other.observers, trySplit)
}

func (s *activeState) mergeObservers(others []observer.Observer, trySplit bool) error {
	if len(s.observers) < len(others) {
		grown := make([]observer.Observer, len(others))
		copy(grown, s.observers)
		s.observers = grown
	}
	for i, o := range others {
		if o == nil {
			continue
		}
		if s.observers[i] == nil {
			s.observers[i] = o.Clone()
			continue
		}
		if err := s.observers[i].Merge(o, trySplit); err != nil {
			return errors.Wrapf(err, "merging observer for feature %d", i)
		}
	}
	return nil
}

// scoringObservers は naive-Bayes 予測に使う Observer を返す
func (s *activeState) scoringObservers() []observer.Observer {
	if s.snapshot != nil {
		return s.snapshot
	}
	return s.observers
}

// nbVotes は naive-Bayes スコアを返す。Scorer 未設定なら多数決にフォールバックする
func (s *activeState) nbVotes(cfg *Config, r model.Record) []float64 {
	if cfg == nil || cfg.Scorer == nil {
		return copyDist(s.classDistribution)
	}
	return cfg.Scorer.Predict(r, copyDist(s.classDistribution), s.scoringObservers())
}

// BestSplitSuggestions asks every observer for its best split of the current
// distribution (confirmed plus block-local). With PrePrune a "do not split"
// candidate scored against the unsplit distribution is appended.
func (s *activeState) BestSplitSuggestions(criterion split.Criterion, cfg *Config) []split.Suggestion {
	current := copyDist(s.classDistribution)
	floats.Add(current, s.blockClassDistribution)

	var suggestions []split.Suggestion
	if cfg.PrePrune {
		suggestions = append(suggestions, split.Suggestion{
			Test:                        nil,
			ResultingClassDistributions: [][]float64{copyDist(current)},
			Merit:                       criterion.Merit(current, [][]float64{current}),
		})
	}
	for i, o := range s.observers {
		if o == nil {
			continue
		}
		if best := o.BestSplit(criterion, current, i, cfg.BinaryOnly); best != nil {
			suggestions = append(suggestions, *best)
		}
	}
	return suggestions
}

// foldLeaf は3種のアクティブ葉に共通のマージ前処理
// other が非アクティブなら何もしない（false, nil）を返す
func foldLeaf(this activeLeaf, other Node, trySplit bool) (bool, error) {
	switch o := other.(type) {
	case nil:
		return false, nil
	case *InactiveLearningNode:
		// 非アクティブな葉はブロック統計を持たない。確定統計の畳み込みでは変種の不一致
		if trySplit {
			return false, errors.NewStructuralMismatchError(kindName(this)+".Merge", "active leaf merged with an inactive leaf",
				kindName(this), kindName(o), this.Depth())
		}
		return false, nil
	case *SplitNode:
		return false, errors.NewStructuralMismatchError(kindName(this)+".Merge", "leaf merged with a branch",
			kindName(this), kindName(other), this.Depth())
	case activeLeaf:
		if trySplit && kindName(this) != kindName(o) {
			return false, errors.NewStructuralMismatchError(kindName(this)+".Merge", "leaf variants differ",
				kindName(this), kindName(other), this.Depth())
		}
		if err := this.state().fold(o.state(), trySplit); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, errors.NewStructuralMismatchError(kindName(this)+".Merge", "unknown node kind",
			kindName(this), kindName(other), this.Depth())
	}
}

// ActiveLearningNode は特徴量ごとの Observer を持ち、分割候補を提示できる葉
type ActiveLearningNode struct {
	activeState
}

// NewActiveLearningNode creates a leaf with the given confirmed distribution.
func NewActiveLearningNode(classDistribution []float64) *ActiveLearningNode {
	return &ActiveLearningNode{activeState: newActiveState(classDistribution)}
}

func (n *ActiveLearningNode) state() *activeState { return &n.activeState }

// Learn implements LearningNode.
func (n *ActiveLearningNode) Learn(cfg *Config, r model.Record) {
	n.absorb(cfg, r)
}

// ClassVotes returns a copy of the confirmed distribution.
func (n *ActiveLearningNode) ClassVotes(_ *Config, _ model.Record) []float64 {
	return copyDist(n.classDistribution)
}

// Merge implements Node.
func (n *ActiveLearningNode) Merge(other Node, trySplit bool) (Node, error) {
	if _, err := foldLeaf(n, other, trySplit); err != nil {
		return nil, err
	}
	return n, nil
}

// Description implements Node.
func (n *ActiveLearningNode) Description() string { return description(n) }

func (n *ActiveLearningNode) describe(sb *strings.Builder) {
	describeLeaf(sb, "active", &n.nodeBase)
}
