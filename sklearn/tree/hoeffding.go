package tree

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vfdt/core/model"
	"github.com/YuminosukeSato/vfdt/core/parallel"
	"github.com/YuminosukeSato/vfdt/metrics"
	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/pkg/log"
	"github.com/YuminosukeSato/vfdt/sklearn/drift"
	"github.com/YuminosukeSato/vfdt/sklearn/naive_bayes"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/observer"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/split"
)

const modelName = "HoeffdingTreeClassifier"

var (
	_ model.IncrementalClassifier = (*HoeffdingTreeClassifier)(nil)
	_ model.StreamingEstimator    = (*HoeffdingTreeClassifier)(nil)
	_ model.RecordClassifier      = (*HoeffdingTreeClassifier)(nil)
)

// HoeffdingTreeClassifier はマイクロバッチから逐次学習する Hoeffding tree 分類器
//
// 各バッチはパーティションに分割され、木のブロックローカルコピー上で並列に学習される。
// コピーは書き込みロックの下で Merge(copy, false) により正規の木へ順番に畳み込まれ、
// その後 AddOnWeight が猶予期間に達した葉で分割が試みられる。
type HoeffdingTreeClassifier struct {
	id    string
	state *model.StateManager

	// ハイパーパラメータ
	leafPrediction LeafPrediction
	nbThreshold    float64
	binaryOnly     bool
	prePrune       bool
	gracePeriod    float64
	criterion      split.Criterion
	policy         SplitPolicy
	features       []observer.FeatureSpec
	partitions     int
	factory        observer.Factory
	scorer         Scorer
	detector       drift.Detector
	metrics        *Metrics
	warmStart      bool

	// 学習状態
	root   Node
	cfg    *Config
	nIter  int
	splits int

	// mu は root を保護する。fitMu は学習を単一のライターに直列化する
	mu     sync.RWMutex
	fitMu  sync.Mutex
	logger log.Logger
}

// NewHoeffdingTreeClassifier creates a classifier.
func NewHoeffdingTreeClassifier(options ...Option) *HoeffdingTreeClassifier {
	id := uuid.NewString()
	ht := &HoeffdingTreeClassifier{
		id:             id,
		state:          model.NewStateManager(),
		leafPrediction: NaiveBayesAdaptive,
		nbThreshold:    0,
		gracePeriod:    200,
		criterion:      split.NewInfoGain(),
		policy:         MarginPolicy{Margin: DefaultMargin},
		factory:        observer.DefaultFactory,
		scorer:         naive_bayes.NewGaussianScorer(),
		logger:         log.GetLoggerWithName(modelName).With(log.EstimatorIDKey, id),
	}

	for _, opt := range options {
		opt(ht)
	}

	return ht
}

func (ht *HoeffdingTreeClassifier) validate() error {
	if ht.gracePeriod <= 0 {
		return errors.NewValidationError("grace_period", "must be positive", ht.gracePeriod)
	}
	if ht.nbThreshold < 0 {
		return errors.NewValidationError("nb_threshold", "must be non-negative", ht.nbThreshold)
	}
	if ht.partitions < 0 {
		return errors.NewValidationError("partitions", "must be non-negative", ht.partitions)
	}
	if ht.criterion == nil {
		return errors.NewValidationError("criterion", "must not be nil", nil)
	}
	if ht.policy == nil {
		return errors.NewValidationError("split_policy", "must not be nil", nil)
	}
	return nil
}

// Fit trains from scratch unless warm start is enabled.
func (ht *HoeffdingTreeClassifier) Fit(X, y mat.Matrix) error {
	if !ht.IsWarmStart() {
		ht.reset()
	}
	return ht.PartialFit(X, y, nil)
}

// PartialFit learns one micro-batch. classes fixes the class range on the
// first call; labels must be integers in [0, len(classes)).
func (ht *HoeffdingTreeClassifier) PartialFit(X, y mat.Matrix, classes []int) error {
	return ht.PartialFitWeighted(X, y, nil, classes)
}

// PartialFitWeighted is PartialFit with per-row weights.
func (ht *HoeffdingTreeClassifier) PartialFitWeighted(X, y mat.Matrix, weights []float64, classes []int) error {
	records, err := model.RecordsFromMatrix(X, y, weights)
	if err != nil {
		return err
	}
	return ht.PartialFitRecords(records, classes)
}

// PartialFitRecords learns one micro-batch of records.
func (ht *HoeffdingTreeClassifier) PartialFitRecords(records []model.Record, classes []int) error {
	return ht.PartialFitContext(context.Background(), records, classes)
}

// PartialFitContext is PartialFitRecords with cancellation and tracing. A
// batch cancelled before its fold phase leaves the canonical tree unchanged.
func (ht *HoeffdingTreeClassifier) PartialFitContext(ctx context.Context, records []model.Record, classes []int) (err error) {
	defer errors.Recover(&err, modelName+".PartialFit")

	ctx, span := getTracer().Start(ctx, "tree.HoeffdingTreeClassifier.PartialFit",
		trace.WithAttributes(
			attribute.String("estimator.id", ht.id),
			attribute.Int("batch.records", len(records)),
		),
	)
	defer span.End()

	if len(records) == 0 {
		return failSpan(span, errors.ErrEmptyData, "empty batch")
	}
	if err := ht.validate(); err != nil {
		return failSpan(span, err, "invalid hyperparameters")
	}

	ht.fitMu.Lock()
	defer ht.fitMu.Unlock()

	start := time.Now()
	if err := ht.ensureInitialized(records, classes); err != nil {
		return failSpan(span, err, "initialization failed")
	}
	if err := ht.checkRecords(records); err != nil {
		return failSpan(span, err, "invalid records")
	}

	// 学習フェーズ: ブロックローカルコピーのみを変更する
	ht.mu.RLock()
	root, cfg := ht.root, ht.cfg
	parts := parallel.Partition(len(records), ht.partitions)
	copies := make([]Node, len(parts))
	for i := range parts {
		copies[i] = blockCopy(root)
	}
	ht.mu.RUnlock()

	span.SetAttributes(attribute.Int("batch.partitions", len(parts)))

	results := make([]blockResult, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range parts {
		i, p := i, p
		g.Go(func() (err error) {
			defer errors.Recover(&err, modelName+".learnBlock")
			results[i], err = learnBlock(gctx, copies[i], cfg, ht.leafPrediction, records[p[0]:p[1]])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return failSpan(span, errors.Wrap(err, "learning block-local copies"), "block-local learning failed")
	}
	span.AddEvent("block_local_learning_done")

	// 畳み込みフェーズ: 書き込みロックの下で順番にマージする
	ht.mu.Lock()
	defer ht.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return failSpan(span, err, "canceled before fold")
	}
	for i, c := range copies {
		merged, err := ht.root.Merge(c, false)
		if err != nil {
			ht.metrics.observeMergeFailure(false)
			ht.logger.Error("block merge failed", err,
				log.OperationKey, log.OperationMerge,
				log.TrySplitKey, false,
				"partition", i,
			)
			return failSpan(span, errors.NewModelError(modelName+".PartialFit", "block fold",
				errors.Wrapf(err, "folding partition %d", i)), "fold failed")
		}
		ht.root = merged
	}
	span.AddEvent("folded")

	var total blockResult
	for _, r := range results {
		total.add(r)
	}
	if total.count > 0 {
		errors.Warn(errors.NewUnroutableRecordsWarning(total.count, total.weight, total.depth))
	}

	if err := ht.attemptSplits(); err != nil {
		return failSpan(span, err, "split failed")
	}

	weight := 0.0
	for _, r := range records {
		weight += r.Weight()
	}
	ht.state.AddSamples(weight)
	ht.state.SetFitted()
	ht.nIter++

	stats := Measure(ht.root)
	ht.metrics.observeBatch(weight, time.Since(start).Seconds(), total, stats)
	span.SetAttributes(
		attribute.Int("tree.leaves", stats.Leaves),
		attribute.Int("tree.depth", stats.Depth),
		attribute.Int("tree.splits", ht.splits),
	)
	span.SetStatus(codes.Ok, "batch learned")

	ht.logger.Debug("partial fit completed",
		log.OperationKey, log.OperationPartialFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, len(records),
		log.PartitionsKey, len(parts),
		log.LeavesKey, stats.Leaves,
		log.SplitNodesKey, stats.SplitNodes,
		log.DepthKey, stats.Depth,
		log.IterationKey, ht.nIter,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (ht *HoeffdingTreeClassifier) ensureInitialized(records []model.Record, classes []int) error {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	if ht.root != nil {
		return nil
	}

	numClasses := 0
	if len(classes) > 0 {
		for _, c := range classes {
			if c < 0 {
				return errors.NewValidationError("classes", "class indices must be non-negative", c)
			}
			if c+1 > numClasses {
				numClasses = c + 1
			}
		}
	} else {
		for _, r := range records {
			if r.Label()+1 > numClasses {
				numClasses = r.Label() + 1
			}
		}
	}
	if numClasses < 2 {
		numClasses = 2
	}

	nFeatures := records[0].NumFeatures()
	ht.cfg = &Config{
		NumClasses:      numClasses,
		Features:        ht.features,
		BinaryOnly:      ht.binaryOnly,
		PrePrune:        ht.prePrune,
		NBThreshold:     ht.nbThreshold,
		ObserverFactory: ht.factory,
		Scorer:          ht.scorer,
	}
	ht.root = NewLeaf(ht.leafPrediction, make([]float64, numClasses))
	ht.state.SetDimensions(nFeatures, numClasses)

	ht.logger.Info("tree initialized",
		log.ClassesKey, numClasses,
		log.FeaturesKey, nFeatures,
		"leaf_prediction", ht.leafPrediction.String(),
	)
	return nil
}

func (ht *HoeffdingTreeClassifier) checkRecords(records []model.Record) error {
	nFeatures, nClasses := ht.state.GetDimensions()
	for i, r := range records {
		if r.NumFeatures() != nFeatures {
			return errors.NewDimensionError(modelName+".PartialFit", nFeatures, r.NumFeatures(), 1)
		}
		if r.Label() < 0 || r.Label() >= nClasses {
			return errors.Wrapf(errors.ErrUnknownClass, "record %d has label %d, classes are [0, %d)", i, r.Label(), nClasses)
		}
	}
	return nil
}

// blockResult は1つのパーティションの学習結果の集計
// count, weight, depth は分岐ノードに留まったレコードについての値
type blockResult struct {
	count  int
	weight float64
	depth  int
	grafts int
}

func (b *blockResult) add(o blockResult) {
	b.count += o.count
	b.weight += o.weight
	b.grafts += o.grafts
	if o.depth > b.depth {
		b.depth = o.depth
	}
}

// learnBlock はブロックローカルコピー上でレコードを学習する
// 未作成の子スロットに到達した場合はコピー上に新しい葉を接ぎ木する
func learnBlock(ctx context.Context, root Node, cfg *Config, lp LeafPrediction, records []model.Record) (blockResult, error) {
	var res blockResult
	for i, r := range records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		found := Route(root, r)
		switch n := found.Node.(type) {
		case nil:
			leaf := NewLeaf(lp, make([]float64, cfg.NumClasses))
			if err := found.Parent.SetChild(found.Index, leaf); err != nil {
				return res, err
			}
			leaf.Learn(cfg, r)
			res.grafts++
		case *SplitNode:
			n.Observe(r)
			res.add(blockResult{count: 1, weight: r.Weight(), depth: n.Depth()})
		case LearningNode:
			n.Learn(cfg, r)
		}
	}
	return res, nil
}

// attemptSplits は AddOnWeight が猶予期間に達した葉で分割を試みる。書き込みロック下で呼ぶ
func (ht *HoeffdingTreeClassifier) attemptSplits() error {
	var candidates []FoundNode
	walkLeaves(ht.root, func(f FoundNode) {
		if leaf, ok := f.Node.(activeLeaf); ok && leaf.state().AddOnWeight() >= ht.gracePeriod {
			candidates = append(candidates, f)
		}
	})

	for _, f := range candidates {
		leaf := f.Node.(activeLeaf)
		st := leaf.state()
		st.resetAddOnWeight()
		if st.IsPure() {
			continue
		}

		suggestions := st.BestSplitSuggestions(ht.criterion, ht.cfg)
		chosen := ht.policy.Choose(suggestions, ht.criterion, st.Weight())
		if chosen == nil || chosen.IsNullSplit() {
			if len(suggestions) > 0 {
				split.SortByMerit(suggestions)
				ht.logger.Debug("split rejected",
					log.OperationKey, log.OperationSplit,
					log.DepthKey, leaf.Depth(),
					log.SplitMeritKey, suggestions[0].Merit,
					log.WeightKey, st.Weight(),
				)
			}
			continue
		}
		if err := errors.CheckScalar("split merit", chosen.Merit, ht.nIter); err != nil {
			ht.logger.Warn("split skipped", err, log.OperationKey, log.OperationSplit)
			continue
		}

		branch := NewSplitNode(chosen.Test, st.ClassDistribution())
		for i := 0; i < chosen.NumSplits() && i < branch.NumSlots(); i++ {
			if err := branch.SetChild(i, NewLeaf(ht.leafPrediction, chosen.ResultingClassDistribution(i))); err != nil {
				return err
			}
		}
		if err := ht.replace(f, branch); err != nil {
			return err
		}
		ht.splits++
		ht.metrics.observeSplit()

		ht.logger.Info("leaf split",
			log.OperationKey, log.OperationSplit,
			log.DepthKey, branch.Depth(),
			log.SplitMeritKey, chosen.Merit,
			log.SplitTestKey, chosen.Test.Description(),
			log.WeightKey, st.Weight(),
		)
	}
	return nil
}

// replace publishes n at the position described by f.
func (ht *HoeffdingTreeClassifier) replace(f FoundNode, n Node) error {
	if f.Parent == nil {
		n.SetDepth(0)
		ht.root = n
		return nil
	}
	return f.Parent.SetChild(f.Index, n)
}

// PredictProba returns per-class probabilities.
func (ht *HoeffdingTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := ht.state.RequireFitted(modelName, "PredictProba"); err != nil {
		return nil, err
	}
	nFeatures, nClasses := ht.state.GetDimensions()
	rows, cols := X.Dims()
	if cols != nFeatures {
		return nil, errors.NewDimensionError(modelName+".PredictProba", nFeatures, cols, 1)
	}

	records := model.UnlabeledFromMatrix(X)
	out := mat.NewDense(rows, nClasses, nil)

	ht.mu.RLock()
	defer ht.mu.RUnlock()

	parallel.ParallelizeWithThreshold(rows, 256, func(start, end int) {
		for i := start; i < end; i++ {
			out.SetRow(i, normalize(ht.votes(records[i])))
		}
	})
	return out, nil
}

// Predict returns the most probable class of every row.
func (ht *HoeffdingTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := ht.PredictProba(X)
	if err != nil {
		return nil, err
	}
	rows, _ := proba.Dims()
	out := mat.NewDense(rows, 1, nil)
	dense := proba.(*mat.Dense)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, float64(floats.MaxIdx(dense.RawRowView(i))))
	}
	return out, nil
}

// PredictRecord returns the raw class votes for one record. Votes holding
// NaN or Inf are reported as a NumericalInstabilityError.
func (ht *HoeffdingTreeClassifier) PredictRecord(r model.Record) ([]float64, error) {
	if err := ht.state.RequireFitted(modelName, "PredictRecord"); err != nil {
		return nil, err
	}
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	votes := ht.votes(r)
	if err := errors.CheckNumericalStability(modelName+".PredictRecord", votes, ht.nIter); err != nil {
		return nil, err
	}
	return votes, nil
}

// votes は読み取りロック下で呼ぶ
func (ht *HoeffdingTreeClassifier) votes(r model.Record) []float64 {
	found := Route(ht.root, r)
	if found.Node == nil {
		// 未作成のスロットでは親の分岐ノードで分類する
		return found.Parent.ClassVotes(ht.cfg, r)
	}
	return found.Node.ClassVotes(ht.cfg, r)
}

func normalize(votes []float64) []float64 {
	sum := floats.Sum(votes)
	if sum <= 0 || math.IsNaN(sum) {
		for i := range votes {
			votes[i] = 1.0 / float64(len(votes))
		}
		return votes
	}
	floats.Scale(1/sum, votes)
	return votes
}

// Score returns the accuracy on X, y.
func (ht *HoeffdingTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := ht.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

// Classes returns the class indices.
func (ht *HoeffdingTreeClassifier) Classes() []int {
	_, n := ht.state.GetDimensions()
	classes := make([]int, n)
	for i := range classes {
		classes[i] = i
	}
	return classes
}

// NIterations returns the number of batches learned.
func (ht *HoeffdingTreeClassifier) NIterations() int {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	return ht.nIter
}

// NumSplits returns the number of leaves replaced by branches so far.
func (ht *HoeffdingTreeClassifier) NumSplits() int {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	return ht.splits
}

// SamplesSeen returns the total weight learned.
func (ht *HoeffdingTreeClassifier) SamplesSeen() float64 {
	return ht.state.SamplesSeen()
}

// IsWarmStart はウォームスタートが有効かどうかを返す
func (ht *HoeffdingTreeClassifier) IsWarmStart() bool {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	return ht.warmStart
}

// SetWarmStart はウォームスタートの有効/無効を設定
func (ht *HoeffdingTreeClassifier) SetWarmStart(warmStart bool) {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	ht.warmStart = warmStart
}

func (ht *HoeffdingTreeClassifier) reset() {
	ht.fitMu.Lock()
	defer ht.fitMu.Unlock()
	ht.mu.Lock()
	defer ht.mu.Unlock()
	ht.root = nil
	ht.cfg = nil
	ht.nIter = 0
	ht.splits = 0
	ht.state.Reset()
}

// ID returns the replica identifier attached to every log record.
func (ht *HoeffdingTreeClassifier) ID() string { return ht.id }

// Root returns the canonical tree. Callers must not modify it while the
// classifier is in use.
func (ht *HoeffdingTreeClassifier) Root() Node {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	return ht.root
}

// Config returns the configuration nodes are evaluated with.
func (ht *HoeffdingTreeClassifier) Config() *Config {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	return ht.cfg
}

// Description renders the tree.
func (ht *HoeffdingTreeClassifier) Description() string {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	if ht.root == nil {
		return ""
	}
	return ht.root.Description()
}

// MergeModel folds another replica into ht with trySplit=true. Both replicas
// must share topology; other is not modified.
func (ht *HoeffdingTreeClassifier) MergeModel(other *HoeffdingTreeClassifier) error {
	if other == ht {
		return errors.NewValueError(modelName+".MergeModel", "cannot merge a model into itself")
	}
	if !other.state.IsFitted() {
		return nil
	}
	if err := ht.state.RequireFitted(modelName, "MergeModel"); err != nil {
		return err
	}
	_, mine := ht.state.GetDimensions()
	_, theirs := other.state.GetDimensions()
	if mine != theirs {
		return errors.NewDimensionError(modelName+".MergeModel", mine, theirs, 1)
	}

	ht.fitMu.Lock()
	defer ht.fitMu.Unlock()
	other.mu.RLock()
	defer other.mu.RUnlock()
	ht.mu.Lock()
	defer ht.mu.Unlock()

	merged, err := ht.root.Merge(other.root, true)
	if err != nil {
		ht.metrics.observeMergeFailure(true)
		return errors.NewModelError(modelName+".MergeModel", "replica merge",
			errors.Wrapf(err, "merging model replica %s", other.id))
	}
	ht.root = merged
	ht.state.AddSamples(other.state.SamplesSeen())

	ht.logger.Info("model replicas merged",
		log.OperationKey, log.OperationMerge,
		log.TrySplitKey, true,
		"source_estimator", other.id,
	)
	return nil
}

// DeactivateLeaf replaces the active leaf reached by r with an inactive leaf
// holding the same confirmed distribution. It reports whether a leaf was
// replaced.
func (ht *HoeffdingTreeClassifier) DeactivateLeaf(r model.Record) (bool, error) {
	if err := ht.state.RequireFitted(modelName, "DeactivateLeaf"); err != nil {
		return false, err
	}

	ht.fitMu.Lock()
	defer ht.fitMu.Unlock()
	ht.mu.Lock()
	defer ht.mu.Unlock()

	found := Route(ht.root, r)
	leaf, ok := found.Node.(activeLeaf)
	if !ok {
		return false, nil
	}
	inactive := NewInactiveLearningNode(leaf.ClassDistribution())
	if err := ht.replace(found, inactive); err != nil {
		return false, err
	}

	ht.logger.Debug("leaf deactivated",
		log.OperationKey, log.OperationDeactivate,
		log.DepthKey, inactive.Depth(),
	)
	return true, nil
}
