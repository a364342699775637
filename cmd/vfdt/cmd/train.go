package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/vfdt/metrics"
	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/pkg/log"
	"github.com/YuminosukeSato/vfdt/sklearn/drift"
	"github.com/YuminosukeSato/vfdt/sklearn/tree"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/split"
)

type trainOptions struct {
	labelColumn    int
	header         bool
	nominal        string
	batchSize      int
	partitions     int
	leafPrediction string
	gracePeriod    float64
	criterion      string
	margin         float64
	bins           int
	binaryOnly     bool
	prePrune       bool
	nbThreshold    float64
	drift          bool
	plot           string
	printTree      bool
	metricsAddr    string
}

func newTrainCmd() *cobra.Command {
	opts := &trainOptions{}
	cmd := &cobra.Command{
		Use:   "train [csv file]",
		Short: "Train a Hoeffding tree on a CSV stream with prequential (test-then-train) evaluation",
		Long: `Reads a CSV file (or stdin when the file is "-" or omitted), feeds it to a
Hoeffding tree in micro-batches and reports the prequential accuracy: every
batch is predicted before it is learned.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.labelColumn, "label-column", -1, "label column index, negative values count from the end")
	f.BoolVar(&opts.header, "header", false, "the first row holds column names")
	f.StringVar(&opts.nominal, "nominal", "", "comma separated feature indices to treat as nominal")
	f.IntVar(&opts.batchSize, "batch-size", 500, "records per micro-batch")
	f.IntVar(&opts.partitions, "partitions", 0, "block-local copies per batch (0 = number of CPUs)")
	f.StringVar(&opts.leafPrediction, "leaf-prediction", "nba", "leaf prediction (mc, nb, nba)")
	f.Float64Var(&opts.gracePeriod, "grace-period", 200, "weight a leaf must accumulate between split attempts")
	f.StringVar(&opts.criterion, "criterion", "info_gain", "split criterion (info_gain, gini)")
	f.Float64Var(&opts.margin, "margin", tree.DefaultMargin, "merit a split must gain over not splitting")
	f.IntVar(&opts.bins, "bins", 10, "candidate thresholds per numeric feature")
	f.BoolVar(&opts.binaryOnly, "binary-only", false, "only consider two-way splits")
	f.BoolVar(&opts.prePrune, "pre-prune", false, "compare splits against not splitting")
	f.Float64Var(&opts.nbThreshold, "nb-threshold", 0, "weight a naive Bayes leaf needs before it stops voting by majority")
	f.BoolVar(&opts.drift, "drift", false, "monitor the prequential error with DDM")
	f.StringVar(&opts.plot, "plot", "", "write the learning curve to this file (png, svg or pdf)")
	f.BoolVar(&opts.printTree, "print-tree", false, "print the final tree")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics, /tree and /stats on this address while training")
	return cmd
}

func runTrain(cmd *cobra.Command, args []string, opts *trainOptions) error {
	logger := log.GetLoggerWithName("train")

	nominal, err := parseIndices(opts.nominal)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	source := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "opening input")
		}
		defer f.Close()
		in, source = f, args[0]
	}

	ds, err := readDataset(in, csvOptions{header: opts.header, labelColumn: opts.labelColumn, nominal: nominal})
	if err != nil {
		return err
	}
	logger.Info("dataset loaded",
		"source", source,
		log.SamplesKey, len(ds.records),
		log.FeaturesKey, ds.NumFeatures(),
		log.ClassesKey, len(ds.classNames),
	)

	var extra []tree.Option
	var reg *prometheus.Registry
	if opts.metricsAddr != "" {
		var m *tree.Metrics
		reg, m = newTelemetryRegistry()
		extra = append(extra, tree.WithMetrics(m))
	}
	ht, err := opts.classifier(ds, extra...)
	if err != nil {
		return err
	}
	if reg != nil {
		srv, err := startTelemetryServer(opts.metricsAddr, makeTelemetryRoutes(reg, ht))
		if err != nil {
			return err
		}
		defer func() {
			if err := srv.shutdown(context.Background()); err != nil {
				logger.Warn("telemetry shutdown failed", err)
			}
		}()
	}
	var detector drift.Detector
	if opts.drift {
		detector = drift.NewDDM()
	}

	start := time.Now()
	res, err := runPrequential(cmd.Context(), ht, ds, opts.batchSize, detector)
	if err != nil {
		return err
	}
	res.elapsed = time.Since(start)

	out := cmd.OutOrStdout()
	printSummary(out, ds, ht, res)
	if opts.printTree {
		fmt.Fprintln(out)
		fmt.Fprint(out, ht.Description())
	}
	if opts.plot != "" {
		if err := saveLearningCurve(opts.plot, res.curve); err != nil {
			return err
		}
		logger.Info("learning curve written", "path", opts.plot)
	}
	return nil
}

func (o *trainOptions) classifier(ds *dataset, extra ...tree.Option) (*tree.HoeffdingTreeClassifier, error) {
	lp, ok := tree.ParseLeafPrediction(o.leafPrediction)
	if !ok {
		return nil, errors.NewValidationError("leaf-prediction", "must be mc, nb or nba", o.leafPrediction)
	}
	criterion, ok := split.NewCriterion(o.criterion)
	if !ok {
		return nil, errors.NewValidationError("criterion", "must be info_gain or gini", o.criterion)
	}
	if o.bins <= 0 {
		return nil, errors.NewValidationError("bins", "must be positive", o.bins)
	}
	options := []tree.Option{
		tree.WithLeafPrediction(lp),
		tree.WithGracePeriod(o.gracePeriod),
		tree.WithSplitCriterion(criterion),
		tree.WithSplitPolicy(tree.MarginPolicy{Margin: o.margin}),
		tree.WithFeatureSpecs(ds.featureSpecs(o.bins)...),
		tree.WithPartitions(o.partitions),
		tree.WithBinaryOnly(o.binaryOnly),
		tree.WithPrePrune(o.prePrune),
		tree.WithNBThreshold(o.nbThreshold),
	}
	return tree.NewHoeffdingTreeClassifier(append(options, extra...)...), nil
}

func parseIndices(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.NewValidationError("nominal", "must be a comma separated list of integers", s)
		}
		out = append(out, i)
	}
	return out, nil
}

// curvePoint は学習曲線上の1点
type curvePoint struct {
	seen     float64
	accuracy float64
}

type prequentialResult struct {
	accuracy metrics.PrequentialAccuracy
	curve    []curvePoint
	batches  int
	drifts   int
	elapsed  time.Duration
}

// runPrequential は各バッチを学習する前に予測し、正解率を累積する
func runPrequential(ctx context.Context, ht *tree.HoeffdingTreeClassifier, ds *dataset, batchSize int, detector drift.Detector) (*prequentialResult, error) {
	if batchSize <= 0 {
		return nil, errors.NewValidationError("batch-size", "must be positive", batchSize)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	classes := ds.Classes()
	res := &prequentialResult{}
	for start := 0; start < len(ds.records); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch := ds.records[start:min(start+batchSize, len(ds.records))]

		if ht.NIterations() > 0 {
			for _, r := range batch {
				votes, err := ht.PredictRecord(r)
				if err != nil {
					return nil, err
				}
				correct := floats.MaxIdx(votes) == r.Label()
				res.accuracy.Add(correct, r.Weight())
				if detector != nil && detector.UpdateWeighted(correct, r.Weight()).DriftDetected {
					res.drifts++
				}
			}
			res.curve = append(res.curve, curvePoint{seen: ht.SamplesSeen(), accuracy: res.accuracy.Value()})
		}

		if err := ht.PartialFitContext(ctx, batch, classes); err != nil {
			return nil, errors.Wrapf(err, "learning batch %d", res.batches)
		}
		res.batches++
	}
	return res, nil
}

func printSummary(w io.Writer, ds *dataset, ht *tree.HoeffdingTreeClassifier, res *prequentialResult) {
	title := color.New(color.Bold, color.FgCyan)
	label := color.New(color.Faint)
	value := color.New(color.Bold)

	row := func(name string, format string, args ...interface{}) {
		label.Fprintf(w, "  %-22s", name)
		value.Fprintf(w, format+"\n", args...)
	}

	stats := ht.Stats()
	title.Fprintln(w, "Hoeffding tree")
	row("records", "%d", len(ds.records))
	row("features", "%d", ds.NumFeatures())
	row("classes", "%s", strings.Join(ds.classNames, ", "))
	row("batches", "%d", res.batches)
	row("splits", "%d", ht.NumSplits())
	row("depth", "%d", stats.Depth)
	row("leaves", "%d (%d active)", stats.Leaves, stats.ActiveLeaves)
	row("elapsed", "%s", res.elapsed.Round(time.Millisecond))

	accuracy := color.New(color.FgGreen, color.Bold)
	if res.accuracy.Weight() == 0 {
		color.New(color.FgYellow).Fprintln(w, "  no predictions were made: the stream fits in a single batch")
	} else {
		if res.accuracy.Value() < 0.5 {
			accuracy = color.New(color.FgRed, color.Bold)
		}
		label.Fprintf(w, "  %-22s", "prequential accuracy")
		accuracy.Fprintf(w, "%.4f", res.accuracy.Value())
		label.Fprintf(w, " over %g records\n", res.accuracy.Weight())
	}
	if res.drifts > 0 {
		color.New(color.FgYellow).Fprintf(w, "  concept drift detected %d time(s)\n", res.drifts)
	}
}
