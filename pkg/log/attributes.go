// Package log defines standard attribute keys for streaming tree operations.
//
// Using these keys keeps log records from the node core, the driver and the
// command line tool consistent, so that merges and splits of the same model
// can be correlated across shards.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "HoeffdingTreeClassifier".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies a specific model replica.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: see the Operation* constants below.
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of records in a batch.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features per record.
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of classes.
	ClassesKey = "data.classes"

	// BatchSizeKey indicates the size of a micro-batch.
	BatchSizeKey = "data.batch_size"

	// PartitionsKey indicates the number of block-local copies a batch was split into.
	PartitionsKey = "data.partitions"

	// WeightKey records an accumulated instance weight.
	WeightKey = "data.weight"
)

// Tree structure
const (
	// DepthKey records the depth of a node.
	DepthKey = "tree.depth"

	// LeavesKey records the number of leaves in the tree.
	LeavesKey = "tree.leaves"

	// ActiveLeavesKey records the number of active leaves.
	ActiveLeavesKey = "tree.active_leaves"

	// SplitNodesKey records the number of branch nodes.
	SplitNodesKey = "tree.split_nodes"

	// SplitMeritKey records the merit of a chosen split suggestion.
	SplitMeritKey = "tree.split_merit"

	// SplitTestKey records a human-readable rendering of a conditional test.
	SplitTestKey = "tree.split_test"

	// TrySplitKey records the merge mode flag.
	TrySplitKey = "tree.try_split"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records prequential or holdout accuracy.
	AccuracyKey = "metrics.accuracy"

	// IterationKey records the number of processed batches.
	IterationKey = "training.iteration"
)

// Error and Warning Context
const (
	// ErrorKey holds the error message attached to a record.
	ErrorKey = "error"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationPartialFit = "partial_fit"
	OperationPredict    = "predict"
	OperationMerge      = "merge"
	OperationSplit      = "split"
	OperationDeactivate = "deactivate"
	OperationScore      = "score"

	PhaseTraining   = "training"
	PhaseInference  = "inference"
	PhaseEvaluation = "evaluation"
)
