// Package log defines standard attribute keys for pMPO operations.
//
// Keys follow a hierarchical naming convention ("model.name", "data.rows")
// so that build logs can be filtered and aggregated consistently.

package log

// Model and operation context.
const (
	// ModelNameKey is the user-facing name of the pMPO model.
	ModelNameKey = "model.name"

	// BuildIDKey uniquely identifies one Builder run.
	BuildIDKey = "model.build_id"

	// OperationKey names the pipeline stage being executed.
	OperationKey = "pmpo.operation"

	// ComponentKey identifies the package performing the operation.
	ComponentKey = "pmpo.component"

	// RequestIDKey identifies an HTTP scoring request.
	RequestIDKey = "http.request_id"
)

// Data shape.
const (
	RowsKey    = "data.rows"
	ColumnsKey = "data.columns"

	// LabelColumnKey is the raw label column the good/bad flag is derived from.
	LabelColumnKey = "data.label_column"

	// GoodCountKey is the number of entities normalized to "good".
	GoodCountKey = "data.good"
)

// Descriptor statistics.
const (
	DescriptorKey  = "descriptor.name"
	DescriptorsKey = "descriptor.count"
	SignificantKey = "descriptor.significant"
	SelectedKey    = "descriptor.selected"
	PValueKey      = "descriptor.p_value"
	CutoffKey      = "descriptor.cutoff"
	ZKey           = "descriptor.z"
	WeightKey      = "descriptor.weight"
	R2Key          = "descriptor.r2"
)

// Hyperparameters.
const (
	MinSamplesKey = "params.min_samples"
	PCutoffKey    = "params.p_cutoff"
	QCutoffKey    = "params.q_cutoff"
	R2CutoffKey   = "params.r2_cutoff"
)

// Performance and errors.
const (
	DurationMsKey = "perf.duration_ms"
	ScoredKey     = "preds.count"
	ErrorTypeKey  = "error.type"
	StacktraceKey = "stacktrace"
	ErrorKey      = "error"
)

// Standard operation values.
const (
	OperationNormalize  = "normalize_labels"
	OperationStatistics = "descriptor_statistics"
	OperationSelect     = "select_descriptors"
	OperationWeights    = "descriptor_weights"
	OperationModel      = "build_model"
	OperationScore      = "score"
)
