package pmpo

import (
	"sync"
	"time"

	"github.com/google/uuid"

	coremodel "github.com/YuminosukeSato/pmpo/core/model"
	"github.com/YuminosukeSato/pmpo/dataset"
	"github.com/YuminosukeSato/pmpo/function"
	"github.com/YuminosukeSato/pmpo/label"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/pkg/log"
	"github.com/YuminosukeSato/pmpo/selection"
	"github.com/YuminosukeSato/pmpo/stats"
)

// Builder derives a pMPO model from a labelled dataset.
//
// All statistics are computed by NewBuilder; the accessors never recompute.
type Builder struct {
	id          string
	name        string
	labelColumn string
	rows        int
	cfg         *builderConfig
	logger      log.Logger

	table stats.Table
	corr  *selection.CorrelationMatrix

	once     sync.Once
	model    *Model
	modelErr error
}

// NewBuilder computes the descriptor statistics, the uncorrelated selection
// and the weights for ds, where labelColumn holds the raw good/bad labels.
//
// ds is not modified: the boolean label column is added to a copy.
func NewBuilder(ds *dataset.Dataset, labelColumn, modelName string, opts ...Option) (b *Builder, err error) {
	defer errors.Recover(&err, "NewBuilder")

	cfg := defaultBuilderConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if ds.Empty() {
		return nil, errors.NewPreconditionError("NewBuilder", "dataset has no data")
	}
	if !ds.Has(labelColumn) {
		return nil, errors.NewPreconditionError("NewBuilder", "label column "+labelColumn+" not found")
	}
	if cfg.alias == "" {
		return nil, errors.NewPreconditionError("NewBuilder", "label alias is empty")
	}

	b = &Builder{
		id:          uuid.New().String(),
		name:        modelName,
		labelColumn: labelColumn,
		rows:        ds.Len(),
		cfg:         cfg,
	}
	logger := cfg.logger
	if logger == nil {
		logger = log.GetLoggerWithName("pmpo.builder")
	}
	b.logger = logger.With(log.BuildIDKey, b.id, log.ModelNameKey, modelName)
	b.logger.Info("Building pMPO model",
		log.RowsKey, ds.Len(),
		log.ColumnsKey, ds.Size(),
		log.LabelColumnKey, labelColumn,
	)

	work := ds.Clone()
	raw, _ := work.Values(labelColumn)
	labels := label.Normalize(raw, cfg.good)
	if err := work.AddBool(cfg.alias, labels); err != nil {
		return nil, err
	}
	good := 0
	for _, l := range labels {
		if l {
			good++
		}
	}
	b.logger.Debug("Labels normalized", log.OperationKey, log.OperationNormalize, log.GoodCountKey, good)

	statOpts := cfg.stats
	statOpts.Ignore = append(append([]string(nil), cfg.stats.Ignore...), labelColumn, cfg.alias)

	start := time.Now()
	table, err := stats.Calculate(work, labels, statOpts)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("Statistics computed",
		log.OperationKey, log.OperationStatistics,
		log.DescriptorsKey, len(table),
		log.SignificantKey, len(table.Significant()),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	for _, d := range table.Significant() {
		if !d.Valid {
			b.logger.Warn("Significant descriptor excluded",
				log.DescriptorKey, d.Name,
				log.PValueKey, d.PValue,
				"reason", d.Invalid,
			)
		}
	}

	start = time.Now()
	table, corr, err := selection.PickUncorrelated(work, table, cfg.r2Cutoff)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("Uncorrelated descriptors selected",
		log.OperationKey, log.OperationSelect,
		log.SelectedKey, table.Selected().Names(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	b.table = selection.CalculateWeights(table)
	b.corr = corr
	b.logger.Debug("Weights calculated", log.OperationKey, log.OperationWeights, "weight_sum", b.table.WeightSum())
	b.logger.Info("pMPO statistics ready", log.SelectedKey, b.table.Selected().Names())
	return b, nil
}

// BuildID identifies this build in logs and model metadata.
func (b *Builder) BuildID() string { return b.id }

// Statistics returns a copy of the statistics table, ordered by p-value,
// with selection flags and weights filled in.
func (b *Builder) Statistics() stats.Table { return b.table.Clone() }

// Correlation returns the r² matrix of the significant descriptors.
func (b *Builder) Correlation() *selection.CorrelationMatrix { return b.corr }

// Model returns the model made of the selected descriptors. It is built on
// the first call; later calls return the same instance.
func (b *Builder) Model() (*Model, error) {
	b.once.Do(func() {
		b.modelErr = errors.SafeExecute("Builder.Model", b.buildModel)
	})
	return b.model, b.modelErr
}

func (b *Builder) buildModel() error {
	m := NewModel(b.name,
		WithModelCaseInsensitive(b.cfg.caseInsensitive),
		WithModelSigmoidalCorrection(b.cfg.sigmoidal),
	)
	selected := b.table.Selected()
	weights := make([]float64, len(selected))
	for i, d := range selected {
		weights[i] = d.W
	}
	if err := errors.CheckNumericalStability("pMPO weights", weights); err != nil {
		return err
	}
	for _, d := range selected {
		g, err := function.NewWeightedGaussian(function.GaussianParams{Mean: d.GoodMean, Std: d.GoodStd, Weight: d.W})
		if err != nil {
			return errors.Wrapf(err, "descriptor %s", d.Name)
		}
		s, err := function.NewSigmoidal(function.SigmoidalParams{B: d.B, C: d.C, Cutoff: d.Cutoff})
		if err != nil {
			return errors.Wrapf(err, "descriptor %s", d.Name)
		}
		if err := m.Register(d.Name, g, s); err != nil {
			return err
		}
	}
	b.logger.Info("Model built", log.OperationKey, log.OperationModel, log.DescriptorsKey, m.Descriptors())
	b.model = m
	return nil
}

// Document returns the model document annotated with the build
// hyperparameters and metadata.
func (b *Builder) Document() (*coremodel.ModelDocument, error) {
	m, err := b.Model()
	if err != nil {
		return nil, err
	}
	doc := m.Document()
	doc.Hyperparameters = map[string]interface{}{
		"min_samples":    b.cfg.stats.MinSamples,
		"p_value_cutoff": b.cfg.stats.PValueCutoff,
		"q_value_cutoff": b.cfg.stats.QValueCutoff,
		"r2_cutoff":      b.cfg.r2Cutoff,
	}
	doc.Metadata = map[string]interface{}{
		"build_id":     b.id,
		"label_column": b.labelColumn,
		"label_alias":  b.cfg.alias,
		"rows":         b.rows,
	}
	return doc, nil
}
