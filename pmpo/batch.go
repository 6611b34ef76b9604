package pmpo

import (
	"math"

	"gonum.org/v1/gonum/mat"

	coremodel "github.com/YuminosukeSato/pmpo/core/model"
	"github.com/YuminosukeSato/pmpo/core/parallel"
	"github.com/YuminosukeSato/pmpo/dataset"
	"github.com/YuminosukeSato/pmpo/label"
	"github.com/YuminosukeSato/pmpo/metrics"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/pkg/log"
)

// parallelThreshold is the row count above which scoring is split across CPUs.
const parallelThreshold = 512

// ScoreDataset scores every row of ds using its numeric columns.
func ScoreDataset(m coremodel.Scorer, ds *dataset.Dataset) []float64 {
	if ds.Empty() {
		return []float64{}
	}
	scores := make([]float64, ds.Len())
	parallel.ParallelizeWithThreshold(ds.Len(), parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			scores[i] = m.Score(ds.Row(i))
		}
	})
	return scores
}

// Evaluation summarises how well a model's scores reproduce the training
// labels and, when a reference column is given, a previously computed score.
type Evaluation struct {
	Rows int
	Good int

	// AUC of the scores against the good/bad labels.
	AUC float64

	// Reference comparison over rows with a reference value. NaN when no
	// reference column was given.
	Compared int
	MAE      float64
	RMSE     float64
	R2       float64
}

// Evaluate scores ds with m and compares the scores with the labels in
// labelColumn. referenceColumn may be empty.
func Evaluate(m coremodel.Scorer, ds *dataset.Dataset, labelColumn string, good label.GoodValue, referenceColumn string) (*Evaluation, error) {
	if ds.Empty() {
		return nil, errors.NewPreconditionError("Evaluate", "dataset has no data")
	}
	raw, ok := ds.Values(labelColumn)
	if !ok {
		return nil, errors.NewPreconditionError("Evaluate", "label column "+labelColumn+" not found")
	}

	scores := ScoreDataset(m, ds)
	labels := label.Normalize(raw, good)

	ev := &Evaluation{
		Rows: ds.Len(),
		MAE:  math.NaN(),
		RMSE: math.NaN(),
		R2:   math.NaN(),
	}
	for _, l := range labels {
		if l {
			ev.Good++
		}
	}
	auc, err := metrics.ROCAUC(scores, labels)
	if err != nil {
		return nil, err
	}
	ev.AUC = auc

	if referenceColumn != "" {
		ref, ok := ds.Numeric(referenceColumn)
		if !ok {
			return nil, errors.Wrapf(errors.ErrColumnNotFound, "Evaluate: reference column %s", referenceColumn)
		}
		var want, got []float64
		for i, v := range ref {
			if math.IsNaN(v) {
				continue
			}
			want = append(want, v)
			got = append(got, scores[i])
		}
		ev.Compared = len(want)
		if len(want) > 0 {
			yTrue := mat.NewVecDense(len(want), want)
			yPred := mat.NewVecDense(len(got), got)
			if ev.MAE, err = metrics.MAE(yTrue, yPred); err != nil {
				return nil, err
			}
			if ev.RMSE, err = metrics.RMSE(yTrue, yPred); err != nil {
				return nil, err
			}
			// Undefined for a constant reference.
			if r2, err := metrics.R2Score(yTrue, yPred); err == nil {
				ev.R2 = r2
			}
		}
	}

	log.GetLoggerWithName("pmpo.evaluate").Debug("Model evaluated",
		log.OperationKey, log.OperationScore,
		log.ScoredKey, ev.Rows,
		"auc", ev.AUC,
		"mae", ev.MAE,
	)
	return ev, nil
}
