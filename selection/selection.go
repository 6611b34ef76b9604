package selection

import (
	"math"

	"github.com/YuminosukeSato/pmpo/dataset"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/pkg/log"
	"github.com/YuminosukeSato/pmpo/stats"
)

// DefaultR2Cutoff is the published correlation threshold.
const DefaultR2Cutoff = 0.53

// PickUncorrelated walks the significant, valid descriptors in table order
// and accepts each one unless its r² with an already accepted descriptor
// exceeds r2Cutoff. Undefined correlations never reject a descriptor.
//
// It returns a copy of table with Selected set, and the correlation matrix
// of the significant descriptors. table is not modified.
func PickUncorrelated(ds *dataset.Dataset, table stats.Table, r2Cutoff float64) (stats.Table, *CorrelationMatrix, error) {
	if math.IsNaN(r2Cutoff) || r2Cutoff < 0 {
		return nil, nil, errors.NewPreconditionError("PickUncorrelated", "r2 cutoff must be a non-negative number")
	}
	corr, err := Correlate(ds, table.Significant().Names())
	if err != nil {
		return nil, nil, err
	}

	logger := log.GetLoggerWithName("pmpo.selection")
	var accepted []string
	for _, d := range table.Candidates() {
		correlated := ""
		for _, other := range accepted {
			if corr.At(d.Name, other) > r2Cutoff {
				correlated = other
				break
			}
		}
		if correlated != "" {
			logger.Debug("Descriptor rejected as correlated",
				log.DescriptorKey, d.Name,
				"correlated_with", correlated,
				log.R2Key, corr.At(d.Name, correlated),
			)
			continue
		}
		accepted = append(accepted, d.Name)
	}

	keep := make(map[string]struct{}, len(accepted))
	for _, name := range accepted {
		keep[name] = struct{}{}
	}
	out := table.Clone()
	for i := range out {
		_, ok := keep[out[i].Name]
		out[i].Selected = ok && out[i].Significant
	}
	return out, corr, nil
}

// CalculateWeights returns a copy of table where each selected descriptor's
// weight is its z-score divided by the sum of selected z-scores. All other
// rows get NaN.
func CalculateWeights(table stats.Table) stats.Table {
	sum := 0.0
	for _, d := range table {
		if d.Selected {
			sum += d.Z
		}
	}
	out := table.Clone()
	for i := range out {
		if out[i].Selected {
			out[i].W = out[i].Z / sum
		} else {
			out[i].W = math.NaN()
		}
	}
	return out
}
