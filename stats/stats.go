// Package stats computes the per-descriptor statistics of a pMPO model:
// the Welch t-test separating good from bad entities, the group means and
// standard deviations, and the cutoff, inflection, b, c and z quantities the
// Gaussian and sigmoidal functions are parameterised from.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/pmpo/dataset"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/pkg/log"
)

// Default hyperparameters.
const (
	DefaultMinSamples   = 10
	DefaultPValueCutoff = 0.01
	DefaultQValueCutoff = 0.05
)

// Options controls Calculate.
type Options struct {
	// MinSamples is the minimum number of non-missing values required in each group.
	MinSamples int
	// PValueCutoff marks a descriptor significant when p < PValueCutoff.
	PValueCutoff float64
	// QValueCutoff parameterises the sigmoidal steepness.
	QValueCutoff float64
	// Ignore lists numeric columns that are not descriptors.
	Ignore []string
}

// DefaultOptions returns the published defaults.
func DefaultOptions() Options {
	return Options{
		MinSamples:   DefaultMinSamples,
		PValueCutoff: DefaultPValueCutoff,
		QValueCutoff: DefaultQValueCutoff,
	}
}

// Validate checks the hyperparameter ranges.
func (o Options) Validate() error {
	if o.MinSamples < 2 {
		return errors.NewPreconditionError("Options", fmt.Sprintf("min samples must be at least 2, got %d", o.MinSamples))
	}
	if !(o.PValueCutoff > 0 && o.PValueCutoff < 1) {
		return errors.NewPreconditionError("Options", fmt.Sprintf("p-value cutoff must be in (0, 1), got %v", o.PValueCutoff))
	}
	if !(o.QValueCutoff > 0 && o.QValueCutoff < 1) {
		return errors.NewPreconditionError("Options", fmt.Sprintf("q-value cutoff must be in (0, 1), got %v", o.QValueCutoff))
	}
	return nil
}

// Cutoff returns the descriptor value between the good and bad means,
// placed proportionally to the two standard deviations.
func Cutoff(goodMean, goodStd, badMean, badStd float64) float64 {
	if goodMean < badMean {
		return (badMean-goodMean)/(goodStd+badStd)*goodStd + goodMean
	}
	return (goodMean-badMean)/(goodStd+badStd)*badStd + badMean
}

// Calculate builds the statistics table for every numeric column of ds that
// is not ignored. labels[i] reports whether row i is good.
//
// Columns with fewer than opts.MinSamples non-missing values in either group
// produce no row. Rows whose derived quantities are undefined are kept with
// Valid=false and a DomainWarning is emitted for each.
func Calculate(ds *dataset.Dataset, labels []bool, opts Options) (Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if ds.Empty() {
		return nil, errors.Wrap(errors.ErrEmptyData, "Calculate")
	}
	if len(labels) != ds.Len() {
		return nil, errors.NewDimensionError("Calculate", ds.Len(), len(labels), 0)
	}

	logger := log.GetLoggerWithName("pmpo.stats")
	ignore := make(map[string]struct{}, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignore[name] = struct{}{}
	}
	n := 1.0/opts.QValueCutoff - 1.0

	table := Table{}
	for _, name := range ds.NumericNames() {
		if _, skip := ignore[name]; skip {
			continue
		}
		values, _ := ds.Numeric(name)

		var good, bad []float64
		for i, v := range values {
			if math.IsNaN(v) {
				continue
			}
			if labels[i] {
				good = append(good, v)
			} else {
				bad = append(bad, v)
			}
		}
		if len(good) < opts.MinSamples || len(bad) < opts.MinSamples {
			logger.Debug("Descriptor skipped",
				log.DescriptorKey, name,
				log.GoodCountKey, len(good),
				"bad", len(bad),
			)
			continue
		}

		d := describe(name, good, bad, n)
		d.Significant = d.PValue < opts.PValueCutoff
		if !d.Valid {
			errors.Warn(errors.NewDomainWarning(d.Name, d.invalidQuantity(), d.Invalid))
		}
		logger.Debug("Descriptor statistics",
			log.DescriptorKey, d.Name,
			log.PValueKey, d.PValue,
			log.CutoffKey, d.Cutoff,
			log.ZKey, d.Z,
		)
		table = append(table, d)
	}

	sortByPValue(table)
	return table, nil
}

// describe runs the Welch t-test and summarises both groups. n is 1/q - 1.
func describe(name string, good, bad []float64, n float64) Descriptor {
	goodMean, goodStd := stat.PopMeanStdDev(good, nil)
	badMean, badStd := stat.PopMeanStdDev(bad, nil)
	d := derive(goodMean, goodStd, badMean, badStd, n)
	d.Name = name
	d.GoodN, d.BadN = len(good), len(bad)
	_, d.PValue = WelchTTest(good, bad)
	return d
}

// derive computes cutoff, inflection, b, c and z from the group moments.
// Undefined quantities stay NaN and the row is marked invalid.
func derive(goodMean, goodStd, badMean, badStd, n float64) Descriptor {
	d := Descriptor{
		GoodMean:   goodMean,
		GoodStd:    goodStd,
		BadMean:    badMean,
		BadStd:     badStd,
		Cutoff:     math.NaN(),
		Inflection: math.NaN(),
		B:          math.NaN(),
		C:          math.NaN(),
		Z:          math.NaN(),
		W:          math.NaN(),
		Valid:      true,
	}
	invalidate := func(reason string) Descriptor {
		d.Valid = false
		d.Invalid = reason
		return d
	}

	if d.GoodStd+d.BadStd == 0 {
		return invalidate("standard deviation sum is zero")
	}
	d.Cutoff = Cutoff(d.GoodMean, d.GoodStd, d.BadMean, d.BadStd)

	if d.GoodStd == 0 {
		return invalidate("good group standard deviation is zero")
	}
	diff := d.Cutoff - d.GoodMean
	d.Inflection = math.Exp(-(diff * diff) / (2 * d.GoodStd * d.GoodStd))
	d.Z = math.Abs(diff) / d.GoodStd

	d.B = 1.0/d.Inflection - 1.0
	if !(d.B > 0) || math.IsInf(d.B, 0) {
		return invalidate("b is not positive and finite")
	}
	if d.BadMean == d.Cutoff {
		return invalidate("bad mean equals cutoff")
	}
	d.C = math.Pow(10.0, math.Log10(n/d.B)/(-1.0*(d.BadMean-d.Cutoff)))

	for _, v := range []float64{d.Cutoff, d.Inflection, d.B, d.C, d.Z} {
		if !errors.IsFinite(v) {
			return invalidate("non-finite derived value")
		}
	}
	return d
}

// invalidQuantity names the first undefined quantity of an invalid row.
func (d Descriptor) invalidQuantity() string {
	switch {
	case math.IsNaN(d.Cutoff):
		return "cutoff"
	case math.IsNaN(d.Inflection):
		return "inflection"
	case math.IsNaN(d.B) || !(d.B > 0) || math.IsInf(d.B, 0):
		return "b"
	default:
		return "c"
	}
}

// sortByPValue orders ascending by p-value with NaN last; ties keep column order.
func sortByPValue(t Table) {
	sort.SliceStable(t, func(i, j int) bool {
		pi, pj := t[i].PValue, t[j].PValue
		if math.IsNaN(pi) {
			return false
		}
		if math.IsNaN(pj) {
			return true
		}
		return pi < pj
	})
}
