package stats

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

var csvHeader = []string{
	"name", "p_value", "good_mean", "good_std", "good_nsamples",
	"bad_mean", "bad_std", "bad_nsamples", "significant",
	"cutoff", "inflection", "b", "c", "z", "selected", "w", "valid", "invalid",
}

// WriteCSV writes the table with one row per descriptor. NaN is written as an empty cell.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write statistics header")
	}
	for _, d := range t {
		rec := []string{
			d.Name, ff(d.PValue), ff(d.GoodMean), ff(d.GoodStd), strconv.Itoa(d.GoodN),
			ff(d.BadMean), ff(d.BadStd), strconv.Itoa(d.BadN), strconv.FormatBool(d.Significant),
			ff(d.Cutoff), ff(d.Inflection), ff(d.B), ff(d.C), ff(d.Z),
			strconv.FormatBool(d.Selected), ff(d.W), strconv.FormatBool(d.Valid), d.Invalid,
		}
		if err := writer.Write(rec); err != nil {
			return errors.Wrapf(err, "write statistics row %s", d.Name)
		}
	}
	writer.Flush()
	return writer.Error()
}

func ff(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
