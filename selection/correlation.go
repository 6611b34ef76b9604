// Package selection chooses the descriptors that enter a pMPO model: it drops
// descriptors linearly correlated with a more significant one and assigns the
// remaining descriptors their normalised weights.
package selection

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/pmpo/dataset"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

// CorrelationMatrix holds squared Pearson correlations between descriptors.
type CorrelationMatrix struct {
	Names []string
	// R2 is indexed like Names. It is nil when Names is empty; use At and
	// Len to read a matrix that may be empty.
	R2 *mat.SymDense

	index map[string]int
}

func newCorrelationMatrix(names []string, r2 *mat.SymDense) *CorrelationMatrix {
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	return &CorrelationMatrix{Names: names, R2: r2, index: index}
}

// At returns r² between descriptors a and b, NaN when either is unknown.
func (m *CorrelationMatrix) At(a, b string) float64 {
	i, ok := m.index[a]
	if !ok {
		return math.NaN()
	}
	j, ok := m.index[b]
	if !ok || m.R2 == nil {
		return math.NaN()
	}
	return m.R2.At(i, j)
}

// Len returns the number of descriptors.
func (m *CorrelationMatrix) Len() int { return len(m.Names) }

// Correlate computes r² for every pair of the named numeric columns using
// the rows where both values are present. The diagonal is 1. Pairs with fewer
// than two complete rows or without variance are NaN.
func Correlate(ds *dataset.Dataset, names []string) (m *CorrelationMatrix, err error) {
	defer errors.Recover(&err, "Correlate")

	cols := make([][]float64, len(names))
	for i, name := range names {
		col, ok := ds.Numeric(name)
		if !ok {
			return nil, errors.Wrapf(errors.ErrColumnNotFound, "Correlate: numeric column %s", name)
		}
		cols[i] = col
	}

	n := len(names)
	if n == 0 {
		return newCorrelationMatrix(nil, nil), nil
	}
	r2 := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		r2.SetSym(i, i, 1.0)
		for j := i + 1; j < n; j++ {
			r := pairwisePearson(cols[i], cols[j])
			r2.SetSym(i, j, r*r)
		}
	}
	return newCorrelationMatrix(append([]string(nil), names...), r2), nil
}

// WriteCSV writes the matrix with a "name" header column followed by one
// column per descriptor. NaN cells are written empty.
func (m *CorrelationMatrix) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{"name"}, m.Names...)); err != nil {
		return errors.Wrap(err, "write correlation header")
	}
	for _, a := range m.Names {
		rec := make([]string, 0, len(m.Names)+1)
		rec = append(rec, a)
		for _, b := range m.Names {
			r2 := m.At(a, b)
			if math.IsNaN(r2) {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(r2, 'g', -1, 64))
		}
		if err := writer.Write(rec); err != nil {
			return errors.Wrapf(err, "write correlation row %s", a)
		}
	}
	writer.Flush()
	return writer.Error()
}

func pairwisePearson(x, y []float64) float64 {
	var xs, ys []float64
	for k := range x {
		if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
			continue
		}
		xs = append(xs, x[k])
		ys = append(ys, y[k])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
