package selection

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/pmpo/dataset"
	"github.com/YuminosukeSato/pmpo/internal/fixture"
	"github.com/YuminosukeSato/pmpo/label"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/stats"
)

func compoundTable(t *testing.T) (*dataset.Dataset, stats.Table) {
	t.Helper()
	errors.SetWarningHandler(func(error) {})
	ds := fixture.Compounds()
	raw, _ := ds.Values(fixture.LabelColumn)
	table, err := stats.Calculate(ds, label.Normalize(raw, label.Default()), stats.DefaultOptions())
	require.NoError(t, err)
	return ds, table
}

func TestCorrelate(t *testing.T) {
	ds, _ := compoundTable(t)

	corr, err := Correlate(ds, []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, 3, corr.Len())

	assert.InDelta(t, 0.9979810539700411, corr.At("A", "B"), 1e-10)
	assert.InDelta(t, 0.1869326998629266, corr.At("A", "C"), 1e-10)
	assert.InDelta(t, 0.20454180543535014, corr.At("B", "C"), 1e-10)

	for _, a := range corr.Names {
		assert.Equal(t, 1.0, corr.At(a, a), "diagonal")
		for _, b := range corr.Names {
			assert.Equal(t, corr.At(a, b), corr.At(b, a), "symmetric")
		}
	}
	assert.True(t, math.IsNaN(corr.At("A", "unknown")))

	_, err = Correlate(ds, []string{"A", fixture.LabelColumn})
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))
}

func TestCorrelateUndefinedPairs(t *testing.T) {
	ds := dataset.New(4)
	require.NoError(t, ds.AddNumeric("x", []float64{1, 2, 3, 4}))
	require.NoError(t, ds.AddNumeric("const", []float64{5, 5, 5, 5}))
	require.NoError(t, ds.AddNumeric("gappy", []float64{math.NaN(), math.NaN(), math.NaN(), 1}))

	corr, err := Correlate(ds, []string{"x", "const", "gappy"})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(corr.At("x", "const")), "zero variance")
	assert.True(t, math.IsNaN(corr.At("x", "gappy")), "fewer than two complete rows")
	assert.Equal(t, 1.0, corr.At("const", "const"))
}

func TestCorrelateNoNames(t *testing.T) {
	corr, err := Correlate(dataset.New(3), nil)
	require.NoError(t, err)
	assert.Nil(t, corr.R2)
	assert.Equal(t, 0, corr.Len())
	assert.True(t, math.IsNaN(corr.At("x", "x")))

	var buf bytes.Buffer
	require.NoError(t, corr.WriteCSV(&buf))
	assert.Equal(t, "name\n", buf.String())
}

func TestCorrelationMatrixWriteCSV(t *testing.T) {
	ds := dataset.New(3)
	require.NoError(t, ds.AddNumeric("x", []float64{1, 2, 3}))
	require.NoError(t, ds.AddNumeric("y", []float64{3, 2, 1}))
	require.NoError(t, ds.AddNumeric("flat", []float64{7, 7, 7}))
	corr, err := Correlate(ds, []string{"x", "y", "flat"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, corr.WriteCSV(&buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"name", "x", "y", "flat"}, records[0])
	assert.Equal(t, []string{"x", "y", "flat"}, []string{records[1][0], records[2][0], records[3][0]})

	xy, err := strconv.ParseFloat(records[1][2], 64)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, xy, 1e-12)
	assert.Equal(t, "1", records[3][3], "diagonal")
	assert.Equal(t, "", records[1][3], "undefined pairs are empty")
}

func TestPickUncorrelated(t *testing.T) {
	ds, table := compoundTable(t)

	picked, corr, err := PickUncorrelated(ds, table, DefaultR2Cutoff)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C"}, picked.Selected().Names())
	assert.Equal(t, []string{"B", "FLAT", "A", "C"}, corr.Names, "matrix covers significant descriptors")
	assert.Empty(t, table.Selected(), "input table is not modified")

	for _, d := range picked {
		if d.Selected {
			assert.True(t, d.Significant && d.Valid, d.Name)
		}
	}
	selected := picked.Selected().Names()
	for i := range selected {
		for j := i + 1; j < len(selected); j++ {
			assert.LessOrEqual(t, corr.At(selected[i], selected[j]), DefaultR2Cutoff)
		}
	}
}

func TestPickUncorrelatedCutoff(t *testing.T) {
	ds, table := compoundTable(t)

	picked, _, err := PickUncorrelated(ds, table, 1.0)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, picked.Selected().Names(), "nothing exceeds r2 of 1")

	picked, _, err = PickUncorrelated(ds, table, 0.19)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, picked.Selected().Names(), "C correlates with B at 0.2045")

	_, _, err = PickUncorrelated(ds, table, math.NaN())
	var preErr *errors.PreconditionError
	assert.True(t, errors.As(err, &preErr))
}

func TestPickUncorrelatedNaNNeverBlocks(t *testing.T) {
	ds := dataset.New(3)
	require.NoError(t, ds.AddNumeric("x", []float64{1, 2, 3}))
	require.NoError(t, ds.AddNumeric("y", []float64{7, 7, 7}))
	table := stats.Table{
		{Name: "x", Significant: true, Valid: true, Z: 1},
		{Name: "y", Significant: true, Valid: true, Z: 1},
	}

	picked, corr, err := PickUncorrelated(ds, table, 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(corr.At("x", "y")))
	assert.Equal(t, []string{"x", "y"}, picked.Selected().Names())
}

func TestCalculateWeights(t *testing.T) {
	ds, table := compoundTable(t)
	picked, _, err := PickUncorrelated(ds, table, DefaultR2Cutoff)
	require.NoError(t, err)

	weighted := CalculateWeights(picked)

	b, _ := weighted.Lookup("B")
	c, _ := weighted.Lookup("C")
	assert.InDelta(t, 0.7867993052845476, b.W, 1e-10)
	assert.InDelta(t, 0.21320069471545253, c.W, 1e-10)
	assert.InDelta(t, 1.0, weighted.Selected().WeightSum(), 1e-12)

	for _, d := range weighted {
		if !d.Selected {
			assert.True(t, math.IsNaN(d.W), d.Name)
		}
	}

	orig, _ := picked.Lookup("B")
	assert.True(t, math.IsNaN(orig.W), "input table is not modified")
}

func TestCalculateWeightsCNSReference(t *testing.T) {
	table := stats.Table{
		{Name: "TPSA", Selected: true, Z: 0.531479431818},
		{Name: "HBD", Selected: true, Z: 0.423900227773},
		{Name: "MW", Selected: true, Z: 0.250951625455},
		{Name: "cLogD_ACD_v15", Selected: true, Z: 0.203071818744},
		{Name: "mbpKa", Selected: true, Z: 0.185416190602},
	}
	published := []float64{0.333254, 0.265798, 0.157354, 0.127332, 0.116262}

	weighted := CalculateWeights(table)
	for i, d := range weighted {
		assert.InDelta(t, published[i], d.W, 1e-5, d.Name)
	}
}

func TestCalculateWeightsNoneSelected(t *testing.T) {
	weighted := CalculateWeights(stats.Table{{Name: "x", Z: 2}})
	assert.True(t, math.IsNaN(weighted[0].W))
}
