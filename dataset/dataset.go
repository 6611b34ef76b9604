// Package dataset holds the in-memory tabular data a pMPO model is built from.
//
// A Dataset is a fixed number of rows and an ordered set of named columns
// kept in a dataframe-go DataFrame. Columns are numeric (missing cells are
// NaN), generic values (missing cells are nil) or boolean. Column order is
// preserved and drives the order of the descriptor statistics.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

// Kind is the storage kind of a column.
type Kind int

const (
	// KindNumeric columns hold float64 values, NaN marks a missing cell.
	KindNumeric Kind = iota
	// KindValues columns hold arbitrary values, nil marks a missing cell.
	// Integer values are widened to int64.
	KindValues
	// KindBool columns hold booleans and have no missing cells.
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindValues:
		return "values"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// missingTokens are text cells treated as missing during inference.
var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "NaN": {}, "nan": {}, "null": {},
}

// Dataset is an ordered collection of equally long named columns.
// Numeric columns are *dataframe.SeriesFloat64, the other kinds are
// *dataframe.SeriesMixed. It is not safe for concurrent mutation; readers may
// share it once built.
type Dataset struct {
	rows  int
	df    *dataframe.DataFrame
	kinds map[string]Kind
}

// New creates an empty dataset with the given number of rows.
func New(rows int) *Dataset {
	if rows < 0 {
		rows = 0
	}
	return &Dataset{rows: rows, kinds: make(map[string]Kind)}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// Size returns the number of columns.
func (d *Dataset) Size() int {
	if d.df == nil {
		return 0
	}
	return len(d.df.Series)
}

// Empty reports whether the dataset has no rows or no columns.
func (d *Dataset) Empty() bool { return d == nil || d.rows == 0 || d.Size() == 0 }

// Names returns all column names in insertion order.
func (d *Dataset) Names() []string {
	if d.df == nil {
		return []string{}
	}
	return d.df.Names()
}

// NumericNames returns the names of numeric columns in insertion order.
func (d *Dataset) NumericNames() []string {
	var names []string
	for _, name := range d.Names() {
		if d.kinds[name] == KindNumeric {
			names = append(names, name)
		}
	}
	return names
}

// Has reports whether a column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.kinds[name]
	return ok
}

// Kind returns the kind of the named column.
func (d *Dataset) Kind(name string) (Kind, bool) {
	k, ok := d.kinds[name]
	return k, ok
}

func (d *Dataset) lookup(name string) dataframe.Series {
	if !d.Has(name) {
		return nil
	}
	i, err := d.df.NameToColumn(name)
	if err != nil {
		return nil
	}
	return d.df.Series[i]
}

func (d *Dataset) put(op string, kind Kind, s dataframe.Series) error {
	if n := s.NRows(); n != d.rows {
		return errors.NewDimensionError(op, d.rows, n, 0)
	}
	name := s.Name()
	switch {
	case d.df == nil || len(d.df.Series) == 0:
		d.df = dataframe.NewDataFrame(s)
	case d.Has(name):
		i, err := d.df.NameToColumn(name)
		if err != nil {
			return errors.Wrapf(err, "%s: column %s", op, name)
		}
		if err := d.df.RemoveSeries(name); err != nil {
			return errors.Wrapf(err, "%s: column %s", op, name)
		}
		if err := d.df.AddSeries(s, &i); err != nil {
			return errors.Wrapf(err, "%s: column %s", op, name)
		}
	default:
		if err := d.df.AddSeries(s, nil); err != nil {
			return errors.Wrapf(err, "%s: column %s", op, name)
		}
	}
	d.kinds[name] = kind
	return nil
}

func numericSeries(name string, values []float64) *dataframe.SeriesFloat64 {
	return dataframe.NewSeriesFloat64(name, &dataframe.SeriesInit{Capacity: len(values)}, values)
}

func mixedSeries(name string, values []any) *dataframe.SeriesMixed {
	return dataframe.NewSeriesMixed(name, &dataframe.SeriesInit{Capacity: len(values)}, values)
}

// AddNumeric adds or replaces a numeric column. The slice is copied.
func (d *Dataset) AddNumeric(name string, values []float64) error {
	return d.put("AddNumeric", KindNumeric, numericSeries(name, values))
}

// AddValues adds or replaces a generic column. The slice is copied.
func (d *Dataset) AddValues(name string, values []any) error {
	return d.put("AddValues", KindValues, mixedSeries(name, values))
}

// AddBool adds or replaces a boolean column. The slice is copied.
func (d *Dataset) AddBool(name string, values []bool) error {
	boxed := make([]any, len(values))
	for i, v := range values {
		boxed[i] = v
	}
	return d.put("AddBool", KindBool, mixedSeries(name, boxed))
}

// AddInferred stores values as a numeric column when every non-missing cell is
// a number or a numeric string, and as a generic column otherwise. Missing
// tokens are normalised to NaN or nil respectively. Numeric strings coerced
// into a numeric column raise a DataConversionWarning.
func (d *Dataset) AddInferred(name string, values []any) error {
	return d.addInferred("AddInferred", name, values, true)
}

func (d *Dataset) addInferred(op, name string, values []any, warn bool) error {
	if nums, parsed, ok := inferNumeric(values); ok {
		if warn && parsed > 0 {
			errors.Warn(errors.NewDataConversionWarning("string", "float64",
				fmt.Sprintf("column %s: %d text cells parsed as numbers", name, parsed)))
		}
		return d.put(op, KindNumeric, numericSeries(name, nums))
	}
	vals := make([]any, len(values))
	for i, v := range values {
		if !isMissing(v) {
			vals[i] = v
		}
	}
	return d.put(op, KindValues, mixedSeries(name, vals))
}

// Numeric returns the named numeric column. The slice must not be modified.
func (d *Dataset) Numeric(name string) ([]float64, bool) {
	if d.kinds[name] != KindNumeric {
		return nil, false
	}
	s, ok := d.lookup(name).(*dataframe.SeriesFloat64)
	if !ok {
		return nil, false
	}
	return s.Values, true
}

// Values returns any column boxed as values, so labels may be read from a
// column of any kind. Missing numeric cells stay NaN.
func (d *Dataset) Values(name string) ([]any, bool) {
	s := d.lookup(name)
	if s == nil {
		return nil, false
	}
	out := make([]any, d.rows)
	if f, ok := s.(*dataframe.SeriesFloat64); ok {
		for i, v := range f.Values {
			out[i] = v
		}
		return out, true
	}
	for i := range out {
		out[i] = s.Value(i)
	}
	return out, true
}

// Bools returns the named boolean column.
func (d *Dataset) Bools(name string) ([]bool, bool) {
	if d.kinds[name] != KindBool {
		return nil, false
	}
	s := d.lookup(name)
	if s == nil {
		return nil, false
	}
	out := make([]bool, d.rows)
	for i := range out {
		out[i], _ = s.Value(i).(bool)
	}
	return out, true
}

// Row returns the numeric cells of row i keyed by column name, NaN included.
func (d *Dataset) Row(i int) map[string]float64 {
	if i < 0 || i >= d.rows {
		return nil
	}
	row := make(map[string]float64)
	if d.df == nil {
		return row
	}
	for _, s := range d.df.Series {
		if f, ok := s.(*dataframe.SeriesFloat64); ok {
			row[f.Name()] = f.Values[i]
		}
	}
	return row
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{rows: d.rows, kinds: make(map[string]Kind, len(d.kinds))}
	for name, k := range d.kinds {
		out.kinds[name] = k
	}
	if d.Size() > 0 {
		out.df = d.df.Copy()
	}
	return out
}

func isMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		_, ok := missingTokens[strings.TrimSpace(x)]
		return ok
	case []byte:
		_, ok := missingTokens[strings.TrimSpace(string(x))]
		return ok
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// inferNumeric converts values to floats. parsed counts the text cells that
// were read as numbers.
func inferNumeric(values []any) (out []float64, parsed int, ok bool) {
	out = make([]float64, len(values))
	for i, v := range values {
		if isMissing(v) {
			out[i] = math.NaN()
			continue
		}
		f, isNum := toFloat(v)
		if !isNum {
			return nil, 0, false
		}
		switch v.(type) {
		case string, []byte:
			parsed++
		}
		out[i] = f
	}
	return out, parsed, true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		return f, err == nil
	}
	return 0, false
}
