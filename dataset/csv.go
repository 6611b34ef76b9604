package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

// ReadCSV reads a header row followed by data rows. Each column is stored as
// numeric when all of its non-missing cells parse as numbers.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errors.ErrEmptyData, "ReadCSV: missing header")
	}
	if err != nil {
		return nil, errors.Wrap(err, "ReadCSV: reading header")
	}
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := seen[name]; dup {
			return nil, errors.NewValueError("ReadCSV", "duplicate column "+name)
		}
		seen[name] = struct{}{}
		header[i] = name
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "ReadCSV: reading records")
	}

	cells := make([][]any, len(header))
	for j := range cells {
		cells[j] = make([]any, len(records))
	}
	for i, rec := range records {
		for j, cell := range rec {
			cells[j][i] = cell
		}
	}

	ds := New(len(records))
	for j, name := range header {
		if err := ds.addInferred("ReadCSV", name, cells[j], false); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes the dataset with a header row. NaN and nil cells are written empty.
func WriteCSV(w io.Writer, d *Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(d.Names()); err != nil {
		return errors.Wrap(err, "WriteCSV: header")
	}
	columns := make([][]any, d.Size())
	for j, name := range d.Names() {
		columns[j], _ = d.Values(name)
	}
	rec := make([]string, d.Size())
	for i := 0; i < d.Len(); i++ {
		for j := range columns {
			rec[j] = formatCell(columns[j][i])
		}
		if err := writer.Write(rec); err != nil {
			return errors.Wrapf(err, "WriteCSV: row %d", i)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
