package dataset

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

// LoadSQL runs query and converts the result set into a Dataset, one column
// per selected field in select order. Column kinds are inferred as in ReadCSV;
// text fields read as numbers raise a DataConversionWarning.
// The caller registers the driver (e.g. modernc.org/sqlite or github.com/lib/pq).
func LoadSQL(ctx context.Context, db *sqlx.DB, query string, args ...any) (*Dataset, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "LoadSQL: query failed")
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "LoadSQL: reading columns")
	}

	cells := make([][]any, len(names))
	for rows.Next() {
		rec, err := rows.SliceScan()
		if err != nil {
			return nil, errors.Wrap(err, "LoadSQL: scanning row")
		}
		for j, v := range rec {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			cells[j] = append(cells[j], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "LoadSQL: iterating rows")
	}

	n := 0
	if len(cells) > 0 {
		n = len(cells[0])
	}
	ds := New(n)
	for j, name := range names {
		col := cells[j]
		if col == nil {
			col = make([]any, 0)
		}
		if err := ds.AddInferred(name, col); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
