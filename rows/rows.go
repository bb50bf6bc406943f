// Package rows supplies reference table rows to the query engine.
//
// A Source performs a one-shot batch read of a delimited reference
// table and hands back positional string fields. Column names in the
// underlying file are ignored; the engine assigns its own canonical
// names by position. Any mechanism that satisfies the field contract
// works: a CSV file, a SQLite table, or an in-memory slice.
package rows

import "context"

// Row is one table row as positional string fields.
type Row []string

// Source reads a full reference table.
type Source interface {
	// Rows reads every data row in table order. It is a one-shot batch
	// read; implementations release any underlying resources before
	// returning.
	Rows(ctx context.Context) ([]Row, error)
}

// SliceSource serves rows from memory. Useful for tests and for data
// embedded in a binary.
type SliceSource struct {
	rows []Row
}

// Slice creates an in-memory source from the given rows.
func Slice(rs ...Row) *SliceSource {
	return &SliceSource{rows: rs}
}

// Rows implements Source.
func (s *SliceSource) Rows(ctx context.Context) ([]Row, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

// Verify interface compliance
var _ Source = (*SliceSource)(nil)
