package rows

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteSource reads a reference table from a SQLite database file.
// Columns are read in the order given, which must match the canonical
// field order the engine expects; rows come back in rowid order so the
// catalog's original row order is preserved.
type SQLiteSource struct {
	path    string
	table   string
	columns []string
}

// SQLiteTable creates a source reading the named columns from a table
// in the database file at path.
func SQLiteTable(path, table string, columns ...string) *SQLiteSource {
	return &SQLiteSource{path: path, table: table, columns: columns}
}

// Rows implements Source.
func (s *SQLiteSource) Rows(ctx context.Context) ([]Row, error) {
	if len(s.columns) == 0 {
		return nil, fmt.Errorf("sqlite source %s: no columns specified", s.table)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", s.path, err)
	}
	defer db.Close()

	cols := make([]string, len(s.columns))
	for i, c := range s.columns {
		cols[i] = quoteIdent(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid",
		strings.Join(cols, ", "), quoteIdent(s.table))

	rs, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rs.Close()

	var out []Row
	for rs.Next() {
		fields := make([]sql.NullString, len(s.columns))
		dest := make([]any, len(fields))
		for i := range fields {
			dest[i] = &fields[i]
		}
		if err := rs.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}

		row := make(Row, len(fields))
		for i, f := range fields {
			if f.Valid {
				row[i] = f.String
			}
		}
		out = append(out, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}

	return out, nil
}

// quoteIdent quotes a SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Verify interface compliance
var _ Source = (*SQLiteSource)(nil)
