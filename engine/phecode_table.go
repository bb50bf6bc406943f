package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spiros/phemap"
	"github.com/spiros/phemap/rows"
)

// Canonical column order of the definitions table. Header names in the
// source file are ignored; fields are assigned by position.
const phecodeFieldCount = 8 // phecode, phenotype, phecode_exclude_range, sex, rollup, leaf, category_number, category

// PhecodeTable holds the loaded phecode definitions in file order.
// It is immutable after construction.
type PhecodeTable struct {
	records []phemap.PhecodeRecord
	byCode  map[string]int // normalized code -> first record index
}

func loadPhecodeTable(rs []rows.Row, opts *phemap.Options) (*PhecodeTable, error) {
	t := &PhecodeTable{
		records: make([]phemap.PhecodeRecord, 0, len(rs)),
		byCode:  make(map[string]int, len(rs)),
	}

	for i, row := range rs {
		if len(row) < phecodeFieldCount {
			return nil, fmt.Errorf("definitions row %d: want %d fields, got %d", i+1, phecodeFieldCount, len(row))
		}

		field := func(j int) string {
			v := row[j]
			if opts.TrimFields {
				v = strings.TrimSpace(v)
			}
			return v
		}

		rec := phemap.PhecodeRecord{
			Phecode:        field(0),
			Phenotype:      field(1),
			ExcludeRange:   field(2),
			Rollup:         field(4),
			Leaf:           field(5),
			CategoryNumber: field(6),
			Category:       field(7),
		}
		if sex := field(3); sex != "" {
			rec.Sex = &sex
		}

		num, err := phemap.ParseCode(rec.Phecode)
		if err != nil {
			return nil, &phemap.MalformedInputError{Field: "phecode", Value: row[0], Line: i + 1, Err: err}
		}
		rec.PhecodeNum = num

		// First occurrence wins; input order is preserved, no dedup.
		key := codeKey(num)
		if _, dup := t.byCode[key]; !dup {
			t.byCode[key] = len(t.records)
		}
		t.records = append(t.records, rec)
	}

	return t, nil
}

// Get returns the definition record for a phecode. The lookup is keyed
// on the normalized code string, so "038.1", "38.1" and "38.10" all
// resolve to the same record.
func (t *PhecodeTable) Get(code string) (*phemap.PhecodeRecord, error) {
	key, err := phemap.NormalizeCode(code)
	if err != nil {
		return nil, &phemap.NotFoundError{Kind: "phecode", Key: code}
	}

	i, ok := t.byCode[key]
	if !ok {
		return nil, &phemap.NotFoundError{Kind: "phecode", Key: code}
	}

	rec := t.records[i]
	return &rec, nil
}

// Exclusions returns, in table order, the phecode of every record whose
// numeric code lies inside the closed exclusion interval declared by
// code's definition row. The interval is inclusive at both ends and the
// queried code itself is usually part of the result.
func (t *PhecodeTable) Exclusions(code string) ([]string, error) {
	rec, err := t.Get(code)
	if err != nil {
		return nil, err
	}

	low, high, err := parseExcludeRange(rec.ExcludeRange)
	if err != nil {
		return nil, err
	}

	var out []string
	for i := range t.records {
		if n := t.records[i].PhecodeNum; n >= low && n <= high {
			out = append(out, t.records[i].Phecode)
		}
	}
	return out, nil
}

// All returns a copy of every definition record in table order.
func (t *PhecodeTable) All() []phemap.PhecodeRecord {
	out := make([]phemap.PhecodeRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of loaded definition rows.
func (t *PhecodeTable) Len() int {
	return len(t.records)
}

// parseExcludeRange splits a "<low>-<high>" exclusion range into its
// numeric bounds. The split must yield exactly two numeric tokens.
func parseExcludeRange(s string) (low, high float64, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, &phemap.MalformedInputError{Field: "phecode_exclude_range", Value: s}
	}

	low, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, &phemap.MalformedInputError{Field: "phecode_exclude_range", Value: s, Err: err}
	}
	high, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, &phemap.MalformedInputError{Field: "phecode_exclude_range", Value: s, Err: err}
	}

	return low, high, nil
}

// codeKey formats an already-parsed code number as its canonical
// lookup key.
func codeKey(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
