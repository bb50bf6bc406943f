package engine

import (
	"fmt"
	"strings"

	"github.com/spiros/phemap"
	"github.com/spiros/phemap/rows"
)

// Canonical column order of the mapping table.
const mappingFieldCount = 4 // icd10, phecode, phecode_exclude_range, phenotype_exlude

// MappingTable holds the loaded ICD-10-to-phecode edges in file order.
// The relation is many-to-many; both indexes map to lists of row
// positions so duplicates and ordering survive.
type MappingTable struct {
	records   []phemap.MappingRecord
	byICD10   map[string][]int
	byPhecode map[string][]int // normalized code -> record indexes
}

func loadMappingTable(rs []rows.Row, opts *phemap.Options) (*MappingTable, error) {
	t := &MappingTable{
		records:   make([]phemap.MappingRecord, 0, len(rs)),
		byICD10:   make(map[string][]int),
		byPhecode: make(map[string][]int),
	}

	for i, row := range rs {
		if len(row) < mappingFieldCount {
			return nil, fmt.Errorf("mapping row %d: want %d fields, got %d", i+1, mappingFieldCount, len(row))
		}

		field := func(j int) string {
			v := row[j]
			if opts.TrimFields {
				v = strings.TrimSpace(v)
			}
			return v
		}

		rec := phemap.MappingRecord{
			ICD10:        field(0),
			Phecode:      field(1),
			ExcludeRange: field(2),
			ExcludeFlag:  field(3),
		}

		num, err := phemap.ParseCode(rec.Phecode)
		if err != nil {
			return nil, &phemap.MalformedInputError{Field: "phecode", Value: row[1], Line: i + 1, Err: err}
		}
		rec.PhecodeNum = num

		idx := len(t.records)
		t.records = append(t.records, rec)
		t.byICD10[rec.ICD10] = append(t.byICD10[rec.ICD10], idx)
		t.byPhecode[codeKey(num)] = append(t.byPhecode[codeKey(num)], idx)
	}

	return t, nil
}

// PhecodesForICD10 returns the phecode of every row whose icd10 column
// matches the term exactly (case- and format-sensitive; callers must
// supply the dotted form the catalog stores). Results keep row order
// and may contain duplicates if the source data does.
func (t *MappingTable) PhecodesForICD10(term string) ([]string, error) {
	idxs := t.byICD10[term]
	if len(idxs) == 0 {
		return nil, &phemap.NotFoundError{Kind: "icd10", Key: term}
	}

	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = t.records[idx].Phecode
	}
	return out, nil
}

// ICD10ForPhecode returns the ICD-10 term of every row mapped to the
// given phecode, in row order. The code is matched on its normalized
// string form.
func (t *MappingTable) ICD10ForPhecode(code string) ([]string, error) {
	key, err := phemap.NormalizeCode(code)
	if err != nil {
		return nil, &phemap.NotFoundError{Kind: "phecode", Key: code}
	}

	idxs := t.byPhecode[key]
	if len(idxs) == 0 {
		return nil, &phemap.NotFoundError{Kind: "phecode", Key: code}
	}

	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = t.records[idx].ICD10
	}
	return out, nil
}

// Len returns the number of loaded mapping rows.
func (t *MappingTable) Len() int {
	return len(t.records)
}
