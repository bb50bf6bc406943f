// Package engine implements the ICD-10 to phecode query engine.
//
// A Phemap is built once from two row sources and is immutable
// afterward, so it is safe for concurrent readers. Construction itself
// must finish before the first query.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/spiros/phemap"
	"github.com/spiros/phemap/rows"
)

// Phemap answers lookup and cross-reference queries over the phecode
// definitions table and the ICD-10 mapping table.
type Phemap struct {
	phecodes *PhecodeTable
	mapping  *MappingTable

	options *phemap.Options
	metrics *phemap.Metrics
}

// New constructs a Phemap by reading both reference tables. The
// definitions source supplies rows in the canonical order
// (phecode, phenotype, phecode_exclude_range, sex, rollup, leaf,
// category_number, category); the mapping source supplies
// (icd10, phecode, phecode_exclude_range, phenotype_exlude).
func New(ctx context.Context, definitions, mapping rows.Source, opts ...phemap.Option) (*Phemap, error) {
	options := phemap.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	defRows, err := definitions.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}
	phecodes, err := loadPhecodeTable(defRows, options)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}

	mapRows, err := mapping.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	mappingTable, err := loadMappingTable(mapRows, options)
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}

	return &Phemap{
		phecodes: phecodes,
		mapping:  mappingTable,
		options:  options,
		metrics:  phemap.NewMetrics(),
	}, nil
}

// PhecodeInfo returns all available information for a phecode.
// It fails with *phemap.NotFoundError when the code has no definition
// row or cannot be parsed as a number.
func (p *Phemap) PhecodeInfo(ctx context.Context, code string) (*phemap.PhecodeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	rec, err := p.phecodes.Get(code)
	p.metrics.RecordLookup("phecode_info", time.Since(start), err == nil)
	return rec, err
}

// PhecodesForICD10 returns the phecodes mapped to an ICD-10 term, in
// mapping file order. A term may map to several phecodes; an unmapped
// term fails with *phemap.NotFoundError, never an empty success.
func (p *Phemap) PhecodesForICD10(ctx context.Context, term string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	codes, err := p.mapping.PhecodesForICD10(term)
	p.metrics.RecordLookup("phecodes_for_icd10", time.Since(start), err == nil)
	return codes, err
}

// ICD10ForPhecode returns the ICD-10 terms associated with a phecode in
// the mapping file, in file order.
func (p *Phemap) ICD10ForPhecode(ctx context.Context, code string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	terms, err := p.mapping.ICD10ForPhecode(code)
	p.metrics.RecordLookup("icd10_for_phecode", time.Since(start), err == nil)
	return terms, err
}

// Exclusions returns every phecode inside the closed exclusion interval
// declared by the given phecode's definition row, in table order. This
// is an inclusive numeric range filter; the queried code itself is part
// of the result when its number falls inside its own range.
func (p *Phemap) Exclusions(ctx context.Context, code string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	codes, err := p.phecodes.Exclusions(code)
	p.metrics.RecordLookup("exclusions", time.Since(start), err == nil)
	return codes, err
}

// AllPhecodes returns every definition record in table order. Repeated
// calls return equal results; each call returns a fresh copy.
func (p *Phemap) AllPhecodes(ctx context.Context) ([]phemap.PhecodeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	all := p.phecodes.All()
	p.metrics.RecordLookup("all_phecodes", time.Since(start), true)
	return all, nil
}

// PhecodeCount returns the number of loaded definition rows.
func (p *Phemap) PhecodeCount() int {
	return p.phecodes.Len()
}

// MappingCount returns the number of loaded mapping rows.
func (p *Phemap) MappingCount() int {
	return p.mapping.Len()
}

// Metrics returns the engine's metrics.
func (p *Phemap) Metrics() *phemap.Metrics {
	return p.metrics
}

// Options returns the engine's options.
func (p *Phemap) Options() *phemap.Options {
	return p.options
}
