// Package fhir exports the loaded reference tables as FHIR R4
// terminology resources, so phecode data can flow into toolchains that
// speak CodeSystem and ValueSet rather than raw catalog CSVs.
package fhir

import (
	"context"
	"fmt"

	"github.com/gofhir/fhir/r4"

	"github.com/spiros/phemap/engine"
)

// Canonical system URLs used in exported resources.
const (
	// PhecodeSystem identifies the phecode terminology.
	PhecodeSystem = "https://phewascatalog.org/phecodes"

	// ICD10System is the HL7-registered system URL for ICD-10 terms.
	ICD10System = "http://hl7.org/fhir/sid/icd-10"
)

// CodeSystem builds an R4 CodeSystem holding every loaded phecode, with
// the phenotype name as the concept display.
func CodeSystem(ctx context.Context, p *engine.Phemap) (*r4.CodeSystem, error) {
	records, err := p.AllPhecodes(ctx)
	if err != nil {
		return nil, err
	}

	url := PhecodeSystem
	cs := &r4.CodeSystem{
		Url:     &url,
		Concept: make([]r4.CodeSystemConcept, 0, len(records)),
	}

	for i := range records {
		code := records[i].Phecode
		display := records[i].Phenotype
		cs.Concept = append(cs.Concept, r4.CodeSystemConcept{
			Code:    &code,
			Display: &display,
		})
	}

	return cs, nil
}

// ExclusionValueSet builds an R4 ValueSet whose expansion contains
// every phecode inside the exclusion range declared by the given code.
func ExclusionValueSet(ctx context.Context, p *engine.Phemap, code string) (*r4.ValueSet, error) {
	codes, err := p.Exclusions(ctx, code)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/ValueSet/exclude/%s", PhecodeSystem, code)
	vs := &r4.ValueSet{
		Url: &url,
		Expansion: &r4.ValueSetExpansion{
			Contains: make([]r4.ValueSetExpansionContains, 0, len(codes)),
		},
	}

	system := PhecodeSystem
	for _, c := range codes {
		entry := r4.ValueSetExpansionContains{System: &system}

		code := c
		entry.Code = &code
		if rec, err := p.PhecodeInfo(ctx, c); err == nil {
			display := rec.Phenotype
			entry.Display = &display
		}

		vs.Expansion.Contains = append(vs.Expansion.Contains, entry)
	}

	return vs, nil
}

// ICD10ValueSet builds an R4 ValueSet whose expansion contains every
// ICD-10 term the mapping file associates with the given phecode.
func ICD10ValueSet(ctx context.Context, p *engine.Phemap, code string) (*r4.ValueSet, error) {
	terms, err := p.ICD10ForPhecode(ctx, code)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/ValueSet/icd10/%s", PhecodeSystem, code)
	vs := &r4.ValueSet{
		Url: &url,
		Expansion: &r4.ValueSetExpansion{
			Contains: make([]r4.ValueSetExpansionContains, 0, len(terms)),
		},
	}

	system := ICD10System
	for _, t := range terms {
		term := t
		vs.Expansion.Contains = append(vs.Expansion.Contains, r4.ValueSetExpansionContains{
			System: &system,
			Code:   &term,
		})
	}

	return vs, nil
}
