// Package phemap provides lookup and cross-reference queries between
// ICD-10 diagnosis terms and PheCodes, the phenotype groupings described
// in Wu P. et al. (https://www.biorxiv.org/content/10.1101/462077v4).
//
// It loads the two reference tables published by the PheWAS catalog
// (https://phewascatalog.org/phecodes), the phecode definitions file and
// the ICD-10-to-phecode mapping file, and answers point queries against
// them: resolve a phecode's metadata, find the phecodes for an ICD-10
// term, find the ICD-10 terms for a phecode, and list every phecode
// inside a phenotype's declared exclusion range.
//
// # Quick Start
//
//	import (
//	    "github.com/spiros/phemap/engine"
//	    "github.com/spiros/phemap/rows"
//	)
//
//	p, err := engine.New(ctx,
//	    rows.CSVFile("data/phecode_definitions1.2.csv"),
//	    rows.CSVFile("data/phecode_map_v1_2_icd10_beta.csv"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	codes, err := p.PhecodesForICD10(ctx, "J45.1") // ["495"]
//	info, err := p.PhecodeInfo(ctx, "495")         // Asthma, excl. 490-498.99
//
// # Data Notes
//
// UK Biobank secondary care data strip the dot from ICD-10 terms
// ("J45.1" is recorded as "J451"); use RestoreICD10Dot before querying.
// Not every ICD-10 term is mapped to a phecode, and not every mapped
// phecode has a definition row. Queries that find nothing fail with a
// *NotFoundError rather than returning an empty result.
//
// # Architecture
//
// The root package holds the shared vocabulary: records, errors, options,
// metrics and catalog release metadata. Subpackages do the work:
//
//   - rows: row sources (CSV file, SQLite table, in-memory slice)
//   - engine: the query engine owning the two loaded tables
//   - cache: generic LRU used by the caching engine decorator
//   - fhir: export of the tables as FHIR R4 CodeSystem/ValueSet resources
//   - server: HTTP API with Prometheus metrics
//
// Both tables are built once at construction and never mutated, so a
// constructed engine is safe for concurrent readers without locking.
package phemap
