package phemap

import (
	"strconv"
	"strings"
)

// PhecodeRecord is one row of the phecode definitions table.
type PhecodeRecord struct {
	// Phecode is the canonical code string, e.g. "495" or "038.1".
	Phecode string `json:"phecode"`

	// Phenotype is the human-readable phenotype name, e.g. "Asthma".
	Phenotype string `json:"phenotype"`

	// ExcludeRange is the declared exclusion interval in "<low>-<high>"
	// form, e.g. "490-498.99". Both halves parse as numbers.
	ExcludeRange string `json:"phecode_exclude_range"`

	// Sex restricts the phenotype to one sex. Nil when the source field
	// is empty.
	Sex *string `json:"sex"`

	// Rollup and Leaf are hierarchy flags passed through as-is.
	Rollup string `json:"rollup"`
	Leaf   string `json:"leaf"`

	CategoryNumber string `json:"category_number"`
	Category       string `json:"category"`

	// PhecodeNum is the numeric parse of Phecode, derived at load time.
	PhecodeNum float64 `json:"phecode_num"`
}

// MappingRecord is one row of the ICD-10-to-phecode mapping table.
// The table is many-to-many: neither column is unique on its own.
type MappingRecord struct {
	// ICD10 is the diagnosis term in dotted form, e.g. "J45.1".
	ICD10 string `json:"icd10"`

	// Phecode is the mapped phecode string.
	Phecode string `json:"phecode"`

	// ExcludeRange duplicates the phenotype's exclusion range. It is
	// carried for completeness and not consulted by queries.
	ExcludeRange string `json:"phecode_exclude_range"`

	// ExcludeFlag is the phenotype_exlude column, passed through as-is
	// (the misspelling is the catalog's own).
	ExcludeFlag string `json:"phenotype_exlude"`

	// PhecodeNum is the numeric parse of Phecode, derived at load time.
	PhecodeNum float64 `json:"phecode_num"`
}

// ParseCode parses a phecode string into its numeric form.
func ParseCode(code string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(code), 64)
}

// NormalizeCode reduces a phecode to its canonical string key, so that
// "038.1", "38.1" and "38.10" all normalize to "38.1". Lookups are keyed
// on this form rather than on raw float equality, which is fragile across
// trailing-zero and representation differences.
func NormalizeCode(code string) (string, error) {
	n, err := ParseCode(code)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(n, 'f', -1, 64), nil
}

// RestoreICD10Dot restores the dot separator that UK Biobank strips from
// ICD-10 terms, turning "J451" back into "J45.1". Terms of three or fewer
// characters are already in their undotted canonical form and are
// returned unchanged, as are terms that already contain a dot.
func RestoreICD10Dot(term string) string {
	term = strings.TrimSpace(term)
	if len(term) <= 3 || strings.Contains(term, ".") {
		return term
	}
	return term[:3] + "." + term[3:]
}
