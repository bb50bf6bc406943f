package phemap

// MapRelease identifies a published PheWAS catalog release.
type MapRelease string

// Supported catalog releases.
const (
	// V1_1 is phecode map release 1.1.
	V1_1 MapRelease = "1.1"
	// V1_2 is phecode map release 1.2, the release the bundled tests
	// and documentation examples are written against.
	V1_2 MapRelease = "1.2"
)

// String returns the release string.
func (r MapRelease) String() string {
	return string(r)
}

// IsValid returns true if this is a supported catalog release.
func (r MapRelease) IsValid() bool {
	switch r {
	case V1_1, V1_2:
		return true
	default:
		return false
	}
}

// releaseConfig holds release-specific file names as published by
// https://phewascatalog.org/phecodes.
type releaseConfig struct {
	DefinitionsFile string
	ICD10MapFile    string
}

var releaseConfigs = map[MapRelease]releaseConfig{
	V1_1: {
		DefinitionsFile: "phecode_definitions1.1.csv",
		ICD10MapFile:    "phecode_map_v1_1_icd10_beta.csv",
	},
	V1_2: {
		DefinitionsFile: "phecode_definitions1.2.csv",
		ICD10MapFile:    "phecode_map_v1_2_icd10_beta.csv",
	},
}

// DefinitionsFile returns the published phecode definitions file name
// for this release, or "" for an unknown release.
func (r MapRelease) DefinitionsFile() string {
	return releaseConfigs[r].DefinitionsFile
}

// ICD10MapFile returns the published ICD-10 mapping file name for this
// release, or "" for an unknown release.
func (r MapRelease) ICD10MapFile() string {
	return releaseConfigs[r].ICD10MapFile
}
