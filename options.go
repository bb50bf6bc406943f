package phemap

// Option configures engine construction.
type Option func(*Options)

// Options holds all configuration for the query engine.
type Options struct {
	// TrimFields controls whether leading and trailing whitespace is
	// stripped from every field while loading. The published catalog
	// files carry the occasional stray space.
	TrimFields bool

	// ExclusionCacheSize is the capacity of the exclusion-range result
	// cache used by the caching decorator. The plain engine never caches.
	ExclusionCacheSize int

	// MappingCacheSize is the capacity of the phecode-to-ICD-10 result
	// cache used by the caching decorator.
	MappingCacheSize int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		TrimFields:         true,
		ExclusionCacheSize: 256,
		MappingCacheSize:   256,
	}
}

// WithTrimFields controls whitespace stripping during load.
func WithTrimFields(enable bool) Option {
	return func(o *Options) {
		o.TrimFields = enable
	}
}

// WithExclusionCacheSize sets the exclusion result cache capacity for
// the caching decorator.
func WithExclusionCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ExclusionCacheSize = size
		}
	}
}

// WithMappingCacheSize sets the reverse-mapping result cache capacity
// for the caching decorator.
func WithMappingCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.MappingCacheSize = size
		}
	}
}
