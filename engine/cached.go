package engine

import (
	"context"

	"github.com/spiros/phemap"
	"github.com/spiros/phemap/cache"
)

// Cached wraps a Phemap with result caching for the two queries that
// scan rather than index: exclusion-range filters and reverse mapping
// lookups. The wrapped engine itself stays cache-free; point lookups
// are already single map hits and pass straight through.
//
// Cached slices are shared between callers and must not be modified.
type Cached struct {
	inner *Phemap

	exclusions *cache.LRU[string, []string]
	icd10      *cache.LRU[string, []string]
}

// NewCached creates a caching decorator around an engine. Cache sizes
// come from the engine's options.
func NewCached(inner *Phemap) *Cached {
	return &Cached{
		inner:      inner,
		exclusions: cache.New[string, []string](inner.options.ExclusionCacheSize),
		icd10:      cache.New[string, []string](inner.options.MappingCacheSize),
	}
}

// Inner returns the wrapped engine.
func (c *Cached) Inner() *Phemap {
	return c.inner
}

// PhecodeInfo delegates to the wrapped engine.
func (c *Cached) PhecodeInfo(ctx context.Context, code string) (*phemap.PhecodeRecord, error) {
	return c.inner.PhecodeInfo(ctx, code)
}

// PhecodesForICD10 delegates to the wrapped engine.
func (c *Cached) PhecodesForICD10(ctx context.Context, term string) ([]string, error) {
	return c.inner.PhecodesForICD10(ctx, term)
}

// ICD10ForPhecode returns the ICD-10 terms for a phecode, serving
// repeat queries from the cache.
func (c *Cached) ICD10ForPhecode(ctx context.Context, code string) ([]string, error) {
	key, err := phemap.NormalizeCode(code)
	if err != nil {
		// Unparseable keys fail inside the engine with a proper error.
		return c.inner.ICD10ForPhecode(ctx, code)
	}

	if terms, ok := c.icd10.Get(key); ok {
		c.inner.metrics.RecordCacheHit()
		return terms, nil
	}
	c.inner.metrics.RecordCacheMiss()

	terms, err := c.inner.ICD10ForPhecode(ctx, code)
	if err != nil {
		return nil, err
	}

	c.icd10.Add(key, terms)
	return terms, nil
}

// Exclusions returns the exclusion-range phecodes for a code, serving
// repeat queries from the cache.
func (c *Cached) Exclusions(ctx context.Context, code string) ([]string, error) {
	key, err := phemap.NormalizeCode(code)
	if err != nil {
		return c.inner.Exclusions(ctx, code)
	}

	if codes, ok := c.exclusions.Get(key); ok {
		c.inner.metrics.RecordCacheHit()
		return codes, nil
	}
	c.inner.metrics.RecordCacheMiss()

	codes, err := c.inner.Exclusions(ctx, code)
	if err != nil {
		return nil, err
	}

	c.exclusions.Add(key, codes)
	return codes, nil
}

// AllPhecodes delegates to the wrapped engine.
func (c *Cached) AllPhecodes(ctx context.Context) ([]phemap.PhecodeRecord, error) {
	return c.inner.AllPhecodes(ctx)
}

// ClearCache drops all cached results.
func (c *Cached) ClearCache() {
	c.exclusions.Purge()
	c.icd10.Purge()
}

// CacheStats returns counters for the exclusion and mapping caches.
func (c *Cached) CacheStats() (exclusions, mappings cache.Stats) {
	return c.exclusions.Stats(), c.icd10.Stats()
}
