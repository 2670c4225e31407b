package schema

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/contentiq/internal/domain"
	domschema "github.com/kailas-cloud/contentiq/internal/domain/schema"
	"github.com/kailas-cloud/contentiq/internal/domain/synonym"
	"github.com/kailas-cloud/contentiq/internal/domain/vocabulary"
	"github.com/kailas-cloud/contentiq/internal/metrics"
)

// Content storage layout the field mappings describe.
const (
	// ContentCollection is the collection holding content records.
	ContentCollection = "contents"
	// attributeField is the array of attribute references on a content
	// record.
	attributeField = "categoryAttributes"
	// attributeCollection is the referenced collection the array points
	// into.
	attributeCollection = "category_attributes"
	// attributeLookupField is the human-readable field matched inside
	// the referenced collection.
	attributeLookupField = "name"
)

// wellKnownDirectFields is the fixed table of non-categorical fields
// stored inline on content records, exposed as virtual categories.
var wellKnownDirectFields = map[string]string{
	"language": "Language",
}

// snapshot is one tenant's fully built schema. Immutable once published.
type snapshot struct {
	vocab    vocabulary.Vocabulary
	mapping  domschema.Mapping
	catIDs   map[string]string
	synonyms []synonym.Entry
	builtAt  time.Time
}

// Resolver loads and caches per-tenant vocabularies, field mappings, and
// synonyms. Safe for concurrent use: lookups take a read lock, builds
// happen entirely off-cache, and a completed snapshot is swapped in under
// a short write lock. Concurrent first-requests for the same tenant may
// duplicate the bulk read but never observe a half-built snapshot.
type Resolver struct {
	taxonomy TaxonomyReader
	synonyms SynonymReader
	ttl      time.Duration

	mu    sync.RWMutex
	cache map[string]*snapshot
}

// New creates a schema resolver. ttl <= 0 disables expiry; entries then
// live until explicitly cleared.
func New(taxonomy TaxonomyReader, synonyms SynonymReader, ttl time.Duration) *Resolver {
	return &Resolver{
		taxonomy: taxonomy,
		synonyms: synonyms,
		ttl:      ttl,
		cache:    make(map[string]*snapshot),
	}
}

// Resolve returns the tenant's vocabulary, building and caching the
// schema on first request.
func (r *Resolver) Resolve(ctx context.Context, tenantID string) (vocabulary.Vocabulary, error) {
	snap, err := r.snapshot(ctx, tenantID)
	if err != nil {
		return vocabulary.Vocabulary{}, err
	}
	return snap.vocab, nil
}

// FieldMapping returns the category-to-storage mapping for the tenant.
func (r *Resolver) FieldMapping(ctx context.Context, tenantID string) (domschema.Mapping, error) {
	snap, err := r.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return snap.mapping, nil
}

// CategoryID returns the store identifier of a joined category, for
// scoping lookups.
func (r *Resolver) CategoryID(ctx context.Context, tenantID, category string) (string, error) {
	snap, err := r.snapshot(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return snap.catIDs[category], nil
}

// Synonyms returns the synonym entries applying to the tenant.
func (r *Resolver) Synonyms(ctx context.Context, tenantID string) ([]synonym.Entry, error) {
	snap, err := r.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return snap.synonyms, nil
}

// Clear evicts one tenant's cached schema.
func (r *Resolver) Clear(tenantID string) {
	r.mu.Lock()
	delete(r.cache, tenantID)
	r.mu.Unlock()
}

// ClearAll evicts every cached schema.
func (r *Resolver) ClearAll() {
	r.mu.Lock()
	r.cache = make(map[string]*snapshot)
	r.mu.Unlock()
}

// snapshot returns the cached schema or builds it. The build runs
// without holding any lock; only the final swap takes the write lock.
func (r *Resolver) snapshot(ctx context.Context, tenantID string) (*snapshot, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}

	r.mu.RLock()
	snap, ok := r.cache[tenantID]
	r.mu.RUnlock()
	if ok && !r.expired(snap) {
		metrics.SchemaCacheTotal.WithLabelValues("hit").Inc()
		return snap, nil
	}
	metrics.SchemaCacheTotal.WithLabelValues("miss").Inc()

	built, err := r.build(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[tenantID] = built
	r.mu.Unlock()

	return built, nil
}

func (r *Resolver) expired(snap *snapshot) bool {
	return r.ttl > 0 && time.Since(snap.builtAt) > r.ttl
}

// build performs the bulk taxonomy read and assembles a complete
// snapshot off to the side. Nothing partial ever reaches the cache.
func (r *Resolver) build(ctx context.Context, tenantID string) (*snapshot, error) {
	tax, err := r.taxonomy.Load(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: load taxonomy for tenant %s: %w", domain.ErrSchemaUnavailable, tenantID, err)
	}

	categories := make(map[string][]string, len(tax.Categories)+len(tax.DirectValues))
	mapping := make(domschema.Mapping, len(tax.Categories)+len(tax.DirectValues))

	for name, values := range tax.Categories {
		fm, err := domschema.NewJoined(
			name, ContentCollection, attributeField, attributeCollection, attributeLookupField,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: map category %q: %w", domain.ErrSchemaUnavailable, name, err)
		}
		categories[name] = values
		mapping[name] = fm
	}

	for fieldPath, values := range tax.DirectValues {
		name, known := wellKnownDirectFields[fieldPath]
		if !known || len(values) == 0 {
			continue
		}
		if _, exists := categories[name]; exists {
			// A tenant-defined category shadows the virtual one.
			continue
		}
		fm, err := domschema.NewDirect(name, ContentCollection, fieldPath)
		if err != nil {
			return nil, fmt.Errorf("%w: map direct field %q: %w", domain.ErrSchemaUnavailable, fieldPath, err)
		}
		categories[name] = values
		mapping[name] = fm
	}

	vocab, err := vocabulary.FromMap(tenantID, categories)
	if err != nil {
		return nil, fmt.Errorf("%w: build vocabulary for tenant %s: %w", domain.ErrSchemaUnavailable, tenantID, err)
	}

	var entries []synonym.Entry
	if r.synonyms != nil {
		entries, err = r.synonyms.List(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("%w: load synonyms for tenant %s: %w", domain.ErrSchemaUnavailable, tenantID, err)
		}
	}

	catIDs := make(map[string]string, len(tax.CategoryIDs))
	for name, id := range tax.CategoryIDs {
		catIDs[name] = id
	}

	return &snapshot{
		vocab:    vocab,
		mapping:  mapping,
		catIDs:   catIDs,
		synonyms: entries,
		builtAt:  time.Now(),
	}, nil
}
