package taxonomy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/contentiq/internal/domain"
	"github.com/kailas-cloud/contentiq/internal/domain/synonym"
	"github.com/kailas-cloud/contentiq/internal/usecase/schema"
)

// globalTenant holds synonym entries that apply to every tenant.
const globalTenant = "global"

// store is the consumer interface for taxonomy access (ISP). Writes are
// only used by the offline synonym tooling.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements usecase/schema.TaxonomyReader and SynonymReader over
// Redis hashes and sets.
type Repo struct {
	store store
}

// New creates a taxonomy repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Load reads the tenant's full taxonomy in one pass: every category
// attribute plus the distinct direct-field values.
func (r *Repo) Load(ctx context.Context, tenantID string) (schema.Taxonomy, error) {
	attrIDs, err := r.store.SMembers(ctx, attrSetKey(tenantID))
	if err != nil {
		return schema.Taxonomy{}, fmt.Errorf("smembers attributes for %s: %w", tenantID, err)
	}
	sort.Strings(attrIDs)

	tax := schema.Taxonomy{
		Categories:   make(map[string][]string),
		CategoryIDs:  make(map[string]string),
		DirectValues: make(map[string][]string),
	}

	if len(attrIDs) > 0 {
		keys := make([]string, len(attrIDs))
		for i, id := range attrIDs {
			keys[i] = attrKey(tenantID, id)
		}
		hashes, err := r.store.HGetAllMulti(ctx, keys)
		if err != nil {
			return schema.Taxonomy{}, fmt.Errorf("hgetall multi attributes: %w", err)
		}
		for i, m := range hashes {
			if len(m) == 0 {
				continue
			}
			attr, err := attributeFromHash(attrIDs[i], m)
			if err != nil {
				return schema.Taxonomy{}, fmt.Errorf("parse attribute %s: %w", attrIDs[i], err)
			}
			tax.Categories[attr.Category()] = append(tax.Categories[attr.Category()], attr.Name())
			if attr.CategoryID() != "" {
				tax.CategoryIDs[attr.Category()] = attr.CategoryID()
			}
		}
	}

	languages, err := r.store.SMembers(ctx, languageSetKey(tenantID))
	if err != nil {
		return schema.Taxonomy{}, fmt.Errorf("smembers languages for %s: %w", tenantID, err)
	}
	if len(languages) > 0 {
		sort.Strings(languages)
		tax.DirectValues["language"] = languages
	}

	return tax, nil
}

// List returns the tenant's synonym entries plus the global ones.
// Records that fail validation are skipped, never invented.
func (r *Repo) List(ctx context.Context, tenantID string) ([]synonym.Entry, error) {
	var out []synonym.Entry

	for _, scope := range []string{globalTenant, tenantID} {
		entries, err := r.listScope(ctx, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}

	return out, nil
}

func (r *Repo) listScope(ctx context.Context, scope string) ([]synonym.Entry, error) {
	ids, err := r.store.SMembers(ctx, synonymSetKey(scope))
	if err != nil {
		return nil, fmt.Errorf("smembers synonyms for %s: %w", scope, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = synonymKey(scope, id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi synonyms: %w", err)
	}

	tenant := scope
	if scope == globalTenant {
		tenant = ""
	}

	entries := make([]synonym.Entry, 0, len(hashes))
	for _, m := range hashes {
		if len(m) == 0 {
			continue
		}
		entry, err := synonymFromHash(tenant, m)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SaveSynonym stores one synonym entry. Entries with an empty tenant id
// land in the global scope and apply to every tenant.
func (r *Repo) SaveSynonym(ctx context.Context, entry synonym.Entry) error {
	scope := entry.TenantID()
	if scope == "" {
		scope = globalTenant
	}
	id := synonymID(entry.Phrase())

	if err := r.store.HSet(ctx, synonymKey(scope, id), synonymToHash(entry)); err != nil {
		return fmt.Errorf("hset synonym %s: %w", id, err)
	}
	if err := r.store.SAdd(ctx, synonymSetKey(scope), id); err != nil {
		return fmt.Errorf("sadd synonym %s: %w", id, err)
	}
	return nil
}

// synonymID derives a stable record id from the phrase so repeated runs
// overwrite rather than duplicate.
func synonymID(phrase string) string {
	return strings.ReplaceAll(strings.ToLower(phrase), " ", "-")
}

// Key patterns: contentiq:{tenant}:attrs, contentiq:{tenant}:attr:{id},
// contentiq:{tenant}:languages, contentiq:{tenant}:synonym:{id}

func attrSetKey(tenantID string) string {
	return fmt.Sprintf("%s%s:attrs", domain.KeyPrefix, tenantID)
}

func attrKey(tenantID, id string) string {
	return fmt.Sprintf("%s%s:attr:%s", domain.KeyPrefix, tenantID, id)
}

func languageSetKey(tenantID string) string {
	return fmt.Sprintf("%s%s:languages", domain.KeyPrefix, tenantID)
}

func synonymSetKey(scope string) string {
	return fmt.Sprintf("%s%s:synonyms", domain.KeyPrefix, scope)
}

func synonymKey(scope, id string) string {
	return fmt.Sprintf("%s%s:synonym:%s", domain.KeyPrefix, scope, id)
}
