package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/contentiq/internal/domain"
	"github.com/kailas-cloud/contentiq/internal/domain/content"
)

// store is the consumer interface for the content catalog (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo stores content records per tenant and executes query plans over
// them.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert writes a content record and maintains the tenant's membership
// sets.
func (r *Repo) Upsert(ctx context.Context, tenantID string, c content.Content) error {
	if tenantID == "" {
		return domain.ErrTenantRequired
	}

	if err := r.store.HSet(ctx, contentKey(tenantID, c.ID()), contentToHash(c)); err != nil {
		return fmt.Errorf("hset content %s: %w", c.ID(), err)
	}
	if err := r.store.SAdd(ctx, contentSetKey(tenantID), c.ID()); err != nil {
		return fmt.Errorf("sadd content %s: %w", c.ID(), err)
	}
	if c.Language() != "" {
		if err := r.store.SAdd(ctx, languageSetKey(tenantID), c.Language()); err != nil {
			return fmt.Errorf("sadd language %s: %w", c.Language(), err)
		}
	}
	return nil
}

// Delete removes a content record from the tenant's catalog. The
// language set is left as-is; it only feeds vocabulary hints.
func (r *Repo) Delete(ctx context.Context, tenantID, id string) error {
	if tenantID == "" {
		return domain.ErrTenantRequired
	}

	if err := r.store.Del(ctx, contentKey(tenantID, id)); err != nil {
		return fmt.Errorf("del content %s: %w", id, err)
	}
	if err := r.store.SRem(ctx, contentSetKey(tenantID), id); err != nil {
		return fmt.Errorf("srem content %s: %w", id, err)
	}
	return nil
}

// loadContents reads the tenant's full content set.
func (r *Repo) loadContents(ctx context.Context, tenantID string) ([]content.Content, error) {
	ids, err := r.store.SMembers(ctx, contentSetKey(tenantID))
	if err != nil {
		return nil, fmt.Errorf("smembers contents for %s: %w", tenantID, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = contentKey(tenantID, id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi contents: %w", err)
	}

	contents := make([]content.Content, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		c, err := contentFromHash(ids[i], m)
		if err != nil {
			return nil, fmt.Errorf("parse content %s: %w", ids[i], err)
		}
		contents = append(contents, c)
	}
	return contents, nil
}

// loadAttributes reads the tenant's category attributes keyed by id.
func (r *Repo) loadAttributes(ctx context.Context, tenantID string) (map[string]content.Attribute, error) {
	ids, err := r.store.SMembers(ctx, attrSetKey(tenantID))
	if err != nil {
		return nil, fmt.Errorf("smembers attributes for %s: %w", tenantID, err)
	}
	if len(ids) == 0 {
		return map[string]content.Attribute{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = attrKey(tenantID, id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi attributes: %w", err)
	}

	attrs := make(map[string]content.Attribute, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		attr, err := content.NewAttribute(ids[i], m["name"], m["category"], m["category_id"])
		if err != nil {
			continue
		}
		attrs[ids[i]] = attr
	}
	return attrs, nil
}

// Key patterns: contentiq:{tenant}:contents, contentiq:{tenant}:content:{id},
// contentiq:{tenant}:attrs, contentiq:{tenant}:attr:{id}, contentiq:{tenant}:languages

func contentSetKey(tenantID string) string {
	return fmt.Sprintf("%s%s:contents", domain.KeyPrefix, tenantID)
}

func contentKey(tenantID, id string) string {
	return fmt.Sprintf("%s%s:content:%s", domain.KeyPrefix, tenantID, id)
}

func attrSetKey(tenantID string) string {
	return fmt.Sprintf("%s%s:attrs", domain.KeyPrefix, tenantID)
}

func attrKey(tenantID, id string) string {
	return fmt.Sprintf("%s%s:attr:%s", domain.KeyPrefix, tenantID, id)
}

func languageSetKey(tenantID string) string {
	return fmt.Sprintf("%s%s:languages", domain.KeyPrefix, tenantID)
}
