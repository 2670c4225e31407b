package ingest

import (
	"context"

	"github.com/kailas-cloud/contentiq/internal/domain/content"
)

// ContentWriter persists content records for a tenant.
type ContentWriter interface {
	Upsert(ctx context.Context, tenantID string, c content.Content) error
	Delete(ctx context.Context, tenantID, id string) error
}

// CacheInvalidator evicts a tenant's cached schema after taxonomy-visible
// writes.
type CacheInvalidator interface {
	Clear(tenantID string)
}
