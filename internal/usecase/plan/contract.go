package plan

import (
	"context"

	"github.com/kailas-cloud/contentiq/internal/domain/schema"
)

// SchemaSource provides the physical storage mapping for a tenant's
// categories.
type SchemaSource interface {
	FieldMapping(ctx context.Context, tenantID string) (schema.Mapping, error)
	CategoryID(ctx context.Context, tenantID, category string) (string, error)
}
