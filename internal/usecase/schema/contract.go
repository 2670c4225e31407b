package schema

import (
	"context"

	"github.com/kailas-cloud/contentiq/internal/domain/synonym"
)

// Taxonomy is one tenant's raw taxonomy as read from the store in a
// single bulk load.
type Taxonomy struct {
	// Categories maps category name to its allowed attribute values.
	// These categories live in a referenced collection and require a
	// join to resolve.
	Categories map[string][]string
	// CategoryIDs maps category name to its store identifier, used to
	// scope joins to one category's attributes.
	CategoryIDs map[string]string
	// DirectValues maps a well-known direct field path to its distinct
	// values on the content records (e.g. the language field).
	DirectValues map[string][]string
}

// TaxonomyReader is the read-only taxonomy collaborator. Load must be
// idempotent.
type TaxonomyReader interface {
	Load(ctx context.Context, tenantID string) (Taxonomy, error)
}

// SynonymReader lists synonym entries applying to a tenant, including
// tenant-independent ones.
type SynonymReader interface {
	List(ctx context.Context, tenantID string) ([]synonym.Entry, error)
}
