package parse

import (
	"context"

	"github.com/kailas-cloud/contentiq/internal/domain/synonym"
	"github.com/kailas-cloud/contentiq/internal/domain/vocabulary"
)

// SchemaResolver provides the cached tenant vocabulary and synonyms.
type SchemaResolver interface {
	Resolve(ctx context.Context, tenantID string) (vocabulary.Vocabulary, error)
	Synonyms(ctx context.Context, tenantID string) ([]synonym.Entry, error)
}

// FallbackExtractor extracts filters from free text when deterministic
// matching finds nothing. The enumeration is the tenant's closed
// vocabulary; implementations must only return values drawn from it, and
// the caller discards anything else regardless.
type FallbackExtractor interface {
	Extract(ctx context.Context, text string, enumeration map[string][]string) (map[string][]string, error)
}
