package answer

import (
	"context"

	"github.com/kailas-cloud/contentiq/internal/domain/plan"
	"github.com/kailas-cloud/contentiq/internal/domain/query"
)

// Parser turns raw text into a parsed query for one tenant.
type Parser interface {
	Parse(ctx context.Context, tenantID, text string, useFallback bool) (query.Parsed, error)
}

// Synthesizer builds an executable plan from a parsed query.
type Synthesizer interface {
	Synthesize(ctx context.Context, tenantID string, parsed query.Parsed) (plan.Plan, error)
}

// Executor runs a plan against the document store.
type Executor interface {
	Execute(ctx context.Context, p plan.Plan) (plan.Result, error)
}
