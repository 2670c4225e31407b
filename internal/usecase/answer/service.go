package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/contentiq/internal/domain"
	"github.com/kailas-cloud/contentiq/internal/domain/plan"
	"github.com/kailas-cloud/contentiq/internal/domain/query"
	"github.com/kailas-cloud/contentiq/internal/metrics"
	"github.com/kailas-cloud/contentiq/internal/usecase/advise"
)

// Response is the full outcome of answering one query: the parsed
// understanding, the executed plan, its result, and the best-effort
// advisory layer.
type Response struct {
	OriginalQuery string
	Parsed        query.Parsed
	Plan          plan.Plan
	Result        plan.Result
	Advisory      *advise.Advisory
	Suggestions   []string
}

// Service is the end-to-end query path: parse, synthesize, execute,
// advise.
type Service struct {
	parser      Parser
	synthesizer Synthesizer
	executor    Executor
	advisor     *advise.Advisor
}

// New creates an answer service.
func New(parser Parser, synthesizer Synthesizer, executor Executor) *Service {
	return &Service{
		parser:      parser,
		synthesizer: synthesizer,
		executor:    executor,
		advisor:     advise.New(),
	}
}

// Answer understands and executes one query for one tenant. The advisor
// output is best-effort; only parse, synthesis, and execution failures
// propagate.
func (s *Service) Answer(ctx context.Context, tenantID, text string, useFallback bool) (Response, error) {
	if tenantID == "" {
		return Response{}, domain.ErrTenantRequired
	}
	start := time.Now()

	parsed, err := s.parser.Parse(ctx, tenantID, text, useFallback)
	if err != nil {
		return Response{}, fmt.Errorf("parse query: %w", err)
	}
	parsed.Confidence = s.advisor.Score(parsed)

	p, err := s.synthesizer.Synthesize(ctx, tenantID, parsed)
	if err != nil {
		return Response{}, fmt.Errorf("synthesize plan: %w", err)
	}

	result, err := s.executor.Execute(ctx, p)
	if err != nil {
		return Response{}, fmt.Errorf("execute plan: %w", err)
	}

	resp := Response{
		OriginalQuery: text,
		Parsed:        parsed,
		Plan:          p,
		Result:        result,
		Suggestions:   s.advisor.Suggest(parsed),
	}
	if parsed.Classification == query.Advisory {
		advisory := s.advisor.Respond(parsed, result.Count)
		resp.Advisory = &advisory
	}

	metrics.QueryDuration.
		WithLabelValues(string(parsed.Classification), string(parsed.Operation)).
		Observe(time.Since(start).Seconds())

	return resp, nil
}

// Parse exposes the understanding step alone, without execution.
func (s *Service) Parse(ctx context.Context, tenantID, text string, useFallback bool) (query.Parsed, plan.Plan, []string, error) {
	if tenantID == "" {
		return query.Parsed{}, plan.Plan{}, nil, domain.ErrTenantRequired
	}

	parsed, err := s.parser.Parse(ctx, tenantID, text, useFallback)
	if err != nil {
		return query.Parsed{}, plan.Plan{}, nil, fmt.Errorf("parse query: %w", err)
	}
	parsed.Confidence = s.advisor.Score(parsed)

	p, err := s.synthesizer.Synthesize(ctx, tenantID, parsed)
	if err != nil {
		return query.Parsed{}, plan.Plan{}, nil, fmt.Errorf("synthesize plan: %w", err)
	}

	return parsed, p, s.advisor.Suggest(parsed), nil
}
