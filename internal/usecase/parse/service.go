package parse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/contentiq/internal/domain/query"
	"github.com/kailas-cloud/contentiq/internal/logger"
	"github.com/kailas-cloud/contentiq/internal/metrics"
)

// Service turns raw query text into a ParsedQuery: vocabulary matching,
// constraint extraction, classification, and the optional LLM fallback.
type Service struct {
	schema     SchemaResolver
	matcher    *Matcher
	extractor  *Extractor
	classifier *Classifier
	fallback   FallbackExtractor
}

// New creates a parse service. fallback may be nil; the deterministic
// path never depends on it.
func New(schema SchemaResolver, matcherCfg MatcherConfig, fallback FallbackExtractor) *Service {
	return &Service{
		schema:     schema,
		matcher:    NewMatcher(matcherCfg),
		extractor:  NewExtractor(),
		classifier: NewClassifier(),
		fallback:   fallback,
	}
}

// Parse understands one query for one tenant. useFallback opts into the
// LLM extractor when deterministic matching finds no filters at all.
// Only schema resolution errors propagate; extraction failures degrade
// to a query with less information.
func (s *Service) Parse(ctx context.Context, tenantID, text string, useFallback bool) (query.Parsed, error) {
	log := logger.FromContext(ctx)

	vocab, err := s.schema.Resolve(ctx, tenantID)
	if err != nil {
		return query.Parsed{}, fmt.Errorf("resolve vocabulary: %w", err)
	}
	synonyms, err := s.schema.Synonyms(ctx, tenantID)
	if err != nil {
		return query.Parsed{}, fmt.Errorf("resolve synonyms: %w", err)
	}

	nq := Normalize(text)
	quoted := ExtractQuoted(text)

	filters := s.matcher.Match(nq, quoted, vocab, synonyms)

	usedFallback := false
	if len(filters) == 0 && useFallback && s.fallback != nil {
		filters, usedFallback = s.runFallback(ctx, text, vocab.AsMap())
	}

	constraints, err := s.extractor.Extract(text, vocab)
	if err != nil {
		// Recoverable by contract: proceed without the temporal bound.
		log.Warn("temporal extraction failed, constraint omitted",
			zap.String("tenant_id", tenantID), zap.Error(err))
	}

	classification := s.classifier.Classify(filters, text)
	operation := s.classifier.Operation(classification, text)

	var aggFields []string
	if operation.IsAggregation() {
		aggFields = s.classifier.AggregationFields(text, vocab)
	}

	metrics.ParseRequestsTotal.WithLabelValues(string(classification)).Inc()

	return query.Parsed{
		RawText:           text,
		Classification:    classification,
		Operation:         operation,
		Filters:           filters,
		Constraints:       constraints,
		QuotedEntities:    quoted,
		AggregationFields: aggFields,
		UsedFallback:      usedFallback,
	}, nil
}

// runFallback calls the LLM extractor and enforces the closed-vocabulary
// invariant at the boundary: values absent from the enumeration are
// discarded before merging, and any failure degrades to no filters.
func (s *Service) runFallback(
	ctx context.Context, text string, enumeration map[string][]string,
) (map[string][]string, bool) {
	log := logger.FromContext(ctx)

	raw, err := s.fallback.Extract(ctx, text, enumeration)
	if err != nil {
		metrics.FallbackRequestsTotal.WithLabelValues("error").Inc()
		log.Warn("llm fallback failed, continuing without filters", zap.Error(err))
		return map[string][]string{}, false
	}

	filters := make(map[string][]string)
	for category, values := range raw {
		allowed, ok := enumeration[category]
		if !ok {
			continue
		}
		allowedSet := make(map[string]struct{}, len(allowed))
		for _, v := range allowed {
			allowedSet[v] = struct{}{}
		}
		for _, v := range values {
			if _, ok := allowedSet[v]; ok {
				filters[category] = append(filters[category], v)
			}
		}
	}

	metrics.FallbackRequestsTotal.WithLabelValues("success").Inc()
	return filters, len(filters) > 0
}
