package chi

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/contentiq/internal/domain/plan"
	"github.com/kailas-cloud/contentiq/internal/domain/query"
	"github.com/kailas-cloud/contentiq/internal/usecase/advise"
	"github.com/kailas-cloud/contentiq/internal/usecase/answer"
	"github.com/kailas-cloud/contentiq/internal/usecase/ingest"
)

// errorCode is the machine-readable error class in error responses.
type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeValidationFailed   errorCode = "validation_failed"
	codeNotFound           errorCode = "not_found"
	codeTenantRequired     errorCode = "tenant_required"
	codeSchemaUnavailable  errorCode = "schema_unavailable"
	codeUnresolvedCategory errorCode = "unresolved_category"
	codeExtractionFailed   errorCode = "extraction_provider_error"
	codeInternalError      errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type queryRequest struct {
	Query       string `json:"query"`
	UseFallback bool   `json:"use_fallback,omitempty"`
}

type parsedQueryDTO struct {
	Classification    string              `json:"classification"`
	Operation         string              `json:"operation"`
	Filters           map[string][]string `json:"filters"`
	QuotedEntities    []string            `json:"quoted_entities,omitempty"`
	AggregationFields []string            `json:"aggregation_fields,omitempty"`
	Temporal          *temporalDTO        `json:"temporal,omitempty"`
	Gated             *bool               `json:"gated,omitempty"`
	MissingCategories []string            `json:"missing_categories,omitempty"`
	Confidence        float64             `json:"confidence"`
	UsedFallback      bool                `json:"used_fallback,omitempty"`
}

type temporalDTO struct {
	Kind      string `json:"kind"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Count     int    `json:"count,omitempty"`
	Direction int    `json:"direction,omitempty"`
	Year      int    `json:"year,omitempty"`
	Quarter   int    `json:"quarter,omitempty"`
}

type stageDTO struct {
	Type       string            `json:"type"`
	TenantID   string            `json:"tenant_id,omitempty"`
	From       string            `json:"from,omitempty"`
	LocalField string            `json:"local_field,omitempty"`
	Lookup     string            `json:"lookup_field,omitempty"`
	Values     []string          `json:"values,omitempty"`
	CategoryID string            `json:"category_id,omitempty"`
	As         string            `json:"as,omitempty"`
	Conditions []conditionDTO    `json:"conditions,omitempty"`
	Keys       []string          `json:"keys,omitempty"`
	Alias      string            `json:"alias,omitempty"`
	Field      string            `json:"field,omitempty"`
	Desc       bool              `json:"desc,omitempty"`
	N          int               `json:"n,omitempty"`
}

type conditionDTO struct {
	Field  string   `json:"field"`
	Eq     string   `json:"eq,omitempty"`
	In     []string `json:"in,omitempty"`
	Exists *bool    `json:"exists,omitempty"`
	Gte    string   `json:"gte,omitempty"`
	Lt     string   `json:"lt,omitempty"`
}

type planDTO struct {
	Collection string     `json:"collection"`
	Stages     []stageDTO `json:"stages"`
}

type queryResponse struct {
	OriginalQuery string           `json:"original_query"`
	Parsed        parsedQueryDTO   `json:"parsed_query"`
	Plan          planDTO          `json:"plan"`
	Result        plan.Result      `json:"result"`
	Advisory      *advise.Advisory `json:"advisory,omitempty"`
	Suggestions   []string         `json:"suggestions,omitempty"`
}

type parseResponse struct {
	OriginalQuery string         `json:"original_query"`
	Parsed        parsedQueryDTO `json:"parsed_query"`
	Plan          planDTO        `json:"plan"`
	Suggestions   []string       `json:"suggestions,omitempty"`
}

type contentRequest struct {
	Title        string   `json:"title"`
	URL          string   `json:"url,omitempty"`
	Language     string   `json:"language,omitempty"`
	Gated        bool     `json:"gated,omitempty"`
	PublishedAt  string   `json:"published_at,omitempty"`
	AttributeIDs []string `json:"category_attributes,omitempty"`
}

func parsedToDTO(p query.Parsed) parsedQueryDTO {
	dto := parsedQueryDTO{
		Classification:    string(p.Classification),
		Operation:         string(p.Operation),
		Filters:           p.Filters,
		QuotedEntities:    p.QuotedEntities,
		AggregationFields: p.AggregationFields,
		Gated:             p.Constraints.Gated,
		MissingCategories: p.Constraints.MissingCategories,
		Confidence:        p.Confidence,
		UsedFallback:      p.UsedFallback,
	}
	if dto.Filters == nil {
		dto.Filters = map[string][]string{}
	}
	if t := p.Constraints.Temporal; t != nil && !t.IsZero() {
		dto.Temporal = temporalToDTO(*t)
	}
	return dto
}

func temporalToDTO(t query.Temporal) *temporalDTO {
	dto := &temporalDTO{Kind: string(t.Kind())}
	switch t.Kind() {
	case query.Before:
		dto.End = t.End().Format(time.DateOnly)
	case query.After:
		dto.Start = t.Start().Format(time.DateOnly)
	case query.Between:
		dto.Start = t.Start().Format(time.DateOnly)
		dto.End = t.End().Format(time.DateOnly)
	case query.Relative:
		dto.Unit = string(t.Unit())
		dto.Count = t.Count()
		dto.Direction = int(t.Direction())
	case query.InQuarter:
		dto.Year = t.Year()
		dto.Quarter = t.Quarter()
	}
	return dto
}

func planToDTO(p plan.Plan) planDTO {
	dto := planDTO{Collection: p.Collection, Stages: make([]stageDTO, 0, len(p.Stages))}
	for _, stage := range p.Stages {
		dto.Stages = append(dto.Stages, stageToDTO(stage))
	}
	return dto
}

func stageToDTO(stage plan.Stage) stageDTO {
	switch st := stage.(type) {
	case plan.TenantScope:
		return stageDTO{Type: "tenant_scope", TenantID: st.TenantID}
	case plan.Join:
		return stageDTO{
			Type: "join", From: st.From, LocalField: st.LocalField,
			Lookup: st.LookupField, Values: st.Values, CategoryID: st.CategoryID, As: st.As,
		}
	case plan.Filter:
		conds := make([]conditionDTO, len(st.Conditions))
		for i, c := range st.Conditions {
			conds[i] = conditionDTO{Field: c.Field, Eq: c.Eq, In: c.In, Exists: c.Exists, Gte: c.Gte, Lt: c.Lt}
		}
		return stageDTO{Type: "filter", Conditions: conds}
	case plan.Group:
		return stageDTO{Type: "group", Keys: st.Keys, Alias: st.CountAlias}
	case plan.Sort:
		return stageDTO{Type: "sort", Field: st.Field, Desc: st.Desc}
	case plan.Limit:
		return stageDTO{Type: "limit", N: st.N}
	case plan.Count:
		return stageDTO{Type: "count", Alias: st.Alias}
	}
	return stageDTO{Type: "unknown"}
}

func answerToResponse(resp answer.Response) queryResponse {
	return queryResponse{
		OriginalQuery: resp.OriginalQuery,
		Parsed:        parsedToDTO(resp.Parsed),
		Plan:          planToDTO(resp.Plan),
		Result:        resp.Result,
		Advisory:      resp.Advisory,
		Suggestions:   resp.Suggestions,
	}
}

func recordFromRequest(id string, req contentRequest) (ingest.Record, error) {
	rec := ingest.Record{
		ID:           id,
		Title:        req.Title,
		URL:          req.URL,
		Language:     req.Language,
		Gated:        req.Gated,
		AttributeIDs: req.AttributeIDs,
	}
	if req.PublishedAt != "" {
		ts, err := time.Parse(time.RFC3339, req.PublishedAt)
		if err != nil {
			return ingest.Record{}, fmt.Errorf("published_at must be RFC 3339: %w", err)
		}
		rec.PublishedAt = ts
	}
	return rec, nil
}
