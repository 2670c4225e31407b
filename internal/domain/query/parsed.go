package query

// Constraints are the non-vocabulary restrictions extracted from a query.
type Constraints struct {
	// Temporal is the single recognized temporal constraint, if any.
	Temporal *Temporal
	// Gated is set when the query names gated/ungated content.
	Gated *bool
	// MissingCategories marks categories the query asks to be unassigned
	// ("no assigned funnel stage"). Only categories present in the tenant
	// vocabulary are recorded.
	MissingCategories []string
}

// IsEmpty reports whether no constraints were extracted.
func (c Constraints) IsEmpty() bool {
	return c.Temporal == nil && c.Gated == nil && len(c.MissingCategories) == 0
}

// Parsed is the immutable result of understanding one query. Filter
// values are always lists, deduplicated per category, and every value is
// guaranteed to exist in the tenant's vocabulary.
type Parsed struct {
	RawText        string
	Classification Classification
	Operation      Operation
	Filters        map[string][]string
	Constraints    Constraints
	QuotedEntities []string
	// AggregationFields are the categories an aggregation groups over.
	AggregationFields []string
	Confidence        float64
	// UsedFallback records whether the LLM extractor contributed filters.
	UsedFallback bool
}

// HasFilters reports whether at least one category has a non-empty value
// list.
func (p Parsed) HasFilters() bool {
	for _, values := range p.Filters {
		if len(values) > 0 {
			return true
		}
	}
	return false
}

// FilterCount returns the total number of matched (category, value) pairs.
func (p Parsed) FilterCount() int {
	n := 0
	for _, values := range p.Filters {
		n += len(values)
	}
	return n
}
