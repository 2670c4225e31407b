package plan

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/contentiq/internal/domain"
	domplan "github.com/kailas-cloud/contentiq/internal/domain/plan"
	domschema "github.com/kailas-cloud/contentiq/internal/domain/schema"
	"github.com/kailas-cloud/contentiq/internal/domain/query"
	"github.com/kailas-cloud/contentiq/internal/metrics"
)

const (
	// publishedAtField is the date field temporal windows apply to.
	publishedAtField = "publishedAt"
	// gatedField is the boolean flag on content records.
	gatedField = "gated"
	// countAlias names the accumulator in group and count output.
	countAlias = "count"
)

// ascendingRankCues flip a ranking plan to ascending order.
var ascendingRankCues = []string{"least", "lowest", "bottom", "fewest"}

// Config bounds the shape of synthesized plans.
type Config struct {
	// ListLimit caps retrieval plans. Zero means unlimited.
	ListLimit int `yaml:"list_limit"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.ListLimit == 0 {
		c.ListLimit = 50
	}
}

// Synthesizer turns a parsed query into an executable plan. Stateless
// beyond its schema source; safe for concurrent use.
type Synthesizer struct {
	schema SchemaSource
	cfg    Config
	now    func() time.Time
}

// New creates a plan synthesizer.
func New(schema SchemaSource, cfg Config) *Synthesizer {
	cfg.ApplyDefaults()
	return &Synthesizer{schema: schema, cfg: cfg, now: time.Now}
}

// Synthesize builds the plan for one parsed query. The tenant scope is
// always the first stage, before any join or filter. Filter categories
// with no storage mapping fail with an UnresolvedCategoryError.
func (s *Synthesizer) Synthesize(ctx context.Context, tenantID string, parsed query.Parsed) (domplan.Plan, error) {
	if tenantID == "" {
		return domplan.Plan{}, domain.ErrTenantRequired
	}

	mapping, err := s.schema.FieldMapping(ctx, tenantID)
	if err != nil {
		metrics.PlanSynthesisTotal.WithLabelValues(string(parsed.Operation), "error").Inc()
		return domplan.Plan{}, fmt.Errorf("resolve field mapping: %w", err)
	}

	p := domplan.Plan{
		Collection: "contents",
		Stages:     []domplan.Stage{domplan.TenantScope{TenantID: tenantID}},
	}

	aggregation := parsed.Operation.IsAggregation()

	joins, direct, err := s.filterStages(ctx, tenantID, mapping, parsed.Filters, aggregation)
	if err != nil {
		metrics.PlanSynthesisTotal.WithLabelValues(string(parsed.Operation), "error").Inc()
		return domplan.Plan{}, err
	}
	p.Stages = append(p.Stages, joins...)

	direct = append(direct, s.constraintConditions(mapping, parsed.Constraints)...)
	if len(direct) > 0 {
		p.Stages = append(p.Stages, domplan.Filter{Conditions: direct})
	}

	if aggregation {
		groupJoins, err := s.aggregationJoins(ctx, tenantID, mapping, parsed, joins)
		if err != nil {
			metrics.PlanSynthesisTotal.WithLabelValues(string(parsed.Operation), "error").Inc()
			return domplan.Plan{}, err
		}
		p.Stages = append(p.Stages, groupJoins...)
	}

	switch parsed.Operation {
	case query.OpCount:
		p.Stages = append(p.Stages, domplan.Count{Alias: countAlias})
	case query.OpRank:
		keys := s.groupKeys(mapping, parsed)
		p.Stages = append(p.Stages,
			domplan.Group{Keys: keys, CountAlias: countAlias},
			domplan.Sort{Field: countAlias, Desc: !wantsAscending(parsed.RawText)},
			domplan.Limit{N: 1},
		)
	case query.OpAggregate:
		keys := s.groupKeys(mapping, parsed)
		p.Stages = append(p.Stages,
			domplan.Group{Keys: keys, CountAlias: countAlias},
			domplan.Sort{Field: countAlias, Desc: true},
		)
	case query.OpList:
		if s.cfg.ListLimit > 0 {
			p.Stages = append(p.Stages, domplan.Limit{N: s.cfg.ListLimit})
		}
	}

	metrics.PlanSynthesisTotal.WithLabelValues(string(parsed.Operation), "success").Inc()
	return p, nil
}

// filterStages maps each filter category to either a tenant-scoped join
// or a direct-field condition. Categories iterate in name order so the
// same query always yields the same plan.
func (s *Synthesizer) filterStages(
	ctx context.Context,
	tenantID string,
	mapping domschema.Mapping,
	filters map[string][]string,
	aggregation bool,
) ([]domplan.Stage, []domplan.Condition, error) {
	categories := make([]string, 0, len(filters))
	for category := range filters {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var joins []domplan.Stage
	var direct []domplan.Condition

	for _, category := range categories {
		values := filters[category]
		if len(values) == 0 {
			continue
		}

		fm, ok := mapping[category]
		if !ok {
			return nil, nil, domain.NewUnresolvedCategory(category)
		}

		if fm.RequiresJoin() {
			catID, err := s.schema.CategoryID(ctx, tenantID, category)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve category id for %q: %w", category, err)
			}
			join := domplan.Join{
				From:        fm.RefCollection(),
				LocalField:  fm.FieldPath(),
				LookupField: fm.LookupField(),
				CategoryID:  catID,
				As:          category,
			}
			if !aggregation {
				// Aggregations group over all referenced rows; only
				// retrieval plans push the value filter into the lookup.
				join.Values = values
			}
			joins = append(joins, join)
			continue
		}

		cond := domplan.Condition{Field: fm.FieldPath()}
		if len(values) == 1 {
			cond.Eq = values[0]
		} else {
			cond.In = values
		}
		direct = append(direct, cond)
	}

	return joins, direct, nil
}

// constraintConditions translates temporal, gated, and missing-category
// constraints into direct-field conditions.
func (s *Synthesizer) constraintConditions(mapping domschema.Mapping, c query.Constraints) []domplan.Condition {
	var out []domplan.Condition

	if c.Temporal != nil && !c.Temporal.IsZero() {
		start, end := c.Temporal.Bounds(s.now())
		cond := domplan.Condition{Field: publishedAtField}
		if !start.IsZero() {
			cond.Gte = start.UTC().Format(time.RFC3339)
		}
		if !end.IsZero() {
			cond.Lt = end.UTC().Format(time.RFC3339)
		}
		out = append(out, cond)
	}

	if c.Gated != nil {
		cond := domplan.Condition{Field: gatedField, Eq: "false"}
		if *c.Gated {
			cond.Eq = "true"
		}
		out = append(out, cond)
	}

	for _, category := range c.MissingCategories {
		absent := false
		field := category
		if fm, ok := mapping[category]; ok {
			field = fm.FieldPath()
			if fm.RequiresJoin() {
				// The executor checks for the absence of any attribute
				// reference of this category.
				field = fm.FieldPath() + "." + category
			}
		}
		out = append(out, domplan.Condition{Field: field, Exists: &absent})
	}

	return out
}

// aggregationJoins emits value-free joins for grouped categories that
// were not already joined by a filter.
func (s *Synthesizer) aggregationJoins(
	ctx context.Context,
	tenantID string,
	mapping domschema.Mapping,
	parsed query.Parsed,
	existing []domplan.Stage,
) ([]domplan.Stage, error) {
	joined := make(map[string]bool, len(existing))
	for _, st := range existing {
		if j, ok := st.(domplan.Join); ok {
			joined[j.CategoryID] = true
		}
	}

	var out []domplan.Stage
	for _, category := range parsed.AggregationFields {
		fm, ok := mapping[category]
		if !ok || !fm.RequiresJoin() {
			continue
		}
		catID, err := s.schema.CategoryID(ctx, tenantID, category)
		if err != nil {
			return nil, fmt.Errorf("resolve category id for %q: %w", category, err)
		}
		if joined[catID] {
			continue
		}
		out = append(out, domplan.Join{
			From:        fm.RefCollection(),
			LocalField:  fm.FieldPath(),
			LookupField: fm.LookupField(),
			CategoryID:  catID,
			As:          category,
		})
	}
	return out, nil
}

// groupKeys resolves the grouped categories to field paths. When the
// query names no category, the first filtered category grounds the
// grouping so ranking questions like "which topic do we use most" still
// produce a key.
func (s *Synthesizer) groupKeys(mapping domschema.Mapping, parsed query.Parsed) []string {
	categories := parsed.AggregationFields
	if len(categories) == 0 {
		filtered := make([]string, 0, len(parsed.Filters))
		for category := range parsed.Filters {
			filtered = append(filtered, category)
		}
		sort.Strings(filtered)
		categories = filtered
	}

	keys := make([]string, 0, len(categories))
	for _, category := range categories {
		if fm, ok := mapping[category]; ok && !fm.RequiresJoin() {
			keys = append(keys, fm.FieldPath())
			continue
		}
		// Joined categories group on the join's output alias, which is
		// the category name.
		keys = append(keys, category)
	}
	return keys
}

func wantsAscending(raw string) bool {
	text := strings.ToLower(raw)
	for _, cue := range ascendingRankCues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
