package advise

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/contentiq/internal/domain/query"
)

// Confidence weights. Filters dominate: a query that matched vocabulary
// is understood far better than one that merely quoted something.
const (
	filterWeight     = 0.25
	quotedWeight     = 0.1
	constraintWeight = 0.15
	baseConfidence   = 0.2
	shortQueryTokens = 3
)

// vagueRecencyCues are phrases that imply a time bound without giving
// one.
var vagueRecencyCues = []string{"recent", "recently", "lately", "new "}

// Advisor scores extraction completeness and proposes refinement hints.
// Pure and stateless; a caller may drop its output without affecting the
// query result.
type Advisor struct{}

// New creates an advisor.
func New() *Advisor { return &Advisor{} }

// Score produces a [0,1] confidence for a parsed query. More matched
// filters, quoted entities, and recognized constraints raise it; an
// LLM-fallback extraction caps it.
func (a *Advisor) Score(parsed query.Parsed) float64 {
	score := baseConfidence

	score += filterWeight * float64(min(parsed.FilterCount(), 3))
	score += quotedWeight * float64(min(len(parsed.QuotedEntities), 2))
	if !parsed.Constraints.IsEmpty() {
		score += constraintWeight
	}

	if parsed.UsedFallback {
		score = min(score, 0.6)
	}
	if len(strings.Fields(parsed.RawText)) <= shortQueryTokens && parsed.FilterCount() == 0 {
		score = min(score, 0.3)
	}

	return min(score, 1.0)
}

// Suggest returns human-readable refinement hints for the query.
func (a *Advisor) Suggest(parsed query.Parsed) []string {
	var out []string
	text := strings.ToLower(parsed.RawText)

	if parsed.FilterCount() == 0 && parsed.Classification == query.Structured {
		out = append(out, "No categories matched; try naming a category value directly or quoting it.")
	}

	hasTemporal := parsed.Constraints.Temporal != nil && !parsed.Constraints.Temporal.IsZero()
	if !hasTemporal {
		for _, cue := range vagueRecencyCues {
			if strings.Contains(text, cue) {
				out = append(out, "Add an explicit time range, for example \"in the last 3 months\".")
				break
			}
		}
	}

	if len(parsed.Constraints.MissingCategories) > 0 && parsed.FilterCount() > 0 {
		out = append(out, "Mixing value filters with a missing-category check narrows results sharply; consider splitting the query.")
	}

	return out
}

// Advisory is the human-readable response for advisory-classified
// queries.
type Advisory struct {
	Text            string   `json:"advisory_text"`
	FollowUpActions []string `json:"follow_up_actions"`
	Count           int64    `json:"count"`
	FiltersApplied  string   `json:"filters_applied"`
	HasResults      bool     `json:"has_results"`
}

// Respond builds the advisory text and follow-up actions from the
// matched filters and the executed count.
func (a *Advisor) Respond(parsed query.Parsed, count int64) Advisory {
	summary := summarizeFilters(parsed.Filters)

	var text string
	var followUp []string
	switch {
	case count == 0:
		text = fmt.Sprintf("No content found matching your query: %s.", summary)
		followUp = []string{"broaden_search", "try_different_filters"}
	case count == 1:
		text = fmt.Sprintf("Found 1 piece of content matching: %s.", summary)
		followUp = []string{"view_details", "find_similar"}
	default:
		text = fmt.Sprintf("Found %d pieces of content matching: %s.", count, summary)
		followUp = []string{"view_list", "refine_filters", "sort_results"}
	}

	return Advisory{
		Text:            text,
		FollowUpActions: followUp,
		Count:           count,
		FiltersApplied:  summary,
		HasResults:      count > 0,
	}
}

func summarizeFilters(filters map[string][]string) string {
	categories := make([]string, 0, len(filters))
	for category, values := range filters {
		if len(values) > 0 {
			categories = append(categories, category)
		}
	}
	if len(categories) == 0 {
		return "all content"
	}
	sort.Strings(categories)

	parts := make([]string, 0, len(categories))
	for _, category := range categories {
		parts = append(parts, fmt.Sprintf("%s: %s", category, strings.Join(filters[category], ", ")))
	}
	return strings.Join(parts, "; ")
}
