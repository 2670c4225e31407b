package parse

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/kailas-cloud/contentiq/internal/domain/query"
	"github.com/kailas-cloud/contentiq/internal/domain/vocabulary"
)

// advisoryTriggers mark analytical, comparative, or strategic phrasing.
// Any hit classifies the query advisory regardless of matched filters: a
// query can ask "why are we so heavy on TOFU" and still match "TOFU"
// without being a retrieval request.
var advisoryTriggers = []string{
	"how many",
	"what is the best",
	"least",
	"most",
	"should",
	"why",
	"compare",
	"versus",
	"vs",
	"overused",
	"overly",
	"benefit",
	"suggest",
	"improve",
}

// retrievalVerbs mark direct retrieval intent.
var retrievalVerbs = []string{"show", "list", "find", "get", "give me", "display"}

var (
	countCues = []string{"how many", "count"}
	rankCues  = []string{"most", "least", "top", "rank", "highest", "lowest"}
	aggCues   = []string{"distribution", "breakdown", "per", "by category", "group"}
)

// aggregationFieldThreshold is the partial-match score a category name
// must reach against the query to become a group-by field.
const aggregationFieldThreshold = 80

// Classifier decides structured vs advisory and the plan operation.
// State-free.
type Classifier struct{}

// NewClassifier creates a query classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// Classify applies the decision rule in order: advisory trigger phrases
// always override; otherwise a query is structured only when it carries
// at least one filter and a retrieval verb; everything else is advisory.
func (c *Classifier) Classify(filters map[string][]string, raw string) query.Classification {
	text := NormalizeText(raw)

	for _, trigger := range advisoryTriggers {
		if containsPhrase(text, trigger) {
			return query.Advisory
		}
	}

	hasFilter := false
	for _, values := range filters {
		if len(values) > 0 {
			hasFilter = true
			break
		}
	}
	if hasFilter {
		for _, verb := range retrievalVerbs {
			if containsPhrase(text, verb) {
				return query.Structured
			}
		}
	}

	return query.Advisory
}

// Operation refines the classification into the plan shape: count beats
// rank beats aggregate; structured queries default to list.
func (c *Classifier) Operation(classification query.Classification, raw string) query.Operation {
	text := NormalizeText(raw)

	if classification == query.Structured {
		return query.OpList
	}
	for _, cue := range countCues {
		if containsPhrase(text, cue) {
			// "how many X per Y" still needs grouping.
			for _, agg := range aggCues {
				if containsPhrase(text, agg) {
					return query.OpAggregate
				}
			}
			return query.OpCount
		}
	}
	for _, cue := range rankCues {
		if containsPhrase(text, cue) {
			return query.OpRank
		}
	}
	for _, cue := range aggCues {
		if containsPhrase(text, cue) {
			return query.OpAggregate
		}
	}
	return query.OpCount
}

// AggregationFields returns the categories the query text mentions, for
// grouping aggregation results. Category names are matched loosely so
// "funnel stages" still selects "Funnel Stage".
func (c *Classifier) AggregationFields(raw string, vocab vocabulary.Vocabulary) []string {
	text := NormalizeText(raw)
	var out []string
	for _, cat := range vocab.Categories() {
		name := NormalizeText(cat.Name())
		if name == "" {
			continue
		}
		if fuzzy.PartialRatio(name, text) >= aggregationFieldThreshold {
			out = append(out, cat.Name())
		}
	}
	return out
}

func containsPhrase(normalizedText, phrase string) bool {
	return len(wholeWordOccurrences(normalizedText, phrase)) > 0
}
