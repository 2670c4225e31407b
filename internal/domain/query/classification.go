package query

import "fmt"

// Classification is the coarse intent of a parsed query.
type Classification string

const (
	// Structured queries resolve purely by applying filters and
	// constraints to stored content.
	Structured Classification = "structured"
	// Advisory queries need aggregation, ranking, or narrative
	// interpretation beyond direct filtering.
	Advisory Classification = "advisory"
)

// ParseClassification validates a classification string.
func ParseClassification(s string) (Classification, error) {
	switch Classification(s) {
	case Structured, Advisory:
		return Classification(s), nil
	default:
		return "", fmt.Errorf("invalid classification: %q", s)
	}
}

// Operation refines the classification into the shape of plan the query
// needs.
type Operation string

const (
	// OpList retrieves matching documents.
	OpList Operation = "list"
	// OpAggregate groups and counts by one or more categories.
	OpAggregate Operation = "aggregate"
	// OpRank is an aggregate that keeps only the top group.
	OpRank Operation = "rank"
	// OpCount counts matching documents without grouping.
	OpCount Operation = "count"
)

// IsAggregation reports whether the operation needs a group stage.
func (o Operation) IsAggregation() bool {
	return o == OpAggregate || o == OpRank
}
