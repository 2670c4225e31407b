package advise

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/contentiq/internal/domain/query"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_Weights(t *testing.T) {
	a := New()

	tests := []struct {
		name   string
		parsed query.Parsed
		want   float64
	}{
		{
			"no signal short query",
			query.Parsed{RawText: "show stuff"},
			0.2,
		},
		{
			"one filter",
			query.Parsed{
				RawText: "show me TOFU content",
				Filters: map[string][]string{"Funnel Stage": {"TOFU"}},
			},
			0.45,
		},
		{
			"filters capped at three",
			query.Parsed{
				RawText: "show TOFU AI security french gated things",
				Filters: map[string][]string{
					"A": {"1"}, "B": {"2"}, "C": {"3"}, "D": {"4"},
				},
			},
			0.95,
		},
		{
			"quoted entities capped at two",
			query.Parsed{
				RawText:        `find "a" and "b" and "c" today please`,
				QuotedEntities: []string{"a", "b", "c"},
			},
			0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Score(tt.parsed); !almostEqual(got, tt.want) {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_ConstraintBonus(t *testing.T) {
	a := New()

	after := query.NewAfter(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	parsed := query.Parsed{
		RawText:     "show TOFU content after 2025",
		Filters:     map[string][]string{"Funnel Stage": {"TOFU"}},
		Constraints: query.Constraints{Temporal: &after},
	}

	if got := a.Score(parsed); !almostEqual(got, 0.6) {
		t.Errorf("Score = %v, want 0.6", got)
	}
}

func TestScore_FallbackCap(t *testing.T) {
	a := New()

	parsed := query.Parsed{
		RawText:      "show early and late funnel content for all topics",
		Filters:      map[string][]string{"A": {"1"}, "B": {"2"}, "C": {"3"}},
		UsedFallback: true,
	}

	if got := a.Score(parsed); got > 0.6 {
		t.Errorf("fallback score = %v, want <= 0.6", got)
	}
}

func TestScore_ShortQueryCap(t *testing.T) {
	a := New()

	after := query.NewAfter(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	parsed := query.Parsed{
		RawText:     "after 2025",
		Constraints: query.Constraints{Temporal: &after},
	}

	if got := a.Score(parsed); got > 0.3 {
		t.Errorf("short filterless query score = %v, want <= 0.3", got)
	}
}

func TestScore_NeverAboveOne(t *testing.T) {
	a := New()

	gated := true
	parsed := query.Parsed{
		RawText:        "show gated TOFU whitepapers about ai tools in french from q3",
		Filters:        map[string][]string{"A": {"1"}, "B": {"2"}, "C": {"3"}},
		QuotedEntities: []string{"x", "y"},
		Constraints:    query.Constraints{Gated: &gated},
	}

	if got := a.Score(parsed); got > 1.0 {
		t.Errorf("Score = %v, want <= 1.0", got)
	}
}

func TestSuggest_VagueRecency(t *testing.T) {
	a := New()

	got := a.Suggest(query.Parsed{
		RawText:        "show recent TOFU content",
		Classification: query.Structured,
		Filters:        map[string][]string{"Funnel Stage": {"TOFU"}},
	})

	if len(got) != 1 || !strings.Contains(got[0], "time range") {
		t.Errorf("suggestions = %v, want a time-range hint", got)
	}
}

func TestSuggest_NoFiltersStructured(t *testing.T) {
	a := New()

	got := a.Suggest(query.Parsed{
		RawText:        "show me things",
		Classification: query.Structured,
	})

	if len(got) != 1 || !strings.Contains(got[0], "No categories matched") {
		t.Errorf("suggestions = %v", got)
	}
}

func TestSuggest_Quiet(t *testing.T) {
	a := New()

	got := a.Suggest(query.Parsed{
		RawText:        "show me TOFU content from Q3 2024",
		Classification: query.Structured,
		Filters:        map[string][]string{"Funnel Stage": {"TOFU"}},
	})

	if len(got) != 0 {
		t.Errorf("well-specified query should get no suggestions, got %v", got)
	}
}

func TestRespond_NoResults(t *testing.T) {
	a := New()

	adv := a.Respond(query.Parsed{
		Filters: map[string][]string{"Funnel Stage": {"TOFU"}},
	}, 0)

	if adv.Text != "No content found matching your query: Funnel Stage: TOFU." {
		t.Errorf("text = %q", adv.Text)
	}
	if !reflect.DeepEqual(adv.FollowUpActions, []string{"broaden_search", "try_different_filters"}) {
		t.Errorf("follow-ups = %v", adv.FollowUpActions)
	}
	if adv.HasResults || adv.Count != 0 {
		t.Errorf("metadata = %+v", adv)
	}
}

func TestRespond_SingleResult(t *testing.T) {
	a := New()

	adv := a.Respond(query.Parsed{
		Filters: map[string][]string{"Funnel Stage": {"TOFU"}},
	}, 1)

	if adv.Text != "Found 1 piece of content matching: Funnel Stage: TOFU." {
		t.Errorf("text = %q", adv.Text)
	}
	if !reflect.DeepEqual(adv.FollowUpActions, []string{"view_details", "find_similar"}) {
		t.Errorf("follow-ups = %v", adv.FollowUpActions)
	}
}

func TestRespond_ManyResults(t *testing.T) {
	a := New()

	adv := a.Respond(query.Parsed{
		Filters: map[string][]string{
			"Funnel Stage": {"TOFU", "MOFU"},
			"Topic":        {"AI Tools"},
		},
	}, 7)

	if adv.Text != "Found 7 pieces of content matching: Funnel Stage: TOFU, MOFU; Topic: AI Tools." {
		t.Errorf("text = %q", adv.Text)
	}
	if !reflect.DeepEqual(adv.FollowUpActions, []string{"view_list", "refine_filters", "sort_results"}) {
		t.Errorf("follow-ups = %v", adv.FollowUpActions)
	}
	if !adv.HasResults || adv.Count != 7 {
		t.Errorf("metadata = %+v", adv)
	}
}

func TestRespond_NoFilters(t *testing.T) {
	a := New()

	adv := a.Respond(query.Parsed{}, 3)

	if adv.FiltersApplied != "all content" {
		t.Errorf("filters summary = %q, want all content", adv.FiltersApplied)
	}
}
