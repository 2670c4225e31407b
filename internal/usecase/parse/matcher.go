package parse

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/kailas-cloud/contentiq/internal/domain/synonym"
	"github.com/kailas-cloud/contentiq/internal/domain/vocabulary"
)

// MatcherConfig holds the matching cascade thresholds.
type MatcherConfig struct {
	// FuzzyThreshold is the 0-100 similarity a token must score against
	// an allowed value in the fuzzy tier.
	FuzzyThreshold int
	// MinFuzzyTokenLen excludes short tokens from fuzzy matching; they
	// collide with too many values to be useful.
	MinFuzzyTokenLen int
	// SynonymMinConfidence is the global floor a synonym's stated
	// confidence must reach before its mapped value is considered.
	SynonymMinConfidence float64
}

// ApplyDefaults fills zero fields with default thresholds.
func (c *MatcherConfig) ApplyDefaults() {
	if c.FuzzyThreshold <= 0 {
		c.FuzzyThreshold = 85
	}
	if c.MinFuzzyTokenLen <= 0 {
		c.MinFuzzyTokenLen = 3
	}
	if c.SynonymMinConfidence <= 0 {
		c.SynonymMinConfidence = 0.7
	}
}

// Matcher maps normalized query text onto a tenant's closed vocabulary
// through a quoted -> exact -> lemma -> synonym -> fuzzy cascade. It never
// emits a value absent from the vocabulary.
type Matcher struct {
	cfg MatcherConfig
}

// NewMatcher creates a Matcher.
func NewMatcher(cfg MatcherConfig) *Matcher {
	cfg.ApplyDefaults()
	return &Matcher{cfg: cfg}
}

// matchSet accumulates per-category values, deduplicated, insertion order
// kept.
type matchSet struct {
	values map[string][]string
	seen   map[string]map[string]struct{}
}

func newMatchSet() *matchSet {
	return &matchSet{
		values: make(map[string][]string),
		seen:   make(map[string]map[string]struct{}),
	}
}

func (s *matchSet) add(category, value string) {
	if s.seen[category] == nil {
		s.seen[category] = make(map[string]struct{})
	}
	if _, ok := s.seen[category][value]; ok {
		return
	}
	s.seen[category][value] = struct{}{}
	s.values[category] = append(s.values[category], value)
}

// Match runs the full cascade and returns matched values per category.
// quoted are the verbatim quoted substrings from the raw query text.
func (m *Matcher) Match(
	nq Normalized, quoted []string,
	vocab vocabulary.Vocabulary, synonyms []synonym.Entry,
) map[string][]string {
	matches := newMatchSet()

	m.matchQuoted(matches, quoted, vocab)
	m.matchExact(matches, nq, vocab)
	m.matchLemmas(matches, nq, vocab)
	m.matchSynonyms(matches, nq, vocab, synonyms)
	m.matchFuzzy(matches, nq, vocab)

	suppressNested(matches, nq)
	m.expandNegations(matches, nq, vocab)

	return matches.values
}

// suppressNested drops a matched value when every occurrence of it in
// the query lies inside an occurrence of a longer matched value of the
// same category, so "Blog Post" beats "Blog" regardless of which tier
// matched each. Values with no literal occurrence (fuzzy or synonym
// matches) are kept.
func suppressNested(out *matchSet, nq Normalized) {
	for category, values := range out.values {
		if len(values) < 2 {
			continue
		}
		norms := make([]string, len(values))
		for i, v := range values {
			norms[i] = NormalizeText(v)
		}

		kept := make([]string, 0, len(values))
		for i, v := range values {
			occs := wholeWordOccurrences(nq.Text, norms[i])
			if len(occs) == 0 {
				kept = append(kept, v)
				continue
			}
			covered := true
			for _, occ := range occs {
				inside := false
				for j := range values {
					if len(norms[j]) <= len(norms[i]) {
						continue
					}
					for _, outer := range wholeWordOccurrences(nq.Text, norms[j]) {
						if occ.start >= outer.start && occ.end <= outer.end {
							inside = true
							break
						}
					}
					if inside {
						break
					}
				}
				if !inside {
					covered = false
					break
				}
			}
			if !covered {
				kept = append(kept, v)
			}
		}

		if len(kept) != len(values) {
			out.values[category] = kept
			out.seen[category] = make(map[string]struct{}, len(kept))
			for _, v := range kept {
				out.seen[category][v] = struct{}{}
			}
		}
	}
}

// matchQuoted accepts any quoted substring equal (case-insensitive) to an
// allowed value, unconditionally.
func (m *Matcher) matchQuoted(out *matchSet, quoted []string, vocab vocabulary.Vocabulary) {
	for _, entity := range quoted {
		for _, cat := range vocab.Categories() {
			for _, value := range cat.Values() {
				if strings.EqualFold(entity, value) {
					out.add(cat.Name(), value)
				}
			}
		}
	}
}

// matchExact finds allowed values whose normalized form occurs as a
// whole-word substring of the normalized query. Values are tried longest
// first and a shorter value is skipped when its only occurrences lie
// inside a span already claimed by a longer one, so "Blog Post" beats
// "Blog" when both would match the same words.
func (m *Matcher) matchExact(out *matchSet, nq Normalized, vocab vocabulary.Vocabulary) {
	for _, cat := range vocab.Categories() {
		type candidate struct {
			value string
			norm  string
		}
		candidates := make([]candidate, 0, len(cat.Values()))
		for _, v := range cat.Values() {
			if n := NormalizeText(v); n != "" {
				candidates = append(candidates, candidate{value: v, norm: n})
			}
		}
		// Longest normalized form first, so "Blog Post" claims its span
		// before "Blog" is considered.
		sort.SliceStable(candidates, func(i, j int) bool {
			return len(candidates[i].norm) > len(candidates[j].norm)
		})

		type span struct{ start, end int }
		var claimed []span

		for _, c := range candidates {
			var occupied []span
			matched := false
			for _, occ := range wholeWordOccurrences(nq.Text, c.norm) {
				inside := false
				for _, cl := range claimed {
					if occ.start >= cl.start && occ.end <= cl.end {
						inside = true
						break
					}
				}
				occupied = append(occupied, span{occ.start, occ.end})
				if !inside {
					matched = true
				}
			}
			if matched {
				out.add(cat.Name(), c.value)
				claimed = append(claimed, occupied...)
			}
		}
	}
}

type occurrence struct{ start, end int }

// wholeWordOccurrences finds every occurrence of needle in haystack that
// is bounded by whitespace or string edges. Both inputs are normalized,
// so a byte comparison is enough.
func wholeWordOccurrences(haystack, needle string) []occurrence {
	if needle == "" {
		return nil
	}
	var out []occurrence
	for from := 0; from < len(haystack); {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(needle)
		leftOK := start == 0 || haystack[start-1] == ' '
		rightOK := end == len(haystack) || haystack[end] == ' '
		if leftOK && rightOK {
			out = append(out, occurrence{start: start, end: end})
		}
		from = start + 1
	}
	return out
}

// matchLemmas matches a token's lemma against single-word values.
func (m *Matcher) matchLemmas(out *matchSet, nq Normalized, vocab vocabulary.Vocabulary) {
	for _, cat := range vocab.Categories() {
		for _, value := range cat.Values() {
			n := NormalizeText(value)
			if n == "" || strings.Contains(n, " ") {
				continue
			}
			for _, lemma := range nq.Lemmas {
				if lemma == n {
					out.add(cat.Name(), value)
					break
				}
			}
		}
	}
}

// matchSynonyms emits a synonym's mapped value when the phrase scores at
// or above its threshold against the query, the stated confidence clears
// the global floor, and the value exists in the tenant vocabulary. An
// unresolved synonym is dropped silently, never invented.
func (m *Matcher) matchSynonyms(
	out *matchSet, nq Normalized,
	vocab vocabulary.Vocabulary, synonyms []synonym.Entry,
) {
	for _, entry := range synonyms {
		if entry.TenantID() != "" && entry.TenantID() != vocab.TenantID() {
			continue
		}
		if entry.Confidence() < m.cfg.SynonymMinConfidence {
			continue
		}
		phrase := NormalizeText(entry.Phrase())
		if phrase == "" {
			continue
		}
		if fuzzy.PartialRatio(phrase, nq.Text) < entry.Threshold() {
			continue
		}
		if vocab.Contains(entry.Category(), entry.Value()) {
			out.add(entry.Category(), entry.Value())
		}
	}
}

// matchFuzzy scores each token against each single-word allowed value,
// accepting matches at or above the threshold. Tokens shorter than the
// configured minimum are skipped, and multi-word values are left to the
// exact and synonym tiers; a lone token scores deceptively well against
// one word of a longer value.
func (m *Matcher) matchFuzzy(out *matchSet, nq Normalized, vocab vocabulary.Vocabulary) {
	for _, tok := range nq.Tokens {
		if len([]rune(tok)) < m.cfg.MinFuzzyTokenLen {
			continue
		}
		for _, cat := range vocab.Categories() {
			for _, value := range cat.Values() {
				n := NormalizeText(value)
				if n == "" || strings.Contains(n, " ") {
					continue
				}
				if fuzzy.WRatio(tok, n) >= m.cfg.FuzzyThreshold {
					out.add(cat.Name(), value)
				}
			}
		}
	}
}

// negationPrefixes introduce an all-except-named-value expansion:
// "non English" selects every other Language value.
var negationPrefixes = []string{"non", "not", "except"}

// expandNegations replaces a matched value with the rest of its category
// when the query negates it.
func (m *Matcher) expandNegations(out *matchSet, nq Normalized, vocab vocabulary.Vocabulary) {
	for category, matched := range out.values {
		cat, ok := vocab.Category(category)
		if !ok {
			continue
		}
		negated := make(map[string]struct{})
		for _, value := range matched {
			n := NormalizeText(value)
			for _, prefix := range negationPrefixes {
				if len(wholeWordOccurrences(nq.Text, prefix+" "+n)) > 0 {
					negated[value] = struct{}{}
					break
				}
			}
		}
		if len(negated) == 0 {
			continue
		}

		expanded := make([]string, 0, len(cat.Values()))
		for _, v := range cat.Values() {
			if _, isNegated := negated[v]; !isNegated {
				expanded = append(expanded, v)
			}
		}
		out.values[category] = expanded
		out.seen[category] = make(map[string]struct{}, len(expanded))
		for _, v := range expanded {
			out.seen[category][v] = struct{}{}
		}
	}
}
