package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/contentiq/internal/domain"
	"github.com/kailas-cloud/contentiq/internal/domain/query"
	"github.com/kailas-cloud/contentiq/internal/domain/vocabulary"
)

// dateChunk matches the absolute date forms the parser cascade accepts:
// ISO, slash-delimited, month-name forms, and a bare year.
const dateChunk = `(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}/\d{1,2}/\d{4}|\d{4}/\d{1,2}/\d{1,2}|` +
	`[A-Za-z]+ \d{1,2}(?:st|nd|rd|th)?,? \d{4}|[A-Za-z]+ \d{4}|\d{4})`

var (
	rangeRe    = regexp.MustCompile(`(?i)\b(?:between\s+` + dateChunk + `\s+and|from\s+` + dateChunk + `\s+(?:to|until))\s+` + dateChunk)
	boundaryRe = regexp.MustCompile(`(?i)\b(before|after|since)\s+` + dateChunk)
	relativeRe = regexp.MustCompile(`(?i)\b(?:last|past)\s+(\d+)\s+(day|week|month|year)s?\b`)
	namedRe    = regexp.MustCompile(`(?i)\b(today|yesterday|tomorrow|(?:this|last)\s+(?:week|month|year))\b`)
	quarterRe  = regexp.MustCompile(`(?i)\bq([1-4])\s*(?:of\s+)?(\d{4})\b`)

	ordinalRe = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\b`)
)

// dateLayouts is the absolute-date parsing cascade, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"January 2006",
	"Jan 2006",
}

// Extractor recognizes temporal and boolean/missing-value constraints in
// raw query text. Unrecognized temporal text yields no constraint rather
// than an error; recognized-but-unparseable text yields
// ErrMalformedTemporalExpression alongside the remaining constraints.
type Extractor struct{}

// NewExtractor creates a constraint extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract pulls constraints out of raw query text. The vocabulary scopes
// missing-category markers to categories the tenant actually defines.
// The returned error is always recoverable: the constraints value is
// usable regardless.
func (e *Extractor) Extract(raw string, vocab vocabulary.Vocabulary) (query.Constraints, error) {
	var out query.Constraints

	temporal, err := e.extractTemporal(raw)
	if temporal != nil {
		out.Temporal = temporal
	}

	out.Gated = extractGated(raw)
	out.MissingCategories = extractMissing(raw, vocab)

	return out, err
}

// extractTemporal applies pattern priority range > before/after >
// relative > quarter; the first recognized expression wins and the rest
// of the text is not consulted.
func (e *Extractor) extractTemporal(raw string) (*query.Temporal, error) {
	if m := rangeRe.FindStringSubmatch(raw); m != nil {
		// Group 1 is the "between" start, group 2 the "from" start.
		startText := m[1]
		if startText == "" {
			startText = m[2]
		}
		start, err := parseDate(startText)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(m[3])
		if err != nil {
			return nil, err
		}
		t, err := query.NewBetween(start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedTemporalExpression, err)
		}
		return &t, nil
	}

	if m := boundaryRe.FindStringSubmatch(raw); m != nil {
		date, err := parseDate(m[2])
		if err != nil {
			return nil, err
		}
		var t query.Temporal
		if strings.EqualFold(m[1], "before") {
			t = query.NewBefore(date)
		} else {
			t = query.NewAfter(date)
		}
		return &t, nil
	}

	if m := relativeRe.FindStringSubmatch(raw); m != nil {
		count, _ := strconv.Atoi(m[1])
		t, err := query.NewRelative(unitOf(m[2]), count, query.Past)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedTemporalExpression, err)
		}
		return &t, nil
	}

	if m := namedRe.FindStringSubmatch(raw); m != nil {
		t := namedRelative(strings.ToLower(strings.Join(strings.Fields(m[1]), " ")))
		return &t, nil
	}

	if m := quarterRe.FindStringSubmatch(raw); m != nil {
		quarter, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		t, err := query.NewInQuarter(year, quarter)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedTemporalExpression, err)
		}
		return &t, nil
	}

	return nil, nil
}

// parseDate tries the absolute-date cascade and falls back to a bare
// year.
func parseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(ordinalRe.ReplaceAllString(text, "$1"))

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}

	if year, err := strconv.Atoi(text); err == nil && year >= 1000 && year <= 9999 {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrMalformedTemporalExpression, text)
}

func unitOf(word string) query.Unit {
	switch strings.ToLower(word) {
	case "day":
		return query.Days
	case "week":
		return query.Weeks
	case "month":
		return query.Months
	}
	return query.Years
}

// namedRelative maps fixed phrases to approximate relative offsets.
func namedRelative(phrase string) query.Temporal {
	mustRelative := func(u query.Unit, count int, d query.Direction) query.Temporal {
		t, _ := query.NewRelative(u, count, d)
		return t
	}
	switch phrase {
	case "today":
		return mustRelative(query.Days, 1, query.Past)
	case "yesterday":
		return mustRelative(query.Days, 2, query.Past)
	case "tomorrow":
		return mustRelative(query.Days, 1, query.Future)
	case "this week", "last week":
		return mustRelative(query.Weeks, 1, query.Past)
	case "this month", "last month":
		return mustRelative(query.Months, 1, query.Past)
	}
	return mustRelative(query.Years, 1, query.Past)
}

// extractGated recognizes gated/ungated phrasing. Negated forms are
// checked first so "not gated" does not read as gated.
func extractGated(raw string) *bool {
	text := NormalizeText(raw)
	gated := func(v bool) *bool { return &v }

	for _, phrase := range []string{"not gated", "non gated", "ungated"} {
		if len(wholeWordOccurrences(text, phrase)) > 0 {
			return gated(false)
		}
	}
	if len(wholeWordOccurrences(text, "gated")) > 0 {
		return gated(true)
	}
	return nil
}

// missingMarkers are phrases that, combined with a category name, mean
// the category is unassigned on the content.
var missingMarkers = []string{
	"no assigned",
	"without",
	"missing",
	"hasn t been classified",
	"not classified",
	"unclassified",
	"no",
}

// extractMissing marks categories the query asks to be unassigned. Only
// categories present in the tenant vocabulary are recorded.
func extractMissing(raw string, vocab vocabulary.Vocabulary) []string {
	text := NormalizeText(raw)
	var out []string
	for _, cat := range vocab.Categories() {
		catNorm := NormalizeText(cat.Name())
		if catNorm == "" || len(wholeWordOccurrences(text, catNorm)) == 0 {
			continue
		}
		for _, marker := range missingMarkers {
			found := false
			switch marker {
			case "hasn t been classified", "not classified", "unclassified":
				// Classification phrases do not need to be adjacent to
				// the category name.
				found = strings.Contains(text, marker)
			default:
				found = len(wholeWordOccurrences(text, marker+" "+catNorm)) > 0
			}
			if found {
				out = append(out, cat.Name())
				break
			}
		}
	}
	return out
}
