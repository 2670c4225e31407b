package parse

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalized is the deterministic canonical form of one query text.
type Normalized struct {
	// Text is the casefolded, diacritic-free, punctuation-free form with
	// collapsed whitespace.
	Text string
	// Tokens are the whitespace-split words of Text.
	Tokens []string
	// Lemmas are the stemmed tokens; a token that cannot be stemmed is
	// carried through unchanged rather than failing the request.
	Lemmas []string
}

// stripMarks removes combining marks left behind by NFKD decomposition.
var stripMarks = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize canonicalizes text: casefold, strip diacritics, replace
// punctuation with whitespace, collapse whitespace, then stem each token.
// Deterministic and total on valid UTF-8; pure punctuation or an empty
// string normalizes to empty.
func Normalize(text string) Normalized {
	clean := NormalizeText(text)
	tokens := strings.Fields(clean)

	lemmas := make([]string, len(tokens))
	for i, tok := range tokens {
		stem, err := snowball.Stem(tok, "english", false)
		if err != nil || stem == "" {
			lemmas[i] = tok
			continue
		}
		lemmas[i] = stem
	}

	return Normalized{Text: clean, Tokens: tokens, Lemmas: lemmas}
}

// NormalizeText canonicalizes text without tokenizing.
func NormalizeText(text string) string {
	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Transform only fails on invalid UTF-8; keep the raw text so
		// normalization stays total.
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// quoteRunes are the quotation pairs recognized by ExtractQuoted.
var quoteRunes = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'“': '”', // curly double
	'‘': '’', // curly single
}

// ExtractQuoted returns the verbatim substrings found inside quotation
// marks, in order of appearance. Unterminated quotes yield nothing, and a
// quote directly after a letter (an apostrophe) does not open a span.
func ExtractQuoted(text string) []string {
	var out []string
	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		closing, ok := quoteRunes[rs[i]]
		if !ok {
			continue
		}
		if i > 0 && unicode.IsLetter(rs[i-1]) {
			continue
		}
		for j := i + 1; j < len(rs); j++ {
			if rs[j] == closing {
				if j > i+1 {
					out = append(out, string(rs[i+1:j]))
				}
				i = j
				break
			}
		}
	}
	return out
}
