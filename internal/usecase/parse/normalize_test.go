package parse

import (
	"reflect"
	"testing"
)

func TestNormalize_Canonicalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"casefold", "Show Me TOFU Content", "show me tofu content"},
		{"diacritics", "café résumé", "cafe resume"},
		{"punctuation", "blogs, whitepapers & e-books!", "blogs whitepapers e books"},
		{"whitespace collapse", "  too   many\tspaces\n", "too many spaces"},
		{"empty", "", ""},
		{"pure punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got.Text != tt.want {
				t.Errorf("Normalize(%q).Text = %q, want %q", tt.in, got.Text, tt.want)
			}
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	in := "Show me Gated Whitepapers from Q3 2024, s'il vous plaît"
	first := Normalize(in)
	for i := 0; i < 5; i++ {
		if got := Normalize(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("normalization not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestNormalize_Lemmas(t *testing.T) {
	got := Normalize("showing blogs published recently")

	wantTokens := []string{"showing", "blogs", "published", "recently"}
	if !reflect.DeepEqual(got.Tokens, wantTokens) {
		t.Errorf("tokens = %v, want %v", got.Tokens, wantTokens)
	}
	// Stemmed forms collapse plural and inflection.
	if got.Lemmas[1] != "blog" {
		t.Errorf("lemma for blogs = %q, want blog", got.Lemmas[1])
	}
	if got.Lemmas[2] != "publish" {
		t.Errorf("lemma for published = %q, want publish", got.Lemmas[2])
	}
}

func TestExtractQuoted(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"double quotes", `find "AI Tools" content`, []string{"AI Tools"}},
		{"single quotes", "find 'Machine Learning' posts", []string{"Machine Learning"}},
		{"curly quotes", "find “AI Tools” posts", []string{"AI Tools"}},
		{"multiple", `"TOFU" and "BOFU"`, []string{"TOFU", "BOFU"}},
		{"unterminated", `find "AI Tools content`, nil},
		{"apostrophe not a quote", "what's in the what's bucket", nil},
		{"empty span dropped", `find "" content`, nil},
		{"none", "plain text", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractQuoted(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractQuoted(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
