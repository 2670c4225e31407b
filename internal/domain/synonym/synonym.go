package synonym

import "fmt"

// DefaultMatchThreshold is the partial-match score a synonym phrase must
// reach against the query text before its mapped value is considered.
const DefaultMatchThreshold = 80

// Entry maps a natural-language phrase to one (category, value) pair with
// a stated confidence. Entries with an empty tenant id apply to every
// tenant; the mapped value is still only emitted when it exists in the
// requesting tenant's vocabulary.
type Entry struct {
	tenantID   string
	phrase     string
	category   string
	value      string
	confidence float64
	threshold  int
}

// New validates and creates an Entry.
func New(tenantID, phrase, category, value string, confidence float64) (Entry, error) {
	if phrase == "" {
		return Entry{}, fmt.Errorf("synonym phrase is required")
	}
	if category == "" || value == "" {
		return Entry{}, fmt.Errorf("synonym target category and value are required for %q", phrase)
	}
	if confidence < 0 || confidence > 1 {
		return Entry{}, fmt.Errorf("synonym confidence must be in [0,1], got %v", confidence)
	}
	return Entry{
		tenantID:   tenantID,
		phrase:     phrase,
		category:   category,
		value:      value,
		confidence: confidence,
		threshold:  DefaultMatchThreshold,
	}, nil
}

// WithThreshold overrides the per-entry fuzzy match threshold (0-100).
func (e Entry) WithThreshold(threshold int) Entry {
	if threshold > 0 && threshold <= 100 {
		e.threshold = threshold
	}
	return e
}

// TenantID returns the owning tenant id, empty for tenant-independent entries.
func (e Entry) TenantID() string { return e.tenantID }

// Phrase returns the natural-language phrase.
func (e Entry) Phrase() string { return e.phrase }

// Category returns the target category name.
func (e Entry) Category() string { return e.category }

// Value returns the target attribute value.
func (e Entry) Value() string { return e.value }

// Confidence returns the stated confidence in [0,1].
func (e Entry) Confidence() float64 { return e.confidence }

// Threshold returns the fuzzy match threshold for this entry.
func (e Entry) Threshold() int { return e.threshold }
