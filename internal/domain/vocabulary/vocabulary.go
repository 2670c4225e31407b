package vocabulary

import (
	"fmt"
	"sort"
)

// Vocabulary is the closed set of category names and allowed attribute
// values for one tenant. Built once per tenant, cached, never mutated in
// place; a refresh replaces the whole value.
type Vocabulary struct {
	tenantID   string
	categories []Category
	index      map[string]int
}

// Category is one classification axis with its ordered allowed values.
type Category struct {
	name     string
	values   []string
	valueSet map[string]struct{}
}

// NewCategory validates and creates a Category. Duplicate values are
// dropped, first occurrence wins.
func NewCategory(name string, values []string) (Category, error) {
	if name == "" {
		return Category{}, fmt.Errorf("category name is required")
	}
	deduped := make([]string, 0, len(values))
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		deduped = append(deduped, v)
	}
	return Category{name: name, values: deduped, valueSet: set}, nil
}

// Name returns the category name.
func (c Category) Name() string { return c.name }

// Values returns the allowed attribute values in load order.
func (c Category) Values() []string { return c.values }

// Contains reports whether value is an allowed attribute value.
func (c Category) Contains(value string) bool {
	_, ok := c.valueSet[value]
	return ok
}

// New validates and creates a Vocabulary. Category names must be unique.
func New(tenantID string, categories []Category) (Vocabulary, error) {
	if tenantID == "" {
		return Vocabulary{}, fmt.Errorf("tenant id is required")
	}
	index := make(map[string]int, len(categories))
	kept := make([]Category, 0, len(categories))
	for _, c := range categories {
		if _, ok := index[c.name]; ok {
			return Vocabulary{}, fmt.Errorf("duplicate category %q", c.name)
		}
		index[c.name] = len(kept)
		kept = append(kept, c)
	}
	return Vocabulary{tenantID: tenantID, categories: kept, index: index}, nil
}

// FromMap builds a Vocabulary from a category-name to values mapping.
// Categories are ordered by name for determinism.
func FromMap(tenantID string, m map[string][]string) (Vocabulary, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]Category, 0, len(names))
	for _, name := range names {
		c, err := NewCategory(name, m[name])
		if err != nil {
			return Vocabulary{}, err
		}
		categories = append(categories, c)
	}
	return New(tenantID, categories)
}

// TenantID returns the owning tenant id.
func (v Vocabulary) TenantID() string { return v.tenantID }

// Categories returns the categories in load order.
func (v Vocabulary) Categories() []Category { return v.categories }

// Category returns the named category.
func (v Vocabulary) Category(name string) (Category, bool) {
	i, ok := v.index[name]
	if !ok {
		return Category{}, false
	}
	return v.categories[i], true
}

// Has reports whether the named category exists.
func (v Vocabulary) Has(name string) bool {
	_, ok := v.index[name]
	return ok
}

// Contains reports whether value is allowed in the named category.
func (v Vocabulary) Contains(category, value string) bool {
	c, ok := v.Category(category)
	return ok && c.Contains(value)
}

// IsEmpty reports whether the vocabulary has no categories.
func (v Vocabulary) IsEmpty() bool { return len(v.categories) == 0 }

// AsMap returns a category-name to values copy, for handing the closed
// enumeration to external extractors.
func (v Vocabulary) AsMap() map[string][]string {
	m := make(map[string][]string, len(v.categories))
	for _, c := range v.categories {
		vals := make([]string, len(c.values))
		copy(vals, c.values)
		m[c.name] = vals
	}
	return m
}
