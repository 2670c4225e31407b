package content

import (
	"fmt"
	"regexp"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Content is one content record (immutable value object). Attribute
// references point into the tenant's category attribute collection.
type Content struct {
	id           string
	title        string
	url          string
	language     string
	gated        bool
	publishedAt  time.Time
	attributeIDs []string
}

// New validates and creates a Content.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Title required.
func New(id, title, url, language string, gated bool, publishedAt time.Time, attributeIDs []string) (Content, error) {
	if id == "" {
		return Content{}, fmt.Errorf("content ID is required")
	}
	if len(id) > 256 {
		return Content{}, fmt.Errorf("content ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Content{}, fmt.Errorf("content ID must be alphanumeric with underscores and hyphens")
	}
	if title == "" {
		return Content{}, fmt.Errorf("title is required")
	}

	ids := make([]string, len(attributeIDs))
	copy(ids, attributeIDs)

	return Content{
		id:           id,
		title:        title,
		url:          url,
		language:     language,
		gated:        gated,
		publishedAt:  publishedAt,
		attributeIDs: ids,
	}, nil
}

// Reconstruct creates a Content without validation (storage hydration).
func Reconstruct(id, title, url, language string, gated bool, publishedAt time.Time, attributeIDs []string) Content {
	return Content{
		id: id, title: title, url: url, language: language,
		gated: gated, publishedAt: publishedAt, attributeIDs: attributeIDs,
	}
}

// ID returns the content identifier.
func (c *Content) ID() string { return c.id }

// Title returns the content title.
func (c *Content) Title() string { return c.title }

// URL returns the content url.
func (c *Content) URL() string { return c.url }

// Language returns the content language.
func (c *Content) Language() string { return c.language }

// Gated reports whether the content sits behind a form.
func (c *Content) Gated() bool { return c.gated }

// PublishedAt returns the publication time.
func (c *Content) PublishedAt() time.Time { return c.publishedAt }

// AttributeIDs returns the referenced category attribute identifiers.
func (c *Content) AttributeIDs() []string {
	out := make([]string, len(c.attributeIDs))
	copy(out, c.attributeIDs)
	return out
}

// Attribute is one category attribute record: a named value belonging to
// one category.
type Attribute struct {
	id         string
	name       string
	category   string
	categoryID string
}

// NewAttribute validates and creates an Attribute.
func NewAttribute(id, name, category, categoryID string) (Attribute, error) {
	if id == "" {
		return Attribute{}, fmt.Errorf("attribute ID is required")
	}
	if name == "" {
		return Attribute{}, fmt.Errorf("attribute name is required")
	}
	if category == "" {
		return Attribute{}, fmt.Errorf("attribute category is required")
	}
	return Attribute{id: id, name: name, category: category, categoryID: categoryID}, nil
}

// ID returns the attribute identifier.
func (a *Attribute) ID() string { return a.id }

// Name returns the attribute value name.
func (a *Attribute) Name() string { return a.name }

// Category returns the owning category name.
func (a *Attribute) Category() string { return a.category }

// CategoryID returns the owning category's store identifier.
func (a *Attribute) CategoryID() string { return a.categoryID }
