package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/contentiq/internal/domain/content"
)

// contentToHash converts a domain Content to a map for HSET.
func contentToHash(c content.Content) map[string]string {
	return map[string]string{
		"title":              c.Title(),
		"url":                c.URL(),
		"language":           c.Language(),
		"gated":              strconv.FormatBool(c.Gated()),
		"published_at":       c.PublishedAt().UTC().Format(time.RFC3339),
		"category_attributes": strings.Join(c.AttributeIDs(), ","),
	}
}

// contentFromHash hydrates a domain Content from an HGETALL result map.
func contentFromHash(id string, m map[string]string) (content.Content, error) {
	gated := false
	if gatedStr, ok := m["gated"]; ok && gatedStr != "" {
		parsed, err := strconv.ParseBool(gatedStr)
		if err != nil {
			return content.Content{}, fmt.Errorf("invalid gated flag: %w", err)
		}
		gated = parsed
	}

	var publishedAt time.Time
	if ts, ok := m["published_at"]; ok && ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return content.Content{}, fmt.Errorf("invalid published_at: %w", err)
		}
		publishedAt = parsed
	}

	var attributeIDs []string
	if refs := m["category_attributes"]; refs != "" {
		attributeIDs = strings.Split(refs, ",")
	}

	return content.Reconstruct(id, m["title"], m["url"], m["language"], gated, publishedAt, attributeIDs), nil
}
