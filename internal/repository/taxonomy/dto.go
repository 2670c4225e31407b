package taxonomy

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/contentiq/internal/domain/content"
	"github.com/kailas-cloud/contentiq/internal/domain/synonym"
)

// attributeFromHash hydrates a category attribute from an HGETALL result map.
func attributeFromHash(id string, m map[string]string) (content.Attribute, error) {
	attr, err := content.NewAttribute(id, m["name"], m["category"], m["category_id"])
	if err != nil {
		return content.Attribute{}, fmt.Errorf("invalid attribute record: %w", err)
	}
	return attr, nil
}

// synonymFromHash hydrates a synonym entry from an HGETALL result map.
func synonymFromHash(tenantID string, m map[string]string) (synonym.Entry, error) {
	confidence, err := strconv.ParseFloat(m["confidence"], 64)
	if err != nil {
		return synonym.Entry{}, fmt.Errorf("invalid confidence: %w", err)
	}

	entry, err := synonym.New(tenantID, m["phrase"], m["category"], m["value"], confidence)
	if err != nil {
		return synonym.Entry{}, err
	}

	if thStr, ok := m["threshold"]; ok && thStr != "" {
		if th, err := strconv.Atoi(thStr); err == nil {
			entry = entry.WithThreshold(th)
		}
	}

	return entry, nil
}

// synonymToHash flattens a synonym entry into HSET fields.
func synonymToHash(entry synonym.Entry) map[string]string {
	return map[string]string{
		"phrase":     entry.Phrase(),
		"category":   entry.Category(),
		"value":      entry.Value(),
		"confidence": strconv.FormatFloat(entry.Confidence(), 'f', -1, 64),
		"threshold":  strconv.Itoa(entry.Threshold()),
	}
}
