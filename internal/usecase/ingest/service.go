package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/contentiq/internal/domain"
	"github.com/kailas-cloud/contentiq/internal/domain/content"
)

// Record is the inbound shape of one content record.
type Record struct {
	ID           string
	Title        string
	URL          string
	Language     string
	Gated        bool
	PublishedAt  time.Time
	AttributeIDs []string
}

// Service validates and persists content records.
type Service struct {
	writer ContentWriter
	cache  CacheInvalidator
}

// New creates an ingest service. cache may be nil.
func New(writer ContentWriter, cache CacheInvalidator) *Service {
	return &Service{writer: writer, cache: cache}
}

// Upsert stores one content record. A new language value invalidates the
// tenant's cached schema so the vocabulary picks it up.
func (s *Service) Upsert(ctx context.Context, tenantID string, rec Record) error {
	if tenantID == "" {
		return domain.ErrTenantRequired
	}

	c, err := content.New(rec.ID, rec.Title, rec.URL, rec.Language, rec.Gated, rec.PublishedAt, rec.AttributeIDs)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidContent, err)
	}

	if err := s.writer.Upsert(ctx, tenantID, c); err != nil {
		return fmt.Errorf("store content: %w", err)
	}

	if s.cache != nil && rec.Language != "" {
		s.cache.Clear(tenantID)
	}
	return nil
}

// Delete removes one content record.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	if tenantID == "" {
		return domain.ErrTenantRequired
	}
	if id == "" {
		return domain.ErrNotFound
	}
	if err := s.writer.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}
