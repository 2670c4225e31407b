package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/contentiq/internal/domain"
	"github.com/kailas-cloud/contentiq/internal/domain/content"
)

type fakeWriter struct {
	upserts int
	deletes int
	err     error
	last    content.Content
}

func (f *fakeWriter) Upsert(_ context.Context, _ string, c content.Content) error {
	f.upserts++
	f.last = c
	return f.err
}

func (f *fakeWriter) Delete(_ context.Context, _, _ string) error {
	f.deletes++
	return f.err
}

type fakeCache struct {
	cleared []string
}

func (f *fakeCache) Clear(tenantID string) {
	f.cleared = append(f.cleared, tenantID)
}

func validRecord() Record {
	return Record{
		ID:           "content-1",
		Title:        "Getting Started",
		URL:          "https://example.com/getting-started",
		Language:     "English",
		PublishedAt:  time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		AttributeIDs: []string{"attr-1"},
	}
}

func TestUpsert_StoresAndInvalidatesCache(t *testing.T) {
	writer := &fakeWriter{}
	cache := &fakeCache{}
	svc := New(writer, cache)

	if err := svc.Upsert(context.Background(), "acme", validRecord()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if writer.upserts != 1 {
		t.Errorf("upserts = %d, want 1", writer.upserts)
	}
	if len(cache.cleared) != 1 || cache.cleared[0] != "acme" {
		t.Errorf("cleared = %v, want [acme]", cache.cleared)
	}
	if writer.last.Title() != "Getting Started" {
		t.Errorf("stored title = %q", writer.last.Title())
	}
}

func TestUpsert_NoLanguageKeepsCache(t *testing.T) {
	writer := &fakeWriter{}
	cache := &fakeCache{}
	svc := New(writer, cache)

	rec := validRecord()
	rec.Language = ""
	if err := svc.Upsert(context.Background(), "acme", rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if len(cache.cleared) != 0 {
		t.Errorf("cache cleared without a language change: %v", cache.cleared)
	}
}

func TestUpsert_NilCache(t *testing.T) {
	svc := New(&fakeWriter{}, nil)

	if err := svc.Upsert(context.Background(), "acme", validRecord()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
}

func TestUpsert_TenantRequired(t *testing.T) {
	svc := New(&fakeWriter{}, nil)

	err := svc.Upsert(context.Background(), "", validRecord())
	if !errors.Is(err, domain.ErrTenantRequired) {
		t.Errorf("expected ErrTenantRequired, got %v", err)
	}
}

func TestUpsert_InvalidRecordRejected(t *testing.T) {
	writer := &fakeWriter{}
	svc := New(writer, nil)

	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"empty id", func(r *Record) { r.ID = "" }},
		{"id with spaces", func(r *Record) { r.ID = "bad id" }},
		{"empty title", func(r *Record) { r.Title = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)
			err := svc.Upsert(context.Background(), "acme", rec)
			if !errors.Is(err, domain.ErrInvalidContent) {
				t.Errorf("expected ErrInvalidContent, got %v", err)
			}
		})
	}

	if writer.upserts != 0 {
		t.Errorf("invalid records reached the writer: %d upserts", writer.upserts)
	}
}

func TestUpsert_WriterErrorPropagates(t *testing.T) {
	writer := &fakeWriter{err: errors.New("store down")}
	cache := &fakeCache{}
	svc := New(writer, cache)

	if err := svc.Upsert(context.Background(), "acme", validRecord()); err == nil {
		t.Fatal("expected writer error")
	}
	if len(cache.cleared) != 0 {
		t.Errorf("cache cleared after failed write: %v", cache.cleared)
	}
}

func TestDelete(t *testing.T) {
	writer := &fakeWriter{}
	svc := New(writer, nil)

	if err := svc.Delete(context.Background(), "acme", "content-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if writer.deletes != 1 {
		t.Errorf("deletes = %d, want 1", writer.deletes)
	}
}

func TestDelete_TenantRequired(t *testing.T) {
	svc := New(&fakeWriter{}, nil)

	err := svc.Delete(context.Background(), "", "content-1")
	if !errors.Is(err, domain.ErrTenantRequired) {
		t.Errorf("expected ErrTenantRequired, got %v", err)
	}
}

func TestDelete_EmptyID(t *testing.T) {
	svc := New(&fakeWriter{}, nil)

	err := svc.Delete(context.Background(), "acme", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
