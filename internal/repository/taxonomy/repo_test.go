package taxonomy

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/kailas-cloud/contentiq/internal/domain/synonym"
)

type memStore struct {
	hashes map[string]map[string]string
	sets   map[string]map[string]struct{}
	err    error
}

func newMemStore() *memStore {
	return &memStore{
		hashes: map[string]map[string]string{},
		sets:   map[string]map[string]struct{}{},
	}
}

func (s *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if s.err != nil {
		return s.err
	}
	h, ok := s.hashes[key]
	if !ok {
		h = map[string]string{}
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (s *memStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = s.hashes[k]
	}
	return out, nil
}

func (s *memStore) SAdd(_ context.Context, key string, members ...string) error {
	if s.err != nil {
		return s.err
	}
	set, ok := s.sets[key]
	if !ok {
		set = map[string]struct{}{}
		s.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (s *memStore) SMembers(_ context.Context, key string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		out = append(out, m)
	}
	return out, nil
}

func seedAttr(t *testing.T, s *memStore, tenantID, id, name, category, categoryID string) {
	t.Helper()
	ctx := context.Background()
	if err := s.HSet(ctx, attrKey(tenantID, id), map[string]string{
		"name":        name,
		"category":    category,
		"category_id": categoryID,
	}); err != nil {
		t.Fatalf("seed attribute: %v", err)
	}
	if err := s.SAdd(ctx, attrSetKey(tenantID), id); err != nil {
		t.Fatalf("seed attribute set: %v", err)
	}
}

func TestLoad_BuildsTaxonomy(t *testing.T) {
	s := newMemStore()
	repo := New(s)

	seedAttr(t, s, "acme", "a1", "TOFU", "Funnel Stage", "cat-funnel")
	seedAttr(t, s, "globex", "a2", "other tenant", "Topic", "")
	seedAttr(t, s, "acme", "a3", "MOFU", "Funnel Stage", "cat-funnel")
	seedAttr(t, s, "acme", "a4", "AI Tools", "Topic", "cat-topic")
	if err := s.SAdd(context.Background(), languageSetKey("acme"), "French", "English"); err != nil {
		t.Fatalf("seed languages: %v", err)
	}

	tax, err := repo.Load(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	funnel := tax.Categories["Funnel Stage"]
	sort.Strings(funnel)
	if !reflect.DeepEqual(funnel, []string{"MOFU", "TOFU"}) {
		t.Errorf("Funnel Stage values = %v", funnel)
	}
	if !reflect.DeepEqual(tax.Categories["Topic"], []string{"AI Tools"}) {
		t.Errorf("Topic values = %v", tax.Categories["Topic"])
	}
	if tax.CategoryIDs["Funnel Stage"] != "cat-funnel" {
		t.Errorf("category ids = %v", tax.CategoryIDs)
	}
	if !reflect.DeepEqual(tax.DirectValues["language"], []string{"English", "French"}) {
		t.Errorf("languages = %v, want sorted", tax.DirectValues["language"])
	}
}

func TestLoad_EmptyTenant(t *testing.T) {
	repo := New(newMemStore())

	tax, err := repo.Load(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tax.Categories) != 0 || len(tax.DirectValues) != 0 {
		t.Errorf("taxonomy = %+v, want empty", tax)
	}
}

func TestLoad_StoreErrorPropagates(t *testing.T) {
	s := newMemStore()
	s.err = errors.New("connection refused")
	repo := New(s)

	if _, err := repo.Load(context.Background(), "acme"); err == nil {
		t.Fatal("expected store error")
	}
}

func TestList_MergesGlobalAndTenant(t *testing.T) {
	s := newMemStore()
	repo := New(s)

	global, err := synonym.New("", "early funnel", "Funnel Stage", "TOFU", 0.9)
	if err != nil {
		t.Fatalf("build synonym: %v", err)
	}
	tenant, err := synonym.New("acme", "buying guide", "Funnel Stage", "BOFU", 0.8)
	if err != nil {
		t.Fatalf("build synonym: %v", err)
	}
	other, err := synonym.New("globex", "webinars", "Topic", "Events", 0.8)
	if err != nil {
		t.Fatalf("build synonym: %v", err)
	}

	for _, e := range []synonym.Entry{global, tenant, other} {
		if err := repo.SaveSynonym(context.Background(), e); err != nil {
			t.Fatalf("SaveSynonym failed: %v", err)
		}
	}

	entries, err := repo.List(context.Background(), "acme")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want global + tenant", len(entries))
	}
	phrases := []string{entries[0].Phrase(), entries[1].Phrase()}
	sort.Strings(phrases)
	if !reflect.DeepEqual(phrases, []string{"buying guide", "early funnel"}) {
		t.Errorf("phrases = %v", phrases)
	}
}

func TestSaveSynonym_StableID(t *testing.T) {
	s := newMemStore()
	repo := New(s)

	entry, err := synonym.New("acme", "Early Funnel", "Funnel Stage", "TOFU", 0.7)
	if err != nil {
		t.Fatalf("build synonym: %v", err)
	}
	if err := repo.SaveSynonym(context.Background(), entry); err != nil {
		t.Fatalf("SaveSynonym failed: %v", err)
	}

	updated, err := synonym.New("acme", "Early Funnel", "Funnel Stage", "TOFU", 0.95)
	if err != nil {
		t.Fatalf("build synonym: %v", err)
	}
	if err := repo.SaveSynonym(context.Background(), updated); err != nil {
		t.Fatalf("SaveSynonym failed: %v", err)
	}

	entries, err := repo.List(context.Background(), "acme")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want overwrite not duplicate", len(entries))
	}
	if entries[0].Confidence() != 0.95 {
		t.Errorf("confidence = %v, want 0.95", entries[0].Confidence())
	}

	hash := s.hashes[synonymKey("acme", "early-funnel")]
	if hash["phrase"] != "Early Funnel" {
		t.Errorf("stored hash = %v, want phrase-derived key", hash)
	}
}

func TestList_SkipsMalformedRecords(t *testing.T) {
	s := newMemStore()
	repo := New(s)

	ctx := context.Background()
	if err := s.HSet(ctx, synonymKey("acme", "bad"), map[string]string{
		"phrase":     "broken",
		"category":   "Funnel Stage",
		"value":      "TOFU",
		"confidence": "not-a-number",
	}); err != nil {
		t.Fatalf("seed synonym: %v", err)
	}
	if err := s.SAdd(ctx, synonymSetKey("acme"), "bad"); err != nil {
		t.Fatalf("seed synonym set: %v", err)
	}

	entries, err := repo.List(ctx, "acme")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want malformed record skipped", entries)
	}
}
