package amazon

import (
	"path/filepath"
	"testing"

	"github.com/chanelmunez/founders/internal/database"
)

// mockSearcher implements productSearcher for testing.
type mockSearcher struct {
	products   []database.Product
	configured bool
	queries    []string
}

func (m *mockSearcher) SearchProducts(query string, maxProducts int) []database.Product {
	m.queries = append(m.queries, query)
	if len(m.products) > maxProducts {
		return m.products[:maxProducts]
	}
	return m.products
}

func (m *mockSearcher) IsConfigured() bool { return m.configured }

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func seedSearchableEntity(t *testing.T, db *database.DB, id, name string, keywords []string) {
	t.Helper()
	db.InsertEpisode("ep_1_aaaa0000", "Test", nil, nil, ptr("https://example.com/1"), nil)
	err := db.InsertEntity(database.Entity{
		ID: id, EpisodeID: "ep_1_aaaa0000", Name: name, Type: "media",
		Confidence: 0.9, AmazonSearchable: true, Keywords: keywords,
	})
	if err != nil {
		t.Fatalf("insert entity: %v", err)
	}
}

func TestEnrichStoresProducts(t *testing.T) {
	db := openTestDB(t)
	seedSearchableEntity(t, db, "media_shoedog_ep_1_aaa", "Shoe Dog", []string{"phil knight", "memoir"})

	searcher := &mockSearcher{
		configured: true,
		products: []database.Product{
			{URL: "https://amazon.com/dp/1?tag=founders-20", Title: "Shoe Dog"},
			{URL: "https://amazon.com/dp/2?tag=founders-20", Title: "Shoe Dog (Audiobook)"},
		},
	}
	enricher := &Enricher{db: db, searcher: searcher, maxLookups: 10, maxProducts: 3}
	result := enricher.Enrich()

	if result.Looked != 1 || result.Products != 2 {
		t.Errorf("expected 1 lookup with 2 products, got %d/%d", result.Looked, result.Products)
	}

	products, _ := db.GetProductsForEntity("media_shoedog_ep_1_aaa")
	if len(products) != 2 {
		t.Errorf("expected 2 stored products, got %d", len(products))
	}

	// Entity is marked so it is not retried.
	pending, _ := db.GetEntitiesNeedingProducts(10)
	if len(pending) != 0 {
		t.Errorf("expected no pending entities, got %d", len(pending))
	}
}

func TestEnrichQueryIncludesKeywords(t *testing.T) {
	db := openTestDB(t)
	seedSearchableEntity(t, db, "media_shoedog_ep_1_aaa", "Shoe Dog", []string{"phil knight", "nike", "memoir"})

	searcher := &mockSearcher{configured: true}
	enricher := &Enricher{db: db, searcher: searcher, maxLookups: 10, maxProducts: 3}
	enricher.Enrich()

	if len(searcher.queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(searcher.queries))
	}
	if searcher.queries[0] != "Shoe Dog phil knight nike" {
		t.Errorf("unexpected query %q", searcher.queries[0])
	}
}

func TestEnrichMarksEmptyResults(t *testing.T) {
	db := openTestDB(t)
	seedSearchableEntity(t, db, "media_obscure_ep_1_aaa", "Obscure Pamphlet", nil)

	searcher := &mockSearcher{configured: true}
	enricher := &Enricher{db: db, searcher: searcher, maxLookups: 10, maxProducts: 3}
	result := enricher.Enrich()

	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", result.Skipped)
	}
	pending, _ := db.GetEntitiesNeedingProducts(10)
	if len(pending) != 0 {
		t.Errorf("expected entity marked after empty result, got %d pending", len(pending))
	}
}

func TestEnrichUnconfigured(t *testing.T) {
	db := openTestDB(t)
	seedSearchableEntity(t, db, "media_shoedog_ep_1_aaa", "Shoe Dog", nil)

	enricher := &Enricher{db: db, searcher: &mockSearcher{configured: false}, maxLookups: 10, maxProducts: 3}
	result := enricher.Enrich()

	if result.Looked != 0 {
		t.Errorf("expected no lookups when unconfigured, got %d", result.Looked)
	}
	// Entity stays pending for a future configured run.
	pending, _ := db.GetEntitiesNeedingProducts(10)
	if len(pending) != 1 {
		t.Errorf("expected entity still pending, got %d", len(pending))
	}
}

func TestTagURL(t *testing.T) {
	c := &SerpAPIClient{affiliateTag: "founders-20"}
	got := c.tagURL("https://www.amazon.com/dp/B000FC0SIS?ref=sr_1_1")
	if got != "https://www.amazon.com/dp/B000FC0SIS?ref=sr_1_1&tag=founders-20" {
		t.Errorf("unexpected tagged URL %q", got)
	}

	// No tag configured leaves the URL alone.
	c = &SerpAPIClient{}
	if got := c.tagURL("https://www.amazon.com/dp/B000FC0SIS"); got != "https://www.amazon.com/dp/B000FC0SIS" {
		t.Errorf("unexpected URL %q", got)
	}
}
