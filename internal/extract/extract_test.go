package extract

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/chanelmunez/founders/internal/database"
)

// mockProvider implements llm.Provider for testing.
type mockProvider struct {
	response string
	err      error
}

func (m *mockProvider) Generate(_ context.Context, _ string, _ int) (string, error) {
	return m.response, m.err
}

func (m *mockProvider) IsConfigured() bool { return true }

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

func insertEpisodeWithTranscript(t *testing.T, db *database.DB, id, title string) {
	t.Helper()
	ok, err := db.InsertEpisode(id, title, nil, nil, ptr("https://example.com/"+id), ptr("Transcript text for "+title))
	if err != nil || !ok {
		t.Fatalf("insert failed: ok=%v err=%v", ok, err)
	}
}

func extractionResponse(t *testing.T, entities []map[string]any, relationships []map[string]any) string {
	t.Helper()
	resp, err := json.Marshal(map[string]any{
		"entities":      entities,
		"relationships": relationships,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(resp)
}

func TestExtractEpisode(t *testing.T) {
	db := openTestDB(t)
	insertEpisodeWithTranscript(t, db, "ep_1_aaaa0000", "Jeff Bezos")

	resp := extractionResponse(t,
		[]map[string]any{
			{"name": "Jeff Bezos", "type": "person", "context": "founder of Amazon", "confidence": 0.95, "amazon_searchable": false, "keywords": []string{"amazon"}},
			{"name": "Amazon", "type": "place", "context": "the company he founded", "confidence": 0.9},
		},
		[]map[string]any{
			{"source": "Jeff Bezos", "target": "Amazon", "type": "founded", "description": "Bezos founded Amazon in 1994", "confidence": 0.9},
		},
	)

	extractor := NewExtractor(db, &mockProvider{response: resp}, 0)
	result := extractor.ExtractAll(context.Background(), NewAccumulator())

	if result.Processed != 1 {
		t.Fatalf("expected 1 processed, got %d", result.Processed)
	}
	if result.Entities != 2 {
		t.Errorf("expected 2 entities, got %d", result.Entities)
	}
	if result.Relationships != 1 {
		t.Errorf("expected 1 relationship, got %d", result.Relationships)
	}

	entities, _ := db.GetEntitiesForEpisode("ep_1_aaaa0000")
	if len(entities) != 2 {
		t.Fatalf("expected 2 stored entities, got %d", len(entities))
	}
	if entities[0].ID != "person_jeffbezos_ep_1_aaa" {
		t.Errorf("unexpected entity id %q", entities[0].ID)
	}

	rels, _ := db.GetRelationshipsForEpisode("ep_1_aaaa0000")
	if len(rels) != 1 {
		t.Fatalf("expected 1 stored relationship, got %d", len(rels))
	}
	if rels[0].SourceEntityID != "person_jeffbezos_ep_1_aaa" {
		t.Errorf("expected relationship to resolve source entity, got %q", rels[0].SourceEntityID)
	}
}

func TestExtractDropsDanglingRelationships(t *testing.T) {
	db := openTestDB(t)
	insertEpisodeWithTranscript(t, db, "ep_1_aaaa0000", "Test")

	resp := extractionResponse(t,
		[]map[string]any{
			{"name": "Jeff Bezos", "type": "person", "confidence": 0.9},
		},
		[]map[string]any{
			{"source": "Jeff Bezos", "target": "Blue Origin", "type": "founded", "confidence": 0.8},
		},
	)

	extractor := NewExtractor(db, &mockProvider{response: resp}, 0)
	result := extractor.ExtractAll(context.Background(), NewAccumulator())

	if result.Relationships != 0 {
		t.Errorf("expected dangling relationship dropped, got %d stored", result.Relationships)
	}
	if result.Dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", result.Dropped)
	}
}

func TestExtractCoercesUnknownType(t *testing.T) {
	db := openTestDB(t)
	insertEpisodeWithTranscript(t, db, "ep_1_aaaa0000", "Test")

	resp := extractionResponse(t,
		[]map[string]any{
			{"name": "The Garage", "type": "building", "confidence": 0.6},
		},
		nil,
	)

	extractor := NewExtractor(db, &mockProvider{response: resp}, 0)
	extractor.ExtractAll(context.Background(), NewAccumulator())

	entities, _ := db.GetEntitiesForEpisode("ep_1_aaaa0000")
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	if entities[0].Type != "object" {
		t.Errorf("expected unknown type coerced to object, got %q", entities[0].Type)
	}
}

func TestExtractClampsConfidence(t *testing.T) {
	db := openTestDB(t)
	insertEpisodeWithTranscript(t, db, "ep_1_aaaa0000", "Test")

	resp := extractionResponse(t,
		[]map[string]any{
			{"name": "A", "type": "person", "confidence": 1.7},
			{"name": "B", "type": "person", "confidence": -0.2},
		},
		nil,
	)

	extractor := NewExtractor(db, &mockProvider{response: resp}, 0)
	extractor.ExtractAll(context.Background(), NewAccumulator())

	entities, _ := db.GetEntitiesForEpisode("ep_1_aaaa0000")
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if entities[0].Confidence != 1 {
		t.Errorf("expected confidence clamped to 1, got %v", entities[0].Confidence)
	}
	if entities[1].Confidence != 0 {
		t.Errorf("expected confidence clamped to 0, got %v", entities[1].Confidence)
	}
}

func TestExtractSkipsDuplicateIDs(t *testing.T) {
	db := openTestDB(t)
	insertEpisodeWithTranscript(t, db, "ep_1_aaaa0000", "Test")

	// Same name and type twice mints the same id; the second is skipped.
	resp := extractionResponse(t,
		[]map[string]any{
			{"name": "Jeff Bezos", "type": "person", "confidence": 0.9},
			{"name": "jeff-bezos", "type": "person", "confidence": 0.8},
		},
		nil,
	)

	extractor := NewExtractor(db, &mockProvider{response: resp}, 0)
	result := extractor.ExtractAll(context.Background(), NewAccumulator())

	if result.Entities != 1 {
		t.Errorf("expected 1 entity kept, got %d", result.Entities)
	}
	entities, _ := db.GetEntitiesForEpisode("ep_1_aaaa0000")
	if len(entities) != 1 || entities[0].Name != "Jeff Bezos" {
		t.Errorf("expected first entity kept, got %+v", entities)
	}
}

func TestExtractHandlesUnparseableResponse(t *testing.T) {
	db := openTestDB(t)
	insertEpisodeWithTranscript(t, db, "ep_1_aaaa0000", "Test")

	extractor := NewExtractor(db, &mockProvider{response: "not json"}, 0)
	result := extractor.ExtractAll(context.Background(), NewAccumulator())

	if result.Errors != 1 {
		t.Errorf("expected 1 error, got %d", result.Errors)
	}
	if result.Processed != 0 {
		t.Errorf("expected 0 processed, got %d", result.Processed)
	}
}

func TestExtractSkipsAlreadyExtracted(t *testing.T) {
	db := openTestDB(t)
	insertEpisodeWithTranscript(t, db, "ep_1_aaaa0000", "Done")
	db.MarkExtracted("ep_1_aaaa0000", 0, 0)

	extractor := NewExtractor(db, &mockProvider{response: "{}"}, 0)
	result := extractor.ExtractAll(context.Background(), NewAccumulator())

	if result.Processed != 0 {
		t.Errorf("expected 0 processed, got %d", result.Processed)
	}
}
