package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chanelmunez/founders/internal/config"
	"github.com/chanelmunez/founders/internal/database"
	"github.com/chanelmunez/founders/internal/search"
)

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

func newTestServer(t *testing.T, db *database.DB) *Server {
	t.Helper()
	srv, err := New(db, config.Defaults().Scoring.Search)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func seedEpisode(t *testing.T, db *database.DB) {
	t.Helper()
	db.InsertEpisode("ep_1_aaaa0000", "Jeff Bezos", nil, ptr("2025-01-15"), ptr("https://example.com/1"), ptr("The story of Amazon."))
	db.InsertEntity(database.Entity{
		ID: "person_jeffbezos_ep_1_aaa", EpisodeID: "ep_1_aaaa0000",
		Name: "Jeff Bezos", Type: "person", Context: ptr("founder of Amazon"), Confidence: 0.95,
	})
	db.InsertRelationship(database.Relationship{
		ID: "rel_jeffbezos_founded_amazon_ep_1_aaa", EpisodeID: "ep_1_aaaa0000",
		SourceEntityID: "person_jeffbezos_ep_1_aaa", SourceEntityName: "Jeff Bezos",
		TargetEntityID: "person_jeffbezos_ep_1_aaa", TargetEntityName: "Amazon",
		Type: "founded", Confidence: 0.9,
	})
}

func TestIndexRoute(t *testing.T) {
	db := openTestDB(t)
	seedEpisode(t, db)
	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Jeff Bezos") {
		t.Error("expected episode title in response body")
	}
}

func TestEpisodeRoute(t *testing.T) {
	db := openTestDB(t)
	seedEpisode(t, db)
	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/episode/ep_1_aaaa0000", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Jeff Bezos") {
		t.Error("expected episode title in response")
	}
	if !strings.Contains(body, "founder of Amazon") {
		t.Error("expected entity context rendered from markdown notes")
	}
}

func TestEpisodeRouteNotFound(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/episode/ep_9_ffff0000", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSearchAPI(t *testing.T) {
	db := openTestDB(t)
	seedEpisode(t, db)
	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/api/search?q=bezos", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var payload struct {
		Query   string          `json:"query"`
		Results []search.Result `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload.Query != "bezos" {
		t.Errorf("expected query echoed, got %q", payload.Query)
	}
	if len(payload.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(payload.Results))
	}
	if payload.Results[0].MatchType != "title" {
		t.Errorf("expected title match, got %q", payload.Results[0].MatchType)
	}
}

func TestSearchAPIEmptyQuery(t *testing.T) {
	db := openTestDB(t)
	seedEpisode(t, db)
	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/api/search?q=", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Results []search.Result `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(payload.Results) != 0 {
		t.Errorf("expected empty results array, got %d", len(payload.Results))
	}
}

func TestCorpusAPI(t *testing.T) {
	db := openTestDB(t)
	seedEpisode(t, db)
	srv := newTestServer(t, db)

	req := httptest.NewRequest("GET", "/api/corpus", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Episodes []struct {
			ID       string `json:"id"`
			Entities []struct {
				Name string `json:"name"`
			} `json:"entities"`
		} `json:"episodes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(payload.Episodes) != 1 {
		t.Fatalf("expected 1 episode, got %d", len(payload.Episodes))
	}
	if len(payload.Episodes[0].Entities) != 1 {
		t.Errorf("expected 1 entity, got %d", len(payload.Episodes[0].Entities))
	}
}

func TestEpisodeNotesMarkdown(t *testing.T) {
	entities := []database.Entity{
		{Name: "Jeff Bezos", Type: "person", Context: ptr("founder of Amazon")},
	}
	relationships := []database.Relationship{
		{SourceEntityName: "Jeff Bezos", TargetEntityName: "Amazon", Type: "founded_by"},
	}

	notes := episodeNotes(entities, relationships)
	if !strings.Contains(notes, "**Jeff Bezos** (person)") {
		t.Errorf("expected entity line, got %q", notes)
	}
	if !strings.Contains(notes, "*founded by*") {
		t.Errorf("expected relationship type with underscores replaced, got %q", notes)
	}
}
