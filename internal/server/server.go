package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/chanelmunez/founders/internal/compose"
	"github.com/chanelmunez/founders/internal/config"
	"github.com/chanelmunez/founders/internal/database"
	"github.com/chanelmunez/founders/internal/search"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server serves the search UI and the JSON API over the extracted corpus.
type Server struct {
	db      *database.DB
	scoring config.SearchScoring
	pages   map[string]*template.Template
	mux     *http.ServeMux
}

// New creates a new Server.
func New(db *database.DB, scoring config.SearchScoring) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "episode.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, scoring: scoring, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/episode/", s.handleEpisode)
	s.mux.HandleFunc("/api/search", s.handleSearch)
	s.mux.HandleFunc("/api/corpus", s.handleCorpus)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	episodes, err := s.db.GetAllEpisodes()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	stats, _ := s.db.GetStats()

	s.render(w, "index.html", map[string]any{
		"Episodes": episodes,
		"Stats":    stats,
	})
}

func (s *Server) handleEpisode(w http.ResponseWriter, r *http.Request) {
	episodeID := strings.TrimPrefix(r.URL.Path, "/episode/")
	if episodeID == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	episode, err := s.db.GetEpisodeByID(episodeID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if episode == nil {
		http.NotFound(w, r)
		return
	}

	entities, _ := s.db.GetEntitiesForEpisode(episodeID)
	s.db.AttachProducts(entities)
	relationships, _ := s.db.GetRelationshipsForEpisode(episodeID)
	links, _ := s.db.GetLinksForEpisode(episodeID)

	s.render(w, "episode.html", map[string]any{
		"Episode":       episode,
		"Entities":      entities,
		"Relationships": relationships,
		"Links":         links,
		"Notes":         episodeNotes(entities, relationships),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	episodes, err := s.db.GetAllEpisodes()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	entities, err := s.db.GetAllEntities()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	relationships, err := s.db.GetAllRelationships()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	engine := search.NewEngine(search.Corpus{
		Episodes:      episodes,
		Entities:      entities,
		Relationships: relationships,
	}, s.scoring)

	results := engine.Search(query)
	if results == nil {
		results = []search.Result{}
	}

	writeJSON(w, map[string]any{
		"query":   query,
		"results": results,
	})
}

func (s *Server) handleCorpus(w http.ResponseWriter, r *http.Request) {
	export, err := compose.Build(s.db)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, export)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// episodeNotes formats the extraction as markdown for the episode page.
func episodeNotes(entities []database.Entity, relationships []database.Relationship) string {
	var b strings.Builder
	if len(entities) > 0 {
		b.WriteString("## Who and what comes up\n\n")
		for _, e := range entities {
			b.WriteString("- **" + e.Name + "** (" + e.Type + ")")
			if e.Context != nil && *e.Context != "" {
				b.WriteString(" - " + *e.Context)
			}
			b.WriteString("\n")
		}
	}
	if len(relationships) > 0 {
		b.WriteString("\n## Connections\n\n")
		for _, r := range relationships {
			b.WriteString("- " + r.SourceEntityName + " *" + strings.ReplaceAll(r.Type, "_", " ") + "* " + r.TargetEntityName)
			if r.Description != nil && *r.Description != "" {
				b.WriteString(" - " + *r.Description)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, scoring config.SearchScoring, port int) error {
	srv, err := New(db, scoring)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
