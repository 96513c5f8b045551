// Package compose assembles the extracted corpus into the JSON snapshot the
// search UI and external consumers read.
package compose

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chanelmunez/founders/internal/database"
)

// Export is the corpus snapshot written to corpus.json.
type Export struct {
	GeneratedAt string          `json:"generated_at"`
	Episodes    []EpisodeExport `json:"episodes"`
	Links       []LinkExport    `json:"links"`
}

// EpisodeExport is one episode with everything extracted from it.
type EpisodeExport struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Number        *int                 `json:"number,omitempty"`
	PublishedDate *string              `json:"published_date,omitempty"`
	URL           *string              `json:"url,omitempty"`
	Entities      []EntityExport       `json:"entities"`
	Relationships []RelationshipExport `json:"relationships"`
}

type EntityExport struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	Context          *string         `json:"context,omitempty"`
	Confidence       float64         `json:"confidence"`
	AmazonSearchable bool            `json:"amazon_searchable"`
	Keywords         []string        `json:"keywords,omitempty"`
	Products         []ProductExport `json:"products,omitempty"`
}

type ProductExport struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Thumbnail *string `json:"thumbnail,omitempty"`
}

type RelationshipExport struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	Confidence  float64 `json:"confidence"`
}

type LinkExport struct {
	ID             string   `json:"id"`
	EpisodeA       string   `json:"episode_a"`
	EpisodeATitle  string   `json:"episode_a_title"`
	EpisodeB       string   `json:"episode_b"`
	EpisodeBTitle  string   `json:"episode_b_title"`
	SharedEntities []string `json:"shared_entities"`
	Strength       float64  `json:"strength"`
	Themes         []string `json:"themes"`
}

// Build assembles the export from the database.
func Build(db *database.DB) (*Export, error) {
	episodes, err := db.GetAllEpisodes()
	if err != nil {
		return nil, err
	}

	export := &Export{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Episodes:    make([]EpisodeExport, 0, len(episodes)),
	}

	for _, ep := range episodes {
		entities, err := db.GetEntitiesForEpisode(ep.ID)
		if err != nil {
			return nil, err
		}
		if err := db.AttachProducts(entities); err != nil {
			return nil, err
		}
		relationships, err := db.GetRelationshipsForEpisode(ep.ID)
		if err != nil {
			return nil, err
		}

		export.Episodes = append(export.Episodes, EpisodeExport{
			ID:            ep.ID,
			Title:         ep.Title,
			Number:        ep.Number,
			PublishedDate: ep.PublishedDate,
			URL:           ep.URL,
			Entities:      exportEntities(entities),
			Relationships: exportRelationships(relationships),
		})
	}

	links, err := db.GetAllEpisodeLinks()
	if err != nil {
		return nil, err
	}
	export.Links = make([]LinkExport, 0, len(links))
	for _, l := range links {
		export.Links = append(export.Links, LinkExport{
			ID:             l.ID,
			EpisodeA:       l.EpisodeAID,
			EpisodeATitle:  l.EpisodeATitle,
			EpisodeB:       l.EpisodeBID,
			EpisodeBTitle:  l.EpisodeBTitle,
			SharedEntities: l.SharedEntities,
			Strength:       l.Strength,
			Themes:         l.Themes,
		})
	}

	return export, nil
}

// Write builds the export and writes corpus.json into dataDir.
func Write(db *database.DB, dataDir string) (string, error) {
	export, err := Build(db)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dataDir, "corpus.json")
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing corpus: %w", err)
	}

	log.Printf("Corpus written: %s (%d episodes, %d links)", path, len(export.Episodes), len(export.Links))
	return path, nil
}

func exportEntities(entities []database.Entity) []EntityExport {
	out := make([]EntityExport, 0, len(entities))
	for _, e := range entities {
		exp := EntityExport{
			ID:               e.ID,
			Name:             e.Name,
			Type:             e.Type,
			Context:          e.Context,
			Confidence:       e.Confidence,
			AmazonSearchable: e.AmazonSearchable,
			Keywords:         e.Keywords,
		}
		for _, p := range e.Products {
			exp.Products = append(exp.Products, ProductExport{URL: p.URL, Title: p.Title, Thumbnail: p.Thumbnail})
		}
		out = append(out, exp)
	}
	return out
}

func exportRelationships(relationships []database.Relationship) []RelationshipExport {
	out := make([]RelationshipExport, 0, len(relationships))
	for _, r := range relationships {
		out = append(out, RelationshipExport{
			ID:          r.ID,
			Source:      r.SourceEntityName,
			Target:      r.TargetEntityName,
			Type:        r.Type,
			Description: r.Description,
			Confidence:  r.Confidence,
		})
	}
	return out
}
