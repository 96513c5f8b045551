package extract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/chanelmunez/founders/internal/database"
	"github.com/chanelmunez/founders/internal/llm"
)

const extractionPrompt = `You are building a knowledge graph from podcast episodes about founders and business history.

Extract the named entities and the relationships between them from this episode transcript.

Entity types:
- person: founders, executives, investors, historical figures
- place: companies, cities, countries, institutions
- event: foundings, acquisitions, product launches, historical events
- object: physical things central to the story
- media: books, letters, articles, films referenced
- product: commercial products that could be purchased today

Episode Title: %s
Transcript:
%s

Respond with ONLY this JSON:
{
    "entities": [
        {
            "name": "entity name",
            "type": "person" | "place" | "event" | "object" | "media" | "product",
            "context": "one sentence on the entity's role in this episode",
            "confidence": 0.0-1.0,
            "amazon_searchable": true or false,
            "keywords": ["search", "keywords"]
        }
    ],
    "relationships": [
        {
            "source": "source entity name",
            "target": "target entity name",
            "type": "short_snake_case_label",
            "description": "one sentence describing the relationship",
            "confidence": 0.0-1.0
        }
    ]
}

amazon_searchable: true only for media and product entities someone could buy (books, products). Relationships must reference entity names from the entities list.`

// entity types the extractor accepts; anything else is coerced to object.
var validTypes = map[string]bool{
	"person": true, "place": true, "event": true,
	"object": true, "media": true, "product": true,
}

const maxTranscriptChars = 24000

// Result holds the results of an extraction run.
type Result struct {
	Processed     int
	Entities      int
	Relationships int
	Dropped       int
	Errors        int
}

// Extractor runs LLM entity extraction over unextracted episodes.
type Extractor struct {
	db        *database.DB
	provider  llm.Provider
	maxTokens int
}

// NewExtractor creates a new entity extractor.
func NewExtractor(db *database.DB, provider llm.Provider, maxTokens int) *Extractor {
	if maxTokens == 0 {
		maxTokens = 2048
	}
	return &Extractor{db: db, provider: provider, maxTokens: maxTokens}
}

// ExtractAll extracts entities for every episode with a transcript that has
// not been extracted yet. The accumulator carries the id registry across
// episodes so duplicate ids are caught within the run.
func (e *Extractor) ExtractAll(ctx context.Context, acc *Accumulator) *Result {
	if e.provider == nil {
		log.Println("No LLM provider available for extraction")
		return &Result{Errors: 1}
	}

	episodes, err := e.db.GetUnextractedEpisodes()
	if err != nil {
		log.Printf("Error getting unextracted episodes: %v", err)
		return &Result{Errors: 1}
	}

	if len(episodes) == 0 {
		log.Println("No episodes pending extraction")
		return &Result{}
	}

	r := &Result{}
	for _, episode := range episodes {
		entities, relationships, err := e.extractEpisode(ctx, episode, acc)
		if err != nil {
			log.Printf("Error extracting episode %s: %v", episode.ID, err)
			r.Errors++
			continue
		}

		for _, entity := range entities {
			if err := e.db.InsertEntity(entity); err != nil {
				log.Printf("Error inserting entity %s: %v", entity.ID, err)
				continue
			}
			r.Entities++
		}
		for _, rel := range relationships {
			if err := e.db.InsertRelationship(rel); err != nil {
				log.Printf("Error inserting relationship %s: %v", rel.ID, err)
				continue
			}
			r.Relationships++
		}

		e.db.MarkExtracted(episode.ID, len(entities), len(relationships))
		r.Processed++
		r.Dropped += acc.takeDropped()
		log.Printf("Extracted %d entities, %d relationships from: %s",
			len(entities), len(relationships), episode.Title)
	}

	log.Printf("Extraction complete: %d episodes, %d entities, %d relationships, %d dropped, %d errors",
		r.Processed, r.Entities, r.Relationships, r.Dropped, r.Errors)
	return r
}

func (e *Extractor) extractEpisode(ctx context.Context, episode database.Episode, acc *Accumulator) ([]database.Entity, []database.Relationship, error) {
	if episode.Transcript == nil || *episode.Transcript == "" {
		return nil, nil, fmt.Errorf("episode has no transcript")
	}
	transcript := *episode.Transcript
	if len(transcript) > maxTranscriptChars {
		transcript = transcript[:maxTranscriptChars] + "..."
	}

	prompt := fmt.Sprintf(extractionPrompt, episode.Title, transcript)
	responseText, err := e.provider.Generate(ctx, prompt, e.maxTokens)
	if err != nil {
		return nil, nil, err
	}

	parsed := llm.ParseJSONResponse(responseText)
	if parsed == nil {
		return nil, nil, fmt.Errorf("unparseable LLM response")
	}

	entities := acc.addEntities(parsed, episode.ID)
	relationships := acc.addRelationships(parsed, episode.ID, entities)
	return entities, relationships, nil
}

func getString(m map[string]any, key, fallback string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

func getFloat(m map[string]any, key string, fallback float64) float64 {
	if v, ok := m[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return fallback
}

func getBool(m map[string]any, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func getStrings(m map[string]any, key string) []string {
	var out []string
	if v, ok := m[key]; ok {
		if arr, ok := v.([]any); ok {
			for _, item := range arr {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func normalizeType(entityType string) string {
	entityType = strings.ToLower(strings.TrimSpace(entityType))
	if validTypes[entityType] {
		return entityType
	}
	return "object"
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
