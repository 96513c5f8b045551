// Package search implements the deterministic relevance engine over the
// extracted corpus. Scoring is plain arithmetic over substring matches; no
// randomness, no external index.
package search

import (
	"sort"
	"strings"

	"github.com/chanelmunez/founders/internal/config"
	"github.com/chanelmunez/founders/internal/database"
)

// Corpus is the searchable snapshot of everything extracted so far.
type Corpus struct {
	Episodes      []database.Episode
	Entities      []database.Entity
	Relationships []database.Relationship
}

// Result is one search hit. EpisodeID names the episode the hit belongs to;
// at most one result per episode survives deduplication.
type Result struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"` // episode | entity | relationship
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	EpisodeID   string  `json:"episode_id"`
	MatchType   string  `json:"match_type"` // title | entity_name | relationship | entity_context | episode_text | fuzzy
	Score       float64 `json:"score"`
}

// Engine scores queries against a corpus using configured constants.
type Engine struct {
	corpus  Corpus
	scoring config.SearchScoring
}

// NewEngine creates a search engine over a corpus.
func NewEngine(corpus Corpus, scoring config.SearchScoring) *Engine {
	return &Engine{corpus: corpus, scoring: scoring}
}

// Search runs a query and returns results sorted by descending score, one
// per episode, capped at the configured maximum. An empty query returns no
// results.
func (e *Engine) Search(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	results := e.exactMatches(query)
	if len(results) == 0 {
		results = e.fuzzyMatches(query)
	}

	results = dedupeByEpisode(results)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if e.scoring.MaxResults > 0 && len(results) > e.scoring.MaxResults {
		results = results[:e.scoring.MaxResults]
	}
	return results
}

func (e *Engine) exactMatches(query string) []Result {
	var results []Result

	for _, ep := range e.corpus.Episodes {
		if strings.Contains(strings.ToLower(ep.Title), query) {
			results = append(results, Result{
				ID:        ep.ID,
				Kind:      "episode",
				Title:     ep.Title,
				EpisodeID: ep.ID,
				MatchType: "title",
				Score:     e.score(e.scoring.TitleScore, ep.Title, query),
			})
		} else if ep.Transcript != nil && strings.Contains(strings.ToLower(*ep.Transcript), query) {
			results = append(results, Result{
				ID:        ep.ID,
				Kind:      "episode",
				Title:     ep.Title,
				EpisodeID: ep.ID,
				MatchType: "episode_text",
				Score:     e.score(e.scoring.EpisodeTextScore, *ep.Transcript, query),
			})
		}
	}

	for _, entity := range e.corpus.Entities {
		if strings.Contains(strings.ToLower(entity.Name), query) {
			results = append(results, Result{
				ID:          entity.ID,
				Kind:        "entity",
				Title:       entity.Name,
				Description: derefOr(entity.Context, ""),
				EpisodeID:   entity.EpisodeID,
				MatchType:   "entity_name",
				Score:       e.score(e.scoring.EntityNameScore, entity.Name, query),
			})
		} else if entity.Context != nil && strings.Contains(strings.ToLower(*entity.Context), query) {
			results = append(results, Result{
				ID:          entity.ID,
				Kind:        "entity",
				Title:       entity.Name,
				Description: *entity.Context,
				EpisodeID:   entity.EpisodeID,
				MatchType:   "entity_context",
				Score:       e.score(e.scoring.EntityContextScore, *entity.Context, query),
			})
		}
	}

	for _, rel := range e.corpus.Relationships {
		// Type label is checked before the description; the first hit decides
		// which field is scored.
		var matched string
		if strings.Contains(strings.ToLower(rel.Type), query) {
			matched = rel.Type
		} else if rel.Description != nil && strings.Contains(strings.ToLower(*rel.Description), query) {
			matched = *rel.Description
		}
		if matched != "" {
			results = append(results, Result{
				ID:          rel.ID,
				Kind:        "relationship",
				Title:       rel.SourceEntityName + " " + rel.Type + " " + rel.TargetEntityName,
				Description: derefOr(rel.Description, ""),
				EpisodeID:   rel.EpisodeID,
				MatchType:   "relationship",
				Score:       e.score(e.scoring.RelationshipScore, matched, query),
			})
		}
	}

	return results
}

// score computes base + recurrence bonus - length penalty, floored at 1.
func (e *Engine) score(base float64, text, query string) float64 {
	count := strings.Count(strings.ToLower(text), query)
	if count > e.scoring.RecurrenceCap {
		count = e.scoring.RecurrenceCap
	}

	var penalty float64
	if over := len(text) - e.scoring.LengthBaseline; over > 0 {
		penalty = float64(over) * e.scoring.LengthPenalty
	}

	score := base + float64(count)*e.scoring.RecurrenceBonus - penalty
	if score < 1 {
		return 1
	}
	return score
}

// fuzzyMatches scores by the fraction of query words present in an episode's
// title or entity names. Fuzzy scores stay strictly below every exact score.
func (e *Engine) fuzzyMatches(query string) []Result {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil
	}

	var results []Result
	for _, ep := range e.corpus.Episodes {
		text := strings.ToLower(ep.Title)
		if ep.Transcript != nil {
			text += " " + strings.ToLower(*ep.Transcript)
		}

		matched := 0
		for _, w := range words {
			if strings.Contains(text, w) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}

		results = append(results, Result{
			ID:        ep.ID,
			Kind:      "episode",
			Title:     ep.Title,
			EpisodeID: ep.ID,
			MatchType: "fuzzy",
			Score:     float64(matched) / float64(len(words)) * e.scoring.FuzzyCeiling,
		})
	}
	return results
}

// dedupeByEpisode keeps the highest-scoring result per owning episode,
// preserving first-seen order for the survivors.
func dedupeByEpisode(results []Result) []Result {
	best := make(map[string]int)
	var order []string
	for i, r := range results {
		if prev, ok := best[r.EpisodeID]; !ok {
			best[r.EpisodeID] = i
			order = append(order, r.EpisodeID)
		} else if r.Score > results[prev].Score {
			best[r.EpisodeID] = i
		}
	}

	out := make([]Result, 0, len(order))
	for _, id := range order {
		out = append(out, results[best[id]])
	}
	return out
}

func derefOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}
