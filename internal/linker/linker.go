// Package linker computes cross-episode links from the extracted entities.
// Linking is deterministic: the same corpus always yields the same links in
// the same order, with no randomness and no caches between runs.
package linker

import (
	"fmt"
	"log"
	"strings"

	"github.com/chanelmunez/founders/internal/config"
	"github.com/chanelmunez/founders/internal/database"
)

// EpisodeEntities pairs an episode with its extracted entities, in the order
// the linker should evaluate them.
type EpisodeEntities struct {
	Episode  database.Episode
	Entities []database.Entity
}

// Linker evaluates every episode pair and keeps those whose shared entities
// clear the strength threshold.
type Linker struct {
	scoring config.LinkerScoring
}

// NewLinker creates a linker with the given scoring constants.
func NewLinker(scoring config.LinkerScoring) *Linker {
	return &Linker{scoring: scoring}
}

// Link computes links over all unordered episode pairs in input order. Pair
// (i, j) with i < j produces at most one link; strength must be strictly
// above the minimum to be kept.
func (l *Linker) Link(episodes []EpisodeEntities) []database.EpisodeLink {
	var links []database.EpisodeLink
	for i := 0; i < len(episodes); i++ {
		for j := i + 1; j < len(episodes); j++ {
			if link := l.linkPair(episodes[i], episodes[j]); link != nil {
				link.Position = len(links)
				links = append(links, *link)
			}
		}
	}
	return links
}

func (l *Linker) linkPair(a, b EpisodeEntities) *database.EpisodeLink {
	shared := sharedEntities(a.Entities, b.Entities)
	if len(shared) == 0 {
		return nil
	}

	strength := l.strength(shared, len(a.Entities), len(b.Entities))
	if strength <= l.scoring.MinStrength {
		return nil
	}

	names := make([]string, len(shared))
	for i, e := range shared {
		names[i] = e.Name
	}

	return &database.EpisodeLink{
		ID:             linkID(a.Episode.ID, b.Episode.ID),
		EpisodeAID:     a.Episode.ID,
		EpisodeATitle:  a.Episode.Title,
		EpisodeBID:     b.Episode.ID,
		EpisodeBTitle:  b.Episode.Title,
		SharedEntities: names,
		Strength:       strength,
		Themes:         l.themes(shared),
	}
}

// sharedEntities returns a's entities that also appear in b, matching on
// case-insensitive name and type. Order follows a's entity order.
func sharedEntities(a, b []database.Entity) []database.Entity {
	type key struct{ name, typ string }
	inB := make(map[key]bool, len(b))
	for _, e := range b {
		inB[key{strings.ToLower(e.Name), strings.ToLower(e.Type)}] = true
	}

	var shared []database.Entity
	seen := make(map[key]bool)
	for _, e := range a {
		k := key{strings.ToLower(e.Name), strings.ToLower(e.Type)}
		if inB[k] && !seen[k] {
			shared = append(shared, e)
			seen[k] = true
		}
	}
	return shared
}

// strength sums the type weights of the shared entities and normalizes by
// the larger episode's entity count, doubled, capped at 1.
func (l *Linker) strength(shared []database.Entity, countA, countB int) float64 {
	max := countA
	if countB > max {
		max = countB
	}
	if max == 0 {
		return 0
	}

	var sum float64
	for _, e := range shared {
		sum += l.weight(e.Type)
	}

	strength := sum / float64(max) * 2
	if strength > 1 {
		return 1
	}
	return strength
}

func (l *Linker) weight(entityType string) float64 {
	if w, ok := l.scoring.TypeWeights[strings.ToLower(entityType)]; ok {
		return w
	}
	return l.scoring.DefaultWeight
}

// themes collects the theme labels whose rules match any shared entity,
// deduplicated in rule order.
func (l *Linker) themes(shared []database.Entity) []string {
	var themes []string
	seen := make(map[string]bool)
	for _, rule := range l.scoring.Themes {
		if seen[rule.Theme] {
			continue
		}
		for _, e := range shared {
			if matchesRule(rule, e) {
				themes = append(themes, rule.Theme)
				seen[rule.Theme] = true
				break
			}
		}
	}
	return themes
}

func matchesRule(rule config.ThemeRule, e database.Entity) bool {
	if rule.Type != "" && !strings.EqualFold(rule.Type, e.Type) {
		return false
	}
	if rule.ContextContains != "" {
		if e.Context == nil {
			return false
		}
		if !strings.Contains(strings.ToLower(*e.Context), strings.ToLower(rule.ContextContains)) {
			return false
		}
	}
	if rule.AmazonSearchable && !e.AmazonSearchable {
		return false
	}
	return true
}

// linkID carries both full episode ids: prefixes are not unique enough here
// because timestamp-keyed episode ids from the same window share them.
func linkID(aID, bID string) string {
	return fmt.Sprintf("link_%s_%s", aID, bID)
}

// Run recomputes the full link set and stores it, replacing any previous run.
func Run(db *database.DB, scoring config.LinkerScoring) (int, error) {
	episodes, err := db.GetAllEpisodes()
	if err != nil {
		return 0, err
	}

	input := make([]EpisodeEntities, 0, len(episodes))
	for _, ep := range episodes {
		entities, err := db.GetEntitiesForEpisode(ep.ID)
		if err != nil {
			return 0, err
		}
		input = append(input, EpisodeEntities{Episode: ep, Entities: entities})
	}

	links := NewLinker(scoring).Link(input)

	if err := db.ClearEpisodeLinks(); err != nil {
		return 0, err
	}
	for _, link := range links {
		if err := db.InsertEpisodeLink(link); err != nil {
			return 0, err
		}
	}

	log.Printf("Linking complete: %d links across %d episodes", len(links), len(episodes))
	return len(links), nil
}
