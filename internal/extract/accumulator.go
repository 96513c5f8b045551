package extract

import (
	"log"

	"github.com/chanelmunez/founders/internal/database"
	"github.com/chanelmunez/founders/internal/identity"
)

// Accumulator carries extraction state across episodes within a single run:
// the id registry that guards against duplicate ids and counters for what was
// dropped along the way. It is passed explicitly so runs are isolated.
type Accumulator struct {
	registry *identity.Registry
	dropped  int
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{registry: identity.NewRegistry()}
}

// addEntities converts the parsed entities array into entity records,
// validating names, coercing unknown types and clamping confidence. Entities
// whose id is already registered to another episode are skipped, never
// overwritten.
func (a *Accumulator) addEntities(parsed map[string]any, episodeID string) []database.Entity {
	raw, ok := parsed["entities"].([]any)
	if !ok {
		return nil
	}

	var entities []database.Entity
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		name := getString(m, "name", "")
		if name == "" {
			a.dropped++
			continue
		}
		entityType := normalizeType(getString(m, "type", ""))

		id := identity.EntityID(name, entityType, episodeID)
		if owner, exists := a.registry.Owner(id); exists {
			log.Printf("Skipping entity %q: id %s already minted for %s", name, id, owner)
			a.dropped++
			continue
		}
		a.registry.Register(id, episodeID) //nolint: errcheck

		entity := database.Entity{
			ID:               id,
			EpisodeID:        episodeID,
			Name:             name,
			Type:             entityType,
			Confidence:       clampConfidence(getFloat(m, "confidence", 0.7)),
			AmazonSearchable: getBool(m, "amazon_searchable"),
			Keywords:         getStrings(m, "keywords"),
		}
		if context := getString(m, "context", ""); context != "" {
			entity.Context = &context
		}
		entities = append(entities, entity)
	}
	return entities
}

// addRelationships converts the parsed relationships array into relationship
// records. Relationships whose source or target does not name an extracted
// entity of the same episode are dropped.
func (a *Accumulator) addRelationships(parsed map[string]any, episodeID string, entities []database.Entity) []database.Relationship {
	raw, ok := parsed["relationships"].([]any)
	if !ok {
		return nil
	}

	byName := make(map[string]database.Entity, len(entities))
	for _, e := range entities {
		byName[identity.NormalizeName(e.Name)] = e
	}

	var relationships []database.Relationship
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		source := getString(m, "source", "")
		target := getString(m, "target", "")
		relType := getString(m, "type", "")
		if source == "" || target == "" || relType == "" {
			a.dropped++
			continue
		}

		src, srcOK := byName[identity.NormalizeName(source)]
		dst, dstOK := byName[identity.NormalizeName(target)]
		if !srcOK || !dstOK {
			a.dropped++
			continue
		}

		id := identity.RelationshipID(source, relType, target, episodeID)
		if owner, exists := a.registry.Owner(id); exists {
			log.Printf("Skipping relationship: id %s already minted for %s", id, owner)
			a.dropped++
			continue
		}
		a.registry.Register(id, episodeID) //nolint: errcheck

		rel := database.Relationship{
			ID:               id,
			EpisodeID:        episodeID,
			SourceEntityID:   src.ID,
			SourceEntityName: src.Name,
			TargetEntityID:   dst.ID,
			TargetEntityName: dst.Name,
			Type:             relType,
			Confidence:       clampConfidence(getFloat(m, "confidence", 0.7)),
		}
		if desc := getString(m, "description", ""); desc != "" {
			rel.Description = &desc
		}
		relationships = append(relationships, rel)
	}
	return relationships
}

// takeDropped returns and resets the dropped counter.
func (a *Accumulator) takeDropped() int {
	n := a.dropped
	a.dropped = 0
	return n
}
