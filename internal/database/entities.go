package database

import (
	"database/sql"
	"encoding/json"
)

// InsertEntity inserts an extracted entity.
func (db *DB) InsertEntity(e Entity) error {
	keywords, _ := json.Marshal(e.Keywords)
	_, err := db.conn.Exec(
		`INSERT INTO entities (id, episode_id, name, type, context, confidence, amazon_searchable, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.EpisodeID, e.Name, e.Type, e.Context, e.Confidence,
		boolToInt(e.AmazonSearchable), string(keywords),
	)
	return err
}

// GetEntitiesForEpisode returns all entities extracted from one episode.
func (db *DB) GetEntitiesForEpisode(episodeID string) ([]Entity, error) {
	rows, err := db.conn.Query(
		`SELECT id, episode_id, name, type, context, confidence, amazon_searchable, products_fetched, keywords
		FROM entities WHERE episode_id = ? ORDER BY rowid`, episodeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntities(rows)
}

// GetAllEntities returns the aggregated entity list across all episodes,
// in insertion order.
func (db *DB) GetAllEntities() ([]Entity, error) {
	rows, err := db.conn.Query(
		`SELECT id, episode_id, name, type, context, confidence, amazon_searchable, products_fetched, keywords
		FROM entities ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntities(rows)
}

// GetEntitiesNeedingProducts returns amazon-searchable entities with no
// product lookup attempt yet, up to limit.
func (db *DB) GetEntitiesNeedingProducts(limit int) ([]Entity, error) {
	rows, err := db.conn.Query(
		`SELECT id, episode_id, name, type, context, confidence, amazon_searchable, products_fetched, keywords
		FROM entities WHERE amazon_searchable = 1 AND products_fetched = 0
		ORDER BY rowid LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntities(rows)
}

// MarkProductsFetched marks that a product lookup was attempted for an entity.
func (db *DB) MarkProductsFetched(entityID string) error {
	_, err := db.conn.Exec(
		"UPDATE entities SET products_fetched = 1 WHERE id = ?", entityID,
	)
	return err
}

// ClearExtractionForEpisode removes an episode's entities, relationships and
// extraction mark so the episode can be re-extracted.
func (db *DB) ClearExtractionForEpisode(episodeID string) error {
	if _, err := db.conn.Exec(
		`DELETE FROM entity_products WHERE entity_id IN (SELECT id FROM entities WHERE episode_id = ?)`,
		episodeID,
	); err != nil {
		return err
	}
	if _, err := db.conn.Exec("DELETE FROM relationships WHERE episode_id = ?", episodeID); err != nil {
		return err
	}
	if _, err := db.conn.Exec("DELETE FROM entities WHERE episode_id = ?", episodeID); err != nil {
		return err
	}
	_, err := db.conn.Exec("DELETE FROM episode_extractions WHERE episode_id = ?", episodeID)
	return err
}

func scanEntities(rows *sql.Rows) ([]Entity, error) {
	var entities []Entity
	for rows.Next() {
		var e Entity
		var searchable, fetched int
		var keywords sql.NullString
		if err := rows.Scan(&e.ID, &e.EpisodeID, &e.Name, &e.Type, &e.Context,
			&e.Confidence, &searchable, &fetched, &keywords); err != nil {
			return nil, err
		}
		e.AmazonSearchable = searchable != 0
		e.ProductsFetched = fetched != 0
		if keywords.Valid && keywords.String != "" {
			json.Unmarshal([]byte(keywords.String), &e.Keywords) //nolint: errcheck
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
