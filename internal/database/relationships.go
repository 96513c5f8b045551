package database

import "database/sql"

// InsertRelationship inserts an extracted relationship. The caller is
// responsible for ensuring both entity ids resolve within the episode;
// dangling relationships are dropped before this point.
func (db *DB) InsertRelationship(r Relationship) error {
	_, err := db.conn.Exec(
		`INSERT INTO relationships
		(id, episode_id, source_entity_id, source_entity_name, target_entity_id, target_entity_name, type, description, confidence, cross_episode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EpisodeID, r.SourceEntityID, r.SourceEntityName,
		r.TargetEntityID, r.TargetEntityName, r.Type, r.Description,
		r.Confidence, boolToInt(r.CrossEpisode),
	)
	return err
}

// GetRelationshipsForEpisode returns all relationships of one episode.
func (db *DB) GetRelationshipsForEpisode(episodeID string) ([]Relationship, error) {
	rows, err := db.conn.Query(
		`SELECT id, episode_id, source_entity_id, source_entity_name, target_entity_id, target_entity_name, type, description, confidence, cross_episode
		FROM relationships WHERE episode_id = ? ORDER BY rowid`, episodeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRelationships(rows)
}

// GetAllRelationships returns the aggregated relationship list, in
// insertion order.
func (db *DB) GetAllRelationships() ([]Relationship, error) {
	rows, err := db.conn.Query(
		`SELECT id, episode_id, source_entity_id, source_entity_name, target_entity_id, target_entity_name, type, description, confidence, cross_episode
		FROM relationships ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRelationships(rows)
}

func scanRelationships(rows *sql.Rows) ([]Relationship, error) {
	var rels []Relationship
	for rows.Next() {
		var r Relationship
		var cross int
		if err := rows.Scan(&r.ID, &r.EpisodeID, &r.SourceEntityID, &r.SourceEntityName,
			&r.TargetEntityID, &r.TargetEntityName, &r.Type, &r.Description,
			&r.Confidence, &cross); err != nil {
			return nil, err
		}
		r.CrossEpisode = cross != 0
		rels = append(rels, r)
	}
	return rels, rows.Err()
}
