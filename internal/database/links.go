package database

import (
	"database/sql"
	"encoding/json"
)

// ClearEpisodeLinks removes all computed cross-episode links. The linker
// recomputes the full set on every run.
func (db *DB) ClearEpisodeLinks() error {
	_, err := db.conn.Exec("DELETE FROM episode_links")
	return err
}

// InsertEpisodeLink stores one computed cross-episode link.
func (db *DB) InsertEpisodeLink(l EpisodeLink) error {
	shared, _ := json.Marshal(l.SharedEntities)
	themes, _ := json.Marshal(l.Themes)
	_, err := db.conn.Exec(
		`INSERT INTO episode_links
		(id, episode_a_id, episode_a_title, episode_b_id, episode_b_title, shared_entities, strength, themes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.EpisodeAID, l.EpisodeATitle, l.EpisodeBID, l.EpisodeBTitle,
		string(shared), l.Strength, string(themes), l.Position,
	)
	return err
}

// GetAllEpisodeLinks returns all links in evaluation order.
func (db *DB) GetAllEpisodeLinks() ([]EpisodeLink, error) {
	rows, err := db.conn.Query(
		`SELECT id, episode_a_id, episode_a_title, episode_b_id, episode_b_title, shared_entities, strength, themes, position
		FROM episode_links ORDER BY position`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLinks(rows)
}

// GetLinksForEpisode returns links touching one episode, in evaluation order.
func (db *DB) GetLinksForEpisode(episodeID string) ([]EpisodeLink, error) {
	rows, err := db.conn.Query(
		`SELECT id, episode_a_id, episode_a_title, episode_b_id, episode_b_title, shared_entities, strength, themes, position
		FROM episode_links WHERE episode_a_id = ? OR episode_b_id = ? ORDER BY position`,
		episodeID, episodeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLinks(rows)
}

func scanLinks(rows *sql.Rows) ([]EpisodeLink, error) {
	var links []EpisodeLink
	for rows.Next() {
		var l EpisodeLink
		var shared, themes sql.NullString
		if err := rows.Scan(&l.ID, &l.EpisodeAID, &l.EpisodeATitle,
			&l.EpisodeBID, &l.EpisodeBTitle, &shared, &l.Strength,
			&themes, &l.Position); err != nil {
			return nil, err
		}
		if shared.Valid && shared.String != "" {
			json.Unmarshal([]byte(shared.String), &l.SharedEntities) //nolint: errcheck
		}
		if themes.Valid && themes.String != "" {
			json.Unmarshal([]byte(themes.String), &l.Themes) //nolint: errcheck
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
