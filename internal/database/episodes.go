package database

import (
	"database/sql"
)

// InsertEpisode inserts an episode. Returns true on success, false if an
// episode with the same id or URL already exists.
func (db *DB) InsertEpisode(id, title string, number *int, publishedDate, url, transcript *string) (bool, error) {
	_, err := db.conn.Exec(
		`INSERT INTO episodes (id, title, number, published_date, url, transcript)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, title, number, publishedDate, url, transcript,
	)
	if err != nil {
		// Duplicate id/URL constraint
		return false, nil //nolint: nilerr
	}
	return true, nil
}

// GetAllEpisodes returns all episodes ordered by number (unnumbered last),
// then by publish date.
func (db *DB) GetAllEpisodes() ([]Episode, error) {
	rows, err := db.conn.Query(
		`SELECT id, title, number, published_date, url, transcript, transcript_fetched, collected_at
		FROM episodes ORDER BY number IS NULL, number, published_date`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEpisodes(rows)
}

// GetEpisodesNeedingTranscript returns episodes with no transcript text that
// haven't had a fetch attempt yet.
func (db *DB) GetEpisodesNeedingTranscript() ([]Episode, error) {
	rows, err := db.conn.Query(
		`SELECT id, title, number, published_date, url, transcript, transcript_fetched, collected_at
		FROM episodes WHERE (transcript IS NULL OR transcript = '') AND transcript_fetched = 0
		ORDER BY collected_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEpisodes(rows)
}

// UpdateEpisodeTranscript stores transcript text after fetching.
func (db *DB) UpdateEpisodeTranscript(episodeID string, transcript *string) error {
	_, err := db.conn.Exec(
		"UPDATE episodes SET transcript = ?, transcript_fetched = 1 WHERE id = ?",
		transcript, episodeID,
	)
	return err
}

// MarkTranscriptAttempted marks that we tried to fetch a transcript.
func (db *DB) MarkTranscriptAttempted(episodeID string) error {
	_, err := db.conn.Exec(
		"UPDATE episodes SET transcript_fetched = 1 WHERE id = ?", episodeID,
	)
	return err
}

// GetUnextractedEpisodes returns episodes with transcript text that have not
// been through entity extraction.
func (db *DB) GetUnextractedEpisodes() ([]Episode, error) {
	rows, err := db.conn.Query(
		`SELECT e.id, e.title, e.number, e.published_date, e.url, e.transcript, e.transcript_fetched, e.collected_at
		FROM episodes e LEFT JOIN episode_extractions x ON e.id = x.episode_id
		WHERE x.episode_id IS NULL AND e.transcript IS NOT NULL AND e.transcript != ''
		ORDER BY e.collected_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEpisodes(rows)
}

// MarkExtracted records that an episode has been through extraction.
func (db *DB) MarkExtracted(episodeID string, entityCount, relationshipCount int) error {
	_, err := db.conn.Exec(
		`INSERT INTO episode_extractions (episode_id, entity_count, relationship_count)
		VALUES (?, ?, ?)
		ON CONFLICT(episode_id) DO UPDATE SET
			entity_count = excluded.entity_count,
			relationship_count = excluded.relationship_count,
			extracted_at = datetime('now')`,
		episodeID, entityCount, relationshipCount,
	)
	return err
}

// GetEpisodeByID returns a single episode by id.
func (db *DB) GetEpisodeByID(episodeID string) (*Episode, error) {
	row := db.conn.QueryRow(
		`SELECT id, title, number, published_date, url, transcript, transcript_fetched, collected_at
		FROM episodes WHERE id = ?`, episodeID,
	)
	e, err := scanEpisode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func scanEpisodes(rows *sql.Rows) ([]Episode, error) {
	var episodes []Episode
	for rows.Next() {
		var e Episode
		var fetched int
		if err := rows.Scan(&e.ID, &e.Title, &e.Number, &e.PublishedDate,
			&e.URL, &e.Transcript, &fetched, &e.CollectedAt); err != nil {
			return nil, err
		}
		e.TranscriptFetched = fetched != 0
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

func scanEpisode(row *sql.Row) (*Episode, error) {
	var e Episode
	var fetched int
	if err := row.Scan(&e.ID, &e.Title, &e.Number, &e.PublishedDate,
		&e.URL, &e.Transcript, &fetched, &e.CollectedAt); err != nil {
		return nil, err
	}
	e.TranscriptFetched = fetched != 0
	return &e, nil
}
