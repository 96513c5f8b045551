package database

// GetStats returns aggregate counts for the status command.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM episodes", &stats.TotalEpisodes},
		{"SELECT COUNT(*) FROM episodes WHERE transcript IS NOT NULL AND transcript != ''", &stats.WithTranscript},
		{"SELECT COUNT(*) FROM episode_extractions", &stats.ExtractedEpisodes},
		{"SELECT COUNT(*) FROM entities", &stats.TotalEntities},
		{"SELECT COUNT(*) FROM relationships", &stats.TotalRelationships},
		{"SELECT COUNT(*) FROM episode_links", &stats.EpisodeLinks},
		{"SELECT COUNT(*) FROM entity_products", &stats.EntityProducts},
	}
	for _, q := range queries {
		if err := db.conn.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
