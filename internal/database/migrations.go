package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS episodes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    number INTEGER,
    published_date TEXT,
    url TEXT UNIQUE,
    transcript TEXT,
    transcript_fetched INTEGER DEFAULT 0,
    collected_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS episode_extractions (
    episode_id TEXT PRIMARY KEY REFERENCES episodes(id),
    entity_count INTEGER DEFAULT 0,
    relationship_count INTEGER DEFAULT 0,
    extracted_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS entities (
    id TEXT PRIMARY KEY,
    episode_id TEXT NOT NULL REFERENCES episodes(id),
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    context TEXT,
    confidence REAL DEFAULT 0,
    amazon_searchable INTEGER DEFAULT 0,
    products_fetched INTEGER DEFAULT 0,
    keywords TEXT
);

CREATE TABLE IF NOT EXISTS relationships (
    id TEXT PRIMARY KEY,
    episode_id TEXT NOT NULL REFERENCES episodes(id),
    source_entity_id TEXT NOT NULL,
    source_entity_name TEXT NOT NULL,
    target_entity_id TEXT NOT NULL,
    target_entity_name TEXT NOT NULL,
    type TEXT NOT NULL,
    description TEXT,
    confidence REAL DEFAULT 0,
    cross_episode INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS episode_links (
    id TEXT PRIMARY KEY,
    episode_a_id TEXT NOT NULL REFERENCES episodes(id),
    episode_a_title TEXT NOT NULL,
    episode_b_id TEXT NOT NULL REFERENCES episodes(id),
    episode_b_title TEXT NOT NULL,
    shared_entities TEXT,
    strength REAL NOT NULL,
    themes TEXT,
    position INTEGER DEFAULT 0,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS entity_products (
    entity_id TEXT NOT NULL REFERENCES entities(id),
    url TEXT NOT NULL,
    title TEXT NOT NULL,
    thumbnail TEXT,
    PRIMARY KEY (entity_id, url)
);

CREATE INDEX IF NOT EXISTS idx_episodes_number ON episodes(number);
CREATE INDEX IF NOT EXISTS idx_episodes_url ON episodes(url);
CREATE INDEX IF NOT EXISTS idx_entities_episode ON entities(episode_id);
CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);
CREATE INDEX IF NOT EXISTS idx_relationships_episode ON relationships(episode_id);
CREATE INDEX IF NOT EXISTS idx_episode_links_a ON episode_links(episode_a_id);
CREATE INDEX IF NOT EXISTS idx_episode_links_b ON episode_links(episode_b_id);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
