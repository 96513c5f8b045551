package database

// Episode represents one podcast episode.
type Episode struct {
	ID                string
	Title             string
	Number            *int
	PublishedDate     *string
	URL               *string
	Transcript        *string
	TranscriptFetched bool
	CollectedAt       *string
}

// Entity is a named entity extracted from a single episode's transcript.
// Entities are episode-scoped: the same real-world entity appearing in two
// episodes produces two distinct records.
type Entity struct {
	ID               string
	EpisodeID        string
	Name             string
	Type             string // person | place | event | object | media | product
	Context          *string
	Confidence       float64
	AmazonSearchable bool
	ProductsFetched  bool
	Keywords         []string
	Products         []Product
}

// Relationship links two entities within one episode. Entity names are
// denormalized alongside the ids so a failed lookup still leaves a usable
// record.
type Relationship struct {
	ID               string
	EpisodeID        string
	SourceEntityID   string
	SourceEntityName string
	TargetEntityID   string
	TargetEntityName string
	Type             string // free-text label, e.g. "founded_by"
	Description      *string
	Confidence       float64
	CrossEpisode     bool
}

// EpisodeLink is a computed cross-episode relationship. Links are ephemeral:
// the linker clears and fully recomputes them on every run.
type EpisodeLink struct {
	ID             string
	EpisodeAID     string
	EpisodeATitle  string
	EpisodeBID     string
	EpisodeBTitle  string
	SharedEntities []string
	Strength       float64
	Themes         []string
	Position       int
}

// Product is a resolved Amazon product reference attached to an entity.
type Product struct {
	URL       string
	Title     string
	Thumbnail *string
}

// ExtractionMark records that an episode has been through entity extraction.
type ExtractionMark struct {
	EpisodeID         string
	EntityCount       int
	RelationshipCount int
	ExtractedAt       *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalEpisodes      int
	WithTranscript     int
	ExtractedEpisodes  int
	TotalEntities      int
	TotalRelationships int
	EpisodeLinks       int
	EntityProducts     int
}
