package collect

import (
	"context"
	"log"

	"github.com/chanelmunez/founders/internal/config"
	"github.com/chanelmunez/founders/internal/database"
	"github.com/chanelmunez/founders/internal/identity"
)

// Result holds the results of a collection run.
type Result struct {
	TotalFound  int
	NewEpisodes int
	Existing    int
}

// Collector pulls episodes from the podcast feed into the database. Episodes
// already collected keep their ids across runs; the mapper re-identifies them
// by number, URL or title before a new id is minted.
type Collector struct {
	db         *database.DB
	feedParser *FeedParser
	scraper    *PageScraper
	daysBack   int
}

// NewCollector creates a new episode collector.
func NewCollector(cfg *config.Config, db *database.DB, daysBack int) *Collector {
	if daysBack == 0 {
		daysBack = cfg.Podcast.DaysBack
	}
	return &Collector{
		db:         db,
		feedParser: NewFeedParser(cfg.Podcast.FeedURL),
		scraper:    NewPageScraper(),
		daysBack:   daysBack,
	}
}

// Collect parses the feed and inserts any episodes not seen before.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	log.Println("Collecting episodes from feed...")
	entries, err := c.feedParser.Parse(c.daysBack)
	if err != nil {
		return nil, err
	}

	known, err := c.knownEpisodes()
	if err != nil {
		return nil, err
	}
	mapper := identity.NewMapper(known)

	r := &Result{TotalFound: len(entries)}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return r, ctx.Err()
		}

		number := entry.Number
		if number == nil && entry.URL != "" {
			// The feed title had no number; try the episode page.
			if meta, err := c.scraper.Scrape(ctx, entry.URL); err == nil && meta.Number != nil {
				number = meta.Number
			}
		}

		if existing := mapper.Resolve(number, entry.URL, entry.Title); existing != "" {
			r.Existing++
			continue
		}

		id := identity.NewEpisodeID(number, strPtrOrNil(entry.PublishedDate))
		ok, err := c.db.InsertEpisode(id, entry.Title, number,
			strPtrOrNil(entry.PublishedDate), strPtrOrNil(entry.URL), nil)
		if err != nil {
			return r, err
		}
		if ok {
			r.NewEpisodes++
		} else {
			r.Existing++
		}
	}

	log.Printf("Collection complete: %d found, %d new, %d existing", r.TotalFound, r.NewEpisodes, r.Existing)
	return r, nil
}

func (c *Collector) knownEpisodes() ([]identity.Known, error) {
	episodes, err := c.db.GetAllEpisodes()
	if err != nil {
		return nil, err
	}
	known := make([]identity.Known, 0, len(episodes))
	for _, e := range episodes {
		k := identity.Known{ID: e.ID, Number: e.Number, Title: e.Title}
		if e.URL != nil {
			k.URL = *e.URL
		}
		known = append(known, k)
	}
	return known, nil
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
