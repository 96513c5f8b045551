package collect

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageMeta holds metadata scraped from an episode's web page. Used as a
// fallback when the feed entry carries no episode number.
type PageMeta struct {
	Title  string
	Number *int
}

// PageScraper scrapes episode pages for metadata the feed omits.
type PageScraper struct {
	client *http.Client
}

// NewPageScraper creates a page scraper.
func NewPageScraper() *PageScraper {
	return &PageScraper{client: &http.Client{Timeout: 30 * time.Second}}
}

// Scrape fetches an episode page and extracts title and episode number from
// the og:title meta tag or the first h1.
func (s *PageScraper) Scrape(ctx context.Context, pageURL string) (*PageMeta, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "founders/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	meta := &PageMeta{}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		meta.Title = strings.TrimSpace(og)
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if meta.Title != "" {
		meta.Number = ParseEpisodeNumber(meta.Title)
	}
	return meta, nil
}
