package collect

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedEntry represents one episode parsed from the podcast feed.
type FeedEntry struct {
	URL           string
	Title         string
	Number        *int
	PublishedDate string // YYYY-MM-DD or empty
	Description   string
}

// FeedParser parses a podcast RSS/Atom feed into episode entries.
type FeedParser struct {
	feedURL string
}

// NewFeedParser creates a new FeedParser.
func NewFeedParser(feedURL string) *FeedParser {
	return &FeedParser{feedURL: feedURL}
}

// Parse fetches and parses the feed. daysBack limits entries to a recency
// window; 0 means the full back-catalog.
func (fp *FeedParser) Parse(daysBack int) ([]FeedEntry, error) {
	feed, err := gofeed.NewParser().ParseURL(fp.feedURL)
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if daysBack > 0 {
		cutoff = time.Now().AddDate(0, 0, -daysBack)
	}

	var entries []FeedEntry
	for _, item := range feed.Items {
		entry := parseItem(item)
		if entry == nil {
			continue
		}
		if isWithinWindow(entry.PublishedDate, cutoff) {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

func parseItem(item *gofeed.Item) *FeedEntry {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	if itemURL == "" {
		return nil
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}

	var publishedDate string
	if item.PublishedParsed != nil {
		publishedDate = item.PublishedParsed.Format("2006-01-02")
	} else if item.UpdatedParsed != nil {
		publishedDate = item.UpdatedParsed.Format("2006-01-02")
	}

	number := ParseEpisodeNumber(title)
	if number == nil && item.ITunesExt != nil && item.ITunesExt.Episode != "" {
		if n, err := strconv.Atoi(item.ITunesExt.Episode); err == nil {
			number = &n
		}
	}

	var description string
	if item.Content != "" {
		description = stripHTML(item.Content)
	} else if item.Description != "" {
		description = stripHTML(item.Description)
	}

	return &FeedEntry{
		URL:           itemURL,
		Title:         title,
		Number:        number,
		PublishedDate: publishedDate,
		Description:   description,
	}
}

// Common title shapes: "#370 Jeff Bezos", "370: How I Built This",
// "Episode 370 - ...". The number must lead the title to count; numbers in
// the middle of a title are usually years or amounts.
var episodeNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^#(\d+)\b`),
	regexp.MustCompile(`^(?i)episode\s+(\d+)\b`),
	regexp.MustCompile(`^(?i)ep\.?\s*(\d+)\b`),
	regexp.MustCompile(`^(\d+)[:.\s-]`),
}

// ParseEpisodeNumber extracts an episode number from a title, or nil.
func ParseEpisodeNumber(title string) *int {
	title = strings.TrimSpace(title)
	for _, re := range episodeNumberPatterns {
		if m := re.FindStringSubmatch(title); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return &n
			}
		}
	}
	return nil
}

func isWithinWindow(publishedDate string, cutoff time.Time) bool {
	if cutoff.IsZero() {
		return true
	}
	if publishedDate == "" {
		return true // benefit of the doubt
	}
	pub, err := time.Parse("2006-01-02", publishedDate)
	if err != nil {
		return true
	}
	return !pub.Before(cutoff)
}

func stripHTML(text string) string {
	// Simple HTML tag removal
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := result.String()
	// Decode common entities
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	// Normalize whitespace
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
