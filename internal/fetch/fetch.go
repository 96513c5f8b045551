package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/chanelmunez/founders/internal/database"
)

// Result holds the results of a transcript fetch run.
type Result struct {
	Fetched int
	Failed  int
}

// TranscriptFetcher fetches episode page text via HTTP + readability
// extraction. Once a domain returns an HTTP error the remaining episodes on
// that domain are skipped for the run.
type TranscriptFetcher struct {
	db     *database.DB
	client *http.Client
}

// NewTranscriptFetcher creates a new transcript fetcher.
func NewTranscriptFetcher(db *database.DB, timeout time.Duration) *TranscriptFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &TranscriptFetcher{
		db: db,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// FetchMissingTranscripts fetches transcripts for episodes that have none.
func (f *TranscriptFetcher) FetchMissingTranscripts() *Result {
	episodes, err := f.db.GetEpisodesNeedingTranscript()
	if err != nil {
		log.Printf("Error getting episodes needing transcript: %v", err)
		return &Result{}
	}

	if len(episodes) == 0 {
		log.Println("No episodes need transcript fetching")
		return &Result{}
	}

	result := &Result{}
	failedDomains := make(map[string]struct{})

	for _, episode := range episodes {
		if episode.URL == nil {
			f.db.MarkTranscriptAttempted(episode.ID)
			result.Failed++
			continue
		}
		episodeURL := *episode.URL

		u, _ := url.Parse(episodeURL)
		domain := ""
		if u != nil {
			domain = strings.ToLower(u.Host)
		}

		if _, failed := failedDomains[domain]; failed {
			f.db.MarkTranscriptAttempted(episode.ID)
			result.Failed++
			continue
		}

		text, httpErr := f.fetchPageText(episodeURL)
		if httpErr != nil {
			f.db.MarkTranscriptAttempted(episode.ID)
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("HTTP error for %s, skipping remaining from %s", episodeURL, domain)
			continue
		}

		if text != "" {
			cleaned := CleanTranscript(text)
			f.db.UpdateEpisodeTranscript(episode.ID, &cleaned)
			result.Fetched++
			log.Printf("Fetched transcript for: %s", episode.Title)
		} else {
			f.db.MarkTranscriptAttempted(episode.ID)
			result.Failed++
			log.Printf("No extractable text from: %s", episodeURL)
		}
	}

	log.Printf("Transcript fetch complete: %d fetched, %d failed", result.Fetched, result.Failed)
	return result
}

func (f *TranscriptFetcher) fetchPageText(pageURL string) (string, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "founders/1.0 (podcast indexer)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > 100 {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
