package amazon

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chanelmunez/founders/internal/database"
)

const serpAPIBaseURL = "https://serpapi.com/search.json"

// SerpAPIClient searches Amazon product listings through SerpAPI.
type SerpAPIClient struct {
	apiKey       string
	affiliateTag string
	client       *http.Client
}

// NewSerpAPIClient creates a SerpAPI client. The affiliate tag, when set, is
// appended to every product URL.
func NewSerpAPIClient(apiKeyEnv, affiliateTag string) *SerpAPIClient {
	return &SerpAPIClient{
		apiKey:       os.Getenv(apiKeyEnv),
		affiliateTag: affiliateTag,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the API key is available.
func (c *SerpAPIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SearchProducts searches Amazon for a query and returns up to maxProducts
// results.
func (c *SerpAPIClient) SearchProducts(query string, maxProducts int) []database.Product {
	if c.apiKey == "" {
		log.Println("SerpAPI not configured, skipping product search")
		return nil
	}

	params := url.Values{
		"engine":  {"amazon"},
		"k":       {query},
		"api_key": {c.apiKey},
	}

	req, err := http.NewRequest("GET", serpAPIBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("SerpAPI request error: %v", err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("SerpAPI error: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("SerpAPI HTTP error: %d", resp.StatusCode)
		return nil
	}

	var result struct {
		OrganicResults []struct {
			Title     string `json:"title"`
			Link      string `json:"link"`
			Thumbnail string `json:"thumbnail"`
		} `json:"organic_results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("SerpAPI decode error: %v", err)
		return nil
	}

	var products []database.Product
	for _, item := range result.OrganicResults {
		if len(products) >= maxProducts {
			break
		}
		if item.Link == "" || item.Title == "" {
			continue
		}

		p := database.Product{
			URL:   c.tagURL(item.Link),
			Title: strings.TrimSpace(item.Title),
		}
		if item.Thumbnail != "" {
			thumb := item.Thumbnail
			p.Thumbnail = &thumb
		}
		products = append(products, p)
	}

	log.Printf("Fetched %d products from SerpAPI for query: %s", len(products), query)
	return products
}

// tagURL appends the affiliate tag as a query parameter.
func (c *SerpAPIClient) tagURL(productURL string) string {
	if c.affiliateTag == "" {
		return productURL
	}
	u, err := url.Parse(productURL)
	if err != nil {
		return productURL
	}
	q := u.Query()
	q.Set("tag", c.affiliateTag)
	u.RawQuery = q.Encode()
	return u.String()
}
