// Package amazon resolves amazon-searchable entities to product listings via
// SerpAPI, tagging every URL with the configured affiliate tag.
package amazon

import (
	"log"
	"strings"

	"github.com/chanelmunez/founders/internal/config"
	"github.com/chanelmunez/founders/internal/database"
)

// productSearcher is implemented by SerpAPIClient.
type productSearcher interface {
	SearchProducts(query string, maxProducts int) []database.Product
	IsConfigured() bool
}

// Result holds the results of an enrichment run.
type Result struct {
	Looked   int
	Products int
	Skipped  int
}

// Enricher attaches Amazon products to extracted entities. Lookups are
// bounded per run; every attempted entity is marked so it is not retried.
type Enricher struct {
	db          *database.DB
	searcher    productSearcher
	maxLookups  int
	maxProducts int
}

// NewEnricher creates an enricher from config.
func NewEnricher(cfg *config.Config, db *database.DB) *Enricher {
	return &Enricher{
		db:          db,
		searcher:    NewSerpAPIClient(cfg.Amazon.APIKeyEnv, cfg.Amazon.AffiliateTag),
		maxLookups:  cfg.Amazon.MaxLookups,
		maxProducts: cfg.Amazon.MaxProducts,
	}
}

// Enrich looks up products for amazon-searchable entities with no lookup yet.
func (e *Enricher) Enrich() *Result {
	if !e.searcher.IsConfigured() {
		log.Println("Amazon enrichment skipped: SerpAPI not configured")
		return &Result{}
	}

	entities, err := e.db.GetEntitiesNeedingProducts(e.maxLookups)
	if err != nil {
		log.Printf("Error getting entities needing products: %v", err)
		return &Result{}
	}

	if len(entities) == 0 {
		log.Println("No entities need product enrichment")
		return &Result{}
	}

	r := &Result{}
	for _, entity := range entities {
		products := e.searcher.SearchProducts(searchQuery(entity), e.maxProducts)
		r.Looked++

		if len(products) == 0 {
			r.Skipped++
			e.db.MarkProductsFetched(entity.ID)
			continue
		}

		for _, p := range products {
			if err := e.db.InsertEntityProduct(entity.ID, p); err != nil {
				log.Printf("Error storing product for %s: %v", entity.ID, err)
				continue
			}
			r.Products++
		}
		e.db.MarkProductsFetched(entity.ID)
	}

	log.Printf("Enrichment complete: %d lookups, %d products, %d without results",
		r.Looked, r.Products, r.Skipped)
	return r
}

// searchQuery builds the Amazon query from the entity name plus its extracted
// keywords.
func searchQuery(entity database.Entity) string {
	parts := []string{entity.Name}
	for _, kw := range entity.Keywords {
		if !strings.EqualFold(kw, entity.Name) {
			parts = append(parts, kw)
		}
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, " ")
}
