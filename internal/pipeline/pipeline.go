package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chanelmunez/founders/internal/amazon"
	"github.com/chanelmunez/founders/internal/collect"
	"github.com/chanelmunez/founders/internal/compose"
	"github.com/chanelmunez/founders/internal/config"
	"github.com/chanelmunez/founders/internal/database"
	"github.com/chanelmunez/founders/internal/extract"
	"github.com/chanelmunez/founders/internal/fetch"
	"github.com/chanelmunez/founders/internal/linker"
	"github.com/chanelmunez/founders/internal/llm"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Steps []StepResult
}

// Pipeline orchestrates the 6-step corpus build: collect, fetch, extract,
// link, enrich, compose.
type Pipeline struct {
	cfg      *config.Config
	db       *database.DB
	provider llm.Provider
}

// New creates a new pipeline. The LLM provider is created lazily by config;
// an unconfigured provider only fails the extract step.
func New(ctx context.Context, cfg *config.Config, db *database.DB) *Pipeline {
	provider, err := llm.CreateProvider(ctx, cfg.Extraction.Provider, cfg.Extraction.Model,
		cfg.Extraction.APIKeyEnv, cfg.Extraction.BaseURL)
	if err != nil {
		log.Printf("LLM provider unavailable: %v", err)
		provider = nil
	}
	return &Pipeline{cfg: cfg, db: db, provider: provider}
}

// Run executes the full 6-step pipeline.
func (p *Pipeline) Run(ctx context.Context, daysBack int) *Result {
	r := &Result{}

	// Step 1: Collect
	step := p.runCollect(ctx, daysBack)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 2: Fetch transcripts
	step = p.runFetch()
	r.Steps = append(r.Steps, step)

	// Step 3: Extract
	step = p.runExtract(ctx)
	r.Steps = append(r.Steps, step)

	// Step 4: Link
	step = p.runLink()
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 5: Enrich
	step = p.runEnrich()
	r.Steps = append(r.Steps, step)

	// Step 6: Compose
	step = p.runCompose()
	r.Steps = append(r.Steps, step)

	return r
}

// DryRun shows what would be done without executing.
func (p *Pipeline) DryRun() *Result {
	r := &Result{}

	episodes, _ := p.db.GetAllEpisodes()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("[dry-run] %d episodes already in DB", len(episodes)),
	})

	needing, _ := p.db.GetEpisodesNeedingTranscript()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("[dry-run] %d episodes need transcript fetching", len(needing)),
	})

	unextracted, _ := p.db.GetUnextractedEpisodes()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Extract",
		Summary: fmt.Sprintf("[dry-run] %d episodes need extraction", len(unextracted)),
	})

	links, _ := p.db.GetAllEpisodeLinks()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Link",
		Summary: fmt.Sprintf("[dry-run] would recompute links (%d currently stored)", len(links)),
	})

	pending, _ := p.db.GetEntitiesNeedingProducts(p.cfg.Amazon.MaxLookups)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Enrich",
		Summary: fmt.Sprintf("[dry-run] %d entities need product lookup", len(pending)),
	})

	r.Steps = append(r.Steps, StepResult{
		Name:    "Compose",
		Summary: fmt.Sprintf("[dry-run] would write corpus.json to %s", p.cfg.GetDataDir()),
	})

	return r
}

func (p *Pipeline) runCollect(ctx context.Context, daysBack int) StepResult {
	log.Println("Step 1/6: Collecting episodes...")
	collector := collect.NewCollector(p.cfg, p.db, daysBack)
	result, err := collector.Collect(ctx)
	if err != nil {
		return StepResult{Name: "Collect", Err: err}
	}
	return StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("Found %d new episodes (%d total, %d existing)", result.NewEpisodes, result.TotalFound, result.Existing),
	}
}

func (p *Pipeline) runFetch() StepResult {
	log.Println("Step 2/6: Fetching transcripts...")
	fetcher := fetch.NewTranscriptFetcher(p.db, 15*time.Second)
	result := fetcher.FetchMissingTranscripts()
	return StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("Fetched %d transcripts, %d failed", result.Fetched, result.Failed),
	}
}

func (p *Pipeline) runExtract(ctx context.Context) StepResult {
	log.Println("Step 3/6: Extracting entities...")
	extractor := extract.NewExtractor(p.db, p.provider, p.cfg.Extraction.MaxTokens)
	result := extractor.ExtractAll(ctx, extract.NewAccumulator())
	return StepResult{
		Name: "Extract",
		Summary: fmt.Sprintf("Extracted %d entities, %d relationships from %d episodes (%d dropped)",
			result.Entities, result.Relationships, result.Processed, result.Dropped),
	}
}

func (p *Pipeline) runLink() StepResult {
	log.Println("Step 4/6: Linking episodes...")
	count, err := linker.Run(p.db, p.cfg.Scoring.Linker)
	if err != nil {
		return StepResult{Name: "Link", Err: err}
	}
	return StepResult{
		Name:    "Link",
		Summary: fmt.Sprintf("Computed %d cross-episode links", count),
	}
}

func (p *Pipeline) runEnrich() StepResult {
	log.Println("Step 5/6: Enriching with Amazon products...")
	if !p.cfg.Amazon.Enabled {
		return StepResult{Name: "Enrich", Summary: "Amazon enrichment disabled"}
	}
	enricher := amazon.NewEnricher(p.cfg, p.db)
	result := enricher.Enrich()
	return StepResult{
		Name:    "Enrich",
		Summary: fmt.Sprintf("Looked up %d entities, stored %d products", result.Looked, result.Products),
	}
}

func (p *Pipeline) runCompose() StepResult {
	log.Println("Step 6/6: Composing corpus...")
	path, err := compose.Write(p.db, p.cfg.GetDataDir())
	if err != nil {
		return StepResult{Name: "Compose", Err: err}
	}
	return StepResult{
		Name:    "Compose",
		Summary: fmt.Sprintf("Corpus written to %s", path),
	}
}
