package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chanelmunez/founders/internal/collect"
	"github.com/chanelmunez/founders/internal/config"
	"github.com/chanelmunez/founders/internal/database"
	"github.com/chanelmunez/founders/internal/pipeline"
	"github.com/chanelmunez/founders/internal/search"
	"github.com/chanelmunez/founders/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "founders",
	Short:   "Podcast knowledge graph and search",
	Long:    "Founders collects podcast episodes, extracts entities and relationships, links episodes into a knowledge graph, and serves a searchable index.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// API keys may live in a local .env during development.
		godotenv.Load() //nolint: errcheck

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("founders", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/founders/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set the podcast feed, API keys, and LLM provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Episodes:")
		fmt.Printf("  Collected: %d\n", stats.TotalEpisodes)
		fmt.Printf("  With transcript: %d\n", stats.WithTranscript)
		fmt.Printf("  Extracted: %d\n", stats.ExtractedEpisodes)
		fmt.Println("\nKnowledge graph:")
		fmt.Printf("  Entities: %d\n", stats.TotalEntities)
		fmt.Printf("  Relationships: %d\n", stats.TotalRelationships)
		fmt.Printf("  Episode links: %d\n", stats.EpisodeLinks)
		fmt.Printf("  Amazon products: %d\n", stats.EntityProducts)
		return nil
	},
}

// --- collect command ---

var collectDaysBack int

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect episodes from the podcast feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Collecting episodes from feed...")
		collector := collect.NewCollector(cfg, db, collectDaysBack)
		result, err := collector.Collect(context.Background())
		if err != nil {
			return err
		}

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  New episodes: %d\n", result.NewEpisodes)
		fmt.Printf("  Already known: %d\n", result.Existing)
		return nil
	},
}

func init() {
	collectCmd.Flags().IntVar(&collectDaysBack, "days-back", 0, "Only collect episodes published in the last N days (0 = full back-catalog)")
}

// --- run command ---

var (
	dryRun      bool
	runDaysBack int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: collect -> fetch -> extract -> link -> enrich -> compose",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		pipe := pipeline.New(ctx, cfg, db)

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun()
		} else {
			result = pipe.Run(ctx, runDaysBack)
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/6: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if !dryRun {
			fmt.Println("\nPipeline complete! Run 'founders serve' to browse the index.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().IntVar(&runDaysBack, "days-back", 0, "Override collection lookback window (days)")
}

// --- search command ---

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the extracted corpus from the command line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		episodes, err := db.GetAllEpisodes()
		if err != nil {
			return err
		}
		entities, err := db.GetAllEntities()
		if err != nil {
			return err
		}
		relationships, err := db.GetAllRelationships()
		if err != nil {
			return err
		}

		engine := search.NewEngine(search.Corpus{
			Episodes:      episodes,
			Entities:      entities,
			Relationships: relationships,
		}, cfg.Scoring.Search)

		results := engine.Search(args[0])
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		for _, r := range results {
			fmt.Printf("%6.1f  [%s] %s\n", r.Score, r.MatchType, r.Title)
			if r.Description != "" {
				fmt.Printf("        %s\n", r.Description)
			}
		}
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, cfg.Scoring.Search, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(filepath.Join(dataDir, "founders.db"))
}
