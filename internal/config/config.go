package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Podcast    Podcast    `yaml:"podcast"`
	Extraction Extraction `yaml:"extraction"`
	Amazon     Amazon     `yaml:"amazon"`
	Scoring    Scoring    `yaml:"scoring"`
	Output     Output     `yaml:"output"`
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
}

type Podcast struct {
	FeedURL  string `yaml:"feed_url"`
	Name     string `yaml:"name"`
	DaysBack int    `yaml:"days_back"`
}

type Extraction struct {
	Provider  string `yaml:"provider"` // openai | claude | gemini | groq
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
}

type Amazon struct {
	Enabled      bool   `yaml:"enabled"`
	APIKeyEnv    string `yaml:"api_key_env"`
	AffiliateTag string `yaml:"affiliate_tag"`
	MaxLookups   int    `yaml:"max_lookups_per_run"`
	MaxProducts  int    `yaml:"max_products_per_entity"`
}

// Scoring carries the tunable constants for the linker and the search
// engine. The defaults are empirical, not derived; keeping them in config
// lets them be adjusted without touching the algorithms.
type Scoring struct {
	Linker LinkerScoring `yaml:"linker"`
	Search SearchScoring `yaml:"search"`
}

type LinkerScoring struct {
	TypeWeights   map[string]float64 `yaml:"type_weights"`
	DefaultWeight float64            `yaml:"default_weight"`
	MinStrength   float64            `yaml:"min_strength"`
	Themes        []ThemeRule        `yaml:"themes"`
}

// ThemeRule tags a shared entity with a theme label. All set conditions
// must hold for the rule to fire; unset fields match anything.
type ThemeRule struct {
	Type             string `yaml:"type,omitempty"`
	ContextContains  string `yaml:"context_contains,omitempty"`
	AmazonSearchable bool   `yaml:"amazon_searchable,omitempty"`
	Theme            string `yaml:"theme"`
}

type SearchScoring struct {
	TitleScore         float64 `yaml:"title_score"`
	EntityNameScore    float64 `yaml:"entity_name_score"`
	RelationshipScore  float64 `yaml:"relationship_score"`
	EntityContextScore float64 `yaml:"entity_context_score"`
	EpisodeTextScore   float64 `yaml:"episode_text_score"`
	RecurrenceBonus    float64 `yaml:"recurrence_bonus"`
	RecurrenceCap      int     `yaml:"recurrence_cap"`
	LengthBaseline     int     `yaml:"length_baseline"`
	LengthPenalty      float64 `yaml:"length_penalty"`
	FuzzyCeiling       float64 `yaml:"fuzzy_ceiling"`
	MaxResults         int     `yaml:"max_results"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for founders.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "founders")
}

// DataDir returns the XDG data directory for founders.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "founders")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/founders/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'founders init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := Defaults()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config populated with the built-in defaults.
func Defaults() *Config {
	return &Config{
		Podcast: Podcast{
			Name:     "Founders",
			DaysBack: 0, // 0 = full back-catalog
		},
		Extraction: Extraction{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
			MaxTokens: 2048,
		},
		Amazon: Amazon{
			Enabled:     true,
			APIKeyEnv:   "SERPAPI_KEY",
			MaxLookups:  25,
			MaxProducts: 3,
		},
		Scoring: Scoring{
			Linker: LinkerScoring{
				TypeWeights: map[string]float64{
					"person":  3,
					"place":   2.5,
					"product": 2,
					"media":   1.5,
				},
				DefaultWeight: 1,
				MinStrength:   0.3,
				Themes: []ThemeRule{
					{Type: "person", Theme: "Entrepreneurship"},
					{Type: "place", ContextContains: "company", Theme: "Business Strategy"},
					{Type: "product", Theme: "Product Development"},
					{Type: "media", ContextContains: "book", Theme: "Business Literature"},
					{AmazonSearchable: true, Theme: "Recommended Products"},
				},
			},
			Search: SearchScoring{
				TitleScore:         100,
				EntityNameScore:    80,
				RelationshipScore:  60,
				EntityContextScore: 40,
				EpisodeTextScore:   20,
				RecurrenceBonus:    5,
				RecurrenceCap:      5,
				LengthBaseline:     200,
				LengthPenalty:      0.01,
				FuzzyCeiling:       0.9,
				MaxResults:         50,
			},
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
