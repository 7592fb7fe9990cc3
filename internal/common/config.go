package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Pipeline    PipelineConfig `toml:"pipeline"`
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
	Schedule    ScheduleConfig `toml:"schedule"`
	Research    ResearchConfig `toml:"research"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Claude      ClaudeConfig   `toml:"claude"`
	Grok        GrokConfig     `toml:"grok"`
	LLM         LLMConfig      `toml:"llm"`
}

// PipelineConfig controls the orchestrator loop and word-count governance.
type PipelineConfig struct {
	PolitenessDelay    string `toml:"politeness_delay"`     // delay between items, e.g. "5s"
	PillarMinWords     int    `toml:"pillar_min_words"`     // pillar band lower bound
	PillarMaxWords     int    `toml:"pillar_max_words"`     // pillar band upper bound
	SupportingMinWords int    `toml:"supporting_min_words"` // supporting band lower bound
	SupportingMaxWords int    `toml:"supporting_max_words"` // supporting band upper bound
	OverflowTolerance  int    `toml:"overflow_tolerance"`   // words past band max before the warning escalates
	MetaDescriptionMax int    `toml:"meta_description_max"` // character cap for meta descriptions
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// ScheduleConfig enables recurring batch runs instead of a single pass.
type ScheduleConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"` // cron expression with seconds field
}

// ResearchConfig controls the search-synthesis stage and source excerpting.
type ResearchConfig struct {
	FetchSources   bool   `toml:"fetch_sources"`   // fetch and excerpt cited source pages
	MaxSources     int    `toml:"max_sources"`     // cap on excerpted sources per item
	RequestTimeout string `toml:"request_timeout"` // per-fetch HTTP timeout
	RateLimit      string `toml:"rate_limit"`      // minimum gap between source fetches
	UserAgent      string `toml:"user_agent"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for research synthesis (default: "gemini-3-flash-preview")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	RateLimit   string  `toml:"rate_limit"`  // Rate limit duration string (default: "4s" for 15 RPM)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`    // Anthropic API key
	Model       string  `toml:"model"`      // Default model for drafting (default: "claude-sonnet-4-20250514")
	PlanModel   string  `toml:"plan_model"` // Override for outline generation
	SEOModel    string  `toml:"seo_model"`  // Override for the SEO pass
	MetaModel   string  `toml:"meta_model"` // Override for short-form metadata
	MaxTokens   int     `toml:"max_tokens"` // Maximum tokens in response (default: 16384)
	Timeout     string  `toml:"timeout"`    // Operation timeout as duration string (default: "5m")
	Temperature float32 `toml:"temperature"`
}

// GrokConfig contains xAI Grok API configuration for the style transform.
// Grok speaks the OpenAI-compatible chat completions protocol.
type GrokConfig struct {
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"` // default: "https://api.x.ai/v1"
	Model       string  `toml:"model"`    // default: "grok-4-1-fast-non-reasoning"
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`    // default: "3m"
	RateLimit   string  `toml:"rate_limit"` // default: "1s"
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "claude")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability;
// only user-facing settings should be exposed in scribo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Pipeline: PipelineConfig{
			PolitenessDelay:    "5s",
			PillarMinWords:     3000,
			PillarMaxWords:     4000,
			SupportingMinWords: 1800,
			SupportingMaxWords: 2200,
			OverflowTolerance:  500,
			MetaDescriptionMax: 160,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Schedule: ScheduleConfig{
			Enabled: false,
			Cron:    "0 0 */6 * * *", // every 6 hours
		},
		Research: ResearchConfig{
			FetchSources:   true,
			MaxSources:     5,
			RequestTimeout: "30s",
			RateLimit:      "1s",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "2m",
			RateLimit:   "4s",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   16384,
			Timeout:     "5m",
			Temperature: 0.7,
		},
		Grok: GrokConfig{
			APIKey:      "",
			BaseURL:     "https://api.x.ai/v1",
			Model:       "grok-4-1-fast-non-reasoning",
			MaxTokens:   16000,
			Timeout:     "3m",
			RateLimit:   "1s",
			Temperature: 0.8,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCRIBO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if path := os.Getenv("SCRIBO_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if level := os.Getenv("SCRIBO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if delay := os.Getenv("SCRIBO_POLITENESS_DELAY"); delay != "" {
		config.Pipeline.PolitenessDelay = delay
	}
	if tol := os.Getenv("SCRIBO_OVERFLOW_TOLERANCE"); tol != "" {
		if v, err := strconv.Atoi(tol); err == nil {
			config.Pipeline.OverflowTolerance = v
		}
	}

	// API keys follow the providers' own conventions
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("GROK_API_KEY"); key != "" {
		config.Grok.APIKey = key
	}
}

// ParseDuration parses a duration string from config, falling back to a
// default when the value is empty or malformed.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Band returns the configured [min,max] word-count band for a content level.
func (p *PipelineConfig) Band(pillar bool) (int, int) {
	if pillar {
		return p.PillarMinWords, p.PillarMaxWords
	}
	return p.SupportingMinWords, p.SupportingMaxWords
}

// ValidateSchedule validates a cron schedule expression (with seconds field).
func ValidateSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("schedule cannot be empty")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
