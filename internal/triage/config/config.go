package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/entity"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/override"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/config"
)

// Scoring providers.
const (
	ProviderClassifier = "classifier"
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
)

// Tickerless policies for headlines that arrive without ticker symbols.
const (
	TickerlessHeadlineLevel = "headline_level"
	TickerlessReject        = "reject"
)

// Triage holds the filter pipeline configuration.
type Triage struct {
	OpinionThreshold    float64 `mapstructure:"opinion_threshold" validate:"gte=0,lte=1"`
	RoutineThreshold    float64 `mapstructure:"routine_threshold" validate:"gte=0,lte=1"`
	MaxConcurrentScores int     `mapstructure:"max_concurrent_scores" validate:"gte=1"`
	TickerlessPolicy    string  `mapstructure:"tickerless_policy" validate:"oneof=headline_level reject"`

	RedisStreamTriageTimeout         time.Duration `mapstructure:"redis_stream_triage_timeout"`
	RedisStreamTriageRetryInterval   time.Duration `mapstructure:"redis_stream_triage_retry_interval"`
	RedisStreamTriageMaxIdleDuration time.Duration `mapstructure:"redis_stream_triage_max_idle_duration"`
	RedisStreamTriageMaxRetry        int           `mapstructure:"redis_stream_triage_max_retry"`
}

// AI selects the scoring provider.
type AI struct {
	Provider string `mapstructure:"provider" validate:"oneof=classifier gemini openai"`
}

// Classifier holds the configuration for the external classification service.
type Classifier struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// OpenAI holds the configuration for an OpenAI-compatible API.
type OpenAI struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// OverridePattern is one config-supplied override rule.
type OverridePattern struct {
	Category string `mapstructure:"category"`
	Outcome  string `mapstructure:"outcome"`
	Pattern  string `mapstructure:"pattern"`
}

// Overrides holds the override pattern registry configuration.
type Overrides struct {
	DisableBuiltins bool              `mapstructure:"disable_builtins"`
	Patterns        []OverridePattern `mapstructure:"patterns"`
}

// ContextEntry is a static ticker context declared in configuration.
type ContextEntry struct {
	Ticker          string   `mapstructure:"ticker"`
	Name            string   `mapstructure:"name"`
	Sector          string   `mapstructure:"sector"`
	MarketCapBucket string   `mapstructure:"market_cap_bucket"`
	Aliases         []string `mapstructure:"aliases"`
}

// Contexts holds the entity context store configuration.
type Contexts struct {
	RefreshCron string         `mapstructure:"refresh_cron"`
	Entries     []ContextEntry `mapstructure:"entries"`
}

// Feed is one RSS feed polled by the ingestor.
type Feed struct {
	Name    string   `mapstructure:"name"`
	URL     string   `mapstructure:"url"`
	Cron    string   `mapstructure:"cron"`
	Tickers []string `mapstructure:"tickers"`
}

// Ingest holds the feed ingestor configuration.
type Ingest struct {
	Enabled bool   `mapstructure:"enabled"`
	Feeds   []Feed `mapstructure:"feeds"`
}

// Telegram holds configuration for the Telegram notifier. DigestCron, when
// set, schedules a periodic digest of accepted headlines.
type Telegram struct {
	Enabled    bool   `mapstructure:"enabled"`
	BotToken   string `mapstructure:"bot_token"`
	ChatID     int64  `mapstructure:"chat_id"`
	DigestCron string `mapstructure:"digest_cron"`
}

// Config holds the full configuration for the triage service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	Triage     Triage          `mapstructure:"triage"`
	AI         AI              `mapstructure:"ai"`
	Classifier Classifier      `mapstructure:"classifier"`
	Gemini     Gemini          `mapstructure:"gemini"`
	OpenAI     OpenAI          `mapstructure:"openai"`
	Overrides  Overrides       `mapstructure:"overrides"`
	Contexts   Contexts        `mapstructure:"contexts"`
	Ingest     Ingest          `mapstructure:"ingest"`
	Telegram   Telegram        `mapstructure:"telegram"`
}

// Load loads and validates the triage configuration from the given path.
// Validation failures are fatal at startup, never discovered mid-pipeline.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderClassifier
	}
	if c.Triage.OpinionThreshold == 0 {
		c.Triage.OpinionThreshold = 0.5
	}
	if c.Triage.MaxConcurrentScores == 0 {
		c.Triage.MaxConcurrentScores = 5
	}
	if c.Triage.TickerlessPolicy == "" {
		c.Triage.TickerlessPolicy = TickerlessHeadlineLevel
	}
	if c.Triage.RedisStreamTriageTimeout == 0 {
		c.Triage.RedisStreamTriageTimeout = 5 * time.Minute
	}
	if c.Triage.RedisStreamTriageRetryInterval == 0 {
		c.Triage.RedisStreamTriageRetryInterval = 30 * time.Second
	}
	if c.Triage.RedisStreamTriageMaxIdleDuration == 0 {
		c.Triage.RedisStreamTriageMaxIdleDuration = 2 * time.Minute
	}
	if c.Triage.RedisStreamTriageMaxRetry == 0 {
		c.Triage.RedisStreamTriageMaxRetry = 3
	}
	if c.Classifier.Timeout == 0 {
		c.Classifier.Timeout = 800 * time.Millisecond
	}
	if c.Classifier.MaxRequestPerMinute == 0 {
		c.Classifier.MaxRequestPerMinute = 300
	}
	if c.Classifier.CacheTTL == 0 {
		c.Classifier.CacheTTL = 5 * time.Minute
	}
}

// Validate checks the loaded config for required fields and safe values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The routine threshold is deliberately required rather than defaulted:
	// its operating point (0.5 / 0.6 / 0.65) is still under tuning and a
	// silent default hides that choice.
	if c.Triage.RoutineThreshold <= 0 {
		return fmt.Errorf("triage.routine_threshold must be set in (0,1]")
	}

	switch c.AI.Provider {
	case ProviderClassifier:
		if err := validateHTTPURL("classifier.base_url", c.Classifier.BaseURL); err != nil {
			return err
		}
		if c.Classifier.Timeout <= 0 {
			return fmt.Errorf("classifier.timeout must be positive")
		}
	case ProviderGemini:
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			return fmt.Errorf("gemini.api_key must be set when ai.provider is gemini")
		}
		if strings.TrimSpace(c.Gemini.Model) == "" {
			return fmt.Errorf("gemini.model must be set when ai.provider is gemini")
		}
		if c.Gemini.MaxRequestPerMinute <= 0 || c.Gemini.MaxTokenPerMinute <= 0 {
			return fmt.Errorf("gemini rate limits must be positive")
		}
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAI.APIKey) == "" {
			return fmt.Errorf("openai.api_key must be set when ai.provider is openai")
		}
		if strings.TrimSpace(c.OpenAI.Model) == "" {
			return fmt.Errorf("openai.model must be set when ai.provider is openai")
		}
	}

	// Compiling the registry up front surfaces bad patterns and unknown
	// outcomes before the first headline arrives.
	if _, err := override.NewRegistry(!c.Overrides.DisableBuiltins, c.OverrideEntries()); err != nil {
		return fmt.Errorf("invalid override configuration: %w", err)
	}

	for i, e := range c.Contexts.Entries {
		if strings.TrimSpace(e.Ticker) == "" {
			return fmt.Errorf("contexts.entries[%d]: ticker must be set", i)
		}
		if e.MarketCapBucket != "" && !validMarketCapBucket(e.MarketCapBucket) {
			return fmt.Errorf("contexts.entries[%d]: unknown market_cap_bucket %q", i, e.MarketCapBucket)
		}
	}
	if c.Contexts.RefreshCron != "" {
		if err := validateCron("contexts.refresh_cron", c.Contexts.RefreshCron); err != nil {
			return err
		}
	}

	if c.Ingest.Enabled {
		for i, f := range c.Ingest.Feeds {
			if strings.TrimSpace(f.Name) == "" {
				return fmt.Errorf("ingest.feeds[%d]: name must be set", i)
			}
			if err := validateHTTPURL(fmt.Sprintf("ingest.feeds[%d].url", i), f.URL); err != nil {
				return err
			}
			if err := validateCron(fmt.Sprintf("ingest.feeds[%d].cron", i), f.Cron); err != nil {
				return err
			}
		}
	}

	if c.Telegram.Enabled {
		if strings.TrimSpace(c.Telegram.BotToken) == "" || c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set when telegram is enabled")
		}
		if c.Telegram.DigestCron != "" {
			if err := validateCron("telegram.digest_cron", c.Telegram.DigestCron); err != nil {
				return err
			}
		}
	}

	return nil
}

// OverrideEntries converts config-supplied patterns into registry entries.
func (c *Config) OverrideEntries() []override.Entry {
	if len(c.Overrides.Patterns) == 0 {
		return nil
	}
	entries := make([]override.Entry, 0, len(c.Overrides.Patterns))
	for _, p := range c.Overrides.Patterns {
		entries = append(entries, override.Entry{
			Category: p.Category,
			Outcome:  override.Outcome(p.Outcome),
			Pattern:  p.Pattern,
		})
	}
	return entries
}

// ContextEntities converts config-declared contexts into entities for the store.
func (c *Config) ContextEntities() []entity.TickerContext {
	if len(c.Contexts.Entries) == 0 {
		return nil
	}
	out := make([]entity.TickerContext, 0, len(c.Contexts.Entries))
	for _, e := range c.Contexts.Entries {
		out = append(out, entity.TickerContext{
			Ticker:          strings.ToUpper(strings.TrimSpace(e.Ticker)),
			Name:            e.Name,
			Sector:          e.Sector,
			MarketCapBucket: e.MarketCapBucket,
			Aliases:         e.Aliases,
		})
	}
	return out
}

func validMarketCapBucket(bucket string) bool {
	switch bucket {
	case entity.MarketCapMicro, entity.MarketCapSmall, entity.MarketCapMid, entity.MarketCapLarge, entity.MarketCapMega:
		return true
	}
	return false
}

func validateHTTPURL(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s must be set", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not a valid URL", field)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be http or https", field)
	}
	return nil
}

func validateCron(field, expr string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("%s: invalid cron expression %q: %w", field, expr, err)
	}
	return nil
}
