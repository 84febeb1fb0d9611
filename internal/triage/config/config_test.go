package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Classifier.BaseURL = "http://localhost:8000"
	cfg.Triage.RoutineThreshold = 0.6
	cfg.applyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderClassifier, cfg.AI.Provider)
	assert.Equal(t, 0.5, cfg.Triage.OpinionThreshold)
	assert.Equal(t, TickerlessHeadlineLevel, cfg.Triage.TickerlessPolicy)
	assert.Equal(t, 5, cfg.Triage.MaxConcurrentScores)
	assert.Equal(t, 800*time.Millisecond, cfg.Classifier.Timeout)
}

func TestValidate_RoutineThresholdRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Triage.RoutineThreshold = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "routine_threshold")
}

func TestValidate_ThresholdOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Triage.OpinionThreshold = 1.2
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Triage.RoutineThreshold = 1.5
	assert.Error(t, cfg.Validate())
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Provider = "anthropic"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ClassifierBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Classifier.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Classifier.BaseURL = "ftp://classifier.internal"
	assert.Error(t, cfg.Validate())
}

func TestValidate_GeminiProvider(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Provider = ProviderGemini
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.api_key")

	cfg.Gemini.APIKey = "key"
	cfg.Gemini.Model = "gemini-2.0-flash"
	cfg.Gemini.MaxRequestPerMinute = 10
	cfg.Gemini.MaxTokenPerMinute = 250000
	assert.NoError(t, cfg.Validate())
}

func TestValidate_OpenAIProvider(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Provider = ProviderOpenAI
	require.Error(t, cfg.Validate())

	cfg.OpenAI.APIKey = "key"
	cfg.OpenAI.Model = "gpt-4o-mini"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_BadOverridePattern(t *testing.T) {
	cfg := validConfig()
	cfg.Overrides.Patterns = []OverridePattern{
		{Category: "broken", Outcome: "force_material", Pattern: "([unclosed"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "override")
}

func TestValidate_UnknownOverrideOutcome(t *testing.T) {
	cfg := validConfig()
	cfg.Overrides.Patterns = []OverridePattern{
		{Category: "odd", Outcome: "force_sideways", Pattern: `\bx\b`},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidate_ContextEntries(t *testing.T) {
	cfg := validConfig()
	cfg.Contexts.Entries = []ContextEntry{{Ticker: "", Name: "No Ticker"}}
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Contexts.Entries = []ContextEntry{{Ticker: "SATS", MarketCapBucket: "gigantic"}}
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Contexts.Entries = []ContextEntry{{Ticker: "SATS", MarketCapBucket: "mid"}}
	cfg.Contexts.RefreshCron = "*/15 * * * *"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_BadRefreshCron(t *testing.T) {
	cfg := validConfig()
	cfg.Contexts.RefreshCron = "every darn minute"
	assert.Error(t, cfg.Validate())
}

func TestValidate_IngestFeeds(t *testing.T) {
	cfg := validConfig()
	cfg.Ingest.Enabled = true
	cfg.Ingest.Feeds = []Feed{{Name: "prnews", URL: "https://example.com/rss", Cron: "@every 5m"}}
	assert.NoError(t, cfg.Validate())

	cfg.Ingest.Feeds[0].Cron = "not a cron"
	assert.Error(t, cfg.Validate())
}

func TestValidate_TelegramEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = 42
	assert.NoError(t, cfg.Validate())
}

func TestContextEntities_NormalizesTickers(t *testing.T) {
	cfg := validConfig()
	cfg.Contexts.Entries = []ContextEntry{
		{Ticker: " sats ", Name: "EchoStar", Sector: "telecom", MarketCapBucket: "mid", Aliases: []string{"EchoStar Corp"}},
	}
	entities := cfg.ContextEntities()
	require.Len(t, entities, 1)
	assert.Equal(t, "SATS", entities[0].Ticker)
	assert.Equal(t, []string{"EchoStar Corp"}, []string(entities[0].Aliases))
}

func TestLoad_FromYAML(t *testing.T) {
	content := `
app:
  name: triage-service
  env: test
logger:
  level: debug
  encoding: console
triage:
  opinion_threshold: 0.5
  routine_threshold: 0.65
  max_concurrent_scores: 8
  tickerless_policy: reject
ai:
  provider: classifier
classifier:
  base_url: http://localhost:8000
  timeout: 750ms
  max_request_per_minute: 120
overrides:
  patterns:
    - category: spectrum_sale
      outcome: force_material
      pattern: '\bspectrum\s+licenses?\b'
contexts:
  entries:
    - ticker: SATS
      name: EchoStar
      sector: telecom
      market_cap_bucket: mid
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "triage-service", cfg.App.Name)
	assert.Equal(t, 0.65, cfg.Triage.RoutineThreshold)
	assert.Equal(t, 8, cfg.Triage.MaxConcurrentScores)
	assert.Equal(t, TickerlessReject, cfg.Triage.TickerlessPolicy)
	assert.Equal(t, 750*time.Millisecond, cfg.Classifier.Timeout)
	require.Len(t, cfg.OverrideEntries(), 1)
	assert.Equal(t, "spectrum_sale", cfg.OverrideEntries()[0].Category)
	require.Len(t, cfg.Contexts.Entries, 1)
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	content := `
triage:
  routine_threshold: 0.6
classifier:
  base_url: ""
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
