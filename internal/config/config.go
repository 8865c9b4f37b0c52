// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.rhassist/config.yaml or ./config.yaml)
//  3. Default values
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates the Gemini API key is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidTopK indicates the retrieval depth is out of range.
	ErrInvalidTopK = errors.New("invalid top k")

	// ErrInvalidPath indicates a data path is empty.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidPort indicates the HTTP port is out of range.
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidSummary indicates a history compaction setting is out of range.
	ErrInvalidSummary = errors.New("invalid summary setting")

	// ErrInvalidRate indicates a rate limiter setting is out of range.
	ErrInvalidRate = errors.New("invalid rate setting")
)

// Provider identifiers used in Config.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderGoogleAI = "googleai"
)

// Config stores application configuration.
type Config struct {
	// Model configuration
	Provider     string  `mapstructure:"provider" json:"provider"`
	ModelName    string  `mapstructure:"model_name" json:"model_name"`
	SummaryModel string  `mapstructure:"summary_model" json:"summary_model"`
	Temperature  float32 `mapstructure:"temperature" json:"temperature"`

	// Retrieval configuration
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`
	TopK          int    `mapstructure:"top_k" json:"top_k"`

	// Data paths
	CSVPath   string `mapstructure:"csv_path" json:"csv_path"`
	IndexPath string `mapstructure:"index_path" json:"index_path"`

	// History compaction
	SummaryTriggerChars int `mapstructure:"summary_trigger_chars" json:"summary_trigger_chars"`
	SummaryKeepTurns    int `mapstructure:"summary_keep_turns" json:"summary_keep_turns"`

	// HTTP server configuration
	HTTPHost    string   `mapstructure:"http_host" json:"http_host"`
	HTTPPort    int      `mapstructure:"http_port" json:"http_port"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	RateBurst   int      `mapstructure:"rate_burst" json:"rate_burst"`
	RateRefill  float64  `mapstructure:"rate_refill" json:"rate_refill"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".rhassist")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, defaults apply
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("summary_model", "gemini-2.5-flash")
	v.SetDefault("temperature", 0.5)

	v.SetDefault("embedder_model", "text-embedding-004")
	v.SetDefault("top_k", 4)

	v.SetDefault("csv_path", "data/rh_infos.csv")
	v.SetDefault("index_path", "data/index")

	v.SetDefault("summary_trigger_chars", 4000)
	v.SetDefault("summary_keep_turns", 5)

	v.SetDefault("http_host", "127.0.0.1")
	v.SetDefault("http_port", 8000)
	v.SetDefault("cors_origins", []string{"http://localhost:8501"})
	v.SetDefault("rate_burst", 60)
	v.SetDefault("rate_refill", 1.0)
	v.SetDefault("trust_proxy", false)
}

// bindEnvVariables binds environment overrides explicitly.
// GEMINI_API_KEY is read directly by genkit, not via viper; RequireAPIKey
// checks its presence for the commands that need a model.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model_name", "RHASSIST_MODEL_NAME")
	mustBind("summary_model", "RHASSIST_SUMMARY_MODEL")
	mustBind("embedder_model", "RHASSIST_EMBEDDER_MODEL")
	mustBind("csv_path", "RHASSIST_CSV_PATH")
	mustBind("index_path", "RHASSIST_INDEX_PATH")
	mustBind("top_k", "RHASSIST_TOP_K")
	mustBind("http_host", "RHASSIST_HTTP_HOST")
	mustBind("http_port", "RHASSIST_HTTP_PORT")
	mustBind("cors_origins", "RHASSIST_CORS_ORIGINS")
	mustBind("rate_burst", "RHASSIST_RATE_BURST")
	mustBind("rate_refill", "RHASSIST_RATE_REFILL")
	mustBind("trust_proxy", "RHASSIST_TRUST_PROXY")
}

// Validate checks configuration ranges. It does not check the API key;
// commands that never call the model stay usable without one.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model_name is empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder_model is empty", ErrInvalidModelName)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %v not in [0, 2]", ErrInvalidTemperature, c.Temperature)
	}
	if c.TopK < 1 || c.TopK > 50 {
		return fmt.Errorf("%w: %d not in [1, 50]", ErrInvalidTopK, c.TopK)
	}
	if strings.TrimSpace(c.CSVPath) == "" {
		return fmt.Errorf("%w: csv_path is empty", ErrInvalidPath)
	}
	if strings.TrimSpace(c.IndexPath) == "" {
		return fmt.Errorf("%w: index_path is empty", ErrInvalidPath)
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("%w: %d not in [1, 65535]", ErrInvalidPort, c.HTTPPort)
	}
	if c.SummaryTriggerChars < 0 {
		return fmt.Errorf("%w: summary_trigger_chars is negative", ErrInvalidSummary)
	}
	if c.SummaryKeepTurns < 0 {
		return fmt.Errorf("%w: summary_keep_turns is negative", ErrInvalidSummary)
	}
	if c.RateBurst < 0 {
		return fmt.Errorf("%w: rate_burst is negative", ErrInvalidRate)
	}
	if c.RateRefill < 0 {
		return fmt.Errorf("%w: rate_refill is negative", ErrInvalidRate)
	}
	return nil
}

// RequireAPIKey checks that the Gemini API key is present. Called by
// commands that talk to the model or the embedding API.
func (c *Config) RequireAPIKey() error {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
	}
	return nil
}

// FullModelName returns the provider-qualified model name for genkit,
// such as "googleai/gemini-2.5-flash". A name already containing "/" is
// returned as-is.
func (c *Config) FullModelName() string {
	return qualify(c.ModelName)
}

// FullSummaryModelName returns the provider-qualified summary model name.
func (c *Config) FullSummaryModelName() string {
	return qualify(c.SummaryModel)
}

func qualify(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	return ProviderGoogleAI + "/" + name
}
