package config

import (
	"errors"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Provider:            ProviderGemini,
		ModelName:           "gemini-2.5-flash",
		SummaryModel:        "gemini-2.5-flash",
		Temperature:         0.5,
		EmbedderModel:       "text-embedding-004",
		TopK:                4,
		CSVPath:             "data/rh_infos.csv",
		IndexPath:           "data/index",
		SummaryTriggerChars: 4000,
		SummaryKeepTurns:    5,
		HTTPHost:            "127.0.0.1",
		HTTPPort:            8000,
		RateBurst:           60,
		RateRefill:          1.0,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty model", mutate: func(c *Config) { c.ModelName = " " }, wantErr: ErrInvalidModelName},
		{name: "empty embedder", mutate: func(c *Config) { c.EmbedderModel = "" }, wantErr: ErrInvalidModelName},
		{name: "temperature too high", mutate: func(c *Config) { c.Temperature = 2.5 }, wantErr: ErrInvalidTemperature},
		{name: "temperature negative", mutate: func(c *Config) { c.Temperature = -0.1 }, wantErr: ErrInvalidTemperature},
		{name: "top k zero", mutate: func(c *Config) { c.TopK = 0 }, wantErr: ErrInvalidTopK},
		{name: "top k too large", mutate: func(c *Config) { c.TopK = 100 }, wantErr: ErrInvalidTopK},
		{name: "empty csv path", mutate: func(c *Config) { c.CSVPath = "" }, wantErr: ErrInvalidPath},
		{name: "empty index path", mutate: func(c *Config) { c.IndexPath = "" }, wantErr: ErrInvalidPath},
		{name: "port zero", mutate: func(c *Config) { c.HTTPPort = 0 }, wantErr: ErrInvalidPort},
		{name: "port too large", mutate: func(c *Config) { c.HTTPPort = 70000 }, wantErr: ErrInvalidPort},
		{name: "negative trigger", mutate: func(c *Config) { c.SummaryTriggerChars = -1 }, wantErr: ErrInvalidSummary},
		{name: "negative keep", mutate: func(c *Config) { c.SummaryKeepTurns = -1 }, wantErr: ErrInvalidSummary},
		{name: "negative burst", mutate: func(c *Config) { c.RateBurst = -1 }, wantErr: ErrInvalidRate},
		{name: "negative refill", mutate: func(c *Config) { c.RateRefill = -0.5 }, wantErr: ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFullModelName(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  string
	}{
		{name: "bare name gets qualified", model: "gemini-2.5-flash", want: "googleai/gemini-2.5-flash"},
		{name: "qualified name untouched", model: "googleai/gemini-2.5-pro", want: "googleai/gemini-2.5-pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ModelName = tt.model
			if got := cfg.FullModelName(); got != tt.want {
				t.Errorf("FullModelName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")
		if err := validConfig().RequireAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("RequireAPIKey() error = %v, want ErrMissingAPIKey", err)
		}
	})

	t.Run("present", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		if err := validConfig().RequireAPIKey(); err != nil {
			t.Errorf("RequireAPIKey() unexpected error: %v", err)
		}
	})
}
