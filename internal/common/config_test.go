package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Clients.IEX.Token = "secret"
	return cfg
}

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Refresh.Concurrency != 10 {
		t.Errorf("Refresh.Concurrency default = %d, want 10", cfg.Refresh.Concurrency)
	}
	if cfg.Refresh.MaxRetries != 10 {
		t.Errorf("Refresh.MaxRetries default = %d, want 10", cfg.Refresh.MaxRetries)
	}
	if d := cfg.Refresh.GetRetryDelay(); d != time.Second {
		t.Errorf("Refresh.GetRetryDelay() = %v, want 1s", d)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORTFOLIOLOGY_PORT", "9090")
	t.Setenv("PORTFOLIOLOGY_CONCURRENCY", "4")
	t.Setenv("PORTFOLIOLOGY_MAX_RETRIES", "3")
	t.Setenv("PORTFOLIOLOGY_RETRY_DELAY", "250ms")
	t.Setenv("PORTFOLIOLOGY_DB_PATH", "/tmp/p.db")
	t.Setenv("IEX_API_TOKEN", "from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Refresh.Concurrency != 4 {
		t.Errorf("Refresh.Concurrency = %d, want 4", cfg.Refresh.Concurrency)
	}
	if cfg.Refresh.MaxRetries != 3 {
		t.Errorf("Refresh.MaxRetries = %d, want 3", cfg.Refresh.MaxRetries)
	}
	if d := cfg.Refresh.GetRetryDelay(); d != 250*time.Millisecond {
		t.Errorf("Refresh.GetRetryDelay() = %v, want 250ms", d)
	}
	if cfg.Storage.Path != "/tmp/p.db" {
		t.Errorf("Storage.Path = %q, want /tmp/p.db", cfg.Storage.Path)
	}
	if cfg.Clients.IEX.Token != "from-env" {
		t.Errorf("Clients.IEX.Token = %q, want from-env", cfg.Clients.IEX.Token)
	}
}

func TestConfig_TokenEnvPriority(t *testing.T) {
	t.Setenv("IEX_API_TOKEN", "primary")
	t.Setenv("PORTFOLIOLOGY_IEX_TOKEN", "secondary")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.IEX.Token != "primary" {
		t.Errorf("Clients.IEX.Token = %q, want primary", cfg.Clients.IEX.Token)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portfoliology.toml")
	content := `
environment = "production"

[refresh]
concurrency = 6
retry_delay = "2s"

[clients.iex]
token = "file-token"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORTFOLIOLOGY_CONCURRENCY", "8")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.IsProduction() {
		t.Errorf("expected production environment, got %q", cfg.Environment)
	}
	if cfg.Refresh.Concurrency != 8 {
		t.Errorf("env should override file concurrency, got %d", cfg.Refresh.Concurrency)
	}
	if d := cfg.Refresh.GetRetryDelay(); d != 2*time.Second {
		t.Errorf("Refresh.GetRetryDelay() = %v, want 2s", d)
	}
	if cfg.Clients.IEX.Token != "file-token" {
		t.Errorf("Clients.IEX.Token = %q, want file-token", cfg.Clients.IEX.Token)
	}
	if cfg.Clients.IEX.BaseURL != "https://cloud-sse.iexapis.com" {
		t.Errorf("default base URL lost after file merge: %q", cfg.Clients.IEX.BaseURL)
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected defaults, got port %d", cfg.Server.Port)
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("refresh = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing token", func(c *Config) { c.Clients.IEX.Token = "  " }, true},
		{"zero concurrency", func(c *Config) { c.Refresh.Concurrency = 0 }, true},
		{"negative concurrency", func(c *Config) { c.Refresh.Concurrency = -2 }, true},
		{"negative retries", func(c *Config) { c.Refresh.MaxRetries = -1 }, true},
		{"zero retries allowed", func(c *Config) { c.Refresh.MaxRetries = 0 }, false},
		{"negative delay", func(c *Config) { c.Refresh.RetryDelay = "-1s" }, true},
		{"unparsable delay", func(c *Config) { c.Refresh.RetryDelay = "soon" }, true},
		{"unparsable step", func(c *Config) { c.Refresh.RetryStep = "1 second" }, true},
		{"negative step", func(c *Config) { c.Refresh.RetryStep = "-500ms" }, true},
		{"unparsable timeout", func(c *Config) { c.Clients.IEX.Timeout = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIEXConfig_GetTimeout(t *testing.T) {
	c := IEXConfig{Timeout: "5s"}
	if c.GetTimeout() != 5*time.Second {
		t.Errorf("GetTimeout() = %v, want 5s", c.GetTimeout())
	}
	c.Timeout = "garbage"
	if c.GetTimeout() != 30*time.Second {
		t.Errorf("GetTimeout() fallback = %v, want 30s", c.GetTimeout())
	}
}

func TestConfig_RetryStepEnvOverride(t *testing.T) {
	t.Setenv("PORTFOLIOLOGY_RETRY_STEP", "750ms")

	cfg := validConfig()
	applyEnvOverrides(cfg)

	if d := cfg.Refresh.GetRetryStep(); d != 750*time.Millisecond {
		t.Errorf("Refresh.GetRetryStep() = %v, want 750ms", d)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfig_InvalidEnvIntegersAreFatal(t *testing.T) {
	tests := []struct {
		env, value string
	}{
		{"PORTFOLIOLOGY_CONCURRENCY", "ten"},
		{"PORTFOLIOLOGY_MAX_RETRIES", "3x"},
		{"PORTFOLIOLOGY_PORT", "http"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			cfg := validConfig()
			applyEnvOverrides(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() should reject %s=%q", tt.env, tt.value)
			}
			if !strings.Contains(err.Error(), tt.env) {
				t.Errorf("error %q does not name %s", err, tt.env)
			}
		})
	}
}

func TestLoadConfig_UnparsableDurationIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfoliology.toml")
	content := "[refresh]\nretry_delay = \"often\"\n[clients.iex]\ntoken = \"t\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "retry_delay") {
		t.Errorf("Validate() error = %v, want retry_delay error", err)
	}
}
