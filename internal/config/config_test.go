package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies the documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default CSVTarget is stdout", func(t *testing.T) {
		t.Parallel()
		if cfg.CSVTarget != "stdout" {
			t.Errorf("expected CSVTarget to be 'stdout', got %q", cfg.CSVTarget)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default RetriesOnTimeout is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.RetriesOnTimeout != 3 {
			t.Errorf("expected RetriesOnTimeout to be 3, got %d", cfg.RetriesOnTimeout)
		}
	})

	t.Run("default MaxRecords is unlimited", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxRecords != 0 {
			t.Errorf("expected MaxRecords to be 0, got %d", cfg.MaxRecords)
		}
	})

	t.Run("default BatchSize is 1", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 1 {
			t.Errorf("expected BatchSize to be 1, got %d", cfg.BatchSize)
		}
	})

	t.Run("progress is shown by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.ShowProgress {
			t.Error("expected ShowProgress to be true")
		}
	})

	t.Run("runs are not archived by default", func(t *testing.T) {
		t.Parallel()
		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false")
		}
	})
}

// TestConfigValidate tests each validation rule in isolation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Seeds = []string{"https://www.example.org/socios"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config returns nil",
			modify:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "several seeds are valid",
			modify:  func(c *Config) { c.Seeds = []string{"http://a.example", "https://b.example/x"} },
			wantErr: nil,
		},
		{
			name:    "no seed returns ErrNoSeed",
			modify:  func(c *Config) { c.Seeds = nil },
			wantErr: ErrNoSeed,
		},
		{
			name:    "relative seed returns ErrInvalidSeed",
			modify:  func(c *Config) { c.Seeds = []string{"/socios"} },
			wantErr: ErrInvalidSeed,
		},
		{
			name:    "ftp seed returns ErrInvalidSeed",
			modify:  func(c *Config) { c.Seeds = []string{"ftp://example.org/"} },
			wantErr: ErrInvalidSeed,
		},
		{
			name:    "zero timeout returns ErrInvalidTimeout",
			modify:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero retries returns ErrInvalidRetries",
			modify:  func(c *Config) { c.RetriesOnTimeout = 0 },
			wantErr: ErrInvalidRetries,
		},
		{
			name:    "zero batch size returns ErrInvalidBatchSize",
			modify:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "negative body size returns ErrInvalidMaxBodySize",
			modify:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "empty csv target returns ErrEmptyCSVTarget",
			modify:  func(c *Config) { c.CSVTarget = "" },
			wantErr: ErrEmptyCSVTarget,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestFileGetSiteConfig tests profile merging.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil file returns built-in profile", func(t *testing.T) {
		t.Parallel()

		var file *File
		cfg := file.GetSiteConfig("www.example.org")
		if cfg.Selectors.Card != `div[class="socios-panel-lat"]` {
			t.Errorf("expected built-in card selector, got %q", cfg.Selectors.Card)
		}
		if cfg.Labels.Phone != "Teléfono" {
			t.Errorf("expected built-in phone label, got %q", cfg.Labels.Phone)
		}
		if cfg.UserAgent != DefaultUserAgent {
			t.Errorf("expected default user agent, got %q", cfg.UserAgent)
		}
	})

	t.Run("defaults override built-ins field by field", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Selectors: Selectors{Card: "div.card"},
				Labels:    Labels{Email: "E-mail"},
			},
			Sites: map[string]SiteConfig{},
		}
		cfg := file.GetSiteConfig("unknown.example")
		if cfg.Selectors.Card != "div.card" {
			t.Errorf("expected overridden card selector, got %q", cfg.Selectors.Card)
		}
		if cfg.Selectors.Name != `h2[class="tit-soc"]` {
			t.Errorf("expected built-in name selector, got %q", cfg.Selectors.Name)
		}
		if cfg.Labels.Email != "E-mail" {
			t.Errorf("expected overridden email label, got %q", cfg.Labels.Email)
		}
		if cfg.Labels.Address != "Domicilio" {
			t.Errorf("expected built-in address label, got %q", cfg.Labels.Address)
		}
	})

	t.Run("site overrides defaults and merges headers", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Cookie:  "default=1",
				Headers: map[string]string{"Accept-Language": "es"},
			},
			Sites: map[string]SiteConfig{
				"www.example.org": {
					Cookie:    "site=2",
					UserAgent: "Custom/1.0",
					Headers:   map[string]string{"X-Test": "yes"},
				},
			},
		}
		cfg := file.GetSiteConfig("www.example.org")
		if cfg.Cookie != "site=2" {
			t.Errorf("expected site cookie, got %q", cfg.Cookie)
		}
		if cfg.UserAgent != "Custom/1.0" {
			t.Errorf("expected site user agent, got %q", cfg.UserAgent)
		}
		if cfg.Headers["Accept-Language"] != "es" || cfg.Headers["X-Test"] != "yes" {
			t.Errorf("expected merged headers, got %v", cfg.Headers)
		}
		if len(file.Defaults.Headers) != 1 {
			t.Errorf("expected defaults headers to stay untouched, got %v", file.Defaults.Headers)
		}
	})

	t.Run("lookup by URL uses the host", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Sites: map[string]SiteConfig{
				"www.example.org": {Labels: Labels{Phone: "Tel."}},
			},
		}
		cfg := file.SiteConfigForURL("https://WWW.example.org:8443/socios?p=2")
		if cfg.Labels.Phone != "Tel." {
			t.Errorf("expected site phone label, got %q", cfg.Labels.Phone)
		}
	})

	t.Run("lookup by URL prefers host with port", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Sites: map[string]SiteConfig{
				"127.0.0.1:8080": {Labels: Labels{Phone: "port"}},
				"127.0.0.1":      {Labels: Labels{Phone: "bare"}},
			},
		}
		cfg := file.SiteConfigForURL("http://127.0.0.1:8080/")
		if cfg.Labels.Phone != "port" {
			t.Errorf("expected host:port profile, got %q", cfg.Labels.Phone)
		}
	})
}

// TestLoadConfigFile tests YAML loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.dirscrape")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".dirscrape")
		content := `defaults:
  userAgent: "Mozilla 5.0"
  cookie: "default=abc"
sites:
  www.example.org:
    selectors:
      card: "div.member"
      detailLink: "a.member-link"
    labels:
      contactPerson: "Contacto"
    headers:
      Authorization: "Bearer token"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Defaults.Cookie != "default=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Defaults.Cookie)
		}

		site, ok := cfg.Sites["www.example.org"]
		if !ok {
			t.Fatal("expected www.example.org in sites")
		}
		if site.Selectors.Card != "div.member" {
			t.Errorf("expected card selector, got %q", site.Selectors.Card)
		}
		if site.Selectors.DetailLink != "a.member-link" {
			t.Errorf("expected detail link selector, got %q", site.Selectors.DetailLink)
		}
		if site.Labels.ContactPerson != "Contacto" {
			t.Errorf("expected contact person label, got %q", site.Labels.ContactPerson)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Error("expected Authorization header")
		}
	})

	t.Run("empty file yields an empty sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".dirscrape")
		if err := os.WriteFile(configPath, []byte(""), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected non-nil sites map")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".dirscrape")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests the explicit path handling of FindConfigFile.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path when it exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("sites: {}\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty string for missing explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestXDGDirs tests that XDG directories end with the application name.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if !strings.HasSuffix(XDGDataDir(), AppName) {
		t.Errorf("expected data dir to end with %q, got %q", AppName, XDGDataDir())
	}
	if !strings.HasSuffix(XDGConfigDir(), AppName) {
		t.Errorf("expected config dir to end with %q, got %q", AppName, XDGConfigDir())
	}
}
