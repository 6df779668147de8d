package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

catalog:
  enforce_status_flow: true
  facet_concurrency: 2

pagination:
  default_page_size: 25
  min_page_size: 5
  max_page_size: 50

log:
  level: "debug"
  format: "text"
`

func TestLoad_FromEnvDefaults(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("Database.MaxConns = %d, want 25", cfg.Database.MaxConns)
	}
	if cfg.Page.DefaultPageSize != 20 || cfg.Page.MinPageSize != 1 || cfg.Page.MaxPageSize != 100 {
		t.Errorf("pagination defaults = %+v", cfg.Page)
	}
	if cfg.Catalog.EnforceStatusFlow {
		t.Error("Catalog.EnforceStatusFlow should default to false")
	}
	if cfg.Catalog.FacetConcurrency != 4 {
		t.Errorf("Catalog.FacetConcurrency = %d, want 4", cfg.Catalog.FacetConcurrency)
	}
	if cfg.Catalog.FacetChunkSize != 500 {
		t.Errorf("Catalog.FacetChunkSize = %d, want 500", cfg.Catalog.FacetChunkSize)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.Catalog.EnforceStatusFlow {
		t.Error("Catalog.EnforceStatusFlow not read from YAML")
	}
	if cfg.Page.DefaultPageSize != 25 {
		t.Errorf("Page.DefaultPageSize = %d, want 25", cfg.Page.DefaultPageSize)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070 (env wins over yaml)", cfg.Server.Port)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "/does/not/exist.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("Load: expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Page:    PaginationConfig{DefaultPageSize: 20, MinPageSize: 1, MaxPageSize: 100},
			Catalog: CatalogConfig{FacetConcurrency: 4, FacetChunkSize: 500},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"min page size zero", func(c *Config) { c.Page.MinPageSize = 0 }, true},
		{"max below min", func(c *Config) { c.Page.MaxPageSize = 0 }, true},
		{"default out of range", func(c *Config) { c.Page.DefaultPageSize = 500 }, true},
		{"facet concurrency zero", func(c *Config) { c.Catalog.FacetConcurrency = 0 }, true},
		{"facet chunk size zero", func(c *Config) { c.Catalog.FacetChunkSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
