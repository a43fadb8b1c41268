package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "codoc.yml")

	configContent := `
codoc:
  root: "./src"
  output: "docs/report.md"
  format: "html"
  workers: 4
  exclude:
    - "**/*_test.go"
  cache: "tmp/cache.json"
  links:
    requirement: "https://tracker.example.com/req/{id}"
  log_level: "debug"
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0o644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "./src", cfg.Root)
	assert.Equal(t, "docs/report.md", cfg.Output)
	assert.Equal(t, "html", cfg.Format)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"**/*_test.go"}, cfg.Exclude)
	assert.Equal(t, "tmp/cache.json", cfg.Cache)
	assert.Equal(t, "https://tracker.example.com/req/{id}", cfg.Links.Requirement)
	assert.Empty(t, cfg.Links.Defect)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	tmpDir := t.TempDir()
	bad := filepath.Join(tmpDir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("codoc: [unclosed"), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{"nonexistent explicit file", filepath.Join(tmpDir, "missing.yml")},
		{"invalid yaml", bad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestApply(t *testing.T) {
	file := Config{
		Root:     "src",
		Format:   "json",
		Workers:  2,
		Exclude:  []string{"gen/"},
		Links:    Links{Defect: "https://bugs.example.com/{id}"},
		LogLevel: "warn",
	}

	t.Run("file fills defaults", func(t *testing.T) {
		cfg := Default()
		Apply(&cfg, file)

		assert.Equal(t, "src", cfg.Root)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, 2, cfg.Workers)
		assert.Equal(t, []string{"gen/"}, cfg.Exclude)
		assert.Equal(t, DefaultRequirementLink, cfg.Links.Requirement)
		assert.Equal(t, "https://bugs.example.com/{id}", cfg.Links.Defect)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, DefaultCache, cfg.Cache)
	})

	t.Run("flags win over file", func(t *testing.T) {
		cfg := Default()
		cfg.Format = "yaml"
		cfg.Workers = 16
		Apply(&cfg, file)

		assert.Equal(t, "yaml", cfg.Format)
		assert.Equal(t, 16, cfg.Workers)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown format", func(c *Config) { c.Format = "pdf" }, "Config.Format"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "Config.Workers"},
		{"too many workers", func(c *Config) { c.Workers = 1000 }, "Config.Workers"},
		{"link without placeholder", func(c *Config) { c.Links.Requirement = "https://x" }, "Config.Links.Requirement"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "Config.LogLevel"},
		{"empty cache", func(c *Config) { c.Cache = "" }, "Config.Cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCachePath(t *testing.T) {
	cfg := Default()
	cfg.Root = "/work/p"
	assert.Equal(t, filepath.Join("/work/p", ".codoc", "scan-cache.json"), cfg.CachePath())

	cfg.Cache = "/tmp/c.json"
	assert.Equal(t, "/tmp/c.json", cfg.CachePath())
}
