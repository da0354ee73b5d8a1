package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tabstorm/internal/tabs"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, tabs.DefaultSettings(), cfg.TabSettings())
	assert.Len(t, cfg.DocOptions(), 2)
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "tabstorm.toml", `
[tabs]
default_tab_count = 3
title_template = "Page %d"

[logging]
level = "debug"
`},
		{"yaml", "tabstorm.yaml", `
tabs:
  default_tab_count: 3
  title_template: "Page %d"
logging:
  level: debug
`},
		{"yml", "tabstorm.yml", "tabs:\n  default_tab_count: 3\n  title_template: Page %d\nlogging:\n  level: debug\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, 3, cfg.Tabs.DefaultTabCount)
			assert.Equal(t, "Page %d", cfg.Tabs.TitleTemplate)
			assert.Equal(t, "debug", cfg.Logging.Level)
			assert.Equal(t, tabs.MaxTabs, cfg.Tabs.MaxTabs, "unset keys keep defaults")
			assert.Equal(t, "console", cfg.Logging.Format)
		})
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, "tabstorm.json", "{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantLine int
	}{
		{"toml syntax", "bad.toml", "[tabs]\nmax_tabs = = 3\n", 2},
		{"toml unknown key", "bad.toml", "[tabs]\nmax_tabs = 3\ncolour = \"red\"\n", 0},
		{"toml wrong type", "bad.toml", "[tabs]\nmax_tabs = \"many\"\n", 0},
		{"yaml syntax", "bad.yaml", "tabs:\n  max_tabs: [1\n", 0},
		{"yaml unknown key", "bad.yaml", "tabs:\n  colour: red\n", 2},
		{"yaml wrong type", "bad.yaml", "tabs:\n  max_tabs: many\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := Load(path)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, path, perr.Path)
			assert.NotEmpty(t, perr.Message)
			assert.NotNil(t, perr.Unwrap())
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, perr.Line)
			}
			assert.Contains(t, err.Error(), "parse error in")
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TABSTORM_MAX_TABS", "10")
	t.Setenv("TABSTORM_DEFAULT_TAB_COUNT", " 4 ")
	t.Setenv("TABSTORM_CONTENT_PLACEHOLDER", "")
	t.Setenv("TABSTORM_LOG_LEVEL", "warn")

	cfg, err := Load(writeFile(t, "tabstorm.toml", "[tabs]\nmax_tabs = 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Tabs.MaxTabs, "environment overrides the file")
	assert.Equal(t, 4, cfg.Tabs.DefaultTabCount)
	assert.Equal(t, "", cfg.Tabs.ContentPlaceholder, "empty values are set")
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestApplyEnvInvalid(t *testing.T) {
	env := map[string]string{"APP_MAX_TABS": "lots", "APP_MAX_FIXUP_DEPTH": "x"}
	cfg := Default()
	err := cfg.applyEnv("APP_", func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.ErrorIs(t, err, ErrInvalidEnv)
	assert.Contains(t, err.Error(), "APP_MAX_TABS")
	assert.Contains(t, err.Error(), "APP_MAX_FIXUP_DEPTH")
	assert.Equal(t, tabs.MaxTabs, cfg.Tabs.MaxTabs)
}

func TestEnvVarsSorted(t *testing.T) {
	vars := EnvVars(EnvPrefix)
	assert.Contains(t, vars, "TABSTORM_DEFAULT_TAB_COUNT")
	assert.IsIncreasing(t, vars)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"count above max", func(c *Config) { c.Tabs.DefaultTabCount = 100 }, "default tab count"},
		{"zero max", func(c *Config) { c.Tabs.MaxTabs = 0 }, "max tabs"},
		{"blank title", func(c *Config) { c.Tabs.TitleTemplate = "  " }, "tabs.title_template"},
		{"negative undo", func(c *Config) { c.History.MaxUndoEntries = -1 }, "history.max_undo_entries"},
		{"zero fixup depth", func(c *Config) { c.History.MaxFixupDepth = 0 }, "history.max_fixup_depth"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	cfg := Default()
	cfg.Tabs.MaxTabs = 0
	cfg.Logging.Level = "loud"
	err := cfg.Validate()
	assert.ErrorIs(t, err, tabs.ErrInvalidSettings)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr, "all problems are reported together")
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			orig := Default()
			orig.Tabs.MaxTabs = 12
			data, err := orig.Marshal(format)
			require.NoError(t, err)

			got := &Config{}
			require.NoError(t, got.Parse("mem", format, data))
			assert.Equal(t, orig, got)
		})
	}
}
