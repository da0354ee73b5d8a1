// Package config loads tabstorm settings from TOML or YAML files and
// TABSTORM_ environment variables, and watches the file for live reload.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/tabstorm/internal/doc"
	"github.com/dshills/tabstorm/internal/tabs"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "TABSTORM_"

// Config is the full tabstorm configuration.
type Config struct {
	Tabs    TabsConfig    `toml:"tabs" yaml:"tabs"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// TabsConfig holds the tabbed-container defaults.
type TabsConfig struct {
	DefaultTabCount    int    `toml:"default_tab_count" yaml:"default_tab_count"`
	MaxTabs            int    `toml:"max_tabs" yaml:"max_tabs"`
	TitleTemplate      string `toml:"title_template" yaml:"title_template"`
	ContentPlaceholder string `toml:"content_placeholder" yaml:"content_placeholder"`
}

// HistoryConfig bounds the undo history and post-change repairs.
type HistoryConfig struct {
	MaxUndoEntries int `toml:"max_undo_entries" yaml:"max_undo_entries"`
	MaxFixupDepth  int `toml:"max_fixup_depth" yaml:"max_fixup_depth"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	// Level is one of debug, info, warn, warning, error.
	Level string `toml:"level" yaml:"level"`
	// Format is "console" or "json".
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	tpl := tabs.DefaultTemplates()
	return &Config{
		Tabs: TabsConfig{
			DefaultTabCount:    tabs.DefaultTabCount,
			MaxTabs:            tabs.MaxTabs,
			TitleTemplate:      tpl.Title,
			ContentPlaceholder: tpl.Content,
		},
		History: HistoryConfig{
			MaxUndoEntries: doc.DefaultMaxUndoEntries,
			MaxFixupDepth:  doc.DefaultMaxFixupDepth,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.TabSettings().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tabs: %w", err))
	}
	if strings.TrimSpace(c.Tabs.TitleTemplate) == "" {
		errs = append(errs, &ValidationError{Field: "tabs.title_template", Message: "must not be empty"})
	}
	if c.History.MaxUndoEntries < 0 {
		errs = append(errs, &ValidationError{Field: "history.max_undo_entries", Message: "must not be negative"})
	}
	if c.History.MaxFixupDepth < 1 {
		errs = append(errs, &ValidationError{Field: "history.max_fixup_depth", Message: "must be at least 1"})
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, &ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)})
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, &ValidationError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)})
	}
	return errors.Join(errs...)
}

// TabSettings converts the tabs section for the feature.
func (c *Config) TabSettings() tabs.Settings {
	return tabs.Settings{
		DefaultTabCount: c.Tabs.DefaultTabCount,
		MaxTabs:         c.Tabs.MaxTabs,
		Templates: tabs.Templates{
			Title:   c.Tabs.TitleTemplate,
			Content: c.Tabs.ContentPlaceholder,
		},
	}
}

// DocOptions converts the history section for doc.New.
func (c *Config) DocOptions() []doc.Option {
	return []doc.Option{
		doc.WithMaxUndoEntries(c.History.MaxUndoEntries),
		doc.WithMaxFixupDepth(c.History.MaxFixupDepth),
	}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
