package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

type envSetter func(c *Config, value string) error

// envMapping maps variable names (without prefix) to setters.
var envMapping = map[string]envSetter{
	"DEFAULT_TAB_COUNT":   intSetter(func(c *Config) *int { return &c.Tabs.DefaultTabCount }),
	"MAX_TABS":            intSetter(func(c *Config) *int { return &c.Tabs.MaxTabs }),
	"TITLE_TEMPLATE":      stringSetter(func(c *Config) *string { return &c.Tabs.TitleTemplate }),
	"CONTENT_PLACEHOLDER": stringSetter(func(c *Config) *string { return &c.Tabs.ContentPlaceholder }),
	"MAX_UNDO_ENTRIES":    intSetter(func(c *Config) *int { return &c.History.MaxUndoEntries }),
	"MAX_FIXUP_DEPTH":     intSetter(func(c *Config) *int { return &c.History.MaxFixupDepth }),
	"LOG_LEVEL":           stringSetter(func(c *Config) *string { return &c.Logging.Level }),
	"LOG_FORMAT":          stringSetter(func(c *Config) *string { return &c.Logging.Format }),
}

// EnvVars lists the recognized variable names for prefix.
func EnvVars(prefix string) []string {
	names := make([]string, 0, len(envMapping))
	for name := range envMapping {
		names = append(names, prefix+name)
	}
	sort.Strings(names)
	return names
}

// ApplyEnv overrides fields from environment variables named prefix+NAME,
// for example TABSTORM_MAX_TABS. Empty values are treated as set.
func (c *Config) ApplyEnv(prefix string) error {
	return c.applyEnv(prefix, os.LookupEnv)
}

func (c *Config) applyEnv(prefix string, lookup func(string) (string, bool)) error {
	var errs []error
	for _, name := range EnvVars(prefix) {
		val, ok := lookup(name)
		if !ok {
			continue
		}
		set := envMapping[strings.TrimPrefix(name, prefix)]
		if err := set(c, val); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", name, val, err))
		}
	}
	return errors.Join(errs...)
}

func intSetter(field func(*Config) *int) envSetter {
	return func(c *Config, value string) error {
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return ErrInvalidEnv
		}
		*field(c) = i
		return nil
	}
}

func stringSetter(field func(*Config) *string) envSetter {
	return func(c *Config, value string) error {
		*field(c) = value
		return nil
	}
}
