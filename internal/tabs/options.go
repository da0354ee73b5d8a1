package tabs

import (
	"fmt"

	"go.uber.org/zap"
)

// Default settings.
const (
	DefaultTabCount = 2
	MaxTabs         = 64
)

// Settings are the tunable defaults of the feature.
type Settings struct {
	// DefaultTabCount is used by Create when no count is given.
	DefaultTabCount int
	// MaxTabs bounds the tabs of one container.
	MaxTabs int
	// Templates holds placeholder text for new tabs.
	Templates Templates
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		DefaultTabCount: DefaultTabCount,
		MaxTabs:         MaxTabs,
		Templates:       DefaultTemplates(),
	}
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if s.MaxTabs < 1 {
		return fmt.Errorf("max tabs %d: %w", s.MaxTabs, ErrInvalidSettings)
	}
	if s.DefaultTabCount < 1 || s.DefaultTabCount > s.MaxTabs {
		return fmt.Errorf("default tab count %d not in 1..%d: %w", s.DefaultTabCount, s.MaxTabs, ErrInvalidSettings)
	}
	return nil
}

// Option configures a Feature.
type Option func(*Feature)

// WithRegistry injects the identity registry.
func WithRegistry(r Registry) Option {
	return func(f *Feature) {
		if r != nil {
			f.registry = r
		}
	}
}

// WithIDGenerator sets how container ids are minted.
func WithIDGenerator(g IDGenerator) Option {
	return func(f *Feature) {
		if g != nil {
			f.ids = g
		}
	}
}

// WithLogger sets the logger. The feature names it "tabs".
func WithLogger(logger *zap.Logger) Option {
	return func(f *Feature) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithSettings sets the initial settings. Invalid settings are ignored.
func WithSettings(s Settings) Option {
	return func(f *Feature) {
		if s.Validate() == nil {
			f.settings = s
		}
	}
}
