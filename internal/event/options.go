package event

import "go.uber.org/zap"

// BusOption configures an event Bus.
type BusOption func(*busConfig)

type busConfig struct {
	logger       *zap.Logger
	panicHandler PanicHandler
}

func defaultBusConfig() busConfig {
	return busConfig{logger: zap.NewNop()}
}

// WithLogger sets the logger used for handler failures.
func WithLogger(l *zap.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBusPanicHandler sets a callback invoked after a handler panic is recovered.
func WithBusPanicHandler(h PanicHandler) BusOption {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}
