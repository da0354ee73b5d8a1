// Package app wires configuration, logging, the document and the tabs
// feature into one application, and owns their lifecycle.
package app

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/tabstorm/internal/config"
	"github.com/dshills/tabstorm/internal/doc"
	"github.com/dshills/tabstorm/internal/logging"
	"github.com/dshills/tabstorm/internal/plugin/lua"
	"github.com/dshills/tabstorm/internal/tabs"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to a TOML or YAML configuration file.
	ConfigPath string

	// LogLevel overrides the configured level when set.
	LogLevel string

	// LogOutput receives log lines. Defaults to stderr.
	LogOutput io.Writer

	// ReadOnly opens documents read-only.
	ReadOnly bool

	// WatchConfig reloads tab defaults when the config file changes.
	WatchConfig bool

	// IDGenerator overrides how container ids are minted.
	IDGenerator tabs.IDGenerator

	// ScriptCapabilities limits what scripts may call. When empty, scripts
	// get every tabs function, or only reads and events when ReadOnly.
	ScriptCapabilities []lua.Capability
}

// Application is the central coordinator for tabstorm components.
type Application struct {
	mu sync.Mutex

	opts    Options
	config  *config.Config
	logger  *zap.Logger
	doc     *doc.Document
	feature *tabs.Feature
	watcher *config.Watcher

	// path is where the document was last opened from or saved to.
	path string
	// loaded holds the violations the tree had before its first reconcile.
	loaded []tabs.Violation

	shutdown bool
}

// New creates an Application and starts its components in dependency
// order. On failure everything already started is stopped.
func New(ctx context.Context, opts Options) (*Application, error) {
	a := &Application{opts: opts}
	if err := a.bootstrap(ctx); err != nil {
		a.cleanup()
		return nil, err
	}
	return a, nil
}

func (a *Application) bootstrap(ctx context.Context) error {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if a.opts.LogLevel != "" {
		cfg.Logging.Level = a.opts.LogLevel
	}
	a.config = cfg

	logger, err := logging.New(cfg.Logging, a.opts.LogOutput)
	if err != nil {
		return &InitError{Component: "logging", Err: err}
	}
	a.logger = logger

	a.doc = a.newDocument()
	if err := a.startFeature(ctx); err != nil {
		return err
	}

	if a.opts.WatchConfig && a.opts.ConfigPath != "" {
		w, err := config.NewWatcher(a.opts.ConfigPath, config.WithWatcherLogger(logger))
		if err != nil {
			return &InitError{Component: "config watcher", Err: err}
		}
		w.OnChange(a.applyConfig)
		a.watcher = w
	}

	a.logger.Debug("application started",
		zap.String("config", a.opts.ConfigPath),
		zap.Bool("read_only", a.opts.ReadOnly),
		zap.Bool("watch_config", a.watcher != nil))
	return nil
}

func (a *Application) newDocument() *doc.Document {
	opts := append(a.config.DocOptions(), doc.WithLogger(a.logger))
	if a.opts.ReadOnly {
		opts = append(opts, doc.WithReadOnly())
	}
	return doc.New(opts...)
}

func (a *Application) startFeature(ctx context.Context) error {
	opts := []tabs.Option{
		tabs.WithLogger(a.logger),
		tabs.WithSettings(a.config.TabSettings()),
	}
	if a.opts.IDGenerator != nil {
		opts = append(opts, tabs.WithIDGenerator(a.opts.IDGenerator))
	}
	a.feature = tabs.New(a.doc, opts...)
	if err := a.feature.Start(ctx); err != nil {
		return &InitError{Component: "tabs", Err: err}
	}
	return nil
}

// applyConfig runs on the watcher goroutine.
func (a *Application) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.shutdown {
		return
	}
	if err := a.feature.SetDefaults(cfg.TabSettings()); err != nil {
		a.logger.Warn("reloaded tab settings rejected", zap.Error(err))
		return
	}
	a.config.Tabs = cfg.Tabs
}

// Config returns a copy of the active configuration.
func (a *Application) Config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.config.Clone()
}

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.logger }

// Document returns the open document.
func (a *Application) Document() *doc.Document { return a.doc }

// Feature returns the tabs feature bound to the document.
func (a *Application) Feature() *tabs.Feature { return a.feature }

// Shutdown stops the watcher, the feature and the document. It is safe
// to call more than once.
func (a *Application) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.shutdown {
		a.mu.Unlock()
		return nil
	}
	a.shutdown = true
	a.mu.Unlock()

	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	if a.feature != nil {
		errs = append(errs, a.feature.Stop())
	}
	if a.doc != nil {
		errs = append(errs, a.doc.Close(ctx))
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

func (a *Application) cleanup() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if a.feature != nil {
		_ = a.feature.Stop()
	}
}
