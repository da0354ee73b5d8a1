package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dshills/tabstorm/internal/doc"
	"github.com/dshills/tabstorm/internal/doc/codec"
	"github.com/dshills/tabstorm/internal/plugin/lua"
	"github.com/dshills/tabstorm/internal/tabs"
)

// Inspection compares a document as read from disk with the document after
// the feature reconciled it.
type Inspection struct {
	Before []tabs.Violation
	After  []tabs.Violation
}

// Healthy reports whether the document needed no repairs.
func (i Inspection) Healthy() bool {
	return len(i.Before) == 0
}

func (a *Application) checkOpen() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.shutdown {
		return ErrShutdown
	}
	return nil
}

// OpenFile decodes the JSON document at path and loads it, replacing the
// current tree. Loading triggers reconciliation unless the application is
// read-only.
func (a *Application) OpenFile(ctx context.Context, path string) error {
	if err := a.checkOpen(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &FileError{Op: "open", Path: path, Err: err}
	}
	root, err := codec.Decode(data)
	if err != nil {
		return &FileError{Op: "decode", Path: path, Err: err}
	}
	before := tabs.Validate(root)
	if err := a.doc.Load(ctx, root); err != nil {
		return &FileError{Op: "load", Path: path, Err: err}
	}

	a.mu.Lock()
	a.path = path
	a.loaded = before
	a.mu.Unlock()

	a.logger.Info("document opened",
		zap.String("path", path),
		zap.Int("violations", len(before)),
		zap.Int("containers", len(a.feature.Registry().IDs())))
	return nil
}

// Path returns the file the document was last opened from or saved to.
func (a *Application) Path() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.path
}

// Encode serializes the current tree as JSON.
func (a *Application) Encode(indent bool) ([]byte, error) {
	if indent {
		return codec.EncodeIndent(a.doc.Root())
	}
	return codec.Encode(a.doc.Root())
}

// Save writes the document to path, or to the path it was opened from when
// path is empty.
func (a *Application) Save(path string) error {
	if err := a.checkOpen(); err != nil {
		return err
	}
	if path == "" {
		path = a.Path()
	}
	if path == "" {
		return ErrNoFilePath
	}
	data, err := a.Encode(true)
	if err != nil {
		return &FileError{Op: "encode", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}

	a.mu.Lock()
	a.path = path
	a.mu.Unlock()
	a.logger.Info("document saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// Inspect reports the violations found when the document was opened next
// to those remaining now.
func (a *Application) Inspect() Inspection {
	a.mu.Lock()
	before := append([]tabs.Violation(nil), a.loaded...)
	a.mu.Unlock()
	return Inspection{Before: before, After: a.Violations()}
}

// Violations checks the current tree and registry.
func (a *Application) Violations() []tabs.Violation {
	root := a.doc.Root()
	return append(tabs.Validate(root), tabs.ValidateRegistry(root, a.feature.Registry())...)
}

// Repair runs an explicit reconciliation pass.
func (a *Application) Repair(ctx context.Context) (tabs.Report, error) {
	if err := a.checkOpen(); err != nil {
		return tabs.Report{}, err
	}
	if a.doc.IsReadOnly() {
		return tabs.Report{}, fmt.Errorf("repair: %w", doc.ErrReadOnly)
	}
	rep, err := a.feature.Reconciler().Reconcile(ctx)
	if err != nil {
		return rep, fmt.Errorf("repair: %w", err)
	}
	return rep, nil
}

// RunScript executes the Lua file at path against the document. print
// writes to out.
func (a *Application) RunScript(ctx context.Context, path string, out io.Writer) error {
	if err := a.checkOpen(); err != nil {
		return err
	}
	state, err := lua.NewState(lua.WithOutput(out), lua.WithLogger(a.logger))
	if err != nil {
		return &InitError{Component: "lua", Err: err}
	}
	defer func() {
		if err := state.Close(); err != nil {
			a.logger.Warn("closing lua state", zap.Error(err))
		}
	}()

	module := lua.NewTabsModule(a.feature, lua.WithCapabilities(a.scriptCapabilities()...))
	if err := state.Register(module); err != nil {
		return &InitError{Component: "lua", Err: err}
	}
	a.logger.Debug("running script", zap.String("path", path))
	if err := state.DoFile(ctx, path); err != nil {
		return &FileError{Op: "run", Path: path, Err: err}
	}
	return nil
}

func (a *Application) scriptCapabilities() []lua.Capability {
	switch {
	case len(a.opts.ScriptCapabilities) > 0:
		return a.opts.ScriptCapabilities
	case a.opts.ReadOnly:
		return []lua.Capability{lua.CapabilityRead, lua.CapabilityEvents}
	default:
		return []lua.Capability{lua.CapabilityTabs}
	}
}
