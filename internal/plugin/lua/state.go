package lua

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// DefaultExecutionTimeout bounds one DoString or DoFile run.
const DefaultExecutionTimeout = 5 * time.Second

// Module is a Go API exposed to scripts as a global table.
type Module interface {
	// Name is the global the module is installed under.
	Name() string
	// Register installs the module into L.
	Register(L *lua.LState) error
}

// State wraps gopher-lua for script execution.
//
// The mutex serializes Go callers; Lua code itself is single-threaded.
type State struct {
	L *lua.LState

	mu sync.Mutex

	executionTimeout time.Duration
	out              io.Writer
	logger           *zap.Logger

	sandbox *Sandbox
	bridge  *Bridge
	modules map[string]Module

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the timeout of each run. Zero disables it.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		if d >= 0 {
			s.executionTimeout = d
		}
	}
}

// WithOutput sets where print writes.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) StateOption {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) (*State, error) {
	s := &State{
		executionTimeout: DefaultExecutionTimeout,
		logger:           zap.NewNop(),
		modules:          make(map[string]Module),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("lua")

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	s.sandbox = NewSandbox(s.L, s.out)
	s.sandbox.Install()
	s.bridge = NewBridge(s.L)
	return s, nil
}

// Register installs m under its name.
func (s *State) Register(m Module) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	if _, ok := s.modules[m.Name()]; ok {
		return fmt.Errorf("%s: %w", m.Name(), ErrModuleRegistered)
	}
	if err := m.Register(s.L); err != nil {
		return fmt.Errorf("registering %s: %w", m.Name(), err)
	}
	s.modules[m.Name()] = m
	return nil
}

// DoString executes Lua source. It blocks until the chunk returns, fails,
// or ctx (bounded by the execution timeout) ends.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, "<string>", func() error {
		return s.L.DoString(code)
	})
}

// DoFile executes a Lua file.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, path, func() error {
		return s.L.DoFile(path)
	})
}

func (s *State) run(ctx context.Context, chunk string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	if s.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.executionTimeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	start := time.Now()
	err := doWithRecovery(fn)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			err = fmt.Errorf("%s: %w", chunk, ErrExecutionTimeout)
		case ctx.Err() != nil:
			err = fmt.Errorf("%s: %w", chunk, ctx.Err())
		}
		s.logger.Debug("script failed", zap.String("chunk", chunk), zap.Error(err))
		return err
	}
	s.logger.Debug("script finished", zap.String("chunk", chunk), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// doWithRecovery executes a function with panic recovery.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Global returns a global converted to a Go value.
func (s *State) Global(name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	return s.bridge.ToGoValue(s.L.GetGlobal(name))
}

// SetGlobal sets a global from a Go value.
func (s *State) SetGlobal(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.bridge.ToLuaValue(value))
}

// Sandbox returns the sandbox.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the state and closes modules that implement io.Closer.
// After Close is called, runs return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	var errs []error
	for _, m := range s.modules {
		if c, ok := m.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	s.L.Close()
	s.closed = true
	return errors.Join(errs...)
}
