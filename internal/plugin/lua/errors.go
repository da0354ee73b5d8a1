package lua

import "errors"

var (
	ErrStateClosed      = errors.New("lua: state closed")
	ErrExecutionTimeout = errors.New("lua: script exceeded its time limit")
	// ErrModuleRegistered means a second module claimed an installed global.
	ErrModuleRegistered = errors.New("lua: module name in use")
)
