package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrShutdown indicates use of an application after Shutdown.
	ErrShutdown = errors.New("application is shut down")

	// ErrNoFilePath indicates Save without a path on a document never
	// opened from or saved to a file.
	ErrNoFilePath = errors.New("no file path")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// FileError represents a file operation error.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return e.Op + " " + e.Path
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}
