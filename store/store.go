// Package store defines the key-value contract the link registry persists through,
// with in-memory and Redis backends. The PostgreSQL backend lives in package db.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// UpdateFunc receives the current value at a key and returns its replacement.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is a durable mapping from string keys to opaque JSON values.
// Implementations must be safe for concurrent use. Set is last-write-wins and
// Update is the read-modify-write primitive. No operation spans more than one key.
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// MGet returns one entry per key, in order. Missing keys yield nil entries.
	MGet(ctx context.Context, keys ...string) ([][]byte, error)

	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Update replaces the value at key with fn's result as one atomic step.
	// It returns ErrNotFound when key does not exist. Errors returned by fn are
	// passed through unchanged and nothing is written. fn may run more than once.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// Error wraps a failure of the underlying backend.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as a *Error unless it is nil or ErrNotFound.
func Wrap(op, key string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Key: key, Err: err}
}

// IsBackendError reports whether err came from a failing backend.
func IsBackendError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
