// errors.go
package cogbot

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput       = errors.New("invalid input parameters")
	ErrArgCount           = errors.New("exactly two arguments are required")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidMode        = errors.New("invalid mode")
	ErrInvalidState       = errors.New("invalid state")
	ErrMissingDefault     = errors.New("category has no default")
	ErrNoCategories       = errors.New("no categories configured")
	ErrNotFound           = errors.New("cache not found")
	ErrSerialization      = errors.New("cache serialization failed")
	ErrStorageUnavailable = errors.New("storage backend unavailable")
	ErrCacheUnavailable   = errors.New("cache backend unavailable")
	// ErrUndecryptable means a stored blob could not be opened with the
	// configured key. The blob is left in place.
	ErrUndecryptable = errors.New("cache could not be decrypted")
)

// ValidationError is returned when a settings write is rejected before any
// mutation. It carries the valid options so the caller can render a hint.
type ValidationError struct {
	Err        error
	Categories []string
	Modes      []Mode
}

func (e *ValidationError) Error() string {
	modes := make([]string, len(e.Modes))
	for i, m := range e.Modes {
		modes[i] = string(m)
	}
	return fmt.Sprintf("%v (categories: %s; modes: %s)",
		e.Err, strings.Join(e.Categories, ", "), strings.Join(modes, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
