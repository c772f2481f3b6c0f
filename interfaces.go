// Package cogbot defines interfaces for storage, caching, and logging used by the settings store.
package cogbot

import (
	"context"
	"time"
)

// Storage defines the methods required for a cache persistence backend.
// Each named cache is stored as one opaque blob.
type Storage interface {
	// Read returns the blob stored under name, or ErrNotFound.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the blob stored under name.
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// Cache defines the methods required for a TTL caching backend.
type Cache interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Logger defines the methods required for logging within the bot.
// The args should be alternating key-value pairs, similar to slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
