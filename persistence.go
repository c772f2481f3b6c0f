package cogbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// emptyCache is what LoadCache writes back when a cache cannot be read.
var emptyCache = []byte("{}")

// LoadCache reads the named cache from store.
//
// A missing, empty or corrupt cache is replaced in the store by an empty one
// and an empty, non-nil map is returned, so a later load sees a valid store.
// Any other read failure is logged and also yields an empty map, but the
// store is left untouched. LoadCache never fails.
func LoadCache[M ~map[K]V, K comparable, V any](ctx context.Context, store Storage, name string, logger Logger) M {
	if logger == nil {
		logger = NopLogger()
	}

	m, err := readCache[M](ctx, store, name)
	if err == nil {
		logger.Info("Deserialized cache", "cache", name, "entries", len(m))
		return m
	}

	if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrSerialization) {
		logger.Error("Failed to read cache, starting empty", "cache", name, "error", err)
		return make(M)
	}

	logger.Warn("Could not deserialize cache, creating empty cache", "cache", name, "error", err)
	if werr := store.Write(ctx, name, emptyCache); werr != nil {
		logger.Error("Failed to create empty cache", "cache", name, "error", werr)
	}
	return make(M)
}

func readCache[M ~map[K]V, K comparable, V any](ctx context.Context, store Storage, name string) (M, error) {
	data, err := store.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: cache %q is empty", ErrSerialization, name)
	}

	var m M
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: cache %q: %v", ErrSerialization, name, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: cache %q holds null", ErrSerialization, name)
	}
	return m, nil
}

// SaveCaches writes every named cache to store, replacing prior contents.
//
// Caches are written one at a time in name order. The set is not written
// atomically: if a write fails, caches before it are already updated and the
// rest keep their previous contents. The first error is returned.
func SaveCaches(ctx context.Context, store Storage, caches map[string]any, logger Logger) error {
	if logger == nil {
		logger = NopLogger()
	}

	names := make([]string, 0, len(caches))
	for name := range caches {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := json.Marshal(caches[name])
		if err != nil {
			return fmt.Errorf("%w: cache %q: %v", ErrSerialization, name, err)
		}
		if err := store.Write(ctx, name, data); err != nil {
			return fmt.Errorf("failed to save cache %q: %w", name, err)
		}
	}

	logger.Debug("Serialized all caches", "caches", names)
	return nil
}
