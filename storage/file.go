package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/CreativeUnicorns/cogbot"
)

// FileStorage implements the Storage interface with one file per cache.
//
// Writes go to a temporary file in the target directory which is then
// renamed over the old file, so a single cache is never left half written.
// Writes of different caches are independent.
type FileStorage struct {
	dir       string
	locations map[string]string
}

// NewFileStorage creates a FileStorage rooted at dir. locations maps cache
// names to explicit paths; names without an entry are stored at
// <dir>/<name>.json. Relative explicit paths are resolved against dir.
func NewFileStorage(dir string, locations map[string]string) (*FileStorage, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file: failed to create cache directory %q: %w", dir, err)
	}

	locs := make(map[string]string, len(locations))
	for name, path := range locations {
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		locs[name] = path
	}
	return &FileStorage{dir: dir, locations: locs}, nil
}

// Path returns the file a cache name is stored in.
func (s *FileStorage) Path(name string) (string, error) {
	if path, ok := s.locations[name]; ok {
		return path, nil
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// Read returns the contents of the cache file.
// It returns cogbot.ErrNotFound if the file does not exist.
func (s *FileStorage) Read(_ context.Context, name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", cogbot.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("file: failed to read cache %q: %w", name, err)
	}
	return data, nil
}

// Write atomically replaces the cache file with data.
func (s *FileStorage) Write(_ context.Context, name string, data []byte) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("file: failed to create directory for cache %q: %w", name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file: failed to create temp file for cache %q: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file: failed to write cache %q: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file: failed to sync cache %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: failed to close cache %q: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("file: failed to replace cache %q: %w", name, err)
	}
	return nil
}

// Close is a no-op; FileStorage holds no open handles between calls.
func (s *FileStorage) Close() error {
	return nil
}
