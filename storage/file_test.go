package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/cogbot"
)

func TestNewFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "caches")
	s, err := NewFileStorage(dir, map[string]string{
		"stats":  "counters.json",
		"tokens": "/var/lib/cogbot/tokens.json",
	})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	path, err := s.Path("settings")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "settings.json"), path)

	path, err = s.Path("stats")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "counters.json"), path)

	path, err = s.Path("tokens")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/cogbot/tokens.json", path)

	_, err = s.Path("../escape")
	assert.ErrorIs(t, err, cogbot.ErrInvalidInput)
}

func TestFileStorage_ReadWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStorage(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	t.Run("missing file is not found", func(t *testing.T) {
		_, err := s.Read(ctx, "settings")
		assert.ErrorIs(t, err, cogbot.ErrNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, s.Write(ctx, "settings", []byte(`{"42":{"music":"off"}}`)))

		raw, err := os.ReadFile(filepath.Join(dir, "settings.json"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"42":{"music":"off"}}`, string(raw))

		data, err := s.Read(ctx, "settings")
		require.NoError(t, err)
		assert.Equal(t, raw, data)
	})

	t.Run("overwrite leaves no temp files", func(t *testing.T) {
		require.NoError(t, s.Write(ctx, "settings", []byte(`{}`)))
		require.NoError(t, s.Write(ctx, "settings", []byte(`{"1":{}}`)))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "settings.json", entries[0].Name())

		data, err := s.Read(ctx, "settings")
		require.NoError(t, err)
		assert.Equal(t, `{"1":{}}`, string(data))
	})

	t.Run("invalid name", func(t *testing.T) {
		err := s.Write(ctx, "a/b", []byte(`{}`))
		assert.ErrorIs(t, err, cogbot.ErrInvalidInput)
		_, err = s.Read(ctx, "a/b")
		assert.ErrorIs(t, err, cogbot.ErrInvalidInput)
	})
}

func TestFileStorage_ExplicitLocationDirectoryIsCreated(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStorage(dir, map[string]string{"settings": filepath.Join("sub", "prefs.json")})
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "settings", []byte(`{}`)))
	_, err = os.Stat(filepath.Join(dir, "sub", "prefs.json"))
	assert.NoError(t, err)
}

func TestFileStorage_ReadErrorIsNotNotFound(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStorage(dir, nil)
	require.NoError(t, err)

	// A directory where the cache file should be cannot be read as a file.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "settings.json"), 0o755))

	_, err = s.Read(ctx, "settings")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cogbot.ErrNotFound)
}
