package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"

	"github.com/CreativeUnicorns/cogbot"
	"github.com/CreativeUnicorns/cogbot/cache"
	"github.com/CreativeUnicorns/cogbot/config"
	"github.com/CreativeUnicorns/cogbot/storage"
)

const sqliteFileName = "cogbot.db"

// newLogHandler builds the process log handler: tint for text, slog JSON otherwise.
func newLogHandler(cfg *config.Config, w io.Writer) slog.Handler {
	if cfg.LogFormat == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(w),
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// openStorage builds the configured cache persistence backend, wrapped in
// cogbot.EncryptedStorage when storage.encrypt is set.
func openStorage(cfg *config.Config) (cogbot.Storage, error) {
	var (
		store cogbot.Storage
		err   error
	)
	sc := cfg.Storage
	switch sc.Type {
	case config.StorageFile:
		store, err = storage.NewFileStorage(sc.Dir, sc.Locations)
	case config.StorageSQLite:
		path := sc.DSN
		if path == "" {
			if err := os.MkdirAll(sc.Dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create storage directory: %w", err)
			}
			path = filepath.Join(sc.Dir, sqliteFileName)
		}
		store, err = storage.NewSQLiteStorage(path)
	case config.StoragePostgres:
		store, err = storage.NewPostgresStorage(sc.DSN)
	case config.StorageRedis:
		store, err = storage.NewRedisStorage(sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB, sc.Redis.Prefix)
	case config.StorageMemory:
		store = storage.NewMemoryStorage()
	default:
		return nil, fmt.Errorf("%w: unknown storage type %q", cogbot.ErrInvalidInput, sc.Type)
	}
	if err != nil {
		return nil, err
	}

	if sc.Encrypt {
		enc, err := cogbot.NewEncryptedStorage(store)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to enable storage encryption: %w", err)
		}
		return enc, nil
	}
	return store, nil
}

// checkStorage refuses a store whose settings exist but cannot be decrypted.
// Starting anyway would checkpoint an empty table over them.
func checkStorage(ctx context.Context, store cogbot.Storage) error {
	_, err := store.Read(ctx, cogbot.DefaultCacheName)
	if errors.Is(err, cogbot.ErrUndecryptable) {
		return fmt.Errorf("stored settings are unreadable with the configured encryption key: %w", err)
	}
	return nil
}

// openCache builds the cooldown cache.
func openCache(cfg *config.Config) (cogbot.Cache, error) {
	switch cfg.Cache.Type {
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheRedis:
		rc := cfg.Cache.Redis
		return cache.NewRedisCache(rc.Addr, rc.Password, rc.DB, rc.Prefix)
	default:
		return nil, fmt.Errorf("%w: unknown cache type %q", cogbot.ErrInvalidInput, cfg.Cache.Type)
	}
}

// newManager creates the settings manager from the configured categories.
func newManager(cfg *config.Config, store cogbot.Storage, logger cogbot.Logger) (*cogbot.Manager, error) {
	return cogbot.New(
		cogbot.WithStorage(store),
		cogbot.WithLogger(logger),
		cogbot.WithCategories(cfg.Categories()...),
		cogbot.WithDefaults(cfg.Defaults()),
	)
}
