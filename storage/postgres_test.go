package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/cogbot"
)

// newMockPostgres returns a PostgresStorage backed by sqlmock with a fixed clock.
func newMockPostgres(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock, time.Time) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &PostgresStorage{db: db, now: func() time.Time { return now }}, mock, now
}

func TestNewPostgresStorage(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing()
		mock.ExpectExec(regexp.QuoteMeta(createTableSQL)).WillReturnResult(sqlmock.NewResult(0, 0))

		originalSqlOpen := sqlOpenFunc
		sqlOpenFunc = func(driverName, dataSourceName string) (*sql.DB, error) {
			assert.Equal(t, "postgres", driverName)
			return db, nil
		}
		defer func() { sqlOpenFunc = originalSqlOpen }()

		storage, err := NewPostgresStorage("postgres://cogbot@localhost/cogbot")
		require.NoError(t, err)
		assert.NotNil(t, storage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open fails", func(t *testing.T) {
		originalSqlOpen := sqlOpenFunc
		sqlOpenFunc = func(string, string) (*sql.DB, error) {
			return nil, errors.New("bad dsn")
		}
		defer func() { sqlOpenFunc = originalSqlOpen }()

		_, err := NewPostgresStorage("nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgres: failed to open database connection")
	})

	t.Run("ping fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		originalSqlOpen := sqlOpenFunc
		sqlOpenFunc = func(string, string) (*sql.DB, error) { return db, nil }
		defer func() { sqlOpenFunc = originalSqlOpen }()

		_, err = NewPostgresStorage("postgres://cogbot@localhost/cogbot")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgres: failed to ping database")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("migration fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)

		mock.ExpectPing()
		mock.ExpectExec(regexp.QuoteMeta(createTableSQL)).WillReturnError(errors.New("permission denied"))
		mock.ExpectClose()

		originalSqlOpen := sqlOpenFunc
		sqlOpenFunc = func(string, string) (*sql.DB, error) { return db, nil }
		defer func() { sqlOpenFunc = originalSqlOpen }()

		_, err = NewPostgresStorage("postgres://cogbot@localhost/cogbot")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgres: failed to run migrations")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStorage_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		storage, mock, _ := newMockPostgres(t)
		rows := sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"1":{"search":"off"}}`))
		mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).WithArgs("settings").WillReturnRows(rows)

		data, err := storage.Read(ctx, "settings")
		require.NoError(t, err)
		assert.JSONEq(t, `{"1":{"search":"off"}}`, string(data))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		storage, mock, _ := newMockPostgres(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).WithArgs("settings").WillReturnError(sql.ErrNoRows)

		_, err := storage.Read(ctx, "settings")
		assert.ErrorIs(t, err, cogbot.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		storage, mock, _ := newMockPostgres(t)
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).WithArgs("settings").WillReturnError(dbErr)

		_, err := storage.Read(ctx, "settings")
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, cogbot.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStorage_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert", func(t *testing.T) {
		storage, mock, now := newMockPostgres(t)
		blob := []byte(`{"1":{"search":"on"}}`)
		mock.ExpectExec(regexp.QuoteMeta(upsertSQL)).
			WithArgs("settings", blob, now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, storage.Write(ctx, "settings", blob))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		storage, mock, _ := newMockPostgres(t)
		mock.ExpectExec(regexp.QuoteMeta(upsertSQL)).
			WithArgs("settings", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(errors.New("disk full"))

		err := storage.Write(ctx, "settings", []byte(`{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgres: failed to write cache 'settings'")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStorage_Close(t *testing.T) {
	storage, mock, _ := newMockPostgres(t)
	mock.ExpectClose()
	require.NoError(t, storage.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
