package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdevs17/steelflow-monitor/internal/config"
	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/internal/storage"
	"github.com/smartdevs17/steelflow-monitor/internal/storage/storagetest"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

func TestSQLiteStorage(t *testing.T) {
	store := storagetest.NewSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	assert.Equal(t, storage.DialectSQLite, store.Dialect())

	t.Run("Migrate is idempotent", func(t *testing.T) {
		require.NoError(t, store.Migrate())
	})

	t.Run("Query returns rows keyed by column", func(t *testing.T) {
		faker := gofakeit.New(7)
		ts := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
		entry := storagetest.FakeLog(faker, ts, "Criado")
		id := storagetest.InsertLog(t, store, entry)

		rows, err := store.Query(ctx, "SELECT id, event, path, timestamp FROM logs WHERE id = ?", id)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.EqualValues(t, id, rows[0]["id"])
		assert.Equal(t, "Criado", rows[0]["event"])
		assert.Equal(t, entry.Path, rows[0]["path"])
		stamp, ok := rows[0]["timestamp"].(time.Time)
		require.True(t, ok, "timestamp should decode as time.Time, got %T", rows[0]["timestamp"])
		assert.True(t, ts.Equal(stamp))
	})

	t.Run("Query with no rows returns an empty slice", func(t *testing.T) {
		rows, err := store.Query(ctx, "SELECT id FROM logs WHERE id = ?", -1)
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("md5 matches the catalog hash", func(t *testing.T) {
		rows, err := store.Query(ctx, "SELECT md5(?) AS h", `C:\Data\HR\salaries.xlsx`)
		require.NoError(t, err)
		assert.Equal(t, utils.PathHash(`C:\Data\HR\salaries.xlsx`), rows[0]["h"])
	})

	t.Run("Store errors keep the native code", func(t *testing.T) {
		_, err := store.Query(ctx, "SELECT * FROM no_such_table")
		require.Error(t, err)

		var appErr *utils.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, utils.ErrCodeStore, appErr.Code)
		assert.Equal(t, "1", appErr.StoreCode)
		assert.Contains(t, appErr.Message, "no_such_table")
	})

	t.Run("InsertRootSensitivity appends duplicates", func(t *testing.T) {
		rule := &models.RootSensitivityRule{RootPath: `C:\Data\HR`, Sensitive: 1}
		first, err := store.InsertRootSensitivity(ctx, rule)
		require.NoError(t, err)
		second, err := store.InsertRootSensitivity(ctx, rule)
		require.NoError(t, err)
		assert.Greater(t, second, first)

		rows, err := store.Query(ctx, "SELECT COUNT(*) AS n FROM root_sensitivity WHERE root_path = ?", `C:\Data\HR`)
		require.NoError(t, err)
		assert.EqualValues(t, 2, rows[0]["n"])
	})

	t.Run("Root path with quotes is stored verbatim", func(t *testing.T) {
		path := `C:\Data\O'Brien'); SELECT 1; --`
		_, err := store.InsertRootSensitivity(ctx, &models.RootSensitivityRule{RootPath: path, Sensitive: 0})
		require.NoError(t, err)

		rows, err := store.Query(ctx, "SELECT root_path FROM root_sensitivity WHERE root_path = ?", path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, path, rows[0]["root_path"])
	})
}

func TestClosedStorage(t *testing.T) {
	store := storagetest.NewSQLite(t)
	require.NoError(t, store.Close())

	assert.Error(t, store.Ping(context.Background()))
	_, err := store.Query(context.Background(), "SELECT 1")
	assert.True(t, utils.HasCode(err, utils.ErrCodeStore))
	assert.NoError(t, store.Close())
}

func TestDialectRebind(t *testing.T) {
	query := "SELECT * FROM logs WHERE timestamp >= ? AND timestamp < ? LIMIT ?"

	assert.Equal(t, query, storage.DialectSQLite.Rebind(query))
	assert.Equal(t,
		"SELECT * FROM logs WHERE timestamp >= $1 AND timestamp < $2 LIMIT $3",
		storage.DialectPostgres.Rebind(query))
}

func TestDialectTimeArg(t *testing.T) {
	ts := time.Date(2026, 10, 16, 12, 0, 5, 0, time.FixedZone("BRT", -3*3600))

	assert.Equal(t, "2026-10-16 15:00:05+00:00", storage.DialectSQLite.TimeArg(ts))
	assert.Equal(t, "2026-10-16T15:00:05Z", storage.DialectPostgres.TimeArg(ts))
}

func TestParseDialect(t *testing.T) {
	for _, name := range []string{"sqlite", "SQLite"} {
		d, err := storage.ParseDialect(name)
		require.NoError(t, err)
		assert.Equal(t, storage.DialectSQLite, d)
	}
	for _, name := range []string{"postgres", "postgresql"} {
		d, err := storage.ParseDialect(name)
		require.NoError(t, err)
		assert.Equal(t, storage.DialectPostgres, d)
	}
	_, err := storage.ParseDialect("mysql")
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	dsn := storage.PostgresDSN("db", 5432, "monitor", `p@ss 'word'`, "steelflow", "")
	assert.Equal(t, `host='db' port=5432 user='monitor' password='p@ss \'word\'' dbname='steelflow' sslmode='disable'`, dsn)
}

func TestNewStorage(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		want    storage.Dialect
		wantErr bool
	}{
		{"sqlite", config.StorageConfig{Type: "sqlite", Path: "x.db", MaxConnections: 5}, storage.DialectSQLite, false},
		{"postgres", config.StorageConfig{Type: "postgres", Host: "db", Name: "steelflow", MaxConnections: 5}, storage.DialectPostgres, false},
		{"unsupported", config.StorageConfig{Type: "oracle", MaxConnections: 5}, "", true},
		{"no pool", config.StorageConfig{Type: "sqlite", Path: "x.db"}, "", true},
		{"sqlite without path", config.StorageConfig{Type: "sqlite", MaxConnections: 5}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := storage.NewStorage(&tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, utils.HasCode(err, utils.ErrCodeConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.Dialect())
		})
	}
}
