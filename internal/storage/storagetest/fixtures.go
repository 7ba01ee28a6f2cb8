// Package storagetest provides a migrated throwaway store and fixture writers for tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/internal/storage"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// NewSQLite returns a connected, migrated SQLite store that is closed with the test
func NewSQLite(t testing.TB) *storage.SQLiteStorage {
	t.Helper()

	store := storage.NewSQLiteStorage(&storage.StorageConfig{
		Type:             "sqlite",
		ConnectionString: filepath.Join(t.TempDir(), "steelflow.db"),
		MaxConnections:   10,
		MaxIdleTime:      time.Minute,
	})
	require.NoError(t, store.Connect())
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { store.Close() })

	return store
}

// InsertLog writes one audit row and returns its id
func InsertLog(t testing.TB, store *storage.SQLiteStorage, entry models.LogEntry) int64 {
	t.Helper()

	var id int64
	err := store.DB().QueryRowContext(context.Background(), `
		INSERT INTO logs (timestamp, event, path, root_path, details, user_name, hostname,
		                  ip_address, synced_to_external, flag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		entry.Timestamp.UTC(), entry.Event.String(), entry.Path, entry.RootPath, entry.Details,
		entry.UserName, entry.Hostname, entry.IPAddress, entry.SyncedToExternal, entry.Flag,
	).Scan(&id)
	require.NoError(t, err)

	return id
}

// InsertCatalogItem writes one catalog row; the path hash is derived when empty
func InsertCatalogItem(t testing.TB, store *storage.SQLiteStorage, item models.CatalogItem) {
	t.Helper()

	if item.ItemPathHash == "" {
		item.ItemPathHash = utils.PathHash(item.ItemPath)
	}
	sensitive := 0
	if item.Sensitive {
		sensitive = 1
	}

	_, err := store.DB().ExecContext(context.Background(), `
		INSERT INTO catalog (item_path, item_path_hash, item_type, size_bytes, last_seen, sensitive)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ItemPath, item.ItemPathHash, item.ItemType, item.SizeBytes, item.LastSeen.UTC(), sensitive,
	)
	require.NoError(t, err)
}

// FakeLog builds a plausible audit row at ts using faker
func FakeLog(faker *gofakeit.Faker, ts time.Time, event string) models.LogEntry {
	root := `C:\` + faker.RandomString([]string{"Data", "Shares", "Users"})
	host := faker.DomainName()
	ip := faker.IPv4Address()

	return models.LogEntry{
		Timestamp: ts.UTC().Truncate(time.Second),
		Event:     models.ParseEventKind(event),
		Path:      root + `\` + faker.Word() + "." + faker.FileExtension(),
		RootPath:  root,
		UserName:  faker.Username(),
		Hostname:  &host,
		IPAddress: &ip,
	}
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 {
	return &v
}
