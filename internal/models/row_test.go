package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowHelpersAcceptDriverAndJSONValues(t *testing.T) {
	row := Row{
		"driver_int":  int64(21243707392),
		"json_int":    float64(21243707392),
		"numeric":     "42",
		"null":        nil,
		"sqlite_time": "2026-10-16 15:00:05.25+00:00",
		"json_time":   "2026-10-16T15:00:05.25Z",
		"native_time": time.Date(2026, 10, 16, 12, 0, 5, 250000000, time.FixedZone("BRT", -3*3600)),
		"int_bool":    int64(1),
		"json_bool":   false,
	}

	for _, column := range []string{"driver_int", "json_int"} {
		n, err := RowInt64(row, column)
		require.NoError(t, err)
		assert.Equal(t, int64(21243707392), n)
	}

	n, err := RowInt64(row, "numeric")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	n, err = RowInt64(row, "null")
	require.NoError(t, err)
	assert.Zero(t, n)

	want := time.Date(2026, 10, 16, 15, 0, 5, 250000000, time.UTC)
	for _, column := range []string{"sqlite_time", "json_time", "native_time"} {
		ts, err := RowTime(row, column)
		require.NoError(t, err, column)
		assert.True(t, want.Equal(ts), column)
		assert.Equal(t, time.UTC, ts.Location())
	}

	missing, err := RowNullTime(row, "null")
	require.NoError(t, err)
	assert.Nil(t, missing)

	b, err := RowBool(row, "int_bool")
	require.NoError(t, err)
	assert.True(t, b)
	b, err = RowBool(row, "json_bool")
	require.NoError(t, err)
	assert.False(t, b)

	_, err = RowInt64(row, "absent")
	assert.Error(t, err)
}

func TestLogEntryFromRow(t *testing.T) {
	row := Row{
		"id":                 float64(7),
		"timestamp":          "2026-10-16T15:00:00Z",
		"event":              "Renomeado",
		"path":               `C:\Data\HR\payroll.xlsx`,
		"root_path":          `C:\Data\HR`,
		"details":            nil,
		"user_name":          "ana.souza",
		"hostname":           "ws-014",
		"ip_address":         nil,
		"synced_to_external": int64(0),
		"flag":               int64(1),
	}

	entry, err := LogEntryFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, int64(7), entry.ID)
	assert.Equal(t, EventRenamed, entry.Event.Tag)
	assert.Equal(t, "Renomeado", entry.Event.String())
	assert.Nil(t, entry.Details)
	require.NotNil(t, entry.Hostname)
	assert.Equal(t, "ws-014", *entry.Hostname)
	assert.Nil(t, entry.IPAddress)
	assert.False(t, entry.SyncedToExternal)
	assert.Equal(t, 1, entry.Flag)
}

func TestParseEventKind(t *testing.T) {
	tests := map[string]EventKindTag{
		"Created":   EventCreated,
		"CRIADO":    EventCreated,
		"deleted":   EventDeleted,
		"Deletado":  EventDeleted,
		"Alterado":  EventModified,
		"Modified":  EventModified,
		" Renamed ": EventRenamed,
		"Copied":    EventOther,
		"":          EventOther,
	}

	for label, tag := range tests {
		kind := ParseEventKind(label)
		assert.Equal(t, tag, kind.Tag, label)
	}

	assert.Equal(t, "Copied", ParseEventKind("Copied").String())
	assert.Equal(t, "Other", EventKind{}.String())
}
