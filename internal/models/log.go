package models

import "time"

// LogEntry is one file-system event recorded by the watching agent
type LogEntry struct {
	ID               int64     `json:"id" db:"id"`
	Timestamp        time.Time `json:"timestamp" db:"timestamp"`
	Event            EventKind `json:"event" db:"event"`
	Path             string    `json:"path" db:"path"`
	RootPath         string    `json:"root_path" db:"root_path"`
	Details          *string   `json:"details" db:"details"`
	UserName         string    `json:"user_name" db:"user_name"`
	Hostname         *string   `json:"hostname" db:"hostname"`
	IPAddress        *string   `json:"ip_address" db:"ip_address"`
	SyncedToExternal bool      `json:"synced_to_external" db:"synced_to_external"`
	Flag             int       `json:"flag" db:"flag"`
}

// LogEntryFromRow decodes a logs row selected with all of its columns
func LogEntryFromRow(row Row) (LogEntry, error) {
	var (
		entry LogEntry
		event string
		flag  int64
		err   error
	)

	if entry.ID, err = RowInt64(row, "id"); err != nil {
		return entry, err
	}
	if entry.Timestamp, err = RowTime(row, "timestamp"); err != nil {
		return entry, err
	}
	if event, err = RowString(row, "event"); err != nil {
		return entry, err
	}
	entry.Event = ParseEventKind(event)
	if entry.Path, err = RowString(row, "path"); err != nil {
		return entry, err
	}
	if entry.RootPath, err = RowString(row, "root_path"); err != nil {
		return entry, err
	}
	if entry.Details, err = RowNullString(row, "details"); err != nil {
		return entry, err
	}
	if entry.UserName, err = RowString(row, "user_name"); err != nil {
		return entry, err
	}
	if entry.Hostname, err = RowNullString(row, "hostname"); err != nil {
		return entry, err
	}
	if entry.IPAddress, err = RowNullString(row, "ip_address"); err != nil {
		return entry, err
	}
	if entry.SyncedToExternal, err = RowBool(row, "synced_to_external"); err != nil {
		return entry, err
	}
	if flag, err = RowInt64(row, "flag"); err != nil {
		return entry, err
	}
	entry.Flag = int(flag)

	return entry, nil
}
