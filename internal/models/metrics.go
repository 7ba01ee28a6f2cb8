package models

import "time"

// MetricSnapshot is the combined point-in-time result of all metric queries.
// It is recomputed on every request and never stored.
type MetricSnapshot struct {
	TotalFiles              int64      `json:"totalFiles"`
	TotalFilesChange        int64      `json:"totalFilesChange"`
	TotalDirectories        int64      `json:"totalDirectories"`
	TotalDirectoriesChange  int64      `json:"totalDirectoriesChange"`
	LastSensitiveAccess     *time.Time `json:"lastSensitiveAccess"`
	SensitiveAccesses       int64      `json:"sensitiveAccesses"`
	SensitiveAccessesChange int64      `json:"sensitiveAccessesChange"`
	TotalStorage            int64      `json:"totalStorage"`
	TotalStorageChange      int64      `json:"totalStorageChange"`
	TotalEvents             int64      `json:"totalEvents"`
}

// EventSummaryRow is the share of one event kind in the whole log
type EventSummaryRow struct {
	Event      EventKind `json:"event"`
	Count      int64     `json:"count"`
	Percentage float64   `json:"percentage"`
}
