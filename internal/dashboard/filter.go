package dashboard

import (
	"strings"

	"github.com/smartdevs17/steelflow-monitor/internal/models"
)

// FilterLogs keeps entries whose path, event label or user name contains term,
// ignoring case. An empty term keeps everything.
func FilterLogs(entries []models.LogEntry, term string) []models.LogEntry {
	needle := strings.ToLower(term)
	if needle == "" {
		return entries
	}

	filtered := make([]models.LogEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Path), needle) ||
			strings.Contains(strings.ToLower(entry.Event.String()), needle) ||
			strings.Contains(strings.ToLower(entry.UserName), needle) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}
