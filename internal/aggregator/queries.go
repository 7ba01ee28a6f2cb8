package aggregator

// Statements use '?' placeholders and are rebound per dialect before execution.
// Window bounds are bound parameters computed from the aggregator clock.
const (
	queryTotalFiles = `
		SELECT COUNT(*) AS total
		FROM catalog
		WHERE item_type = 'file'`

	queryTotalFilesChange = `
		SELECT
			(SELECT COUNT(*) FROM catalog
			 WHERE item_type = 'file' AND last_seen >= ?) AS current_value,
			(SELECT COUNT(*) FROM catalog
			 WHERE item_type = 'file' AND last_seen >= ? AND last_seen < ?) AS previous_value`

	queryTotalDirectories = `
		SELECT COUNT(*) AS total
		FROM catalog
		WHERE item_type = 'directory'`

	queryLastSensitiveAccess = `
		SELECT MAX(l.timestamp) AS last_access
		FROM logs l
		INNER JOIN catalog c ON md5(l.path) = c.item_path_hash
		WHERE c.sensitive = 1`

	querySensitiveAccesses = `
		SELECT COUNT(DISTINCT l.id) AS total
		FROM logs l
		INNER JOIN catalog c ON md5(l.path) = c.item_path_hash
		WHERE c.sensitive = 1`

	querySensitiveAccessesChange = `
		SELECT
			COUNT(CASE WHEN l.timestamp >= ? THEN 1 END) AS current_value,
			COUNT(CASE WHEN l.timestamp >= ? AND l.timestamp < ? THEN 1 END) AS previous_value
		FROM logs l
		INNER JOIN catalog c ON md5(l.path) = c.item_path_hash
		WHERE c.sensitive = 1`

	queryTotalStorage = `
		SELECT COALESCE(SUM(size_bytes), 0) AS total
		FROM catalog
		WHERE item_type = 'file'`

	queryTotalStorageChange = `
		SELECT
			(SELECT COALESCE(SUM(size_bytes), 0) FROM catalog
			 WHERE item_type = 'file' AND last_seen >= ?) AS current_value,
			(SELECT COALESCE(SUM(size_bytes), 0) FROM catalog
			 WHERE item_type = 'file' AND last_seen >= ? AND last_seen < ?) AS previous_value`

	queryTotalEvents = `
		SELECT COUNT(*) AS total
		FROM logs`
)

// Statements lists every fixed statement the aggregator issues
var Statements = []string{
	queryTotalFiles,
	queryTotalFilesChange,
	queryTotalDirectories,
	queryLastSensitiveAccess,
	querySensitiveAccesses,
	querySensitiveAccessesChange,
	queryTotalStorage,
	queryTotalStorageChange,
	queryTotalEvents,
}
