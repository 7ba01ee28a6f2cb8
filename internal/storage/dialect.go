package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect identifies the SQL flavour spoken by the backing store
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// sqliteTimeFormat matches the driver's _time_format=sqlite write format
const sqliteTimeFormat = "2006-01-02 15:04:05.999999999-07:00"

// ParseDialect converts a configured storage type into a Dialect
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite":
		return DialectSQLite, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unknown dialect %q", name)
	}
}

// Rebind rewrites '?' placeholders into the dialect's positional form.
// Only use it on statements written by this program: quoted '?' characters are not skipped.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TimeArg renders an instant as a bound parameter the dialect compares correctly
// against its timestamp columns. The result is a string so it also survives JSON transport.
// SQLite compares timestamps as text, so windows and ordering are only correct while every
// stored timestamp carries the +00:00 offset; rows written with a local offset shift silently.
func (d Dialect) TimeArg(t time.Time) string {
	if d == DialectPostgres {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC().Format(sqliteTimeFormat)
}
