package models

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Row is one result row keyed by column name, as returned by the store.
// Values are driver types in-process and JSON types when rows come over HTTP,
// so readers go through the helpers below rather than type assertions.
type Row = map[string]interface{}

// RowInt64 reads an integer column; NULL reads as 0
func RowInt64(row Row, column string) (int64, error) {
	value, ok := row[column]
	if !ok {
		return 0, fmt.Errorf("column %q missing from row", column)
	}
	if value == nil {
		return 0, nil
	}
	n, err := cast.ToInt64E(value)
	if err != nil {
		// SUM over NUMERIC and JSON numbers may arrive with a fractional form
		f, ferr := cast.ToFloat64E(value)
		if ferr != nil {
			return 0, fmt.Errorf("column %q: %w", column, err)
		}
		return int64(f), nil
	}
	return n, nil
}

// RowFloat64 reads a numeric column; NULL reads as 0
func RowFloat64(row Row, column string) (float64, error) {
	value, ok := row[column]
	if !ok {
		return 0, fmt.Errorf("column %q missing from row", column)
	}
	if value == nil {
		return 0, nil
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", column, err)
	}
	return f, nil
}

// RowString reads a text column; NULL reads as ""
func RowString(row Row, column string) (string, error) {
	value, ok := row[column]
	if !ok {
		return "", fmt.Errorf("column %q missing from row", column)
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return "", fmt.Errorf("column %q: %w", column, err)
	}
	return s, nil
}

// RowNullString reads a nullable text column
func RowNullString(row Row, column string) (*string, error) {
	if value, ok := row[column]; ok && value == nil {
		return nil, nil
	}
	s, err := RowString(row, column)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RowBool reads a boolean column stored as a boolean or as 0/1
func RowBool(row Row, column string) (bool, error) {
	value, ok := row[column]
	if !ok {
		return false, fmt.Errorf("column %q missing from row", column)
	}
	if value == nil {
		return false, nil
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return false, fmt.Errorf("column %q: %w", column, err)
	}
	return b, nil
}

// RowNullTime reads a nullable timestamp column as UTC
func RowNullTime(row Row, column string) (*time.Time, error) {
	value, ok := row[column]
	if !ok {
		return nil, fmt.Errorf("column %q missing from row", column)
	}
	if value == nil {
		return nil, nil
	}
	if s, isString := value.(string); isString && s == "" {
		return nil, nil
	}
	t, err := cast.ToTimeE(value)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", column, err)
	}
	t = t.UTC()
	return &t, nil
}

// RowTime reads a non-null timestamp column as UTC
func RowTime(row Row, column string) (time.Time, error) {
	t, err := RowNullTime(row, column)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("column %q is null", column)
	}
	return *t, nil
}
