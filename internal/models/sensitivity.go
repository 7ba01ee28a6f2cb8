package models

import "time"

// MaxRootPathLength bounds RootSensitivityRule.RootPath
const MaxRootPathLength = 1024

// RootSensitivityRule declares that everything under RootPath is (or is not) sensitive.
// Rules are append-only; several rules may exist for the same path.
type RootSensitivityRule struct {
	ID         int64      `json:"id,omitempty" db:"id"`
	RootPath   string     `json:"root_path" db:"root_path"`
	Sensitive  int        `json:"sensitive" db:"sensitive"`
	DeclaredAt *time.Time `json:"declared_at,omitempty" db:"declared_at"`
}

// RootSensitivityRuleFromRow decodes a root_sensitivity row
func RootSensitivityRuleFromRow(row Row) (RootSensitivityRule, error) {
	var (
		rule      RootSensitivityRule
		sensitive int64
		err       error
	)

	if rule.ID, err = RowInt64(row, "id"); err != nil {
		return rule, err
	}
	if rule.RootPath, err = RowString(row, "root_path"); err != nil {
		return rule, err
	}
	if sensitive, err = RowInt64(row, "sensitive"); err != nil {
		return rule, err
	}
	rule.Sensitive = int(sensitive)
	if rule.DeclaredAt, err = RowNullTime(row, "declared_at"); err != nil {
		return rule, err
	}

	return rule, nil
}
