// Package sensitivity records root path sensitivity declarations.
package sensitivity

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// Inserter is the part of the store the writer needs
type Inserter interface {
	InsertRootSensitivity(ctx context.Context, rule *models.RootSensitivityRule) (int64, error)
}

// Writer validates and appends sensitivity rules. Repeated paths create new rows.
type Writer struct {
	store  Inserter
	logger *logrus.Entry
}

// NewWriter creates a writer on top of store
func NewWriter(store Inserter) *Writer {
	return &Writer{
		store:  store,
		logger: utils.Component("sensitivity"),
	}
}

// Validate checks a rule without touching the store.
// The path is not normalized or checked against the file system.
func Validate(rule *models.RootSensitivityRule) error {
	if strings.TrimSpace(rule.RootPath) == "" {
		return utils.NewAppError(utils.ErrCodeBadRequest, "root_path is required")
	}
	if n := utf8.RuneCountInString(rule.RootPath); n > models.MaxRootPathLength {
		return utils.NewAppError(utils.ErrCodeBadRequest,
			fmt.Sprintf("root_path must be at most %d characters", models.MaxRootPathLength),
			fmt.Sprintf("got %d", n))
	}
	if rule.Sensitive != 0 && rule.Sensitive != 1 {
		return utils.NewAppError(utils.ErrCodeBadRequest, "sensitive must be 0 or 1")
	}
	return nil
}

// InsertRootSensitivity validates rootPath and sensitive and stores a new rule
func (w *Writer) InsertRootSensitivity(ctx context.Context, rootPath string, sensitive int) (*models.RootSensitivityRule, error) {
	rule := &models.RootSensitivityRule{RootPath: rootPath, Sensitive: sensitive}
	if err := Validate(rule); err != nil {
		w.logger.WithFields(logrus.Fields{
			"root_path_length": len(rootPath),
			"sensitive":        sensitive,
		}).Warn("Rejected sensitivity rule")
		return nil, err
	}

	id, err := w.store.InsertRootSensitivity(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to store sensitivity rule: %w", err)
	}
	rule.ID = id

	return rule, nil
}
