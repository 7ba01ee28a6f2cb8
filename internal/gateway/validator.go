package gateway

import (
	"fmt"
	"strings"

	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// blockedKeywords are refused anywhere in a statement, including inside literals,
// comments and identifiers. The match is a plain substring test.
var blockedKeywords = []string{"DROP", "DELETE", "INSERT", "UPDATE", "TRUNCATE", "ALTER", "CREATE"}

// Rejection reasons, used as metric labels
const (
	ReasonNotSelect = "not_select"
	ReasonKeyword   = "blocked_keyword"
)

// Rejection describes why a statement was refused
type Rejection struct {
	Reason  string
	Keyword string
}

// CheckStatement applies the read-only allow/deny rules.
// It returns nil when the statement may be forwarded to the store.
func CheckStatement(statement string) *Rejection {
	normalized := strings.ToUpper(strings.TrimSpace(statement))

	if !strings.HasPrefix(normalized, "SELECT") {
		return &Rejection{Reason: ReasonNotSelect}
	}

	for _, keyword := range blockedKeywords {
		if strings.Contains(normalized, keyword) {
			return &Rejection{Reason: ReasonKeyword, Keyword: keyword}
		}
	}

	return nil
}

// Err converts the rejection into a FORBIDDEN error
func (r *Rejection) Err() error {
	if r.Reason == ReasonNotSelect {
		return utils.NewAppError(utils.ErrCodeForbidden, "Only SELECT statements are allowed")
	}
	return utils.NewAppError(utils.ErrCodeForbidden, fmt.Sprintf("Operation %s is not allowed", r.Keyword))
}

// ValidateStatement returns a FORBIDDEN error for statements the gateway refuses
func ValidateStatement(statement string) error {
	if rejection := CheckStatement(statement); rejection != nil {
		return rejection.Err()
	}
	return nil
}
