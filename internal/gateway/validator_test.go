package gateway

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

func TestCheckStatement(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		reason    string
		keyword   string
	}{
		{name: "plain select", statement: "SELECT COUNT(*) FROM logs"},
		{name: "lowercase with padding", statement: "   select id from logs  "},
		{name: "update", statement: "UPDATE logs SET flag = 1", reason: ReasonNotSelect},
		{name: "cte", statement: "WITH x AS (SELECT 1) SELECT * FROM x", reason: ReasonNotSelect},
		{name: "empty after trim", statement: "   ", reason: ReasonNotSelect},
		{name: "stacked drop", statement: "SELECT 1; DROP TABLE logs", reason: ReasonKeyword, keyword: "DROP"},
		{name: "literal", statement: "SELECT * FROM logs WHERE event = 'Deleted'", reason: ReasonKeyword, keyword: "DELETE"},
		{name: "alias", statement: "SELECT max(timestamp) AS last_update FROM logs", reason: ReasonKeyword, keyword: "UPDATE"},
		{name: "identifier", statement: "select created_at from root_sensitivity", reason: ReasonKeyword, keyword: "CREATE"},
		{name: "comment", statement: "SELECT 1 -- truncate later", reason: ReasonKeyword, keyword: "TRUNCATE"},
		{name: "first keyword wins", statement: "SELECT 'insert', 'drop'", reason: ReasonKeyword, keyword: "DROP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejection := CheckStatement(tt.statement)
			if tt.reason == "" {
				assert.Nil(t, rejection)
				return
			}
			require.NotNil(t, rejection)
			assert.Equal(t, tt.reason, rejection.Reason)
			assert.Equal(t, tt.keyword, rejection.Keyword)
		})
	}
}

func TestValidateStatementNamesKeyword(t *testing.T) {
	err := ValidateStatement("SELECT * FROM logs; alter table logs add x int")
	require.Error(t, err)
	assert.True(t, utils.HasCode(err, utils.ErrCodeForbidden))
	assert.Contains(t, err.Error(), "ALTER")
}

func TestNonSelectPrefixAlwaysForbidden(t *testing.T) {
	faker := gofakeit.New(42)

	for i := 0; i < 200; i++ {
		statement := faker.RandomString([]string{"WITH", "EXPLAIN", "PRAGMA", "VALUES", "SHOW", "("}) +
			" " + faker.Sentence(8) + " SELECT " + faker.Word()
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(statement)), "SELECT") {
			continue
		}

		err := ValidateStatement(statement)
		require.Error(t, err, statement)
		assert.Equal(t, 403, utils.HTTPStatus(err), statement)
	}
}

func TestBlockedKeywordAnywhereForbidden(t *testing.T) {
	faker := gofakeit.New(7)

	for i := 0; i < 200; i++ {
		keyword := faker.RandomString(blockedKeywords)
		if faker.Bool() {
			keyword = strings.ToLower(keyword)
		}
		words := strings.Fields(faker.Sentence(6))
		at := faker.Number(0, len(words))
		words = append(words[:at], append([]string{"'" + keyword + "'"}, words[at:]...)...)
		statement := "SELECT " + strings.Join(words, " ")

		rejection := CheckStatement(statement)
		require.NotNil(t, rejection, statement)
		assert.Equal(t, ReasonKeyword, rejection.Reason, statement)
	}
}
