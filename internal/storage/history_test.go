package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryConfigFromEnv(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_DATABASE", "DB_TABLE_PREFIX"} {
		t.Setenv(key, "")
	}

	cfg := HistoryConfigFromEnv()
	assert.Equal(t, HistoryConfig{
		Host:        "127.0.0.1",
		Port:        "3306",
		User:        "root",
		Database:    "mtest",
		TablePrefix: DefaultTablePrefix,
	}, cfg)

	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_USERNAME", "ci")
	t.Setenv("DB_PASSWORD", "p@ss:word")
	t.Setenv("DB_DATABASE", "conformance")
	t.Setenv("DB_TABLE_PREFIX", "nightly")

	cfg = HistoryConfigFromEnv()
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "nightly_runs", cfg.runsTable())
	assert.Equal(t, "nightly_failures", cfg.failuresTable())

	parsed, err := mysql.ParseDSN(cfg.DSN())
	require.NoError(t, err)
	assert.Equal(t, "ci", parsed.User)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db.internal:3307", parsed.Addr)
	assert.Equal(t, "conformance", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}

func TestIsValidTableName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"mtest", true},
		{"ci_nightly_2", true},
		{"", false},
		{strings.Repeat("a", 56), false},
		{"bad-name", false},
		{"x`; DROP", false},
		{"dropped", false},
		{"runs;", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, isValidTableName(tt.name))
		})
	}
}

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements(HistoryConfig{TablePrefix: "ci"})
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS `ci_runs`")
	assert.Contains(t, stmts[1], "CREATE TABLE IF NOT EXISTS `ci_failures`")
	assert.Contains(t, stmts[1], "REFERENCES `ci_runs` (id)")
}

func TestOpenHistory_RejectsPrefix(t *testing.T) {
	_, err := OpenHistory(context.Background(), HistoryConfig{TablePrefix: "a;b"})
	assert.ErrorContains(t, err, "invalid table prefix")
}
