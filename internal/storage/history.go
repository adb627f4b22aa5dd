package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"mtest/internal/domain"
)

// DefaultTablePrefix names the history tables mtest_runs and mtest_failures
const DefaultTablePrefix = "mtest"

// HistoryConfig holds the MySQL connection settings of the history sink
type HistoryConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	TablePrefix string
}

// HistoryConfigFromEnv reads DB_* variables, falling back to a local server
func HistoryConfigFromEnv() HistoryConfig {
	return HistoryConfig{
		Host:        getenv("DB_HOST", "127.0.0.1"),
		Port:        getenv("DB_PORT", "3306"),
		User:        getenv("DB_USERNAME", "root"),
		Password:    os.Getenv("DB_PASSWORD"),
		Database:    getenv("DB_DATABASE", "mtest"),
		TablePrefix: getenv("DB_TABLE_PREFIX", DefaultTablePrefix),
	}
}

// DSN returns the go-sql-driver data source name
func (c HistoryConfig) DSN() string {
	m := mysql.NewConfig()
	m.User = c.User
	m.Passwd = c.Password
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(c.Host, c.Port)
	m.DBName = c.Database
	m.ParseTime = true
	return m.FormatDSN()
}

func (c HistoryConfig) runsTable() string     { return c.TablePrefix + "_runs" }
func (c HistoryConfig) failuresTable() string { return c.TablePrefix + "_failures" }

// HistoryStore appends run summaries and failures to MySQL
type HistoryStore struct {
	db  *sql.DB
	cfg HistoryConfig
}

// OpenHistory connects to the history database and creates the tables if needed
func OpenHistory(ctx context.Context, cfg HistoryConfig) (*HistoryStore, error) {
	if !isValidTableName(cfg.TablePrefix) {
		return nil, fmt.Errorf("invalid table prefix: %q", cfg.TablePrefix)
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}

	store := &HistoryStore{db: db, cfg: cfg}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the connection pool
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

func (h *HistoryStore) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(h.cfg) {
		if _, err := h.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create history tables: %w", err)
		}
	}
	return nil
}

// Record stores one run and its failures in a single transaction and returns the run id
func (h *HistoryStore) Record(ctx context.Context, meta domain.TestResultsMeta, failures []domain.TestFailure) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	startedAt, err := time.Parse(time.RFC3339, meta.Timestamp)
	if err != nil {
		startedAt = time.Now()
	}

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO `%s` (started_at, mcc, base_dir, total, passed, failed, workers, duration_seconds) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", h.cfg.runsTable()),
		startedAt, meta.MCC, meta.BaseDir, meta.TotalTests, meta.PassedTests, meta.FailedTests, meta.Workers, meta.DurationSeconds,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	if len(failures) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			fmt.Sprintf("INSERT INTO `%s` (run_id, test_name, file_path, variant, command, expected_code, actual_code, timed_out, message) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", h.cfg.failuresTable()),
		)
		if err != nil {
			return 0, fmt.Errorf("prepare failure insert: %w", err)
		}
		defer stmt.Close()

		for _, f := range failures {
			var actual sql.NullInt64
			if f.ActualCode != nil {
				actual = sql.NullInt64{Int64: int64(*f.ActualCode), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, runID, f.TestName, f.FilePath, f.Variant, f.Command, f.ExpectedCode, actual, f.TimedOut, f.Message); err != nil {
				return 0, fmt.Errorf("insert failure %s: %w", f.TestName, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit history: %w", err)
	}
	return runID, nil
}

func schemaStatements(cfg HistoryConfig) []string {
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
			"id BIGINT AUTO_INCREMENT PRIMARY KEY, "+
			"started_at DATETIME NOT NULL, "+
			"mcc VARCHAR(1024) NOT NULL, "+
			"base_dir VARCHAR(1024) NOT NULL, "+
			"total INT NOT NULL, "+
			"passed INT NOT NULL, "+
			"failed INT NOT NULL, "+
			"workers INT NOT NULL, "+
			"duration_seconds DOUBLE NOT NULL)", cfg.runsTable()),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
			"id BIGINT AUTO_INCREMENT PRIMARY KEY, "+
			"run_id BIGINT NOT NULL, "+
			"test_name VARCHAR(1024) NOT NULL, "+
			"file_path VARCHAR(1024) NOT NULL, "+
			"variant VARCHAR(255) NOT NULL, "+
			"command TEXT NOT NULL, "+
			"expected_code INT NOT NULL, "+
			"actual_code INT NULL, "+
			"timed_out BOOLEAN NOT NULL, "+
			"message MEDIUMTEXT NOT NULL, "+
			"INDEX (run_id), "+
			"FOREIGN KEY (run_id) REFERENCES `%s` (id) ON DELETE CASCADE)", cfg.failuresTable(), cfg.runsTable()),
	}
}

// isValidTableName validates a table name prefix (basic check)
func isValidTableName(name string) bool {
	// suffixes add at most 9 characters to the 64 allowed
	if len(name) == 0 || len(name) > 55 {
		return false
	}
	for _, r := range name {
		if r != '_' && (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	upper := strings.ToUpper(name)
	for _, word := range []string{"DROP", "DELETE", "TRUNCATE"} {
		if strings.Contains(upper, word) {
			return false
		}
	}
	return true
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
