package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"

	"tsp/internal/weight"
)

// TimingsTable holds one row per test file
const TimingsTable = "tsp_timings"

const createTimingsTable = "CREATE TABLE IF NOT EXISTS `" + TimingsTable + "` (" +
	"`path` VARCHAR(512) NOT NULL PRIMARY KEY, " +
	"`seconds` DOUBLE NOT NULL, " +
	"`updated_at` TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP)"

// MySQLStorage stores durations in a MySQL table shared by CI runners
type MySQLStorage struct {
	db    *sql.DB
	alpha float64
}

// OpenMySQL connects to the database named in dsn
func OpenMySQL(dsn string, alpha float64) (*MySQLStorage, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	return NewMySQLStorage(db, alpha), nil
}

// NewMySQLStorage wraps an existing connection pool
func NewMySQLStorage(db *sql.DB, alpha float64) *MySQLStorage {
	return &MySQLStorage{db: db, alpha: alpha}
}

// Close closes the connection pool
func (s *MySQLStorage) Close() error {
	return s.db.Close()
}

// EnsureSchema checks the connection and creates the timings table if needed
func (s *MySQLStorage) EnsureSchema(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database server: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createTimingsTable); err != nil {
		return fmt.Errorf("failed to create table %s: %w", TimingsTable, err)
	}
	return nil
}

// LoadHistory reads all rows, dropping durations that are not positive
func (s *MySQLStorage) LoadHistory(ctx context.Context) (weight.History, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT `path`, `seconds` FROM `"+TimingsTable+"`")
	if err != nil {
		return nil, fmt.Errorf("query timings: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]float64)
	for rows.Next() {
		var path string
		var seconds sql.NullFloat64
		if err := rows.Scan(&path, &seconds); err != nil {
			return nil, fmt.Errorf("scan timing: %w", err)
		}
		if seconds.Valid {
			raw[path] = seconds.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read timings: %w", err)
	}

	h, _ := weight.Sanitize(raw)
	return h, nil
}

// Record blends seconds into the stored row for path inside a transaction
func (s *MySQLStorage) Record(ctx context.Context, path string, seconds float64) error {
	if err := validateObservation(path, seconds); err != nil {
		return err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var old float64
	err = tx.QueryRowContext(ctx, "SELECT `seconds` FROM `"+TimingsTable+"` WHERE `path` = ? FOR UPDATE", path).Scan(&old)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read timing for %s: %w", path, err)
	}

	blended := weight.Blend(old, seconds, s.alpha)
	_, err = tx.ExecContext(ctx,
		"INSERT INTO `"+TimingsTable+"` (`path`, `seconds`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `seconds` = VALUES(`seconds`)",
		path, blended)
	if err != nil {
		return fmt.Errorf("write timing for %s: %w", path, err)
	}
	return tx.Commit()
}

// DSNFromEnv assembles a DSN from DB_HOST, DB_PORT, DB_USERNAME, DB_PASSWORD
// and DB_DATABASE, with local defaults.
func DSNFromEnv(getenv func(string) string) string {
	get := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := mysql.NewConfig()
	cfg.User = get("DB_USERNAME", "root")
	cfg.Passwd = getenv("DB_PASSWORD")
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(get("DB_HOST", "127.0.0.1"), get("DB_PORT", "3306"))
	cfg.DBName = get("DB_DATABASE", "testing")
	cfg.Timeout = 5 * time.Second
	cfg.ParseTime = true
	return cfg.FormatDSN()
}
