package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"mvmtest/internal/domain"
)

// dialect holds what differs between the SQL backends
type dialect struct {
	driver string
	schema []string
}

var sqliteDialect = dialect{
	driver: "sqlite3",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			strategy    TEXT NOT NULL,
			executable  TEXT NOT NULL,
			test_dir    TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			total       INTEGER NOT NULL,
			passed      INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			errored     INTEGER NOT NULL,
			timed_out   INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS failures (
			run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position      INTEGER NOT NULL,
			name          TEXT NOT NULL,
			input_path    TEXT NOT NULL,
			verdict       TEXT NOT NULL,
			message       TEXT NOT NULL,
			diff          TEXT NOT NULL,
			scratch_paths TEXT NOT NULL,
			resolved      INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	},
}

var mysqlDialect = dialect{
	driver: "mysql",
	schema: []string{
		"CREATE TABLE IF NOT EXISTS `runs` (" +
			"`id` VARCHAR(36) PRIMARY KEY," +
			"`strategy` VARCHAR(32) NOT NULL," +
			"`executable` TEXT NOT NULL," +
			"`test_dir` TEXT NOT NULL," +
			"`started_at` BIGINT NOT NULL," +
			"`total` INT NOT NULL," +
			"`passed` INT NOT NULL," +
			"`failed` INT NOT NULL," +
			"`errored` INT NOT NULL," +
			"`timed_out` INT NOT NULL," +
			"`duration_ns` BIGINT NOT NULL," +
			"INDEX `idx_runs_started_at` (`started_at`)" +
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		"CREATE TABLE IF NOT EXISTS `failures` (" +
			"`run_id` VARCHAR(36) NOT NULL," +
			"`position` INT NOT NULL," +
			"`name` VARCHAR(255) NOT NULL," +
			"`input_path` TEXT NOT NULL," +
			"`verdict` VARCHAR(16) NOT NULL," +
			"`message` TEXT NOT NULL," +
			"`diff` LONGTEXT NOT NULL," +
			"`scratch_paths` TEXT NOT NULL," +
			"`resolved` BOOLEAN NOT NULL DEFAULT FALSE," +
			"PRIMARY KEY (`run_id`, `position`)," +
			"FOREIGN KEY (`run_id`) REFERENCES `runs`(`id`) ON DELETE CASCADE" +
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	},
}

// SQLStorage keeps the history of runs in a SQL database.
type SQLStorage struct {
	db *sql.DB
}

// OpenSQLite creates or opens the history database at path.
func OpenSQLite(path string) (*SQLStorage, error) {
	s, err := openSQL(sqliteDialect, path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer
	s.db.SetMaxOpenConns(1)
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return s, nil
}

// OpenMySQL connects to the MySQL database named in dsn and creates the tables if needed.
func OpenMySQL(dsn string) (*SQLStorage, error) {
	normalized, err := mysqlDSN(dsn)
	if err != nil {
		return nil, err
	}
	if err := ensureMySQLDatabase(normalized); err != nil {
		return nil, err
	}
	return openSQL(mysqlDialect, normalized)
}

// ensureMySQLDatabase creates the database named in dsn if the server does not have it yet.
func ensureMySQLDatabase(dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("invalid mysql dsn: %w", err)
	}
	name := cfg.DBName
	if !isValidDatabaseName(name) {
		return fmt.Errorf("invalid database name: %s", name)
	}

	// Connect to the server without selecting a database
	cfg.DBName = ""
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database server: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// isValidDatabaseName accepts plain MySQL identifiers only
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r == '$' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// mysqlDSN validates dsn and makes sure it names a database.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", errors.New("invalid mysql dsn: no database name")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return cfg.FormatDSN(), nil
}

func openSQL(d dialect, dsn string) (*SQLStorage, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", d.driver, err)
	}
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return &SQLStorage{db: db}, nil
}

// Save stores record and its failures in one transaction. A record already
// stored under the same ID is replaced.
func (s *SQLStorage) Save(record *domain.RunRecord) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM failures WHERE run_id = ?`, record.ID); err != nil {
		return fmt.Errorf("replace run %s: %w", record.ID, err)
	}
	if _, err = tx.Exec(`DELETE FROM runs WHERE id = ?`, record.ID); err != nil {
		return fmt.Errorf("replace run %s: %w", record.ID, err)
	}

	m := record.Meta
	_, err = tx.Exec(`INSERT INTO runs
		(id, strategy, executable, test_dir, started_at, total, passed, failed, errored, timed_out, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Strategy, record.Executable, record.TestDir, record.StartedAt.UnixNano(),
		m.Total, m.Passed, m.Failed, m.Errored, m.TimedOut, int64(metaDuration(m)))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", record.ID, err)
	}

	for i, f := range record.Failures {
		paths, jerr := json.Marshal(f.ScratchPaths)
		if jerr != nil {
			err = fmt.Errorf("marshal scratch paths of %s: %w", f.Name, jerr)
			return err
		}
		_, err = tx.Exec(`INSERT INTO failures
			(run_id, position, name, input_path, verdict, message, diff, scratch_paths, resolved)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID, i, f.Name, f.InputPath, string(f.Verdict), f.Message, f.Diff, string(paths), f.Resolved)
		if err != nil {
			return fmt.Errorf("insert failure %s: %w", f.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", record.ID, err)
	}
	return nil
}

// Last loads the run with the latest start time.
func (s *SQLStorage) Last() (*domain.RunRecord, error) {
	var (
		record     domain.RunRecord
		startedAt  int64
		durationNs int64
		summary    domain.Summary
	)
	err := s.db.QueryRow(`SELECT id, strategy, executable, test_dir, started_at,
		total, passed, failed, errored, timed_out, duration_ns
		FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(
		&record.ID, &record.Strategy, &record.Executable, &record.TestDir, &startedAt,
		&summary.Total, &summary.Passed, &summary.Failed, &summary.Errored, &summary.TimedOut, &durationNs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	record.StartedAt = time.Unix(0, startedAt)
	summary.Duration = time.Duration(durationNs)
	record.Meta = domain.MetaFromSummary(summary)

	rows, err := s.db.Query(`SELECT name, input_path, verdict, message, diff, scratch_paths, resolved
		FROM failures WHERE run_id = ? ORDER BY position`, record.ID)
	if err != nil {
		return nil, fmt.Errorf("query failures of run %s: %w", record.ID, err)
	}
	defer rows.Close()

	record.Failures = []domain.CaseFailure{}
	for rows.Next() {
		var (
			f       domain.CaseFailure
			verdict string
			paths   string
		)
		if err := rows.Scan(&f.Name, &f.InputPath, &verdict, &f.Message, &f.Diff, &paths, &f.Resolved); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		f.Verdict = domain.Verdict(verdict)
		if err := json.Unmarshal([]byte(paths), &f.ScratchPaths); err != nil {
			return nil, fmt.Errorf("parse scratch paths of %s: %w", f.Name, err)
		}
		record.Failures = append(record.Failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read failures of run %s: %w", record.ID, err)
	}
	return &record, nil
}

// Close closes the database connection.
func (s *SQLStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// metaDuration recovers the exact run duration from its stored form.
func metaDuration(m domain.RunMeta) time.Duration {
	if d, err := time.ParseDuration(m.Duration); err == nil {
		return d
	}
	return time.Duration(m.DurationSeconds * float64(time.Second))
}
