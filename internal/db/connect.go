package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver maps common aliases to a supported Driver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", s)
	}
}

// Open opens a DB, tunes the pool and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:qbank.db?cache=shared&mode=rwc"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/qbank?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	tunePool(driver, db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	if driver == DriverSQLite {
		if err := applySQLitePragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := Migrate(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the idempotent DDL for driver.
func Migrate(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return fmt.Errorf("migrate: unsupported driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// tunePool keeps SQLite to one connection so every write transaction is
// serialized; Postgres gets ordinary server defaults.
func tunePool(driver Driver, db *sql.DB) {
	switch driver {
	case DriverSQLite:
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	default:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(45 * time.Minute)
		db.SetConnMaxIdleTime(15 * time.Minute)
	}
}

func applySQLitePragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("db: sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS questions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  test_id INTEGER NOT NULL,
  exam_type TEXT NOT NULL,
  topic TEXT NOT NULL,
  topic_number INTEGER NOT NULL,
  batch_number INTEGER NOT NULL,
  question TEXT NOT NULL,
  answer_1 TEXT NOT NULL,
  answer_2 TEXT NOT NULL,
  answer_3 TEXT NOT NULL,
  answer_4 TEXT NOT NULL,
  solution INTEGER NOT NULL CHECK (solution BETWEEN 1 AND 4),
  created_at INTEGER NOT NULL,
  UNIQUE (topic, batch_number, topic_number)
);
CREATE INDEX IF NOT EXISTS ix_questions_test_id ON questions(test_id);

CREATE TABLE IF NOT EXISTS question_set_assignments (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_set_id INTEGER NOT NULL,
  question_id INTEGER NOT NULL REFERENCES questions(id),
  user_email TEXT NOT NULL,
  UNIQUE (question_set_id, question_id, user_email)
);
CREATE INDEX IF NOT EXISTS ix_assignments_user_set ON question_set_assignments(user_email, question_set_id);

CREATE TABLE IF NOT EXISTS answer_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_id INTEGER NOT NULL REFERENCES questions(id),
  user_email TEXT NOT NULL,
  selected_answer INTEGER NOT NULL CHECK (selected_answer BETWEEN 1 AND 4),
  timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_answer_logs_user_question ON answer_logs(user_email, question_id);

CREATE TABLE IF NOT EXISTS opinion_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_id INTEGER NOT NULL REFERENCES questions(id),
  user_email TEXT NOT NULL,
  up INTEGER NOT NULL,
  timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_opinion_logs_question ON opinion_logs(question_id);

CREATE TABLE IF NOT EXISTS sequences (
  name TEXT PRIMARY KEY,
  value INTEGER NOT NULL
);
INSERT OR IGNORE INTO sequences (name, value) VALUES ('question_set_id', 0), ('batch_number', 0);

CREATE TABLE IF NOT EXISTS specifications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exam TEXT NOT NULL,
  topic TEXT NOT NULL,
  specification TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE (exam, topic)
);

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL,
  password_hash TEXT NOT NULL DEFAULT '',
  provider TEXT NOT NULL DEFAULT 'local',
  fullname TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'student',
  register_date INTEGER NOT NULL,
  UNIQUE (username, provider)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS questions (
  id BIGSERIAL PRIMARY KEY,
  test_id BIGINT NOT NULL,
  exam_type TEXT NOT NULL,
  topic TEXT NOT NULL,
  topic_number INTEGER NOT NULL,
  batch_number BIGINT NOT NULL,
  question TEXT NOT NULL,
  answer_1 TEXT NOT NULL,
  answer_2 TEXT NOT NULL,
  answer_3 TEXT NOT NULL,
  answer_4 TEXT NOT NULL,
  solution INTEGER NOT NULL CHECK (solution BETWEEN 1 AND 4),
  created_at BIGINT NOT NULL,
  UNIQUE (topic, batch_number, topic_number)
);
CREATE INDEX IF NOT EXISTS ix_questions_test_id ON questions(test_id);

CREATE TABLE IF NOT EXISTS question_set_assignments (
  id BIGSERIAL PRIMARY KEY,
  question_set_id BIGINT NOT NULL,
  question_id BIGINT NOT NULL REFERENCES questions(id),
  user_email TEXT NOT NULL,
  UNIQUE (question_set_id, question_id, user_email)
);
CREATE INDEX IF NOT EXISTS ix_assignments_user_set ON question_set_assignments(user_email, question_set_id);

CREATE TABLE IF NOT EXISTS answer_logs (
  id BIGSERIAL PRIMARY KEY,
  question_id BIGINT NOT NULL REFERENCES questions(id),
  user_email TEXT NOT NULL,
  selected_answer INTEGER NOT NULL CHECK (selected_answer BETWEEN 1 AND 4),
  timestamp BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_answer_logs_user_question ON answer_logs(user_email, question_id);

CREATE TABLE IF NOT EXISTS opinion_logs (
  id BIGSERIAL PRIMARY KEY,
  question_id BIGINT NOT NULL REFERENCES questions(id),
  user_email TEXT NOT NULL,
  up BOOLEAN NOT NULL,
  timestamp BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_opinion_logs_question ON opinion_logs(question_id);

CREATE SEQUENCE IF NOT EXISTS question_set_id_seq;
CREATE SEQUENCE IF NOT EXISTS batch_number_seq;

CREATE TABLE IF NOT EXISTS specifications (
  id BIGSERIAL PRIMARY KEY,
  exam TEXT NOT NULL,
  topic TEXT NOT NULL,
  specification TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  UNIQUE (exam, topic)
);

CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL,
  password_hash TEXT NOT NULL DEFAULT '',
  provider TEXT NOT NULL DEFAULT 'local',
  fullname TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'student',
  register_date BIGINT NOT NULL,
  UNIQUE (username, provider)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
