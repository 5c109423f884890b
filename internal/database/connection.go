package database

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connect opens the database and creates the schema if needed
func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if driver == DriverSQLite {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	var statements []string
	if db.DriverName() == DriverPostgres {
		statements = postgresSchema
	} else {
		statements = sqliteSchema
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "failed to initialize schema")
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS vocabulary (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		english TEXT NOT NULL UNIQUE,
		translation TEXT NOT NULL,
		examples TEXT,
		difficulty TEXT NOT NULL DEFAULT 'NEW_WORD',
		group_name TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vocabulary_difficulty ON vocabulary(difficulty)`,
	`CREATE INDEX IF NOT EXISTS idx_vocabulary_group ON vocabulary(group_name)`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		mode TEXT NOT NULL,
		total INTEGER NOT NULL,
		correct INTEGER NOT NULL,
		wrong INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS vocabulary (
		id BIGSERIAL PRIMARY KEY,
		english TEXT NOT NULL UNIQUE,
		translation TEXT NOT NULL,
		examples TEXT,
		difficulty TEXT NOT NULL DEFAULT 'NEW_WORD',
		group_name TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vocabulary_difficulty ON vocabulary(difficulty)`,
	`CREATE INDEX IF NOT EXISTS idx_vocabulary_group ON vocabulary(group_name)`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL UNIQUE,
		mode TEXT NOT NULL,
		total INTEGER NOT NULL,
		correct INTEGER NOT NULL,
		wrong INTEGER NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	)`,
}
