package db

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// pragmas run on every open, before the schema.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
}

// DB is the SQLite implementation of model.Repository.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the database at path and applies the schema, which
// is idempotent. ":memory:" gives a private in-process database.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// One connection: writes serialize and ":memory:" stays a single database.
	conn.SetMaxOpenConns(1)

	for _, stmt := range append(pragmas, schema) {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("initializing %s: %w", path, err)
		}
	}
	return &DB{conn: conn}, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}
