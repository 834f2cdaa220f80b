package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStorage struct {
	Connection *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS rounds (
		id          TEXT PRIMARY KEY,
		room_id     TEXT NOT NULL,
		word        TEXT NOT NULL,
		masked      TEXT NOT NULL,
		guessed     TEXT NOT NULL,
		status      TEXT NOT NULL,
		health      INTEGER NOT NULL,
		max_health  INTEGER NOT NULL,
		started_by  TEXT NOT NULL,
		started_at  TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS rounds_room_id ON rounds (room_id, finished_at)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		round_id  TEXT NOT NULL REFERENCES rounds (id),
		seq       INTEGER NOT NULL,
		player_id TEXT NOT NULL,
		kind      TEXT NOT NULL,
		value     TEXT NOT NULL,
		hit       BOOLEAN NOT NULL,
		at        TIMESTAMP NOT NULL,
		PRIMARY KEY (round_id, seq)
	)`,
}

func NewSQLite(path string) (*SQLiteStorage, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &SQLiteStorage{Connection: conn}, nil
}

// Init - creates the round archive tables.
func (that *SQLiteStorage) Init(ctx context.Context) error {
	for _, query := range schema {
		if _, err := that.Connection.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("can't create table: %w", err)
		}
	}

	return nil
}

func (that *SQLiteStorage) Close() error {
	return that.Connection.Close()
}
