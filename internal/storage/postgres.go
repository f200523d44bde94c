package storage

import (
	"database/sql"

	_ "github.com/lib/pq"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// DB returns the underlying *sql.DB.
func (p *Postgres) DB() *sql.DB {
	return p.db
}

// Migrate creates the delivery queue table.
func (p *Postgres) Migrate() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			event_id TEXT NOT NULL,
			type TEXT NOT NULL,
			data TEXT NOT NULL,
			module TEXT NOT NULL,
			parent_id TEXT NOT NULL DEFAULT '',
			actual_source TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			delivered BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	return err
}
