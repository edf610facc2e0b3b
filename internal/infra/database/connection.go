package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // Driver do Postgres
)

// NewDBConnection abre a conexão e testa o Ping
func NewDBConnection(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// Um cruzamento por vez, pool pequeno basta
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS reconciliation_runs (
	id           UUID PRIMARY KEY,
	status       TEXT NOT NULL,
	threshold    INT NOT NULL,
	window_start TIMESTAMPTZ NOT NULL,
	summary      JSONB NOT NULL DEFAULT '{}',
	stored_in    TEXT NOT NULL DEFAULT '',
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS consolidated_tabs (
	tab        TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	columns    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS consolidated_rows (
	run_id   TEXT NOT NULL,
	tab      TEXT NOT NULL,
	position INT NOT NULL,
	data     JSONB NOT NULL,
	PRIMARY KEY (tab, position)
);
`

// EnsureSchema cria as tabelas se ainda não existirem.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
