package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

// ConsolidatedRepository guarda as abas (Historico, Agendamentos, Auditoria) no Postgres.
// Cada Save substitui a aba inteira numa transação, como o "clear + update" da planilha.
type ConsolidatedRepository struct {
	DB *sql.DB
}

func NewConsolidatedRepository(db *sql.DB) *ConsolidatedRepository {
	return &ConsolidatedRepository{DB: db}
}

func (r *ConsolidatedRepository) Name() string {
	return "postgres"
}

func (r *ConsolidatedRepository) Save(ctx context.Context, snap entity.Snapshot) (int, error) {
	columns, err := json.Marshal(snap.Data.Columns)
	if err != nil {
		return 0, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("erro ao abrir transação: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM consolidated_rows WHERE tab = $1`, snap.Tab); err != nil {
		return 0, fmt.Errorf("erro ao limpar aba %s: %w", snap.Tab, err)
	}

	upsertTab := `
		INSERT INTO consolidated_tabs (tab, run_id, columns, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tab)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			columns = EXCLUDED.columns,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsertTab, snap.Tab, snap.RunID, columns, snap.TakenAt); err != nil {
		return 0, fmt.Errorf("erro ao registrar aba %s: %w", snap.Tab, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("consolidated_rows", "run_id", "tab", "position", "data"))
	if err != nil {
		return 0, fmt.Errorf("erro ao preparar COPY: %w", err)
	}

	for i, rec := range snap.Data.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			stmt.Close()
			return 0, fmt.Errorf("linha %d não serializa: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, snap.RunID, snap.Tab, i, string(data)); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("erro no COPY da linha %d: %w", i, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("erro ao finalizar COPY: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("erro no commit da aba %s: %w", snap.Tab, err)
	}

	return snap.Data.Len(), nil
}

// Load lê a aba de volta, na ordem original de colunas e linhas.
func (r *ConsolidatedRepository) Load(ctx context.Context, tab string) (*entity.Dataset, error) {
	var columns []byte
	err := r.DB.QueryRowContext(ctx, `SELECT columns FROM consolidated_tabs WHERE tab = $1`, tab).Scan(&columns)
	if err == sql.ErrNoRows {
		return &entity.Dataset{}, nil
	}
	if err != nil {
		return nil, err
	}

	ds := &entity.Dataset{}
	if err := json.Unmarshal(columns, &ds.Columns); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT data FROM consolidated_rows WHERE tab = $1 ORDER BY position`, tab)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec entity.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, rows.Err()
}
