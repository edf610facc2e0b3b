package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

const uniqueViolation = "23505"

type RunRepository struct {
	DB *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{DB: db}
}

func (r *RunRepository) Create(ctx context.Context, run *entity.ReconciliationRun) error {
	query := `
		INSERT INTO reconciliation_runs (id, status, threshold, window_start, summary, stored_in, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.Threshold,
		run.WindowStart,
		summary,
		run.StoredIn,
		run.StartedAt,
		run.FinishedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return entity.ErrRunAlreadyExists
		}

		log.Printf("❌ Erro crítico no banco: %v", err)
		return err
	}

	return nil
}

func (r *RunRepository) Update(ctx context.Context, run *entity.ReconciliationRun) error {
	query := `
		UPDATE reconciliation_runs
		SET status = $2, summary = $3, stored_in = $4, finished_at = $5
		WHERE id = $1
	`

	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query, run.ID, run.Status, summary, run.StoredIn, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("falha ao atualizar execução %s: %w", run.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrRunNotFound
	}
	return nil
}

func (r *RunRepository) FindByID(ctx context.Context, id string) (*entity.ReconciliationRun, error) {
	query := `
		SELECT id, status, threshold, window_start, summary, stored_in, started_at, finished_at
		FROM reconciliation_runs
		WHERE id = $1
	`

	var (
		run      entity.ReconciliationRun
		summary  []byte
		finished sql.NullTime
	)

	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Status,
		&run.Threshold,
		&run.WindowStart,
		&summary,
		&run.StoredIn,
		&run.StartedAt,
		&finished,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar execução %s: %w", id, err)
	}

	if err := json.Unmarshal(summary, &run.Summary); err != nil {
		return nil, fmt.Errorf("resumo corrompido na execução %s: %w", id, err)
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}

	return &run, nil
}

// Delete é a compensação do registro quando a gravação do consolidado falha.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM reconciliation_runs WHERE id = $1`, id)
	return err
}
