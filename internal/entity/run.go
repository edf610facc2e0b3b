package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRunNotFound      = errors.New("execução não encontrada")
	ErrRunAlreadyExists = errors.New("execução já registrada")
)

const (
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)

// ReconciliationRun registra uma execução do cruzamento leads x alunos.
type ReconciliationRun struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Threshold   int        `json:"threshold"`
	WindowStart time.Time  `json:"window_start"`
	Summary     Summary    `json:"summary"`
	StoredIn    string     `json:"stored_in,omitempty"` // primary, fallback, none
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

func NewReconciliationRun(threshold int, windowStart, now time.Time) *ReconciliationRun {
	return &ReconciliationRun{
		ID:          uuid.New().String(),
		Status:      RunStatusRunning,
		Threshold:   threshold,
		WindowStart: windowStart,
		StartedAt:   now,
	}
}

func (r *ReconciliationRun) Finish(summary Summary, storedIn string, now time.Time) {
	r.Summary = summary
	r.StoredIn = storedIn
	r.Status = RunStatusCompleted
	r.FinishedAt = &now
}

func (r *ReconciliationRun) Fail(now time.Time) {
	r.Status = RunStatusFailed
	r.FinishedAt = &now
}

type RunRepositoryInterface interface {
	Create(ctx context.Context, run *ReconciliationRun) error
	Update(ctx context.Context, run *ReconciliationRun) error
	FindByID(ctx context.Context, id string) (*ReconciliationRun, error)
	Delete(ctx context.Context, id string) error
}
