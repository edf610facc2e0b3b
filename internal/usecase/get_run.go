package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

type GetRunUseCase struct {
	Runs entity.RunRepositoryInterface
}

func NewGetRunUseCase(runs entity.RunRepositoryInterface) *GetRunUseCase {
	return &GetRunUseCase{Runs: runs}
}

func (uc *GetRunUseCase) Execute(ctx context.Context, id string) (*entity.ReconciliationRun, error) {
	if uc.Runs == nil {
		return nil, &DomainError{Code: CodeNotConfigured, Message: "histórico de execuções indisponível (DATABASE_URL não configurado)"}
	}

	run, err := uc.Runs.FindByID(ctx, id)
	if errors.Is(err, entity.ErrRunNotFound) {
		return nil, &DomainError{Code: CodeRunNotFound, Message: "execução não encontrada: " + id}
	}
	if err != nil {
		return nil, &TechnicalError{Code: CodePersistenceFailed, Message: "erro ao buscar execução", Err: err}
	}
	return run, nil
}
