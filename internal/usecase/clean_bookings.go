package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/infra/http/middleware"
	"github.com/xavierca1/lead-reconciliation/internal/infra/storage"
	"github.com/xavierca1/lead-reconciliation/internal/reconcile"
)

// CleanBookingsUseCase extrai os agendamentos executados, limpa e grava a aba de agendamentos.
type CleanBookingsUseCase struct {
	Bookings BookingSource
	Writer   DatasetWriter
	Clock    Clock
	Events   []string
	Tab      string
}

func NewCleanBookingsUseCase(bookings BookingSource, writer DatasetWriter) *CleanBookingsUseCase {
	return &CleanBookingsUseCase{
		Bookings: bookings,
		Writer:   writer,
		Clock:    time.Now,
		Events:   entity.TrackedEvents,
		Tab:      "Agendamentos",
	}
}

func (uc *CleanBookingsUseCase) Execute(ctx context.Context, input CleanBookingsInput) (*CleanBookingsOutput, *entity.Dataset, error) {
	if errs := ValidateCleanBookingsInput(input); len(errs) > 0 {
		return nil, nil, validationFailed(errs)
	}

	events := uc.Events
	if len(input.Events) > 0 {
		events = input.Events
	}

	log.Println("📥 Baixando agendamentos executados...")
	raw, err := uc.Bookings.Bookings(ctx)
	if err != nil {
		middleware.RecordExtractionError("pacto")
		return nil, nil, &TechnicalError{Code: CodeExtractionFailed, Message: "falha ao baixar agendamentos", Err: err}
	}

	cleaned := reconcile.CleanBookingsIn(raw, events, uc.Clock().Location())
	log.Printf("🧹 %d agendamentos brutos -> %d após limpeza", raw.Len(), cleaned.Len())

	out := &CleanBookingsOutput{Raw: raw.Len(), Rows: cleaned.Len()}

	res := uc.Writer.Write(ctx, entity.Snapshot{Tab: uc.Tab, TakenAt: uc.Clock(), Data: cleaned})
	out.Persistence = newPersistenceOutput(res)
	middleware.RecordPersistence(uc.Tab, out.Persistence.Path)

	if err := res.Err(); err != nil && !errors.Is(err, storage.ErrNothingToWrite) {
		return out, cleaned, &TechnicalError{
			Code:    CodePersistenceFailed,
			Message: fmt.Sprintf("falha ao gravar '%s'", uc.Tab),
			Err:     err,
		}
	}

	return out, cleaned, nil
}
