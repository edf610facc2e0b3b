package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/infra/storage"
)

// Clock é injetado para que "agora" seja determinístico nos testes.
type Clock func() time.Time

type StudentSource interface {
	Students(ctx context.Context) (*entity.Dataset, error)
}

type BookingSource interface {
	Bookings(ctx context.Context) (*entity.Dataset, error)
}

type EnrollmentSource interface {
	Enrollments(ctx context.Context, from, to time.Time) (*entity.Dataset, error)
}

// LeadSheetSource entrega a planilha de MKT crua (Google Sheets ou CSV local).
type LeadSheetSource interface {
	Fetch(ctx context.Context) (*entity.Dataset, error)
}

// DatasetWriter grava uma aba inteira no primário, caindo para o backup local.
type DatasetWriter interface {
	Write(ctx context.Context, snap entity.Snapshot) storage.WriteResult
}

// ConversionPublisher: fila (RabbitMQ) ou POST direto no backend.
type ConversionPublisher interface {
	PublishConversion(ctx context.Context, payload entity.ConversionPayload) error
}

type AuditMailer interface {
	SendAuditReport(to string, report entity.AuditReport, attachment string) error
}
