package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/infra/http/middleware"
	"github.com/xavierca1/lead-reconciliation/internal/infra/storage"
	"github.com/xavierca1/lead-reconciliation/internal/reconcile"
)

// Colunas da aba de auditoria
const (
	ColAuditMetric = "METRICA"
	ColAuditValue  = "VALOR"
)

// AuditUseCase cruza agendamentos com matrículas recentes e gera o relatório de perdas.
// Mailer e RecoveryCSV são opcionais.
type AuditUseCase struct {
	Bookings    BookingSource
	Enrollments EnrollmentSource
	Writer      DatasetWriter
	Mailer      AuditMailer
	Clock       Clock

	MailTo      string
	RecoveryCSV string
	Events      []string
	Days        int
	Tab         string
}

func NewAuditUseCase(bookings BookingSource, enrollments EnrollmentSource, writer DatasetWriter, mailer AuditMailer) *AuditUseCase {
	return &AuditUseCase{
		Bookings:    bookings,
		Enrollments: enrollments,
		Writer:      writer,
		Mailer:      mailer,
		Clock:       time.Now,
		RecoveryCSV: "leads_para_recuperacao.csv",
		Events:      entity.TrackedEvents,
		Days:        60,
		Tab:         "Auditoria",
	}
}

func (uc *AuditUseCase) Execute(ctx context.Context, input AuditInput) (*AuditOutput, error) {
	if errs := ValidateAuditInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	days := uc.Days
	if input.Days > 0 {
		days = input.Days
	}
	now := uc.Clock()
	from := now.AddDate(0, 0, -days)

	log.Printf("🔎 Auditoria de agendamentos x matrículas (%d dias)", days)

	var bookings, enrollments *entity.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ds, err := uc.Bookings.Bookings(gctx)
		if err != nil {
			return fmt.Errorf("agendamentos: %w", err)
		}
		bookings = ds
		return nil
	})
	g.Go(func() error {
		ds, err := uc.Enrollments.Enrollments(gctx, from, now)
		if err != nil {
			return fmt.Errorf("matrículas: %w", err)
		}
		enrollments = ds
		return nil
	})
	if err := g.Wait(); err != nil {
		middleware.RecordExtractionError("pacto")
		return nil, &TechnicalError{Code: CodeExtractionFailed, Message: "falha na extração da auditoria", Err: err}
	}

	cleaned := reconcile.CleanBookingsIn(bookings, uc.Events, now.Location())
	recent := reconcile.CleanEnrollments(enrollments, from)
	report := reconcile.Audit(cleaned, recent, days, now)

	for _, line := range report.Lines() {
		log.Printf("   %s: %s", line[0], line[1])
	}

	out := &AuditOutput{Report: report}

	res := uc.Writer.Write(ctx, entity.Snapshot{Tab: uc.Tab, TakenAt: now, Data: AuditDataset(report)})
	out.Persistence = newPersistenceOutput(res)
	middleware.RecordPersistence(uc.Tab, out.Persistence.Path)
	if err := res.Err(); err != nil {
		// o relatório ainda vale por e-mail/CSV
		log.Printf("⚠️ Auditoria não gravada: %v", err)
	}

	if report.LostRows.Len() > 0 && uc.RecoveryCSV != "" {
		if err := storage.WriteCSV(uc.RecoveryCSV, report.LostRows); err != nil {
			log.Printf("❌ Erro ao gerar %s: %v", uc.RecoveryCSV, err)
		} else {
			out.RecoveryFile = uc.RecoveryCSV
			log.Printf("📄 Lista de recuperação salva em %s (%d leads)", uc.RecoveryCSV, report.LostRows.Len())
		}
	}

	if input.SendEmail {
		out.Emailed = uc.sendReport(report, out.RecoveryFile)
	}

	return out, nil
}

func (uc *AuditUseCase) sendReport(report entity.AuditReport, attachment string) bool {
	if uc.Mailer == nil || uc.MailTo == "" {
		log.Println("⚠️ E-mail de auditoria não configurado, envio ignorado")
		return false
	}
	if err := uc.Mailer.SendAuditReport(uc.MailTo, report, attachment); err != nil {
		log.Printf("❌ Erro ao enviar auditoria para %s: %v", uc.MailTo, err)
		return false
	}
	log.Printf("📧 Auditoria enviada para %s", uc.MailTo)
	return true
}

// AuditDataset projeta o resumo da auditoria em linhas METRICA/VALOR.
func AuditDataset(report entity.AuditReport) *entity.Dataset {
	ds := &entity.Dataset{Columns: []string{ColAuditMetric, ColAuditValue}}
	for _, line := range report.Lines() {
		ds.Records = append(ds.Records, entity.Record{ColAuditMetric: line[0], ColAuditValue: line[1]})
	}
	return ds
}
