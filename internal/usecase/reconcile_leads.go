package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/infra/http/middleware"
	"github.com/xavierca1/lead-reconciliation/internal/reconcile"
)

// ReconcileLeadsUseCase executa o fluxo completo do cruzamento. Runs e Publisher são opcionais.
type ReconcileLeadsUseCase struct {
	Students  StudentSource
	Sheet     LeadSheetSource
	Runs      entity.RunRepositoryInterface
	Writer    DatasetWriter
	Publisher ConversionPublisher
	Clock     Clock

	Threshold   int
	WindowDays  int
	Workers     int
	Salespeople []reconcile.SalespersonColumn
	Tab         string
	// Delivery é o rótulo da métrica de conversão: "queued" (RabbitMQ) ou "sent" (POST direto)
	Delivery string
}

func NewReconcileLeadsUseCase(
	students StudentSource,
	sheet LeadSheetSource,
	runs entity.RunRepositoryInterface,
	writer DatasetWriter,
	publisher ConversionPublisher,
) *ReconcileLeadsUseCase {
	return &ReconcileLeadsUseCase{
		Students:    students,
		Sheet:       sheet,
		Runs:        runs,
		Writer:      writer,
		Publisher:   publisher,
		Clock:       time.Now,
		Threshold:   reconcile.DefaultThreshold,
		Workers:     1,
		Salespeople: reconcile.DefaultSalespersonColumns,
		Tab:         "Historico",
		Delivery:    middleware.ConversionSent,
	}
}

func (uc *ReconcileLeadsUseCase) Execute(ctx context.Context, input ReconcileLeadsInput) (*ReconcileLeadsOutput, error) {
	if errs := ValidateReconcileLeadsInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	started := uc.Clock()
	opts := uc.options(input, started)

	log.Printf("🚀 Iniciando cruzamento leads x alunos (threshold=%d)", opts.Threshold)

	students, sheet, err := uc.extract(ctx)
	if err != nil {
		middleware.RecordRun(entity.RunStatusFailed, uc.Clock().Sub(started))
		return nil, &TechnicalError{Code: CodeExtractionFailed, Message: "falha na extração", Err: err}
	}

	leads := reconcile.ParseLeadSheet(sheet, started, uc.Salespeople)
	if len(leads) == 0 {
		middleware.RecordRun(entity.RunStatusFailed, uc.Clock().Sub(started))
		return nil, &DomainError{
			Code:    CodeNoLeads,
			Message: fmt.Sprintf("nenhum lead encontrado na planilha para %s", reconcile.MonthName(started.Month())),
		}
	}
	log.Printf("📥 %d leads de %s x %d alunos", len(leads), reconcile.MonthName(started.Month()), students.Len())

	res := reconcile.Reconcile(entity.LeadDataset(leads), students, opts)
	for _, issue := range res.Issues {
		log.Printf("⚠️ [%s] linha %d: %s", issue.Kind, issue.Row, issue.Message)
	}

	run := entity.NewReconciliationRun(opts.Threshold, res.WindowStart, started)
	written, tracked, err := uc.persist(ctx, run, res.Records, started)
	if err != nil {
		middleware.RecordRun(entity.RunStatusFailed, uc.Clock().Sub(started))
		return nil, &TechnicalError{Code: CodePersistenceFailed, Message: "falha ao gravar o consolidado", Err: err}
	}

	run.Finish(res.Summary, written.Path, uc.Clock())
	if tracked {
		if err := uc.Runs.Update(ctx, run); err != nil {
			log.Printf("⚠️ Falha ao finalizar execução %s: %v", run.ID, err)
		}
	}

	out := &ReconcileLeadsOutput{
		RunID:       run.ID,
		Threshold:   opts.Threshold,
		WindowStart: res.WindowStart,
		Summary:     res.Summary,
		Persistence: written,
		Issues:      res.Issues,
	}

	out.NewSales = reconcile.ConversionPayloads(res.Records, started)
	for i := range out.NewSales {
		out.NewSales[i].RunID = run.ID
	}
	if !input.SkipNotify {
		out.Published, out.Failed = uc.publish(ctx, out.NewSales)
	}

	middleware.RecordSummary(res.Summary)
	middleware.RecordRun(entity.RunStatusCompleted, uc.Clock().Sub(started))

	log.Printf("✅ Cruzamento concluído: %d leads | %d vendas novas | %d alunos antigos | %d não encontrados (gravado em %s)",
		res.Summary.Leads, res.Summary.NewSales, res.Summary.ExistingCustomer, res.Summary.NotFound, written.Path)

	return out, nil
}

func (uc *ReconcileLeadsUseCase) options(input ReconcileLeadsInput, now time.Time) reconcile.Options {
	opts := reconcile.Options{
		Threshold:  uc.Threshold,
		Now:        now,
		WindowDays: uc.WindowDays,
		Workers:    uc.Workers,
	}
	if input.Threshold != nil {
		opts.Threshold = *input.Threshold
	}
	if input.WindowDays != nil {
		opts.WindowDays = *input.WindowDays
	}
	if input.WindowStart != "" {
		// já validado
		opts.WindowStart, _ = time.ParseInLocation("2006-01-02", input.WindowStart, now.Location())
	}
	return opts
}

// extract busca alunos e planilha em paralelo; qualquer falha cancela a outra.
func (uc *ReconcileLeadsUseCase) extract(ctx context.Context) (*entity.Dataset, *entity.Dataset, error) {
	var students, sheet *entity.Dataset

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ds, err := uc.Students.Students(gctx)
		if err != nil {
			middleware.RecordExtractionError("pacto")
			return fmt.Errorf("base de alunos: %w", err)
		}
		students = ds
		return nil
	})
	g.Go(func() error {
		ds, err := uc.Sheet.Fetch(gctx)
		if err != nil {
			middleware.RecordExtractionError("sheet")
			return fmt.Errorf("planilha de leads: %w", err)
		}
		sheet = ds
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return students, sheet, nil
}

// persist registra a execução e grava o consolidado. Se a gravação falhar nos dois
// destinos, o registro da execução é desfeito.
func (uc *ReconcileLeadsUseCase) persist(ctx context.Context, run *entity.ReconciliationRun, records *entity.Dataset, now time.Time) (PersistenceOutput, bool, error) {
	var written PersistenceOutput
	tracked := false

	tx := NewTransaction()
	if uc.Runs != nil {
		tx.Add("create_run",
			func(ctx context.Context) error {
				// sem banco a execução segue; o consolidado ainda pode ir para o backup
				if err := uc.Runs.Create(ctx, run); err != nil {
					log.Printf("⚠️ Execução %s não registrada: %v", run.ID, err)
					return nil
				}
				tracked = true
				return nil
			},
			func(ctx context.Context) error {
				if !tracked {
					return nil
				}
				return uc.Runs.Delete(ctx, run.ID)
			},
		)
	}
	tx.Add("persist_consolidated",
		func(ctx context.Context) error {
			res := uc.Writer.Write(ctx, entity.Snapshot{RunID: run.ID, Tab: uc.Tab, TakenAt: now, Data: records})
			written = newPersistenceOutput(res)
			middleware.RecordPersistence(uc.Tab, written.Path)
			return res.Err()
		},
		nil,
	)

	if err := tx.Execute(ctx); err != nil {
		return written, false, err
	}
	return written, tracked, nil
}

func (uc *ReconcileLeadsUseCase) publish(ctx context.Context, payloads []entity.ConversionPayload) (int, int) {
	if uc.Publisher == nil || len(payloads) == 0 {
		return 0, 0
	}

	sent, failed := 0, 0
	for _, p := range payloads {
		if err := uc.Publisher.PublishConversion(ctx, p); err != nil {
			failed++
			middleware.RecordConversion(middleware.ConversionFailed)
			log.Printf("❌ Falha ao enviar venda de %s (matrícula %s): %v", p.LeadName, p.EnrollmentID, err)
			continue
		}
		sent++
		middleware.RecordConversion(uc.Delivery)
	}

	log.Printf("📤 Vendas novas: %d enviadas, %d com falha", sent, failed)
	return sent, failed
}
