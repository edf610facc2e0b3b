package app

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/xavierca1/lead-reconciliation/internal/config"
	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/infra/database"
	"github.com/xavierca1/lead-reconciliation/internal/infra/http/middleware"
	"github.com/xavierca1/lead-reconciliation/internal/infra/integration/backend"
	"github.com/xavierca1/lead-reconciliation/internal/infra/integration/pacto"
	"github.com/xavierca1/lead-reconciliation/internal/infra/mail"
	"github.com/xavierca1/lead-reconciliation/internal/infra/queue"
	"github.com/xavierca1/lead-reconciliation/internal/infra/sheet"
	"github.com/xavierca1/lead-reconciliation/internal/infra/storage"
	"github.com/xavierca1/lead-reconciliation/internal/usecase"
)

// App reúne as dependências montadas a partir da configuração.
// Tudo que é opcional fica nil quando não configurado.
type App struct {
	Config *config.Config

	DB       *sql.DB
	Backup   *storage.SQLiteStore
	RabbitMQ *queue.RabbitMQ
	Pacto    *pacto.Client
	Sheet    *sheet.Source
	Backend  *backend.Client
	Mailer   *mail.EmailSender

	Writer *storage.FallbackWriter

	Reconcile *usecase.ReconcileLeadsUseCase
	Bookings  *usecase.CleanBookingsUseCase
	Audit     *usecase.AuditUseCase
	GetRun    *usecase.GetRunUseCase
}

// New conecta o que estiver configurado. Banco e fila fora do ar não impedem a subida:
// o consolidado cai no backup local e as vendas vão direto para o backend.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	// 1. Persistência
	var primary storage.Sink
	var runs entity.RunRepositoryInterface
	if cfg.DatabaseURL != "" {
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			log.Printf("⚠️ Postgres indisponível, usando só o backup local: %v", err)
		} else if err := database.EnsureSchema(ctx, db); err != nil {
			log.Printf("⚠️ Erro ao preparar schema: %v", err)
			db.Close()
		} else {
			a.DB = db
			primary = database.NewConsolidatedRepository(db)
			runs = database.NewRunRepository(db)
			log.Println("✅ Postgres conectado")
		}
	}

	var fallback storage.Sink
	if cfg.BackupPath != "" {
		backup, err := storage.OpenSQLite(cfg.BackupPath)
		if err != nil {
			log.Printf("⚠️ Backup local indisponível: %v", err)
		} else {
			a.Backup = backup
			fallback = backup
		}
	}
	if primary == nil && fallback == nil {
		a.Close()
		return nil, errors.New("nenhum destino de gravação disponível (DATABASE_URL ou BACKUP_PATH)")
	}
	a.Writer = storage.NewFallbackWriter(primary, fallback)

	// 2. Integrações
	if cfg.HasPacto() {
		a.Pacto = pacto.NewClient(
			cfg.Pacto.BaseURL, cfg.Pacto.Token, cfg.Pacto.CompanyID,
			cfg.Pacto.RateLimitWait, cfg.Pacto.MaxAttempts,
			pacto.WithMaxPages(cfg.Pacto.MaxPages),
		)
	} else {
		log.Println("⚠️ TOKEN/EMPRESA_ID ausentes: extração da Pacto desativada")
	}

	switch {
	case cfg.Sheet.CSVPath != "":
		a.Sheet = sheet.NewFileSource(cfg.Sheet.CSVPath)
	case cfg.Sheet.SpreadsheetID != "":
		a.Sheet = sheet.NewGoogleSource(cfg.Sheet.SpreadsheetID, cfg.Sheet.SheetName)
	default:
		log.Println("⚠️ Planilha de leads não configurada (TP_ACADEMIA_DB_ID ou LEADS_CSV_PATH)")
	}

	if cfg.BackendURL != "" {
		a.Backend = backend.NewClient(cfg.BackendURL, cfg.BackendToken)
	}

	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("⚠️ RabbitMQ indisponível, envio direto ao backend: %v", err)
		} else {
			a.RabbitMQ = rabbit
		}
	}

	if cfg.HasMail() {
		a.Mailer = mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password)
	}

	// 3. Casos de uso
	if a.Pacto != nil {
		a.Bookings = usecase.NewCleanBookingsUseCase(a.Pacto, a.Writer)
		a.Bookings.Events = cfg.TrackedEvents
		a.Bookings.Tab = cfg.BookingsTab

		var mailer usecase.AuditMailer
		if a.Mailer != nil {
			mailer = a.Mailer
		}
		a.Audit = usecase.NewAuditUseCase(a.Pacto, a.Pacto, a.Writer, mailer)
		a.Audit.Events = cfg.TrackedEvents
		a.Audit.Days = cfg.AuditDays
		a.Audit.Tab = cfg.AuditTab
		a.Audit.RecoveryCSV = cfg.RecoveryCSV
		a.Audit.MailTo = cfg.Mail.AuditTo

		if a.Sheet != nil {
			publisher, delivery := a.conversionPublisher()
			a.Reconcile = usecase.NewReconcileLeadsUseCase(a.Pacto, a.Sheet, runs, a.Writer, publisher)
			a.Reconcile.Delivery = delivery
			a.Reconcile.Threshold = cfg.Threshold
			a.Reconcile.WindowDays = cfg.WindowDays
			a.Reconcile.Workers = cfg.Workers
			a.Reconcile.Salespeople = cfg.Sheet.Salespeople
			a.Reconcile.Tab = cfg.ConsolidatedTab
		}
	}
	a.GetRun = usecase.NewGetRunUseCase(runs)

	return a, nil
}

// conversionPublisher: com RabbitMQ a venda entra na fila e o worker entrega;
// sem fila, POST direto no backend; sem backend, ninguém é notificado.
func (a *App) conversionPublisher() (usecase.ConversionPublisher, string) {
	switch {
	case a.RabbitMQ != nil:
		return queue.NewProducer(a.RabbitMQ.Ch), middleware.ConversionQueued
	case a.Backend != nil:
		return a.Backend, middleware.ConversionSent
	default:
		log.Println("⚠️ BACKEND_URL não configurado: vendas novas não serão notificadas")
		return nil, middleware.ConversionSent
	}
}

// StartConversionWorker consome a fila de vendas e entrega no backend. Bloqueia.
func (a *App) StartConversionWorker(ctx context.Context) {
	if a.RabbitMQ == nil || a.Backend == nil {
		return
	}
	worker := queue.NewWorker(a.RabbitMQ.Ch, a.Backend)
	if err := worker.Start(ctx, queue.QueueName); err != nil {
		log.Printf("❌ Worker de conversões parou: %v", err)
	}
}

func (a *App) Close() {
	if a.RabbitMQ != nil {
		a.RabbitMQ.Close()
	}
	if a.Backup != nil {
		a.Backup.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
