package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/lead-reconciliation/internal/app"
	"github.com/xavierca1/lead-reconciliation/internal/config"
	"github.com/xavierca1/lead-reconciliation/internal/infra/http/handlers"
	"github.com/xavierca1/lead-reconciliation/internal/infra/http/middleware"
	"github.com/xavierca1/lead-reconciliation/internal/infra/worker"
	"github.com/xavierca1/lead-reconciliation/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuração inválida: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Dependências (banco, backup, fila, Pacto, planilha) e casos de uso
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer a.Close()

	// 2. Worker da fila de vendas (RabbitMQ -> backend)
	go a.StartConversionWorker(ctx)

	// 3. Handlers
	reconciliationHandler := handlers.NewReconciliationHandler(reconciler(a), a.GetRun)
	bookingHandler := handlers.NewBookingHandler(bookingCleaner(a))
	auditHandler := handlers.NewAuditHandler(auditor(a))
	similarityHandler := handlers.NewSimilarityHandler(cfg.Threshold)

	healthHandler := handlers.NewHealthHandler(nil, nil)
	if a.DB != nil {
		healthHandler.DB = a.DB
	}
	if a.RabbitMQ != nil {
		healthHandler.RabbitMQ = a.RabbitMQ.Conn
	}
	healthHandler.Pacto = a.Pacto != nil
	switch {
	case cfg.Sheet.CSVPath != "":
		healthHandler.Sheet = "file"
	case cfg.Sheet.SpreadsheetID != "":
		healthHandler.Sheet = "google"
	}
	if a.Backup != nil {
		healthHandler.Backup = a.Backup.Name()
	}

	// 4. Cruzamento agendado
	if cfg.Schedule != "" && a.Reconcile != nil {
		cronWorker, err := worker.NewReconciliationWorker(cfg.Schedule, cfg.ReconcileTimeout, func(ctx context.Context) error {
			_, err := a.Reconcile.Execute(ctx, usecase.ReconcileLeadsInput{})
			return err
		})
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		healthHandler.Scheduler = cronWorker
		go cronWorker.Start(ctx)
	}

	// 5. Router
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/reconciliations", reconciliationHandler.Create)
	r.Get("/reconciliations/{id}", reconciliationHandler.Get)
	r.Post("/bookings/clean", bookingHandler.Clean)
	r.Post("/audits", auditHandler.Create)
	r.Post("/similarity", similarityHandler.Score)
	r.Post("/similarity/best", similarityHandler.Best)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("🔥 Servidor de cruzamento de leads rodando na porta %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("❌ %v", err)
	}
	log.Println("👋 Servidor encerrado")
}

// Casos de uso não configurados viram interface nil, e os handlers respondem 503.

func reconciler(a *app.App) handlers.LeadReconciler {
	if a.Reconcile == nil {
		return nil
	}
	return a.Reconcile
}

func bookingCleaner(a *app.App) handlers.BookingCleaner {
	if a.Bookings == nil {
		return nil
	}
	return a.Bookings
}

func auditor(a *app.App) handlers.Auditor {
	if a.Audit == nil {
		return nil
	}
	return a.Audit
}
