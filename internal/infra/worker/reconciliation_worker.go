package worker

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc é uma execução agendada (cruzamento, limpeza de agendamentos...).
type JobFunc func(ctx context.Context) error

// ReconciliationWorker dispara o cruzamento no horário do RECONCILE_SCHEDULE.
// Execuções não se sobrepõem: se a anterior ainda roda, o disparo é ignorado.
type ReconciliationWorker struct {
	cron     *cron.Cron
	spec     string
	schedule cron.Schedule
	timeout  time.Duration
	job      JobFunc
	running  atomic.Bool

	RunOnStart bool
}

func NewReconciliationWorker(spec string, timeout time.Duration, job JobFunc) (*ReconciliationWorker, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("RECONCILE_SCHEDULE inválido (%q): %w", spec, err)
	}
	return &ReconciliationWorker{
		cron:     cron.New(),
		spec:     spec,
		schedule: schedule,
		timeout:  timeout,
		job:      job,
	}, nil
}

// Start bloqueia até o ctx ser cancelado e espera a execução em andamento terminar.
func (w *ReconciliationWorker) Start(ctx context.Context) {
	w.cron.Schedule(w.schedule, cron.FuncJob(func() { w.execute(ctx) }))
	w.cron.Start()
	log.Printf("🕒 Worker de cruzamento iniciado (%s), próxima execução %s", w.spec, w.Next(time.Now()).Format("02/01 15:04"))

	if w.RunOnStart {
		w.execute(ctx)
	}

	<-ctx.Done()
	<-w.cron.Stop().Done()
	log.Println("⚠️ Worker de cruzamento encerrado")
}

func (w *ReconciliationWorker) Next(from time.Time) time.Time {
	return w.schedule.Next(from)
}

// execute devolve false quando o disparo foi ignorado por sobreposição.
func (w *ReconciliationWorker) execute(parent context.Context) bool {
	if !w.running.CompareAndSwap(false, true) {
		log.Println("⚠️ Cruzamento anterior ainda em andamento, disparo ignorado")
		return false
	}
	defer w.running.Store(false)

	ctx := parent
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, w.timeout)
		defer cancel()
	}

	started := time.Now()
	if err := w.job(ctx); err != nil {
		log.Printf("❌ Cruzamento agendado falhou após %s: %v", time.Since(started).Round(time.Second), err)
		return true
	}
	log.Printf("✅ Cruzamento agendado concluído em %s", time.Since(started).Round(time.Second))
	return true
}
