package usecase

import (
	"time"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/infra/storage"
	"github.com/xavierca1/lead-reconciliation/internal/reconcile"
)

// ReconcileLeadsInput: campos nil usam o valor configurado.
// WindowDays 0 = início do mês; WindowStart (YYYY-MM-DD) fixa o início da janela.
type ReconcileLeadsInput struct {
	Threshold   *int   `json:"threshold,omitempty"`
	WindowDays  *int   `json:"window_days,omitempty"`
	WindowStart string `json:"window_start,omitempty"`
	SkipNotify  bool   `json:"skip_notify"`
}

type ReconcileLeadsOutput struct {
	RunID       string                     `json:"run_id"`
	Threshold   int                        `json:"threshold"`
	WindowStart time.Time                  `json:"window_start"`
	Summary     entity.Summary             `json:"summary"`
	Persistence PersistenceOutput          `json:"persistence"`
	Published   int                        `json:"published"`
	Failed      int                        `json:"failed"`
	Issues      []reconcile.Issue          `json:"issues,omitempty"`
	NewSales    []entity.ConversionPayload `json:"new_sales,omitempty"`
}

type CleanBookingsInput struct {
	Events []string `json:"events"` // vazio = eventos configurados
}

type CleanBookingsOutput struct {
	Raw         int               `json:"raw"`
	Rows        int               `json:"rows"`
	Persistence PersistenceOutput `json:"persistence"`
}

type AuditInput struct {
	Days      int  `json:"days"` // 0 = padrão configurado
	SendEmail bool `json:"send_email"`
}

type AuditOutput struct {
	Report       entity.AuditReport `json:"report"`
	Persistence  PersistenceOutput  `json:"persistence"`
	RecoveryFile string             `json:"recovery_file,omitempty"`
	Emailed      bool               `json:"emailed"`
}

// PersistenceOutput é o WriteResult achatado para resposta/log.
type PersistenceOutput struct {
	Path          string `json:"path"`
	Target        string `json:"target,omitempty"`
	Rows          int    `json:"rows"`
	PrimaryError  string `json:"primary_error,omitempty"`
	FallbackError string `json:"fallback_error,omitempty"`
}

func newPersistenceOutput(res storage.WriteResult) PersistenceOutput {
	out := PersistenceOutput{Path: res.Path()}
	if res.Primary.Err != nil {
		out.PrimaryError = res.Primary.Err.Error()
	}
	switch out.Path {
	case storage.PathPrimary:
		out.Target, out.Rows = res.Primary.Target, res.Primary.Rows
	case storage.PathFallback:
		out.Target, out.Rows = res.Fallback.Target, res.Fallback.Rows
	}
	if res.Fallback != nil && res.Fallback.Err != nil {
		out.FallbackError = res.Fallback.Err.Error()
	}
	return out
}
