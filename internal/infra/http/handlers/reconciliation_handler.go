package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/usecase"
)

type LeadReconciler interface {
	Execute(ctx context.Context, input usecase.ReconcileLeadsInput) (*usecase.ReconcileLeadsOutput, error)
}

type RunFinder interface {
	Execute(ctx context.Context, id string) (*entity.ReconciliationRun, error)
}

type ReconciliationHandler struct {
	Reconciler  LeadReconciler
	Runs        RunFinder
	rateLimiter *RateLimiter
}

func NewReconciliationHandler(reconciler LeadReconciler, runs RunFinder) *ReconciliationHandler {
	return &ReconciliationHandler{
		Reconciler:  reconciler,
		Runs:        runs,
		rateLimiter: NewRateLimiter(5, time.Minute), // 5 cruzamentos/min por IP
	}
}

// Create (POST /reconciliations) dispara um cruzamento síncrono.
func (h *ReconciliationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeMessage(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
		return
	}
	if h.Reconciler == nil {
		writeMessage(w, http.StatusServiceUnavailable, usecase.CodeNotConfigured, "extração da Pacto não configurada (TOKEN/EMPRESA_ID)")
		return
	}

	var input usecase.ReconcileLeadsInput
	if err := decodeOptional(r, &input); err != nil {
		writeMessage(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido: "+err.Error())
		return
	}

	output, err := h.Reconciler.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, output)
}

// Get (GET /reconciliations/{id})
func (h *ReconciliationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeMessage(w, http.StatusBadRequest, usecase.CodeValidation, "ID is required")
		return
	}

	run, err := h.Runs.Execute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}
