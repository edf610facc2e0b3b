package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/lead-reconciliation/internal/usecase"
)

type Auditor interface {
	Execute(ctx context.Context, input usecase.AuditInput) (*usecase.AuditOutput, error)
}

type AuditHandler struct {
	Auditor Auditor
}

func NewAuditHandler(auditor Auditor) *AuditHandler {
	return &AuditHandler{Auditor: auditor}
}

// Create (POST /audits)
func (h *AuditHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Auditor == nil {
		writeMessage(w, http.StatusServiceUnavailable, usecase.CodeNotConfigured, "extração da Pacto não configurada (TOKEN/EMPRESA_ID)")
		return
	}

	var input usecase.AuditInput
	if err := decodeOptional(r, &input); err != nil {
		writeMessage(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido: "+err.Error())
		return
	}

	output, err := h.Auditor.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}
