package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/usecase"
)

type BookingCleaner interface {
	Execute(ctx context.Context, input usecase.CleanBookingsInput) (*usecase.CleanBookingsOutput, *entity.Dataset, error)
}

type BookingHandler struct {
	Cleaner BookingCleaner
}

func NewBookingHandler(cleaner BookingCleaner) *BookingHandler {
	return &BookingHandler{Cleaner: cleaner}
}

// Clean (POST /bookings/clean)
func (h *BookingHandler) Clean(w http.ResponseWriter, r *http.Request) {
	if h.Cleaner == nil {
		writeMessage(w, http.StatusServiceUnavailable, usecase.CodeNotConfigured, "extração da Pacto não configurada (TOKEN/EMPRESA_ID)")
		return
	}

	var input usecase.CleanBookingsInput
	if err := decodeOptional(r, &input); err != nil {
		writeMessage(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido: "+err.Error())
		return
	}

	output, _, err := h.Cleaner.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}
