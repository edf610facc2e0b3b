package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/xavierca1/lead-reconciliation/internal/usecase"
)

type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ Erro ao escrever resposta: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// writeError traduz os erros dos casos de uso para HTTP.
func writeError(w http.ResponseWriter, err error) {
	code := usecase.ErrorCode(err)

	status := http.StatusInternalServerError
	switch code {
	case usecase.CodeValidation:
		status = http.StatusBadRequest
	case usecase.CodeRunNotFound:
		status = http.StatusNotFound
	case usecase.CodeNoLeads:
		status = http.StatusUnprocessableEntity
	case usecase.CodeNotConfigured:
		status = http.StatusServiceUnavailable
	case usecase.CodeExtractionFailed:
		status = http.StatusBadGateway
	}

	if status >= 500 {
		log.Printf("❌ %s: %v", code, err)
	}
	writeMessage(w, status, code, err.Error())
}

// decodeOptional aceita corpo vazio (usa os padrões) mas rejeita JSON inválido.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
