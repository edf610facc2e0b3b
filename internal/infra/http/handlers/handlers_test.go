package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/usecase"
)

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Execute(ctx context.Context, input usecase.ReconcileLeadsInput) (*usecase.ReconcileLeadsOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.ReconcileLeadsOutput)
	return out, args.Error(1)
}

type MockRunFinder struct {
	mock.Mock
}

func (m *MockRunFinder) Execute(ctx context.Context, id string) (*entity.ReconciliationRun, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*entity.ReconciliationRun)
	return run, args.Error(1)
}

type MockBookingCleaner struct {
	mock.Mock
}

func (m *MockBookingCleaner) Execute(ctx context.Context, input usecase.CleanBookingsInput) (*usecase.CleanBookingsOutput, *entity.Dataset, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.CleanBookingsOutput)
	return out, nil, args.Error(1)
}

type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Execute(ctx context.Context, input usecase.AuditInput) (*usecase.AuditOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.AuditOutput)
	return out, args.Error(1)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func newRouter(h *ReconciliationHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/reconciliations", h.Create)
	r.Get("/reconciliations/{id}", h.Get)
	return r
}

func TestCreateReconciliationSuccess(t *testing.T) {
	reconciler := new(MockReconciler)
	threshold := 90
	reconciler.On("Execute", mock.Anything, usecase.ReconcileLeadsInput{Threshold: &threshold, SkipNotify: true}).
		Return(&usecase.ReconcileLeadsOutput{RunID: "run-1", Summary: entity.Summary{Leads: 3, NewSales: 1}}, nil)

	h := NewReconciliationHandler(reconciler, new(MockRunFinder))
	req := httptest.NewRequest(http.MethodPost, "/reconciliations", bytes.NewBufferString(`{"threshold":90,"skip_notify":true}`))
	rec := httptest.NewRecorder()

	newRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	out := decodeBody[usecase.ReconcileLeadsOutput](t, rec)
	assert.Equal(t, "run-1", out.RunID)
	assert.Equal(t, 1, out.Summary.NewSales)
	reconciler.AssertExpectations(t)
}

// TestCreateReconciliationEmptyBody - corpo vazio usa os padrões
func TestCreateReconciliationEmptyBody(t *testing.T) {
	reconciler := new(MockReconciler)
	reconciler.On("Execute", mock.Anything, usecase.ReconcileLeadsInput{}).
		Return(&usecase.ReconcileLeadsOutput{RunID: "run-2"}, nil)

	h := NewReconciliationHandler(reconciler, new(MockRunFinder))
	rec := httptest.NewRecorder()

	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reconciliations", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateReconciliationInvalidJSON(t *testing.T) {
	reconciler := new(MockReconciler)
	h := NewReconciliationHandler(reconciler, new(MockRunFinder))
	rec := httptest.NewRecorder()

	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reconciliations", bytes.NewBufferString(`{"threshold":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	reconciler.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestCreateReconciliationErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &usecase.DomainError{Code: usecase.CodeValidation, Message: "validation failed"}, http.StatusBadRequest},
		{"no leads", &usecase.DomainError{Code: usecase.CodeNoLeads, Message: "nenhum lead"}, http.StatusUnprocessableEntity},
		{"extraction", &usecase.TechnicalError{Code: usecase.CodeExtractionFailed, Message: "pacto", Err: errors.New("503")}, http.StatusBadGateway},
		{"persistence", &usecase.TechnicalError{Code: usecase.CodePersistenceFailed, Message: "gravar"}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reconciler := new(MockReconciler)
			reconciler.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)
			h := NewReconciliationHandler(reconciler, new(MockRunFinder))
			rec := httptest.NewRecorder()

			newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reconciliations", nil))

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, usecase.ErrorCode(tt.err), body.Code)
		})
	}
}

func TestCreateReconciliationRateLimited(t *testing.T) {
	reconciler := new(MockReconciler)
	reconciler.On("Execute", mock.Anything, mock.Anything).Return(&usecase.ReconcileLeadsOutput{}, nil)
	h := NewReconciliationHandler(reconciler, new(MockRunFinder))
	router := newRouter(h)

	codes := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/reconciliations", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{201, 201, 201, 201, 201, 429}, codes)
	reconciler.AssertNumberOfCalls(t, "Execute", 5)
}

func TestCreateReconciliationNotConfigured(t *testing.T) {
	h := NewReconciliationHandler(nil, new(MockRunFinder))
	rec := httptest.NewRecorder()

	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reconciliations", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetReconciliation(t *testing.T) {
	runs := new(MockRunFinder)
	started := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)
	run := &entity.ReconciliationRun{ID: "run-1", Status: entity.RunStatusCompleted, Threshold: 85, StartedAt: started}
	runs.On("Execute", mock.Anything, "run-1").Return(run, nil)
	runs.On("Execute", mock.Anything, "nope").Return(nil, &usecase.DomainError{Code: usecase.CodeRunNotFound, Message: "execução não encontrada: nope"})

	router := newRouter(NewReconciliationHandler(new(MockReconciler), runs))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reconciliations/run-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[entity.ReconciliationRun](t, rec)
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, entity.RunStatusCompleted, got.Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reconciliations/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCleanBookingsHandler(t *testing.T) {
	cleaner := new(MockBookingCleaner)
	cleaner.On("Execute", mock.Anything, usecase.CleanBookingsInput{Events: []string{"Aula Experimental"}}).
		Return(&usecase.CleanBookingsOutput{Raw: 10, Rows: 4, Persistence: usecase.PersistenceOutput{Path: "primary"}}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings/clean", bytes.NewBufferString(`{"events":["Aula Experimental"]}`))
	NewBookingHandler(cleaner).Clean(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[usecase.CleanBookingsOutput](t, rec)
	assert.Equal(t, 4, out.Rows)
	assert.Equal(t, "primary", out.Persistence.Path)
}

func TestAuditHandler(t *testing.T) {
	auditor := new(MockAuditor)
	auditor.On("Execute", mock.Anything, usecase.AuditInput{Days: 30, SendEmail: true}).
		Return(&usecase.AuditOutput{Report: entity.AuditReport{Bookings: 8, Lost: 3}, Emailed: true}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/audits", bytes.NewBufferString(`{"days":30,"send_email":true}`))
	NewAuditHandler(auditor).Create(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[usecase.AuditOutput](t, rec)
	assert.Equal(t, 3, out.Report.Lost)
	assert.True(t, out.Emailed)
}

func TestAuditHandlerNotConfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	NewAuditHandler(nil).Create(rec, httptest.NewRequest(http.MethodPost, "/audits", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
