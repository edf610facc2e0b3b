package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/infra/storage"
)

type MockStudentSource struct {
	mock.Mock
}

func (m *MockStudentSource) Students(ctx context.Context) (*entity.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*entity.Dataset)
	return ds, args.Error(1)
}

type MockSheetSource struct {
	mock.Mock
}

func (m *MockSheetSource) Fetch(ctx context.Context) (*entity.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*entity.Dataset)
	return ds, args.Error(1)
}

type MockBookingSource struct {
	mock.Mock
}

func (m *MockBookingSource) Bookings(ctx context.Context) (*entity.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*entity.Dataset)
	return ds, args.Error(1)
}

type MockEnrollmentSource struct {
	mock.Mock
}

func (m *MockEnrollmentSource) Enrollments(ctx context.Context, from, to time.Time) (*entity.Dataset, error) {
	args := m.Called(ctx, from, to)
	ds, _ := args.Get(0).(*entity.Dataset)
	return ds, args.Error(1)
}

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) Write(ctx context.Context, snap entity.Snapshot) storage.WriteResult {
	args := m.Called(ctx, snap)
	return args.Get(0).(storage.WriteResult)
}

type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Create(ctx context.Context, run *entity.ReconciliationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) Update(ctx context.Context, run *entity.ReconciliationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) FindByID(ctx context.Context, id string) (*entity.ReconciliationRun, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*entity.ReconciliationRun)
	return run, args.Error(1)
}

func (m *MockRunRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishConversion(ctx context.Context, payload entity.ConversionPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendAuditReport(to string, report entity.AuditReport, attachment string) error {
	args := m.Called(to, report, attachment)
	return args.Error(0)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func savedPrimary(rows int) storage.WriteResult {
	return storage.WriteResult{Primary: storage.Outcome{Target: "postgres", Rows: rows}}
}
