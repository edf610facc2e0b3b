package database

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

// Precisa de um Postgres de verdade: TEST_DATABASE_URL=postgres://... go test ./...
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL não definido")
	}

	db, err := NewDBConnection(dsn)
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(context.Background(), db))
	t.Cleanup(func() { db.Close() })

	return db
}

func TestRunRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(testDB(t))

	now := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)
	run := entity.NewReconciliationRun(85, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), now)

	require.NoError(t, repo.Create(ctx, run))
	assert.ErrorIs(t, repo.Create(ctx, run), entity.ErrRunAlreadyExists)

	run.Finish(entity.Summary{Leads: 3, NewSales: 1, NotFound: 2}, "primary", now.Add(time.Minute))
	require.NoError(t, repo.Update(ctx, run))

	got, err := repo.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCompleted, got.Status)
	assert.Equal(t, 1, got.Summary.NewSales)
	require.NotNil(t, got.FinishedAt)

	require.NoError(t, repo.Delete(ctx, run.ID))
	_, err = repo.FindByID(ctx, run.ID)
	assert.ErrorIs(t, err, entity.ErrRunNotFound)
}

func TestConsolidatedRepositoryReplacesTab(t *testing.T) {
	ctx := context.Background()
	repo := NewConsolidatedRepository(testDB(t))
	tab := "Teste_" + time.Now().Format("150405.000")

	first := entity.Snapshot{RunID: "r1", Tab: tab, TakenAt: time.Now(), Data: &entity.Dataset{
		Columns: []string{"ALUNO", "STATUS_FINAL"},
		Records: []entity.Record{{"ALUNO": "ANA", "STATUS_FINAL": "VENDA NOVA"}, {"ALUNO": "BIA", "STATUS_FINAL": "NÃO ENCONTRADO"}},
	}}
	n, err := repo.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	second := entity.Snapshot{RunID: "r2", Tab: tab, TakenAt: time.Now(), Data: &entity.Dataset{
		Columns: []string{"ALUNO", "STATUS_FINAL"},
		Records: []entity.Record{{"ALUNO": "CARLA", "STATUS_FINAL": "ALUNO ANTIGO"}},
	}}
	_, err = repo.Save(ctx, second)
	require.NoError(t, err)

	ds, err := repo.Load(ctx, tab)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALUNO", "STATUS_FINAL"}, ds.Columns)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "CARLA", ds.Records[0]["ALUNO"])
}
