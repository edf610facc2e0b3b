package reconcile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/reconcile"
)

var windowStart = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

// brt é o horário de Brasília sem depender do tzdata da máquina.
var brt = time.FixedZone("BRT", -3*60*60)

func matched(score int) entity.MatchResult {
	return entity.MatchResult{Query: "ana silva", Candidate: "ana silva", Matched: true, Score: score}
}

func TestClassifierRules(t *testing.T) {
	c := reconcile.NewClassifier(85, windowStart)

	tests := []struct {
		name        string
		date        any
		res         entity.MatchResult
		want        entity.Status
		dateUnknown bool
	}{
		{"sem candidato", "2025-03-10", entity.MatchResult{Query: "ana"}, entity.StatusNotFound, false},
		{"score abaixo do corte ignora data", "2025-03-10", matched(84), entity.StatusNotFound, false},
		{"matrícula antes da janela", "2025-02-28", matched(90), entity.StatusExistingCustomer, false},
		{"epoch ms antes da janela", float64(time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC).UnixMilli()), matched(100), entity.StatusExistingCustomer, false},
		{"matrícula exatamente no início da janela", "2025-03-01", matched(90), entity.StatusNewSale, false},
		{"matrícula dentro da janela", "10/03/2025", matched(85), entity.StatusNewSale, false},
		{"data ilegível vira venda nova", "ontem", matched(95), entity.StatusNewSale, true},
		{"data ausente vira venda nova", nil, matched(95), entity.StatusNewSale, true},
		{"data compacta dentro da janela", "20250310", matched(95), entity.StatusNewSale, false},
		{"número pequeno não é epoch", "1234", matched(95), entity.StatusNewSale, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := entity.Record{entity.FieldEnrollmentDate: tt.date}

			got := c.Classify(rec, tt.res)

			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.dateUnknown, got.DateUnknown)
		})
	}
}

// TestClassifierGating - score abaixo do corte é sempre NÃO ENCONTRADO, qualquer que seja a data
func TestClassifierGating(t *testing.T) {
	c := reconcile.NewClassifier(85, windowStart)
	dates := []any{nil, "lixo", "2020-01-01", "2025-03-05", float64(1735689600000)}

	for score := 0; score < 85; score += 7 {
		for _, d := range dates {
			got := c.Classify(entity.Record{entity.FieldEnrollmentDate: d}, matched(score))
			assert.Equal(t, entity.StatusNotFound, got.Status, "score %d data %v", score, d)
		}
	}
}

// TestClassifierWindowOutsideUTC - data sem hora no dia 1º entra na janela mesmo fora de UTC
func TestClassifierWindowOutsideUTC(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, brt)
	c := reconcile.NewClassifier(85, reconcile.WindowStart(now, 0))

	for _, date := range []any{"2025-03-01", "01/03/2025", "20250301", "2025-03-01 00:00:00"} {
		got := c.Classify(entity.Record{entity.FieldEnrollmentDate: date}, matched(100))
		assert.Equal(t, entity.StatusNewSale, got.Status, "data %v", date)
		assert.False(t, got.DateUnknown)
	}

	got := c.Classify(entity.Record{entity.FieldEnrollmentDate: "28/02/2025"}, matched(100))
	assert.Equal(t, entity.StatusExistingCustomer, got.Status)
}

func TestReconcileWindowOutsideUTC(t *testing.T) {
	leads := entity.NewDataset([]entity.Record{{entity.ColLeadName: "ANA SILVA"}})
	customers := entity.NewDataset([]entity.Record{
		{"nome": "Ana Silva", "matriculaZW": "1", "dataMatriculaZW": "2025-03-01"},
	})

	res := reconcile.Reconcile(leads, customers, reconcile.Options{
		Threshold: 85,
		Now:       time.Date(2025, time.March, 15, 10, 0, 0, 0, brt),
	})

	require.Len(t, res.Records.Records, 1)
	assert.Equal(t, string(entity.StatusNewSale), res.Records.Records[0][entity.ColFinalStatus])
}

func TestParseEnrollmentDate(t *testing.T) {
	jan1 := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want time.Time
		ok   bool
	}{
		{"epoch ms float", float64(1735689600000), jan1, true},
		{"epoch ms int64", int64(1735689600000), jan1, true},
		{"epoch ms texto", "1735689600000", jan1, true},
		{"iso data", "2025-01-01", jan1, true},
		{"rfc3339", "2025-01-01T00:00:00Z", jan1, true},
		{"brasileiro", "01/01/2025", jan1, true},
		{"time.Time", jan1, jan1, true},
		{"vazio", "  ", time.Time{}, false},
		{"nil", nil, time.Time{}, false},
		{"zero", float64(0), time.Time{}, false},
		{"texto livre", "janeiro", time.Time{}, false},
		{"data compacta", "20250101", jan1, true},
		{"número curto não é epoch", "20250", time.Time{}, false},
		{"epoch implausível", float64(20250310), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reconcile.ParseEnrollmentDate(tt.in, time.UTC)
			require.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseEnrollmentDateUsesLocation(t *testing.T) {
	got, ok := reconcile.ParseEnrollmentDate("01/03/2025", brt)
	require.True(t, ok)
	assert.True(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, brt).Equal(got))

	// epoch é um instante: o fuso só muda a apresentação
	got, ok = reconcile.ParseEnrollmentDate(float64(1735689600000), brt)
	require.True(t, ok)
	assert.Equal(t, brt, got.Location())
	assert.Equal(t, 31, got.Day())

	// com fuso explícito no texto, loc é ignorado
	got, ok = reconcile.ParseEnrollmentDate("2025-01-01T00:00:00Z", brt)
	require.True(t, ok)
	assert.True(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).Equal(got))
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), reconcile.WindowStart(now, 0))
	assert.Equal(t, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), reconcile.WindowStart(now, 10))
	assert.Equal(t, time.Date(2025, time.January, 14, 0, 0, 0, 0, time.UTC), reconcile.WindowStart(now, 60))
}
