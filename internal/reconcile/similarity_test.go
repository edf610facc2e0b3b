package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-reconciliation/internal/reconcile"
)

// ============ NORMALIZAÇÃO ============

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"acentos e caixa", "João da SILVA", "joao da silva"},
		{"espaços nas pontas e internos", "   Maria    Aparecida  ", "maria aparecida"},
		{"cedilha e til", "Conceição Ação", "conceicao acao"},
		{"vazio", "", ""},
		{"nil", nil, ""},
		{"número", 42, ""},
		{"float da planilha", 3.5, ""},
		{"objeto", map[string]any{"nome": "x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconcile.Normalize(tt.in))
		})
	}
}

// TestNormalizeIdempotent - normalize(normalize(s)) == normalize(s)
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"João da Silva", "  ÁLVARO  Núñez ", "Zoë Ødegaard", "ß", "\tTab\nLinha", "", "123 abc",
	}
	for _, s := range inputs {
		once := reconcile.Normalize(s)
		assert.Equal(t, once, reconcile.Normalize(once), "input %q", s)
	}
}

// ============ SIMILARIDADE ============

func TestTokenSortRatioIgnoresWordOrder(t *testing.T) {
	assert.Equal(t, 100, reconcile.TokenSortRatio("Ana Silva", "Silva Ana"))
	assert.Equal(t, 100, reconcile.TokenSortRatio("joao pedro santos", "SANTOS Joao Pedro"))
}

func TestTokenSortRatioEmptyInputs(t *testing.T) {
	assert.Equal(t, 0, reconcile.TokenSortRatio("", "Ana"))
	assert.Equal(t, 0, reconcile.TokenSortRatio("Ana", ""))
	assert.Equal(t, 0, reconcile.TokenSortRatio("", ""))
	assert.Equal(t, 0, reconcile.TokenSortRatio("   ", "---"))
}

// TestTokenSortRatioWithoutLettersOrDigits - só pontuação ou emoji não vira nome: 0 até contra si mesmo
func TestTokenSortRatioWithoutLettersOrDigits(t *testing.T) {
	for _, s := range []string{"!!!", "🙂", "- / -"} {
		assert.Equal(t, 0, reconcile.TokenSortRatio(s, s), "entrada %q", s)
	}

	_, ok := reconcile.BestMatch("!!!", []string{"!!!", "Ana"}, 0)
	assert.False(t, ok)
}

// TestTokenSortRatioAbbreviatedMiddleName - "da" a mais ainda passa do corte de 85
func TestTokenSortRatioAbbreviatedMiddleName(t *testing.T) {
	// "da joao silva" x "joao silva": 20 de 23 caracteres em comum
	assert.Equal(t, 87, reconcile.TokenSortRatio("Joao Da Silva", "João Silva"))
}

func TestTokenSortRatioSymmetryAndBounds(t *testing.T) {
	names := []string{
		"Ana Silva", "Joao Da Silva", "João Silva", "Zzqqxx Nonexistent",
		"Maria Clara", "Clara Maria Souza", "x", "", "Pedro Henrique de Oliveira",
	}

	for _, a := range names {
		for _, b := range names {
			ab := reconcile.TokenSortRatio(a, b)
			ba := reconcile.TokenSortRatio(b, a)
			assert.Equal(t, ab, ba, "%q x %q", a, b)
			assert.GreaterOrEqual(t, ab, 0)
			assert.LessOrEqual(t, ab, 100)
		}
		if a != "" {
			assert.Equal(t, 100, reconcile.TokenSortRatio(a, a), "%q", a)
		}
	}
}

func TestTokenSortRatioUnrelatedNames(t *testing.T) {
	assert.Less(t, reconcile.TokenSortRatio("Zzqqxx Nonexistent", "joao silva"), reconcile.DefaultThreshold)
}

// ============ BEST MATCH ============

func TestBestMatchPicksHighestScore(t *testing.T) {
	candidates := []string{"maria souza", "ana silva", "ana silvia"}

	best, ok := reconcile.BestMatch("Silva Ana", candidates, 85)

	require.True(t, ok)
	assert.Equal(t, "ana silva", best.Name)
	assert.Equal(t, 100, best.Score)
	assert.Equal(t, 1, best.Index)
	assert.False(t, best.Tied)
}

// TestBestMatchTieKeepsFirst - empate fica com o primeiro candidato do pool
func TestBestMatchTieKeepsFirst(t *testing.T) {
	candidates := []string{"carlos lima", "ana silva", "silva ana"}

	best, ok := reconcile.BestMatch("ana silva", candidates, 85)

	require.True(t, ok)
	assert.Equal(t, 1, best.Index)
	assert.Equal(t, "ana silva", best.Name)
	assert.True(t, best.Tied)
}

func TestBestMatchBelowCutoffReturnsNone(t *testing.T) {
	best, ok := reconcile.BestMatch("Zzqqxx Nonexistent", []string{"ana silva", "joao silva"}, 85)

	assert.False(t, ok)
	assert.Equal(t, reconcile.Candidate{}, best)
}

func TestBestMatchEmptyQueryOrPool(t *testing.T) {
	_, ok := reconcile.BestMatch("", []string{"ana silva"}, 0)
	assert.False(t, ok)

	_, ok = reconcile.BestMatch("ana silva", nil, 0)
	assert.False(t, ok)
}
