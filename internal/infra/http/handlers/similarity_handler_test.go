package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityScore(t *testing.T) {
	h := NewSimilarityHandler(85)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/similarity", bytes.NewBufferString(`{"a":"Silva, João","b":"JOAO SILVA"}`))

	h.Score(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[ScoreResponse](t, rec)
	assert.Equal(t, 100, out.Score)
	assert.True(t, out.Matched)
	assert.Equal(t, "silva, joao", out.NormA)
	assert.Equal(t, 85, out.Threshold)
}

func TestSimilarityScoreRequiresBothNames(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/similarity", bytes.NewBufferString(`{"a":"Ana"}`))

	NewSimilarityHandler(85).Score(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimilarityBest(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"query":"Maria Souza","candidates":["Mario Sousa","MARIA SOUZA","Ana Lima"]}`

	NewSimilarityHandler(85).Best(rec, httptest.NewRequest(http.MethodPost, "/similarity/best", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[BestMatchResponse](t, rec)
	assert.True(t, out.Matched)
	assert.Equal(t, "MARIA SOUZA", out.Candidate)
	assert.Equal(t, 1, out.Index)
	assert.Equal(t, 100, out.Score)
}

// TestSimilarityBestBelowCutoff - nada acima do corte: matched=false e index -1
func TestSimilarityBestBelowCutoff(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"query":"Maria Souza","candidates":["Ana Lima"],"cutoff":90}`

	NewSimilarityHandler(85).Best(rec, httptest.NewRequest(http.MethodPost, "/similarity/best", bytes.NewBufferString(body)))

	out := decodeBody[BestMatchResponse](t, rec)
	assert.False(t, out.Matched)
	assert.Equal(t, -1, out.Index)
	assert.Empty(t, out.Candidate)
}

func TestSimilarityBestRejectsBadCutoff(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"query":"Maria","candidates":["Maria"],"cutoff":150}`

	NewSimilarityHandler(85).Best(rec, httptest.NewRequest(http.MethodPost, "/similarity/best", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
