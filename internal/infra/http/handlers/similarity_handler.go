package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/lead-reconciliation/internal/reconcile"
	"github.com/xavierca1/lead-reconciliation/internal/usecase"
)

// Limite de candidatos por chamada; o cruzamento de verdade roda no /reconciliations.
const maxCandidates = 5000

// SimilarityHandler expõe o score de nomes para calibrar o threshold.
type SimilarityHandler struct {
	Threshold int
}

func NewSimilarityHandler(threshold int) *SimilarityHandler {
	return &SimilarityHandler{Threshold: threshold}
}

type ScoreRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type ScoreResponse struct {
	A         string `json:"a"`
	B         string `json:"b"`
	NormA     string `json:"normalized_a"`
	NormB     string `json:"normalized_b"`
	Score     int    `json:"score"`
	Threshold int    `json:"threshold"`
	Matched   bool   `json:"matched"`
}

type BestMatchRequest struct {
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
	Cutoff     *int     `json:"cutoff,omitempty"`
}

type BestMatchResponse struct {
	Query     string `json:"query"`
	Matched   bool   `json:"matched"`
	Candidate string `json:"candidate,omitempty"`
	Index     int    `json:"index"`
	Score     int    `json:"score"`
	Tied      bool   `json:"tied,omitempty"`
}

// Score (POST /similarity)
func (h *SimilarityHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido: "+err.Error())
		return
	}
	if strings.TrimSpace(req.A) == "" || strings.TrimSpace(req.B) == "" {
		writeMessage(w, http.StatusBadRequest, usecase.CodeValidation, "a and b are required")
		return
	}

	score := reconcile.TokenSortRatio(req.A, req.B)
	writeJSON(w, http.StatusOK, ScoreResponse{
		A:         req.A,
		B:         req.B,
		NormA:     reconcile.Normalize(req.A),
		NormB:     reconcile.Normalize(req.B),
		Score:     score,
		Threshold: h.Threshold,
		Matched:   score >= h.Threshold,
	})
}

// Best (POST /similarity/best)
func (h *SimilarityHandler) Best(w http.ResponseWriter, r *http.Request) {
	var req BestMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeMessage(w, http.StatusBadRequest, usecase.CodeValidation, "query is required")
		return
	}
	if len(req.Candidates) > maxCandidates {
		writeMessage(w, http.StatusRequestEntityTooLarge, usecase.CodeValidation, "too many candidates")
		return
	}

	cutoff := h.Threshold
	if req.Cutoff != nil {
		cutoff = *req.Cutoff
	}
	if cutoff < 0 || cutoff > 100 {
		writeMessage(w, http.StatusBadRequest, usecase.CodeValidation, "cutoff must be between 0 and 100")
		return
	}

	resp := BestMatchResponse{Query: req.Query, Index: -1}
	if c, ok := reconcile.BestMatch(req.Query, req.Candidates, cutoff); ok {
		resp.Matched = true
		resp.Candidate = c.Name
		resp.Index = c.Index
		resp.Score = c.Score
		resp.Tied = c.Tied
	}

	writeJSON(w, http.StatusOK, resp)
}
