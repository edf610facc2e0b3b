package reconcile

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

// DefaultThreshold é o corte usado em produção.
const DefaultThreshold = 85

type Matcher struct {
	Threshold int
}

func NewMatcher(threshold int) *Matcher {
	return &Matcher{Threshold: threshold}
}

// Match devolve exatamente um MatchResult por consulta, na mesma ordem.
// Nomes vazios não passam pelo scorer; pool vazio = ninguém encontrado, score 0.
func (m *Matcher) Match(queries []string, candidates []string) []entity.MatchResult {
	p := newPool(UniqueNames(candidates))
	results := make([]entity.MatchResult, len(queries))
	for i, q := range queries {
		results[i] = m.matchOne(p, q)
	}
	return results
}

// MatchParallel dá o mesmo resultado de Match, dividindo as consultas entre workers.
func (m *Matcher) MatchParallel(queries []string, candidates []string, workers int) []entity.MatchResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := newPool(UniqueNames(candidates))
	results := make([]entity.MatchResult, len(queries))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			results[i] = m.matchOne(p, q)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (m *Matcher) matchOne(p pool, query string) entity.MatchResult {
	q := Normalize(query)
	res := entity.MatchResult{Query: q}
	if q == "" {
		return res
	}

	best, ok := p.best(q, m.Threshold)
	if !ok {
		return res
	}

	res.Candidate = best.Name
	res.Matched = true
	res.Score = best.Score
	res.Tied = best.Tied
	return res
}

// UniqueNames normaliza o pool e remove repetidos e vazios, mantendo a ordem de chegada.
func UniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := Normalize(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
