package reconcile

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Inserção e remoção custam 1 e substituição custa 2: a distância vira a distância indel
// e a razão fica (len1+len2-dist)/(len1+len2).
var indelOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 2,
	Matches: levenshtein.IdenticalRunes,
}

// Candidate é o melhor candidato encontrado por BestMatch.
type Candidate struct {
	Name  string
	Score int
	Index int
	Tied  bool // outro candidato empatou com o mesmo score máximo
}

// TokenSortRatio compara dois nomes ignorando a ordem das palavras.
// "Silva Ana" x "Ana Silva" = 100. Entrada sem letras nem dígitos vale 0.
func TokenSortRatio(a, b string) int {
	return sortedRatio(sortTokens(a), sortTokens(b))
}

func sortedRatio(sa, sb string) int {
	if sa == "" || sb == "" {
		return 0
	}

	ra, rb := []rune(sa), []rune(sb)
	total := len(ra) + len(rb)
	dist := levenshtein.DistanceForStrings(ra, rb, indelOptions)

	ratio := 100 * float64(total-dist) / float64(total)
	return int(math.RoundToEven(ratio))
}

// sortTokens: translitera para ASCII, minúsculo, pontuação vira espaço, tokens ordenados.
func sortTokens(s string) string {
	var b strings.Builder
	for _, r := range unidecode.Unidecode(s) {
		if r > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// BestMatch varre todos os candidatos e devolve o de maior score.
// Empate fica com o primeiro encontrado. Score máximo abaixo do cutoff = sem match.
func BestMatch(query string, candidates []string, cutoff int) (Candidate, bool) {
	return newPool(candidates).best(query, cutoff)
}

// pool guarda os candidatos já tokenizados para não refazer o trabalho a cada consulta.
type pool struct {
	names  []string
	sorted []string
}

func newPool(names []string) pool {
	p := pool{names: names, sorted: make([]string, len(names))}
	for i, n := range names {
		p.sorted[i] = sortTokens(n)
	}
	return p
}

func (p pool) best(query string, cutoff int) (Candidate, bool) {
	sq := sortTokens(query)
	if sq == "" || len(p.names) == 0 {
		return Candidate{}, false
	}

	best := Candidate{Index: -1, Score: -1}
	for i, sc := range p.sorted {
		score := sortedRatio(sq, sc)
		switch {
		case score > best.Score:
			best = Candidate{Name: p.names[i], Score: score, Index: i}
		case score == best.Score:
			best.Tied = true
		}
	}

	if best.Index < 0 || best.Score < cutoff {
		return Candidate{}, false
	}
	return best, true
}
