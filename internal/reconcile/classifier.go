package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

// Layouts aceitos para a data de matrícula quando ela vem como texto.
var enrollmentLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	"20060102",
}

// minEpochMillis: abaixo disso (~1973) um número não é epoch, é data compacta ou lixo.
const minEpochMillis = 1e11

type Classifier struct {
	Threshold   int
	WindowStart time.Time
	DateField   string
}

func NewClassifier(threshold int, windowStart time.Time) *Classifier {
	return &Classifier{
		Threshold:   threshold,
		WindowStart: windowStart,
		DateField:   entity.FieldEnrollmentDate,
	}
}

type Classification struct {
	Status      entity.Status
	Matched     bool
	DateUnknown bool
	Enrolled    time.Time
}

// Classify aplica as regras na ordem:
//  1. score abaixo do corte ou sem candidato -> NÃO ENCONTRADO
//  2. matrícula antes do início da janela    -> ALUNO ANTIGO
//  3. resto (inclusive data ilegível)        -> VENDA NOVA
//
// O score é checado antes da data: data coincidente não salva um match fraco.
func (c *Classifier) Classify(rec entity.Record, res entity.MatchResult) Classification {
	if !res.Matched || res.Score < c.Threshold {
		return Classification{Status: entity.StatusNotFound}
	}

	enrolled, ok := ParseEnrollmentDate(rec[c.DateField], c.WindowStart.Location())
	if !ok {
		return Classification{Status: entity.StatusNewSale, Matched: true, DateUnknown: true}
	}

	if enrolled.Before(c.WindowStart) {
		return Classification{Status: entity.StatusExistingCustomer, Matched: true, Enrolled: enrolled}
	}
	return Classification{Status: entity.StatusNewSale, Matched: true, Enrolled: enrolled}
}

// ParseEnrollmentDate entende epoch em milissegundos (número ou texto) e os layouts comuns.
// Texto sem fuso é lido em loc (nil = UTC), o mesmo fuso da janela, para que
// "2025-03-01" caia exatamente no início de uma janela que começa em 01/03.
func ParseEnrollmentDate(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case float64:
		return fromMillis(int64(t), loc)
	case int64:
		return fromMillis(t, loc)
	case int:
		return fromMillis(int64(t), loc)
	case string:
		return parseDateText(t, enrollmentLayouts, loc)
	}
	return time.Time{}, false
}

// parseDateText tenta os layouts antes do epoch: "20250310" é data, não milissegundo.
func parseDateText(raw string, layouts []string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
			return parsed, true
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromMillis(ms, loc)
	}
	return time.Time{}, false
}

func fromMillis(ms int64, loc *time.Location) (time.Time, bool) {
	if ms < minEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).In(loc), true
}

// WindowStart calcula o início da janela de "venda recente".
// days > 0: meia-noite de now-days. Caso contrário, dia 1º do mês de now,
// já que a planilha de leads é acompanhada por mês.
func WindowStart(now time.Time, days int) time.Time {
	if days > 0 {
		d := now.AddDate(0, 0, -days)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
	}
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
