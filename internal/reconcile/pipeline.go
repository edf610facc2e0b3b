package reconcile

import (
	"fmt"
	"time"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

type Options struct {
	Threshold int
	Now       time.Time
	// WindowStart explícito; zero = calculado a partir de Now e WindowDays.
	WindowStart time.Time
	WindowDays  int
	Workers     int // > 1 usa MatchParallel

	LeadNameField     string
	CustomerNameField string
}

func (o Options) windowStart() time.Time {
	if !o.WindowStart.IsZero() {
		return o.WindowStart
	}
	return WindowStart(o.Now, o.WindowDays)
}

// Issue é um sinal de qualidade de dado; nunca interrompe o cruzamento.
type Issue struct {
	Row     int    `json:"row"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	IssueBlankName   = "BLANK_NAME"
	IssueUnknownDate = "UNKNOWN_DATE"
	IssueTie         = "TIE"
)

type Result struct {
	Records     *entity.Dataset
	Matches     []entity.MatchResult
	Summary     entity.Summary
	Issues      []Issue
	WindowStart time.Time
}

// Reconcile cruza leads x alunos e classifica cada lead.
// Devolve sempre uma linha consolidada por lead, mesmo com pool vazio.
func Reconcile(leads, customers *entity.Dataset, opts Options) *Result {
	if leads == nil {
		leads = &entity.Dataset{}
	}
	if customers == nil {
		customers = &entity.Dataset{}
	}

	leadField := opts.LeadNameField
	if leadField == "" {
		leadField = entity.ColLeadName
	}
	customerField := opts.CustomerNameField
	if customerField == "" {
		customerField, _ = customers.FirstColumn(entity.FieldCustomerName, entity.FieldCustomerNameAlt)
		if customerField == "" {
			customerField = entity.FieldCustomerName
		}
	}

	queries := make([]string, len(leads.Records))
	for i, rec := range leads.Records {
		queries[i], _ = rec[leadField].(string)
	}
	pool := make([]string, 0, len(customers.Records))
	for _, rec := range customers.Records {
		if s, ok := rec[customerField].(string); ok {
			pool = append(pool, s)
		}
	}

	matcher := NewMatcher(opts.Threshold)
	var matches []entity.MatchResult
	if opts.Workers > 1 {
		matches = matcher.MatchParallel(queries, pool, opts.Workers)
	} else {
		matches = matcher.Match(queries, pool)
	}

	merged := Merge(leads, matches, customers, customerField, entity.CustomerAttachColumns)
	merged.Columns = appendColumn(merged.Columns, merged, entity.ColConversionStatus)
	merged.Columns = appendColumn(merged.Columns, merged, entity.ColFinalStatus)

	windowStart := opts.windowStart()
	classifier := NewClassifier(opts.Threshold, windowStart)
	if leads.HasColumn(entity.FieldEnrollmentDate) {
		classifier.DateField = entity.FieldEnrollmentDate + rightSuffix
	}

	result := &Result{Records: merged, Matches: matches, WindowStart: windowStart}
	for i, row := range merged.Records {
		m := matches[i]
		c := classifier.Classify(row, m)

		row[entity.ColConversionStatus] = entity.ConversionNotFound
		if c.Matched {
			row[entity.ColConversionStatus] = entity.ConversionMatched
		}
		row[entity.ColFinalStatus] = string(c.Status)
		result.Summary.Add(c.Status)

		switch {
		case m.Query == "":
			result.Issues = append(result.Issues, Issue{Row: i, Kind: IssueBlankName, Message: "lead sem nome"})
		case c.DateUnknown:
			result.Summary.UnknownDates++
			result.Issues = append(result.Issues, Issue{
				Row:     i,
				Kind:    IssueUnknownDate,
				Message: fmt.Sprintf("data de matrícula ilegível para %q (%v)", m.Query, row[classifier.DateField]),
			})
		}
		if m.Matched && m.Tied {
			result.Issues = append(result.Issues, Issue{
				Row:     i,
				Kind:    IssueTie,
				Message: fmt.Sprintf("empate no score %d para %q; ficou %q", m.Score, m.Query, m.Candidate),
			})
		}
	}

	return result
}

// NewSales filtra os registros consolidados com status VENDA NOVA.
func NewSales(ds *entity.Dataset) *entity.Dataset {
	return ds.Filter(func(r entity.Record) bool {
		return r.String(entity.ColFinalStatus) == string(entity.StatusNewSale)
	})
}

// ConversionPayloads monta o payload do backend para cada venda nova.
func ConversionPayloads(ds *entity.Dataset, processedAt time.Time) []entity.ConversionPayload {
	sales := NewSales(ds)
	out := make([]entity.ConversionPayload, 0, sales.Len())
	for _, r := range sales.Records {
		origin := r.String(entity.ColOrigin)
		if origin == "" {
			origin = "Desconhecido"
		}
		customer := attachedCustomer(sales, r)
		out = append(out, entity.ConversionPayload{
			LeadName:       r.String(entity.ColLeadName),
			EnrollmentID:   entity.EnrollmentIDOf(customer),
			Plan:           customer.String(entity.FieldPlan),
			Origin:         origin,
			Salesperson:    r.String(entity.ColSalesperson),
			EnrollmentDate: customer.String(entity.FieldEnrollmentDate),
			LeadDate:       r.String(entity.ColLeadDate),
			MatchScore:     r.Int(entity.ColMatchScore),
			Status:         r.String(entity.ColFinalStatus),
			ProcessedAt:    processedAt.Format(time.RFC3339),
		})
	}
	return out
}

// attachedCustomer devolve as colunas do aluno anexadas por Merge, com os nomes originais.
// Se o lead já trazia a coluna, o valor do aluno está na versão com sufixo.
func attachedCustomer(ds *entity.Dataset, r entity.Record) entity.Record {
	customer := make(entity.Record, len(entity.CustomerAttachColumns))
	for _, col := range entity.CustomerAttachColumns {
		name := col
		if ds.HasColumn(col + rightSuffix) {
			name = col + rightSuffix
		}
		customer[col] = r[name]
	}
	return customer
}
