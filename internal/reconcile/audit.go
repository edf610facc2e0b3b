package reconcile

import (
	"time"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

// Campos crus de /psec/alunos/lista/matriculas
const (
	fieldEnrollmentStudent = "nome"
	fieldEnrollmentID      = "matricula"
	fieldEnrollmentStart   = "dataInicio"

	ColEnrollmentStart = "DATA_INICIO"
)

// CleanEnrollments renomeia as colunas das matrículas e descarta as anteriores a from.
// Data ilegível também sai, a API devolve a base inteira e o filtro local é a garantia.
func CleanEnrollments(raw *entity.Dataset, from time.Time) *entity.Dataset {
	out := &entity.Dataset{Columns: []string{entity.ColEnrollment, entity.ColStudent, ColEnrollmentStart}}
	if raw == nil {
		return out
	}

	for _, rec := range raw.Records {
		start, ok := ParseEnrollmentDate(rec[fieldEnrollmentStart], from.Location())
		if !ok || start.Before(from) {
			continue
		}
		out.Records = append(out.Records, entity.Record{
			entity.ColEnrollment: rec[fieldEnrollmentID],
			entity.ColStudent:    rec[fieldEnrollmentStudent],
			ColEnrollmentStart:   start.Format("2006-01-02"),
		})
	}
	return out
}

// Audit compara agendamentos limpos com matrículas recentes: quem converteu,
// quem agendou sem matrícula e quem se perdeu no caminho.
func Audit(bookings, enrollments *entity.Dataset, days int, now time.Time) entity.AuditReport {
	if bookings == nil {
		bookings = &entity.Dataset{}
	}
	if enrollments == nil {
		enrollments = &entity.Dataset{}
	}

	// Matrícula é a chave; sem ela em algum dos lados, cai para o nome
	key := entity.ColStudent
	if bookings.HasColumn(entity.ColEnrollment) && enrollments.HasColumn(entity.ColEnrollment) {
		key = entity.ColEnrollment
	}

	enrolled := make(map[string]bool, enrollments.Len())
	for _, rec := range enrollments.Records {
		if v := rec.String(key); v != "" {
			enrolled[v] = true
		}
	}

	converted := bookings.Filter(func(r entity.Record) bool {
		return enrolled[r.String(key)]
	})
	lost := bookings.Filter(func(r entity.Record) bool {
		return !enrolled[r.String(key)]
	})

	withoutID := 0
	for _, rec := range bookings.Records {
		if !rec.Present(entity.ColEnrollment) {
			withoutID++
		}
	}

	return entity.AuditReport{
		ProcessedAt:    now,
		Bookings:       bookings.Len(),
		Enrollments:    enrollments.Len(),
		EnrollmentDays: days,
		Conversions:    converted.Len(),
		WithoutID:      withoutID,
		Lost:           lost.Len(),
		ConvertedRows:  converted,
		LostRows:       lost,
	}
}
