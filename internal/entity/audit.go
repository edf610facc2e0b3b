package entity

import (
	"strconv"
	"time"
)

// AuditReport resume inconsistências entre agendamentos e matrículas.
type AuditReport struct {
	ProcessedAt    time.Time `json:"processed_at"`
	Bookings       int       `json:"total_agendamentos"`
	Enrollments    int       `json:"total_matriculas"`
	EnrollmentDays int       `json:"dias_matriculas"`
	Conversions    int       `json:"conversoes"`
	WithoutID      int       `json:"leads_sem_matricula"`
	Lost           int       `json:"leads_perdidos"`
	ConvertedRows  *Dataset  `json:"-"`
	LostRows       *Dataset  `json:"-"`
}

// Lines devolve o resumo no formato do log de auditoria em texto.
func (a AuditReport) Lines() [][2]string {
	return [][2]string{
		{"Data Processamento", a.ProcessedAt.Format("02/01/2006 15:04")},
		{"Total Agendamentos", strconv.Itoa(a.Bookings)},
		{"Total Matrículas (" + strconv.Itoa(a.EnrollmentDays) + "d)", strconv.Itoa(a.Enrollments)},
		{"Conversões Identificadas", strconv.Itoa(a.Conversions)},
		{"Leads sem Matrícula (Inconsistentes)", strconv.Itoa(a.WithoutID)},
		{"Leads não Convertidos (Perdidos)", strconv.Itoa(a.Lost)},
	}
}
