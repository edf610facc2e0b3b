package entity

// Campos crus de /psec/treino-bi/agendamento-executaram
const (
	FieldBookingEnrollment = "matricula"
	FieldBookingStudent    = "nomeAluno"
	FieldBookingStudentAlt = "nome"
	FieldBookingEvent      = "evento"
	FieldBookingStart      = "inicio"
)

// Colunas do agendamento limpo
const (
	ColEnrollment  = "MATRICULA"
	ColStudent     = "ALUNO"
	ColMainStudent = "ALUNO_PRINCIPAL"
	ColCompanion   = "ALUNO_ACOMPANHANTE"
	ColPeople      = "QTD_PESSOAS"
	ColEventType   = "TIPO DE TREINO"
	ColAttendant   = "ATENDENTE"
	ColDate        = "DATA"
	ColHour        = "HORA"
)

var BookingColumns = []string{
	ColEnrollment, ColStudent, ColMainStudent, ColCompanion, ColPeople,
	ColEventType, ColAttendant, ColDate, ColHour,
}

// TrackedEvents são os tipos de treino que contam como agendamento de lead.
var TrackedEvents = []string{
	"Aula Experimental",
	"Primeiro Treino sem A.E",
	"Primeiro Treino com A.E",
}

const (
	AttendantMorning   = "ATENDENTE 1"
	AttendantAfternoon = "ATENDENTE 2"
)
