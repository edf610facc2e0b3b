package entity

// Campos do aluno como vêm da Pacto (/psec/alunos/v2)
const (
	FieldCustomerName    = "nome"
	FieldCustomerNameAlt = "Nome"
	FieldEnrollmentID    = "matriculaZW"
	FieldEnrollment      = "matricula"
	FieldContractID      = "contratoZW"
	FieldEnrollmentDate  = "dataMatriculaZW"
	FieldSituation       = "situacaoAluno"
	FieldPlan            = "planoZW"
)

// CustomerAttachColumns são as colunas do aluno anexadas ao lead no cruzamento.
var CustomerAttachColumns = []string{
	FieldEnrollmentID,
	FieldEnrollment,
	FieldContractID,
	FieldEnrollmentDate,
	FieldSituation,
	FieldPlan,
}

// Customer é a visão tipada de um aluno da Pacto. O cruzamento trabalha com Record;
// esta struct serve a quem precisa ler um aluno isolado (API, CLI).
type Customer struct {
	Name           string `json:"nome"`
	EnrollmentID   string `json:"matriculaZW"`
	ContractID     string `json:"contratoZW,omitempty"`
	EnrollmentDate string `json:"dataMatriculaZW,omitempty"`
	Situation      string `json:"situacaoAluno,omitempty"`
	Plan           string `json:"planoZW,omitempty"`
}

func CustomerFromRecord(r Record) Customer {
	name := r.String(FieldCustomerName)
	if name == "" {
		name = r.String(FieldCustomerNameAlt)
	}
	return Customer{
		Name:           name,
		EnrollmentID:   EnrollmentIDOf(r),
		ContractID:     r.String(FieldContractID),
		EnrollmentDate: r.String(FieldEnrollmentDate),
		Situation:      r.String(FieldSituation),
		Plan:           r.String(FieldPlan),
	}
}

// EnrollmentIDOf prefere matriculaZW; alguns endpoints só mandam matricula.
func EnrollmentIDOf(r Record) string {
	if id := r.String(FieldEnrollmentID); id != "" {
		return id
	}
	return r.String(FieldEnrollment)
}
