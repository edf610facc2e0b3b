package entity

// Status final do lead após o cruzamento
type Status string

const (
	StatusNewSale          Status = "VENDA NOVA"
	StatusExistingCustomer Status = "ALUNO ANTIGO"
	StatusNotFound         Status = "NÃO ENCONTRADO"
)

// Situação de conversão olhando só a similaridade (sem checar data)
const (
	ConversionMatched  = "CONVERTIDO"
	ConversionNotFound = "NÃO ENCONTRADO"
)

// Colunas anexadas ao lead no registro consolidado
const (
	ColMatchScore       = "match_score"
	ColConversionStatus = "SITUACAO_CONVERSAO"
	ColFinalStatus      = "STATUS_FINAL"
)

// MatchResult: um por nome consultado, recalculado a cada execução.
type MatchResult struct {
	Query     string `json:"query"`
	Candidate string `json:"candidate,omitempty"`
	Matched   bool   `json:"matched"`
	Score     int    `json:"score"`
	Tied      bool   `json:"tied,omitempty"`
}

// Summary conta os leads por status.
type Summary struct {
	Leads            int `json:"leads"`
	NewSales         int `json:"new_sales"`
	ExistingCustomer int `json:"existing_customers"`
	NotFound         int `json:"not_found"`
	UnknownDates     int `json:"unknown_dates"`
}

func (s *Summary) Add(status Status) {
	s.Leads++
	switch status {
	case StatusNewSale:
		s.NewSales++
	case StatusExistingCustomer:
		s.ExistingCustomer++
	default:
		s.NotFound++
	}
}

// ConversionPayload é o que o backend recebe para cada venda nova.
type ConversionPayload struct {
	LeadName       string `json:"nome_lead"`
	EnrollmentID   string `json:"matricula"`
	Plan           string `json:"plano"`
	Origin         string `json:"origem"`
	Salesperson    string `json:"vendedora"`
	EnrollmentDate string `json:"data_matricula"`
	LeadDate       string `json:"data_lead"`
	MatchScore     int    `json:"score_match"`
	Status         string `json:"status"`
	ProcessedAt    string `json:"data_processamento"`
	RunID          string `json:"run_id,omitempty"`
}
