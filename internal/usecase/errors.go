package usecase

import "errors"

// Códigos de erro devolvidos pelos casos de uso
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNoLeads           = "NO_LEADS"
	CodeRunNotFound       = "RUN_NOT_FOUND"
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodePersistenceFailed = "PERSISTENCE_FAILED"
	CodeNotConfigured     = "NOT_CONFIGURED"
)

// DomainError: a entrada ou o estado do negócio impede a execução (4xx).
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError: falha de infraestrutura (API fora, banco fora...).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrorCode devolve o código de um DomainError/TechnicalError, ou "" para erros comuns.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
