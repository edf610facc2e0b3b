package usecase

import (
	"fmt"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateReconcileLeadsInput(input ReconcileLeadsInput) []ValidationError {
	var errs []ValidationError

	if t := input.Threshold; t != nil && (*t < 0 || *t > 100) {
		errs = append(errs, ValidationError{"threshold", "must be between 0 and 100"})
	}
	if d := input.WindowDays; d != nil && *d < 0 {
		errs = append(errs, ValidationError{"window_days", "must not be negative"})
	}
	if input.WindowStart != "" {
		if _, err := time.Parse("2006-01-02", input.WindowStart); err != nil {
			errs = append(errs, ValidationError{"window_start", "must be a valid date (YYYY-MM-DD)"})
		} else if input.WindowDays != nil {
			errs = append(errs, ValidationError{"window_start", "cannot be combined with window_days"})
		}
	}

	return errs
}

func ValidateAuditInput(input AuditInput) []ValidationError {
	var errs []ValidationError

	if input.Days < 0 {
		errs = append(errs, ValidationError{"days", "must not be negative"})
	} else if input.Days > 366 {
		errs = append(errs, ValidationError{"days", "must not exceed 366"})
	}

	return errs
}

func ValidateCleanBookingsInput(input CleanBookingsInput) []ValidationError {
	var errs []ValidationError

	for i, ev := range input.Events {
		if strings.TrimSpace(ev) == "" {
			errs = append(errs, ValidationError{fmt.Sprintf("events[%d]", i), "must not be blank"})
		}
	}

	return errs
}

// validationFailed junta os erros no DomainError que os handlers devolvem como 400.
func validationFailed(errs []ValidationError) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(msgs, ", "),
	}
}
