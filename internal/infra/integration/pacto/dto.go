package pacto

import "github.com/xavierca1/lead-reconciliation/internal/entity"

// pageResponse é o envelope paginado da Pacto ({"content": [...]}).
type pageResponse struct {
	Content       []entity.Record `json:"content"`
	TotalElements int            `json:"totalElements,omitempty"`
	TotalPages    int            `json:"totalPages,omitempty"`
}

type bookingFilters struct {
	ProfessorID int `json:"professorId"`
}
