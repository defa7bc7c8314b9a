package project

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/resource-management/internal"
	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/core/common/validation"
)

var (
	ErrProjectNotFound = errors.ErrProjectNotFound
	ErrProjectInUse    = errors.NewConflictError("Project still has active allocations", errors.ErrCodeProjectInUse)
)

type CreateProjectDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ClientName  string  `json:"client_name"`
	Status      string  `json:"status"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

// UpdateProjectDTO is a partial update; nil fields are left unchanged.
// An empty date string clears that date.
type UpdateProjectDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ClientName  *string `json:"client_name,omitempty"`
	Status      *string `json:"status,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

type ProjectsResponse struct {
	Projects []*Project `json:"projects"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// parseOptionalDate returns nil for nil or blank input.
func parseOptionalDate(field string, value *string) (*time.Time, *errors.AppError) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.Parse(capacity.DateLayout, strings.TrimSpace(*value))
	if err != nil {
		return nil, errors.NewValidationFieldError(field, field+" must be formatted as YYYY-MM-DD", errors.ErrCodeInvalidDate)
	}
	d := capacity.Date(t)
	return &d, nil
}

func validateProject(name, status string, start, end *time.Time) *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", name).Required().MaxLength(200)
	v.Field("status", status).Required().OneOf(errors.ErrCodeInvalidStatus, Statuses...)
	if start != nil && end != nil {
		v.Field("start_date", *start).NotAfter("end_date", *end)
	}
	return v.Validate()
}
