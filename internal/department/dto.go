package department

import (
	"strings"

	errors "github.com/frahmantamala/resource-management/internal"
	"github.com/frahmantamala/resource-management/internal/core/common/validation"
)

var (
	ErrDepartmentNotFound = errors.ErrDepartmentNotFound
	ErrDuplicateName      = errors.NewConflictError("Department name already exists", errors.ErrCodeDuplicateName)
)

type CreateDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (dto *CreateDepartmentDTO) Normalize() {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Description = strings.TrimSpace(dto.Description)
}

func (dto CreateDepartmentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("description", dto.Description).MaxLength(500)
	return v.Validate()
}

// UpdateDepartmentDTO is a partial update; nil fields are left unchanged.
type UpdateDepartmentDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (dto UpdateDepartmentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", strings.TrimSpace(*dto.Name)).Required().MaxLength(100)
	}
	if dto.Description != nil {
		v.Field("description", *dto.Description).MaxLength(500)
	}
	return v.Validate()
}

type ListFilter struct {
	IncludeInactive bool
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}
