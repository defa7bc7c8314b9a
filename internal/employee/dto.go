package employee

import (
	"strings"

	errors "github.com/frahmantamala/resource-management/internal"
	"github.com/frahmantamala/resource-management/internal/core/common/validation"
)

var (
	ErrEmployeeNotFound  = errors.ErrEmployeeNotFound
	ErrDuplicateEmail    = errors.NewConflictError("Email already in use", errors.ErrCodeDuplicateEmail)
	ErrUnknownDepartment = errors.NewValidationFieldError("department_id", "department does not exist", errors.ErrCodeDepartmentNotFound)
)

type CreateEmployeeDTO struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Position       string   `json:"position"`
	DepartmentID   *string  `json:"department_id,omitempty"`
	WeeklyCapacity *float64 `json:"weekly_capacity,omitempty"`
}

func (dto *CreateEmployeeDTO) Normalize() {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.Position = strings.TrimSpace(dto.Position)
	if dto.DepartmentID != nil && strings.TrimSpace(*dto.DepartmentID) == "" {
		dto.DepartmentID = nil
	}
}

func (dto CreateEmployeeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(200)
	v.Field("email", dto.Email).Required().Email()
	v.Field("position", dto.Position).MaxLength(100)
	if dto.WeeklyCapacity != nil {
		v.Field("weekly_capacity", *dto.WeeklyCapacity).
			PositiveFloat(errors.ErrCodeInvalidCapacity).
			MaxFloat(validation.MaxWeeklyHours, errors.ErrCodeInvalidCapacity)
	}
	return v.Validate()
}

// UpdateEmployeeDTO is a partial update; nil fields are left unchanged.
// An empty department_id detaches the employee from its department.
type UpdateEmployeeDTO struct {
	Name           *string  `json:"name,omitempty"`
	Email          *string  `json:"email,omitempty"`
	Position       *string  `json:"position,omitempty"`
	DepartmentID   *string  `json:"department_id,omitempty"`
	WeeklyCapacity *float64 `json:"weekly_capacity,omitempty"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

func (dto *UpdateEmployeeDTO) Normalize() {
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		dto.Name = &name
	}
	if dto.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*dto.Email))
		dto.Email = &email
	}
	if dto.Position != nil {
		position := strings.TrimSpace(*dto.Position)
		dto.Position = &position
	}
}

func (dto UpdateEmployeeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(200)
	}
	if dto.Email != nil {
		v.Field("email", *dto.Email).Required().Email()
	}
	if dto.Position != nil {
		v.Field("position", *dto.Position).MaxLength(100)
	}
	if dto.WeeklyCapacity != nil {
		v.Field("weekly_capacity", *dto.WeeklyCapacity).
			PositiveFloat(errors.ErrCodeInvalidCapacity).
			MaxFloat(validation.MaxWeeklyHours, errors.ErrCodeInvalidCapacity)
	}
	return v.Validate()
}

type ListFilter struct {
	DepartmentID    string
	IncludeInactive bool
	Limit           int
	Offset          int
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}
