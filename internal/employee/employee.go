package employee

import (
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
	employeeDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/employee"
)

type Employee struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Position       string    `json:"position"`
	DepartmentID   *string   `json:"department_id,omitempty"`
	WeeklyCapacity float64   `json:"weekly_capacity"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToCapacity is the employee as seen by the utilization calculator.
func (e *Employee) ToCapacity() capacity.EmployeeCapacity {
	return capacity.EmployeeCapacity{
		EmployeeID:     e.ID,
		EmployeeName:   e.Name,
		WeeklyCapacity: e.WeeklyCapacity,
	}
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:             e.ID,
		Name:           e.Name,
		Email:          e.Email,
		Position:       e.Position,
		DepartmentID:   e.DepartmentID,
		WeeklyCapacity: e.WeeklyCapacity,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:             e.ID,
		Name:           e.Name,
		Email:          e.Email,
		Position:       e.Position,
		DepartmentID:   e.DepartmentID,
		WeeklyCapacity: e.WeeklyCapacity,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
