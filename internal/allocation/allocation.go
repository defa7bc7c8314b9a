package allocation

import (
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
	allocationDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/allocation"
)

type Allocation struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	ProjectID      string    `json:"project_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	AllocatedHours float64   `json:"allocated_hours"`
	Role           string    `json:"role,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (a *Allocation) Period() capacity.DateRange {
	return capacity.NewDateRange(a.StartDate, a.EndDate)
}

// ToCapacity is the allocation as seen by the utilization calculator.
func (a *Allocation) ToCapacity() capacity.Allocation {
	return capacity.Allocation{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		ProjectID:      a.ProjectID,
		StartDate:      a.StartDate,
		EndDate:        a.EndDate,
		AllocatedHours: a.AllocatedHours,
		IsActive:       a.IsActive,
	}
}

func ToDataModel(a *Allocation) *allocationDatamodel.Allocation {
	return &allocationDatamodel.Allocation{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		ProjectID:      a.ProjectID,
		StartDate:      a.StartDate,
		EndDate:        a.EndDate,
		AllocatedHours: a.AllocatedHours,
		Role:           a.Role,
		Notes:          a.Notes,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func FromDataModel(a *allocationDatamodel.Allocation) *Allocation {
	return &Allocation{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		ProjectID:      a.ProjectID,
		StartDate:      capacity.Date(a.StartDate),
		EndDate:        capacity.Date(a.EndDate),
		AllocatedHours: a.AllocatedHours,
		Role:           a.Role,
		Notes:          a.Notes,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
