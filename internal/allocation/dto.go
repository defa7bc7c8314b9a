package allocation

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/resource-management/internal"
	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/core/common/validation"
)

var (
	ErrAllocationNotFound = errors.ErrAllocationNotFound
	ErrUnknownEmployee    = errors.NewValidationFieldError("employee_id", "employee does not exist or is inactive", errors.ErrCodeEmployeeNotFound)
	ErrUnknownProject     = errors.NewValidationFieldError("project_id", "project does not exist or is completed", errors.ErrCodeProjectNotFound)
)

// CreateAllocationDTO carries dates as YYYY-MM-DD strings.
type CreateAllocationDTO struct {
	EmployeeID     string  `json:"employee_id"`
	ProjectID      string  `json:"project_id"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	AllocatedHours float64 `json:"allocated_hours"`
	Role           string  `json:"role,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// UpdateAllocationDTO is a partial update; nil fields are left unchanged.
type UpdateAllocationDTO struct {
	EmployeeID     *string  `json:"employee_id,omitempty"`
	ProjectID      *string  `json:"project_id,omitempty"`
	StartDate      *string  `json:"start_date,omitempty"`
	EndDate        *string  `json:"end_date,omitempty"`
	AllocatedHours *float64 `json:"allocated_hours,omitempty"`
	Role           *string  `json:"role,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

type ListFilter struct {
	EmployeeID string
	ProjectID  string
	// From and To select allocations overlapping [From, To]; either may be zero.
	From       time.Time
	To         time.Time
	ActiveOnly bool
	Limit      int
	Offset     int
}

// AllocationResponse is returned by create and update so clients can show
// a warning as soon as a write over-allocates the employee.
type AllocationResponse struct {
	Allocation     *Allocation                     `json:"allocation"`
	OverAllocation *capacity.OverAllocationSummary `json:"over_allocation,omitempty"`
}

type AllocationsResponse struct {
	Allocations []*Allocation `json:"allocations"`
	Limit       int           `json:"limit"`
	Offset      int           `json:"offset"`
}

func parseDate(field, value string) (time.Time, *errors.AppError) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.NewValidationFieldError(field, field+" is required", errors.ErrCodeValidationFailed)
	}
	t, err := time.Parse(capacity.DateLayout, value)
	if err != nil {
		return time.Time{}, errors.NewValidationFieldError(field, field+" must be formatted as YYYY-MM-DD", errors.ErrCodeInvalidDate)
	}
	return capacity.Date(t), nil
}

func validateAllocation(a *Allocation) *errors.AppError {
	v := validation.NewValidator()
	v.Field("employee_id", a.EmployeeID).Required()
	v.Field("project_id", a.ProjectID).Required()
	v.Field("start_date", a.StartDate).Required().NotAfter("end_date", a.EndDate)
	v.Field("allocated_hours", a.AllocatedHours).RangeFloat(0, validation.MaxWeeklyHours, errors.ErrCodeInvalidHours)
	v.Field("role", a.Role).MaxLength(100)
	v.Field("notes", a.Notes).MaxLength(1000)
	return v.Validate()
}
