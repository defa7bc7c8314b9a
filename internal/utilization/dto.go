package utilization

import (
	"github.com/frahmantamala/resource-management/internal"
	"github.com/frahmantamala/resource-management/internal/capacity"
)

type UtilizationResponse struct {
	Window             capacity.DateRange               `json:"window"`
	DepartmentID       string                           `json:"department_id,omitempty"`
	Summaries          []capacity.OverAllocationSummary `json:"summaries"`
	OverAllocatedCount int                              `json:"over_allocated_count"`
}

type ConflictsResponse struct {
	Window       *capacity.DateRange           `json:"window,omitempty"`
	DepartmentID string                        `json:"department_id,omitempty"`
	Conflicts    []capacity.AllocationConflict `json:"conflicts"`
	Count        int                           `json:"count"`
}

func NewUtilizationResponse(window capacity.DateRange, departmentID string, summaries []capacity.OverAllocationSummary) UtilizationResponse {
	resp := UtilizationResponse{
		Window:       window,
		DepartmentID: departmentID,
		Summaries:    summaries,
	}
	if resp.Summaries == nil {
		resp.Summaries = []capacity.OverAllocationSummary{}
	}
	for _, s := range summaries {
		if s.HasOverAllocation {
			resp.OverAllocatedCount++
		}
	}
	return resp
}

// ParseWindow reads an optional start/end pair. Both or neither must be set.
func ParseWindow(start, end string) (*capacity.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, internal.NewValidationError("start_date and end_date must be given together", internal.ErrCodeInvalidDateRange)
	}

	window, err := capacity.ParseDateRange(start, end)
	if err != nil {
		return nil, internal.NewValidationError("dates must be formatted as YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}
	if !window.Valid() {
		return nil, internal.ErrInvalidDateRange
	}
	return &window, nil
}
