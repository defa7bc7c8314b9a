package utilization

import (
	"context"

	"github.com/frahmantamala/resource-management/internal/capacity"
)

// Snapshot is a consistent read of the inputs of one calculation.
type Snapshot struct {
	Employees   []capacity.EmployeeCapacity
	Allocations []capacity.Allocation
}

type SnapshotQuery struct {
	DepartmentID string
	EmployeeIDs  []string
	// Window restricts allocations to those overlapping it; nil loads all.
	Window *capacity.DateRange
	// IncludeInactiveEmployees keeps deactivated employees in the result.
	IncludeInactiveEmployees bool
	// ActiveAllocationsOnly skips inactive allocations at the source.
	ActiveAllocationsOnly bool
}

// SnapshotReader loads employees in name order together with their allocations.
type SnapshotReader interface {
	Load(ctx context.Context, query SnapshotQuery) (*Snapshot, error)
}
