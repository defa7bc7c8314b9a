package utilization

import (
	"context"
	"fmt"

	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/core/events"
)

// RegisterEventHandlers subscribes the service to allocation changes.
func (s *Service) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeAllocationChanged, s.HandleAllocationChanged)
}

// HandleAllocationChanged re-evaluates the affected employee over the changed
// allocation's window and publishes employee.overallocated when the employee
// ends up over-allocated. Deleted allocations only ever lower utilization.
func (s *Service) HandleAllocationChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*events.AllocationChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}
	if !s.evaluateOnChange || s.publisher == nil || changed.Action == events.AllocationActionDeleted {
		return nil
	}

	window := capacity.NewDateRange(changed.StartDate, changed.EndDate)
	if !window.Valid() {
		return nil
	}

	summary, err := s.employeeSummary(ctx, changed.EmployeeID, &window)
	if err != nil {
		s.logger.Warn("failed to re-evaluate employee",
			"error", err,
			"employee_id", changed.EmployeeID,
			"allocation_id", changed.AllocationID)
		return err
	}
	if !summary.HasOverAllocation {
		return nil
	}

	s.logger.Warn("employee over-allocated",
		"employee_id", summary.EmployeeID,
		"max_utilization_rate", summary.MaxUtilizationRate,
		"severity", summary.Severity,
		"allocation_id", changed.AllocationID)

	alert := events.NewEmployeeOverAllocatedEvent(
		summary.EmployeeID,
		summary.EmployeeName,
		summary.MaxUtilizationRate,
		summary.TotalOverAllocationHours,
		string(summary.Severity),
		summary.Warnings,
	)
	return s.publisher.Publish(ctx, alert)
}
