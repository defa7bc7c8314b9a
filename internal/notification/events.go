package notification

import (
	"context"
	"fmt"

	"github.com/frahmantamala/resource-management/internal/core/events"
)

// RegisterEventHandlers queues an alert for every employee.overallocated event.
func (d *Dispatcher) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeEmployeeOverAllocated, d.HandleOverAllocated)
}

func (d *Dispatcher) HandleOverAllocated(ctx context.Context, event events.Event) error {
	overAllocated, ok := event.(*events.EmployeeOverAllocatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}
	return d.Enqueue(AlertFromEvent(overAllocated))
}
