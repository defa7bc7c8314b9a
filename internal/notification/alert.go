package notification

import (
	"time"

	"github.com/frahmantamala/resource-management/internal/core/events"
)

// Alert is the JSON body posted to the webhook.
type Alert struct {
	ID                       string    `json:"id"`
	Type                     string    `json:"type"`
	EmployeeID               string    `json:"employee_id"`
	EmployeeName             string    `json:"employee_name"`
	Severity                 string    `json:"severity"`
	MaxUtilizationRate       float64   `json:"max_utilization_rate"`
	TotalOverAllocationHours float64   `json:"total_over_allocation_hours"`
	Warnings                 []string  `json:"warnings"`
	OccurredAt               time.Time `json:"occurred_at"`
}

func AlertFromEvent(event *events.EmployeeOverAllocatedEvent) Alert {
	warnings := event.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return Alert{
		ID:                       event.EventID(),
		Type:                     event.EventType(),
		EmployeeID:               event.EmployeeID,
		EmployeeName:             event.EmployeeName,
		Severity:                 event.Severity,
		MaxUtilizationRate:       event.MaxUtilizationRate,
		TotalOverAllocationHours: event.TotalOverAllocationHours,
		Warnings:                 warnings,
		OccurredAt:               event.OccurredAt(),
	}
}
