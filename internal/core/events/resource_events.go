package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAllocationChanged     = "allocation.changed"
	EventTypeEmployeeOverAllocated = "employee.overallocated"
)

const (
	AllocationActionCreated = "created"
	AllocationActionUpdated = "updated"
	AllocationActionDeleted = "deleted"
)

type AllocationChangedEvent struct {
	BaseEvent
	AllocationID string    `json:"allocation_id"`
	EmployeeID   string    `json:"employee_id"`
	ProjectID    string    `json:"project_id"`
	Action       string    `json:"action"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

func NewAllocationChangedEvent(allocationID, employeeID, projectID, action string, start, end time.Time) *AllocationChangedEvent {
	return &AllocationChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAllocationChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"allocation_id": allocationID,
				"employee_id":   employeeID,
				"project_id":    projectID,
				"action":        action,
				"start_date":    start.Format("2006-01-02"),
				"end_date":      end.Format("2006-01-02"),
			},
		},
		AllocationID: allocationID,
		EmployeeID:   employeeID,
		ProjectID:    projectID,
		Action:       action,
		StartDate:    start,
		EndDate:      end,
	}
}

type EmployeeOverAllocatedEvent struct {
	BaseEvent
	EmployeeID               string   `json:"employee_id"`
	EmployeeName             string   `json:"employee_name"`
	MaxUtilizationRate       float64  `json:"max_utilization_rate"`
	TotalOverAllocationHours float64  `json:"total_over_allocation_hours"`
	Severity                 string   `json:"severity"`
	Warnings                 []string `json:"warnings"`
}

func NewEmployeeOverAllocatedEvent(employeeID, employeeName string, maxRate, overHours float64, severity string, warnings []string) *EmployeeOverAllocatedEvent {
	return &EmployeeOverAllocatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmployeeOverAllocated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id":                 employeeID,
				"employee_name":               employeeName,
				"max_utilization_rate":        maxRate,
				"total_over_allocation_hours": overHours,
				"severity":                    severity,
				"warnings":                    warnings,
			},
		},
		EmployeeID:               employeeID,
		EmployeeName:             employeeName,
		MaxUtilizationRate:       maxRate,
		TotalOverAllocationHours: overHours,
		Severity:                 severity,
		Warnings:                 warnings,
	}
}
