// Package capacity computes employee utilization and over-allocation from
// snapshots of allocations. Every function is pure: inputs are never mutated
// and no state is kept between calls, so a Calculator is safe for concurrent use.
package capacity

import (
	"math"
	"time"
)

const (
	DefaultWeeklyCapacity = 40.0

	// MinimumCapacity is the divisor used for employees whose weekly capacity
	// is zero or negative, so any positive allocation reports as over-allocated.
	MinimumCapacity = 0.01

	// FullUtilization is the utilization rate above which an employee is over-allocated.
	FullUtilization = 100.0

	ConflictTypeOverAllocation = "overallocation"
)

type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// EmployeeCapacity is the nominal weekly availability of one employee.
type EmployeeCapacity struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	WeeklyCapacity float64 `json:"weekly_capacity"`
}

// Allocation commits AllocatedHours per week of an employee to a project
// for every week touched by [StartDate, EndDate].
type Allocation struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	ProjectID      string    `json:"project_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	AllocatedHours float64   `json:"allocated_hours"`
	IsActive       bool      `json:"is_active"`
}

// Period returns the allocation's date span normalized to calendar dates.
func (a Allocation) Period() DateRange {
	return NewDateRange(a.StartDate, a.EndDate)
}

func (a Allocation) wellFormed() bool {
	return a.AllocatedHours >= 0 && !math.IsInf(a.AllocatedHours, 0) && a.Period().Valid()
}

type WeeklyAllocation struct {
	EmployeeID          string       `json:"employee_id"`
	WeekStart           time.Time    `json:"week_start"`
	TotalHours          float64      `json:"total_hours"`
	Capacity            float64      `json:"capacity"`
	UtilizationRate     float64      `json:"utilization_rate"`
	OverAllocationHours float64      `json:"over_allocation_hours"`
	Allocations         []Allocation `json:"allocations"`
}

func (w WeeklyAllocation) IsOverAllocated() bool {
	return w.UtilizationRate > FullUtilization
}

type OverAllocationSummary struct {
	EmployeeID               string     `json:"employee_id"`
	EmployeeName             string     `json:"employee_name"`
	HasOverAllocation        bool       `json:"has_over_allocation"`
	TotalOverAllocationHours float64    `json:"total_over_allocation_hours"`
	MaxUtilizationRate       float64    `json:"max_utilization_rate"`
	Severity                 Severity   `json:"severity"`
	Warnings                 []string   `json:"warnings"`
	PeakWeekStart            *time.Time `json:"peak_week_start,omitempty"`
	OverAllocatedWeeks       int        `json:"over_allocated_weeks"`
}

type AllocationConflict struct {
	EmployeeID      string    `json:"employee_id"`
	AllocationIDs   []string  `json:"allocation_ids"`
	Overlap         DateRange `json:"overlap"`
	CombinedHours   float64   `json:"combined_hours"`
	WeeklyCapacity  float64   `json:"weekly_capacity"`
	UtilizationRate float64   `json:"utilization_rate"`
	Type            string    `json:"type"`
	Severity        Severity  `json:"severity"`
	Description     string    `json:"description"`
}

// SeverityPolicy classifies utilization above FullUtilization. Thresholds are
// exclusive: a rate equal to HighAbove is still medium.
type SeverityPolicy struct {
	HighAbove     float64
	CriticalAbove float64
}

func DefaultSeverityPolicy() SeverityPolicy {
	return SeverityPolicy{
		HighAbove:     110,
		CriticalAbove: 125,
	}
}

func (p SeverityPolicy) normalized() SeverityPolicy {
	if p.HighAbove < FullUtilization {
		p.HighAbove = FullUtilization
	}
	if p.CriticalAbove < p.HighAbove {
		p.CriticalAbove = p.HighAbove
	}
	return p
}

// Classify maps a utilization percentage to a severity.
func (p SeverityPolicy) Classify(rate float64) Severity {
	switch {
	case rate <= FullUtilization:
		return SeverityNone
	case rate > p.CriticalAbove:
		return SeverityCritical
	case rate > p.HighAbove:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

type Calculator struct {
	policy          SeverityPolicy
	includeInactive bool
}

type Option func(*Calculator)

// WithSeverityPolicy overrides the default 110/125 thresholds. Thresholds below
// FullUtilization are raised to it, and CriticalAbove is never below HighAbove.
func WithSeverityPolicy(p SeverityPolicy) Option {
	return func(c *Calculator) {
		c.policy = p.normalized()
	}
}

// WithInactiveAllocations makes inactive allocations count like active ones.
func WithInactiveAllocations(include bool) Option {
	return func(c *Calculator) {
		c.includeInactive = include
	}
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{policy: DefaultSeverityPolicy()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) Policy() SeverityPolicy {
	return c.policy
}

// IncludesInactive reports whether inactive allocations are counted.
func (c *Calculator) IncludesInactive() bool {
	return c.includeInactive
}

func (c *Calculator) counts(a Allocation) bool {
	return (a.IsActive || c.includeInactive) && a.wellFormed()
}

// partition groups the allocations that take part in calculations by employee.
func (c *Calculator) partition(allocations []Allocation) map[string][]Allocation {
	byEmployee := make(map[string][]Allocation)
	for _, a := range allocations {
		if !c.counts(a) {
			continue
		}
		byEmployee[a.EmployeeID] = append(byEmployee[a.EmployeeID], a)
	}
	return byEmployee
}

func utilizationRate(hours, capacity float64) float64 {
	if hours <= 0 {
		return 0
	}
	if capacity < MinimumCapacity {
		capacity = MinimumCapacity
	}
	return hours * 100 / capacity
}

func excessHours(hours, capacity float64) float64 {
	return math.Max(0, hours-math.Max(0, capacity))
}

var defaultCalculator = NewCalculator()

// CalculateWeeklyOverAllocation aggregates one employee's active allocations for
// the week containing weekStart using the default policy.
func CalculateWeeklyOverAllocation(employeeID string, weekStart time.Time, weeklyCapacity float64, allocations []Allocation) WeeklyAllocation {
	return defaultCalculator.WeeklyOverAllocation(employeeID, weekStart, weeklyCapacity, allocations)
}

// CalculateEmployeeOverAllocation summarizes one employee using the default policy.
func CalculateEmployeeOverAllocation(employee EmployeeCapacity, allocations []Allocation, dateRange *DateRange) OverAllocationSummary {
	return defaultCalculator.EmployeeOverAllocation(employee, allocations, dateRange)
}

// CalculateMultipleEmployeeOverAllocation summarizes every employee, in input order.
func CalculateMultipleEmployeeOverAllocation(employees []EmployeeCapacity, allocations []Allocation, dateRange *DateRange) []OverAllocationSummary {
	return defaultCalculator.MultipleEmployeeOverAllocation(employees, allocations, dateRange)
}

func DetectConflicts(employees []EmployeeCapacity, allocations []Allocation) []AllocationConflict {
	return defaultCalculator.DetectConflicts(employees, allocations)
}
