package capacity

import (
	"fmt"
	"sort"
	"time"
)

// WeeklyOverAllocation sums every counted allocation of employeeID that
// overlaps the week containing weekStart. Each allocation contributes its
// full weekly rate however few days of the week it covers.
func (c *Calculator) WeeklyOverAllocation(employeeID string, weekStart time.Time, weeklyCapacity float64, allocations []Allocation) WeeklyAllocation {
	week := WeekRange(weekStart)
	result := WeeklyAllocation{
		EmployeeID:  employeeID,
		WeekStart:   week.Start,
		Capacity:    weeklyCapacity,
		Allocations: []Allocation{},
	}

	for _, a := range allocations {
		if a.EmployeeID != employeeID || !c.counts(a) {
			continue
		}
		if !Overlaps(a.Period(), week) {
			continue
		}
		result.TotalHours += a.AllocatedHours
		result.Allocations = append(result.Allocations, a)
	}

	result.UtilizationRate = utilizationRate(result.TotalHours, weeklyCapacity)
	if result.IsOverAllocated() {
		result.OverAllocationHours = excessHours(result.TotalHours, weeklyCapacity)
	}
	return result
}

// EmployeeOverAllocation evaluates every week touched by dateRange, or when it
// is nil every week spanned by the employee's counted allocations.
func (c *Calculator) EmployeeOverAllocation(employee EmployeeCapacity, allocations []Allocation, dateRange *DateRange) OverAllocationSummary {
	var own []Allocation
	for _, a := range allocations {
		if a.EmployeeID == employee.EmployeeID && c.counts(a) {
			own = append(own, a)
		}
	}
	return c.summarize(employee, own, dateRange)
}

// MultipleEmployeeOverAllocation returns one summary per employee in the same
// order as employees. Allocations for employees not in the list are ignored.
func (c *Calculator) MultipleEmployeeOverAllocation(employees []EmployeeCapacity, allocations []Allocation, dateRange *DateRange) []OverAllocationSummary {
	byEmployee := c.partition(allocations)

	summaries := make([]OverAllocationSummary, len(employees))
	for i, employee := range employees {
		summaries[i] = c.summarize(employee, byEmployee[employee.EmployeeID], dateRange)
	}
	return summaries
}

// summarize expects own to hold only counted allocations of employee.
func (c *Calculator) summarize(employee EmployeeCapacity, own []Allocation, dateRange *DateRange) OverAllocationSummary {
	summary := OverAllocationSummary{
		EmployeeID:   employee.EmployeeID,
		EmployeeName: employee.EmployeeName,
		Severity:     SeverityNone,
		Warnings:     []string{},
	}

	var peak *WeeklyAllocation
	for _, weekStart := range candidateWeeks(own, dateRange) {
		weekly := c.WeeklyOverAllocation(employee.EmployeeID, weekStart, employee.WeeklyCapacity, own)
		if weekly.IsOverAllocated() {
			summary.OverAllocatedWeeks++
			summary.Warnings = append(summary.Warnings, weekWarning(weekly))
		}
		if peak == nil || weekly.UtilizationRate > peak.UtilizationRate {
			w := weekly
			peak = &w
		}
	}

	if peak == nil || peak.UtilizationRate == 0 {
		return summary
	}

	summary.MaxUtilizationRate = peak.UtilizationRate
	peakStart := peak.WeekStart
	summary.PeakWeekStart = &peakStart

	if peak.IsOverAllocated() {
		summary.HasOverAllocation = true
		summary.TotalOverAllocationHours = peak.OverAllocationHours
		summary.Severity = c.policy.Classify(peak.UtilizationRate)
	}
	return summary
}

func candidateWeeks(own []Allocation, dateRange *DateRange) []time.Time {
	if dateRange != nil {
		return WeeksIn(NewDateRange(dateRange.Start, dateRange.End))
	}
	if len(own) == 0 {
		return nil
	}

	span := own[0].Period()
	for _, a := range own[1:] {
		p := a.Period()
		if p.Start.Before(span.Start) {
			span.Start = p.Start
		}
		if p.End.After(span.End) {
			span.End = p.End
		}
	}
	return WeeksIn(span)
}

func weekWarning(w WeeklyAllocation) string {
	return fmt.Sprintf("Week of %s: %.1f hours allocated against %.1f hours capacity (%.1f%% utilization, %.1f hours over)",
		w.WeekStart.Format(DateLayout), w.TotalHours, w.Capacity, w.UtilizationRate, w.OverAllocationHours)
}

// DetectConflicts reports every pair of counted allocations of the same
// employee whose date ranges overlap and whose combined weekly hours exceed
// the employee's capacity. Results are ordered by employee id, then by the
// pair's allocation ids.
func (c *Calculator) DetectConflicts(employees []EmployeeCapacity, allocations []Allocation) []AllocationConflict {
	byEmployee := c.partition(allocations)
	seen := make(map[string]bool, len(employees))
	conflicts := []AllocationConflict{}

	for _, employee := range employees {
		if seen[employee.EmployeeID] {
			continue
		}
		seen[employee.EmployeeID] = true

		own := append([]Allocation(nil), byEmployee[employee.EmployeeID]...)
		sort.SliceStable(own, func(i, j int) bool { return own[i].ID < own[j].ID })

		for i := 0; i < len(own); i++ {
			for j := i + 1; j < len(own); j++ {
				if conflict, ok := c.pairConflict(employee, own[i], own[j]); ok {
					conflicts = append(conflicts, conflict)
				}
			}
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		if a.AllocationIDs[0] != b.AllocationIDs[0] {
			return a.AllocationIDs[0] < b.AllocationIDs[0]
		}
		return a.AllocationIDs[1] < b.AllocationIDs[1]
	})
	return conflicts
}

func (c *Calculator) pairConflict(employee EmployeeCapacity, a, b Allocation) (AllocationConflict, bool) {
	window, ok := Overlap(a.Period(), b.Period())
	if !ok {
		return AllocationConflict{}, false
	}

	combined := a.AllocatedHours + b.AllocatedHours
	rate := utilizationRate(combined, employee.WeeklyCapacity)
	if rate <= FullUtilization {
		return AllocationConflict{}, false
	}

	return AllocationConflict{
		EmployeeID:      employee.EmployeeID,
		AllocationIDs:   []string{a.ID, b.ID},
		Overlap:         window,
		CombinedHours:   combined,
		WeeklyCapacity:  employee.WeeklyCapacity,
		UtilizationRate: rate,
		Type:            ConflictTypeOverAllocation,
		Severity:        c.policy.Classify(rate),
		Description: fmt.Sprintf("Allocations %s and %s overlap %s with %.1f combined hours against %.1f hours capacity",
			a.ID, b.ID, window, combined, employee.WeeklyCapacity),
	}, true
}
