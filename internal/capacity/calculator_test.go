package capacity_test

import (
	"github.com/frahmantamala/resource-management/internal/capacity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func allocation(id, employeeID, start, end string, hours float64) capacity.Allocation {
	return capacity.Allocation{
		ID:             id,
		EmployeeID:     employeeID,
		ProjectID:      "project-" + id,
		StartDate:      day(start),
		EndDate:        day(end),
		AllocatedHours: hours,
		IsActive:       true,
	}
}

var _ = Describe("Calculator", func() {
	var alice capacity.EmployeeCapacity

	BeforeEach(func() {
		alice = capacity.EmployeeCapacity{EmployeeID: "emp-1", EmployeeName: "Alice", WeeklyCapacity: 40}
	})

	Describe("CalculateWeeklyOverAllocation", func() {
		It("should sum overlapping allocations at their full weekly rate", func() {
			allocations := []capacity.Allocation{
				allocation("a1", "emp-1", "2024-01-01", "2024-01-31", 30),
				allocation("a2", "emp-1", "2024-01-07", "2024-01-07", 10), // only the Sunday
				allocation("a3", "emp-1", "2024-01-08", "2024-01-31", 25), // next week
				allocation("a4", "emp-2", "2024-01-01", "2024-01-31", 40), // other employee
			}

			weekly := capacity.CalculateWeeklyOverAllocation("emp-1", day("2024-01-03"), 40, allocations)
			Expect(weekly.WeekStart).To(Equal(day("2024-01-01")))
			Expect(weekly.TotalHours).To(Equal(40.0))
			Expect(weekly.UtilizationRate).To(Equal(100.0))
			Expect(weekly.IsOverAllocated()).To(BeFalse())
			Expect(weekly.OverAllocationHours).To(Equal(0.0))
			Expect(weekly.Allocations).To(HaveLen(2))
		})

		It("should keep total hours equal to the sum of contributing allocations", func() {
			allocations := []capacity.Allocation{
				allocation("a1", "emp-1", "2024-01-01", "2024-01-31", 30),
				allocation("a2", "emp-1", "2024-01-02", "2024-01-03", 22.5),
			}

			weekly := capacity.CalculateWeeklyOverAllocation("emp-1", day("2024-01-01"), 40, allocations)
			sum := 0.0
			for _, a := range weekly.Allocations {
				sum += a.AllocatedHours
			}
			Expect(weekly.TotalHours).To(Equal(sum))
			Expect(weekly.OverAllocationHours).To(BeNumerically("~", 12.5, 1e-9))
		})

		It("should skip inactive allocations by default", func() {
			inactive := allocation("a1", "emp-1", "2024-01-01", "2024-01-31", 30)
			inactive.IsActive = false

			weekly := capacity.CalculateWeeklyOverAllocation("emp-1", day("2024-01-01"), 40, []capacity.Allocation{inactive})
			Expect(weekly.TotalHours).To(BeZero())
			Expect(weekly.Allocations).To(BeEmpty())
		})

		It("should count inactive allocations when configured to", func() {
			inactive := allocation("a1", "emp-1", "2024-01-01", "2024-01-31", 30)
			inactive.IsActive = false

			calc := capacity.NewCalculator(capacity.WithInactiveAllocations(true))
			weekly := calc.WeeklyOverAllocation("emp-1", day("2024-01-01"), 40, []capacity.Allocation{inactive})
			Expect(weekly.TotalHours).To(Equal(30.0))
		})

		It("should ignore malformed allocations", func() {
			allocations := []capacity.Allocation{
				allocation("bad-range", "emp-1", "2024-01-07", "2024-01-01", 30),
				allocation("bad-hours", "emp-1", "2024-01-01", "2024-01-07", -5),
			}

			weekly := capacity.CalculateWeeklyOverAllocation("emp-1", day("2024-01-01"), 40, allocations)
			Expect(weekly.TotalHours).To(BeZero())
			Expect(weekly.UtilizationRate).To(BeZero())
		})
	})

	Describe("CalculateEmployeeOverAllocation", func() {
		It("should report utilization below capacity", func() {
			allocations := []capacity.Allocation{allocation("a1", "emp-1", "2024-01-01", "2024-01-07", 30)}
			rng := capacity.NewDateRange(day("2023-12-25"), day("2024-01-14"))

			summary := capacity.CalculateEmployeeOverAllocation(alice, allocations, &rng)
			Expect(summary.MaxUtilizationRate).To(Equal(75.0))
			Expect(summary.HasOverAllocation).To(BeFalse())
			Expect(summary.Severity).To(Equal(capacity.SeverityNone))
			Expect(summary.Warnings).To(BeEmpty())
			Expect(*summary.PeakWeekStart).To(Equal(day("2024-01-01")))
		})

		It("should flag two allocations in the same week", func() {
			allocations := []capacity.Allocation{
				allocation("a1", "emp-1", "2024-01-01", "2024-01-07", 30),
				allocation("a2", "emp-1", "2024-01-03", "2024-01-05", 20),
			}

			summary := capacity.CalculateEmployeeOverAllocation(alice, allocations, nil)
			Expect(summary.MaxUtilizationRate).To(Equal(125.0))
			Expect(summary.HasOverAllocation).To(BeTrue())
			Expect(summary.TotalOverAllocationHours).To(Equal(10.0))
			Expect(summary.Severity).To(Equal(capacity.SeverityHigh))
			Expect(summary.OverAllocatedWeeks).To(Equal(1))
			Expect(summary.Warnings).To(ConsistOf(ContainSubstring("Week of 2024-01-01")))
			Expect(summary.Warnings[0]).To(ContainSubstring("125.0%"))
		})

		It("should not flag allocations in separate weeks", func() {
			allocations := []capacity.Allocation{
				allocation("a1", "emp-1", "2024-01-01", "2024-01-07", 35),
				allocation("a2", "emp-1", "2024-01-08", "2024-01-14", 35),
			}

			summary := capacity.CalculateEmployeeOverAllocation(alice, allocations, nil)
			Expect(summary.HasOverAllocation).To(BeFalse())
			Expect(summary.MaxUtilizationRate).To(Equal(87.5))
		})

		It("should report nothing for an employee without allocations", func() {
			summary := capacity.CalculateEmployeeOverAllocation(alice, nil, nil)
			Expect(summary.HasOverAllocation).To(BeFalse())
			Expect(summary.MaxUtilizationRate).To(BeZero())
			Expect(summary.Severity).To(Equal(capacity.SeverityNone))
			Expect(summary.PeakWeekStart).To(BeNil())
			Expect(summary.Warnings).NotTo(BeNil())
		})

		It("should ignore a malformed allocation without failing", func() {
			allocations := []capacity.Allocation{allocation("a1", "emp-1", "2024-01-14", "2024-01-01", 50)}

			summary := capacity.CalculateEmployeeOverAllocation(alice, allocations, nil)
			Expect(summary.HasOverAllocation).To(BeFalse())
			Expect(summary.MaxUtilizationRate).To(BeZero())
		})

		It("should only evaluate weeks inside the requested range", func() {
			allocations := []capacity.Allocation{
				allocation("a1", "emp-1", "2024-01-01", "2024-01-07", 60),
				allocation("a2", "emp-1", "2024-02-05", "2024-02-11", 20),
			}
			rng := capacity.NewDateRange(day("2024-02-01"), day("2024-02-29"))

			summary := capacity.CalculateEmployeeOverAllocation(alice, allocations, &rng)
			Expect(summary.HasOverAllocation).To(BeFalse())
			Expect(summary.MaxUtilizationRate).To(Equal(50.0))
		})

		It("should add one warning per over-allocated week", func() {
			allocations := []capacity.Allocation{
				allocation("a1", "emp-1", "2024-01-01", "2024-01-21", 30),
				allocation("a2", "emp-1", "2024-01-01", "2024-01-14", 15),
			}

			summary := capacity.CalculateEmployeeOverAllocation(alice, allocations, nil)
			Expect(summary.OverAllocatedWeeks).To(Equal(2))
			Expect(summary.Warnings).To(HaveLen(2))
			Expect(summary.Severity).To(Equal(capacity.SeverityHigh))
		})

		It("should never lower the peak when another allocation is added", func() {
			base := []capacity.Allocation{
				allocation("a1", "emp-1", "2024-01-01", "2024-01-21", 20),
				allocation("a2", "emp-1", "2024-01-08", "2024-01-14", 15),
			}
			before := capacity.CalculateEmployeeOverAllocation(alice, base, nil)

			extended := append(append([]capacity.Allocation{}, base...), allocation("a3", "emp-1", "2024-01-15", "2024-02-04", 5))
			after := capacity.CalculateEmployeeOverAllocation(alice, extended, nil)

			Expect(after.MaxUtilizationRate).To(BeNumerically(">=", before.MaxUtilizationRate))
		})

		Context("severity thresholds", func() {
			summarize := func(hours float64) capacity.OverAllocationSummary {
				allocations := []capacity.Allocation{allocation("a1", "emp-1", "2024-01-01", "2024-01-07", hours)}
				return capacity.CalculateEmployeeOverAllocation(alice, allocations, nil)
			}

			It("should treat exactly 100% as not over-allocated", func() {
				summary := summarize(40)
				Expect(summary.MaxUtilizationRate).To(Equal(100.0))
				Expect(summary.HasOverAllocation).To(BeFalse())
				Expect(summary.Severity).To(Equal(capacity.SeverityNone))
				Expect(summary.TotalOverAllocationHours).To(BeZero())
			})

			It("should classify 100.01% as medium", func() {
				summary := summarize(40.004)
				Expect(summary.MaxUtilizationRate).To(BeNumerically("~", 100.01, 1e-9))
				Expect(summary.HasOverAllocation).To(BeTrue())
				Expect(summary.Severity).To(Equal(capacity.SeverityMedium))
			})

			It("should keep 110% medium and classify above it as high", func() {
				Expect(summarize(44).Severity).To(Equal(capacity.SeverityMedium))
				Expect(summarize(45).Severity).To(Equal(capacity.SeverityHigh))
			})

			It("should keep 125% high and classify above it as critical", func() {
				Expect(summarize(50).Severity).To(Equal(capacity.SeverityHigh))
				Expect(summarize(51).Severity).To(Equal(capacity.SeverityCritical))
			})

			It("should honour a custom policy", func() {
				calc := capacity.NewCalculator(capacity.WithSeverityPolicy(capacity.SeverityPolicy{HighAbove: 105, CriticalAbove: 115}))
				allocations := []capacity.Allocation{allocation("a1", "emp-1", "2024-01-01", "2024-01-07", 44)}
				Expect(calc.EmployeeOverAllocation(alice, allocations, nil).Severity).To(Equal(capacity.SeverityHigh))
			})

			It("should start medium just above full utilization under any policy", func() {
				policy := capacity.SeverityPolicy{HighAbove: 105, CriticalAbove: 115}
				Expect(policy.Classify(100)).To(Equal(capacity.SeverityNone))
				Expect(policy.Classify(100.5)).To(Equal(capacity.SeverityMedium))
				Expect(policy.Classify(105.5)).To(Equal(capacity.SeverityHigh))
			})

			It("should raise thresholds below full utilization", func() {
				calc := capacity.NewCalculator(capacity.WithSeverityPolicy(capacity.SeverityPolicy{HighAbove: 50, CriticalAbove: 20}))
				Expect(calc.Policy().HighAbove).To(Equal(100.0))
				Expect(calc.Policy().CriticalAbove).To(Equal(100.0))
				Expect(calc.Policy().Classify(100)).To(Equal(capacity.SeverityNone))
			})
		})

		Context("when weekly capacity is zero", func() {
			It("should report any positive allocation as over-allocated", func() {
				idle := capacity.EmployeeCapacity{EmployeeID: "emp-1", EmployeeName: "Idle", WeeklyCapacity: 0}
				allocations := []capacity.Allocation{allocation("a1", "emp-1", "2024-01-01", "2024-01-07", 1)}

				summary := capacity.CalculateEmployeeOverAllocation(idle, allocations, nil)
				Expect(summary.HasOverAllocation).To(BeTrue())
				Expect(summary.MaxUtilizationRate).To(BeNumerically(">", 100))
				Expect(summary.TotalOverAllocationHours).To(Equal(1.0))
				Expect(summary.Severity).To(Equal(capacity.SeverityCritical))
			})

			It("should not report zero hours as over-allocated", func() {
				idle := capacity.EmployeeCapacity{EmployeeID: "emp-1", WeeklyCapacity: 0}
				allocations := []capacity.Allocation{allocation("a1", "emp-1", "2024-01-01", "2024-01-07", 0)}

				summary := capacity.CalculateEmployeeOverAllocation(idle, allocations, nil)
				Expect(summary.HasOverAllocation).To(BeFalse())
				Expect(summary.MaxUtilizationRate).To(BeZero())
			})
		})
	})

	Describe("CalculateMultipleEmployeeOverAllocation", func() {
		It("should return one summary per employee in input order", func() {
			employees := []capacity.EmployeeCapacity{
				{EmployeeID: "emp-3", EmployeeName: "Carol", WeeklyCapacity: 40},
				{EmployeeID: "emp-1", EmployeeName: "Alice", WeeklyCapacity: 40},
				{EmployeeID: "emp-2", EmployeeName: "Bob", WeeklyCapacity: -8},
			}
			allocations := []capacity.Allocation{
				allocation("a1", "emp-1", "2024-01-01", "2024-01-07", 30),
				allocation("a2", "emp-1", "2024-01-01", "2024-01-07", 20),
				allocation("a3", "emp-2", "2024-01-01", "2024-01-07", 4),
				allocation("a4", "emp-9", "2024-01-01", "2024-01-07", 99),
			}

			summaries := capacity.CalculateMultipleEmployeeOverAllocation(employees, allocations, nil)
			Expect(summaries).To(HaveLen(len(employees)))
			for i, s := range summaries {
				Expect(s.EmployeeID).To(Equal(employees[i].EmployeeID))
			}

			Expect(summaries[0].HasOverAllocation).To(BeFalse())
			Expect(summaries[1].MaxUtilizationRate).To(Equal(125.0))
			Expect(summaries[2].HasOverAllocation).To(BeTrue())
			Expect(summaries[2].TotalOverAllocationHours).To(Equal(4.0))
		})

		It("should match the single-employee calculation", func() {
			employees := []capacity.EmployeeCapacity{alice}
			allocations := []capacity.Allocation{
				allocation("a1", "emp-1", "2024-01-01", "2024-01-21", 30),
				allocation("a2", "emp-1", "2024-01-08", "2024-01-14", 15),
			}
			rng := capacity.NewDateRange(day("2024-01-01"), day("2024-01-31"))

			batch := capacity.CalculateMultipleEmployeeOverAllocation(employees, allocations, &rng)
			single := capacity.CalculateEmployeeOverAllocation(alice, allocations, &rng)
			Expect(batch[0]).To(Equal(single))
		})

		It("should return an empty list for no employees", func() {
			Expect(capacity.CalculateMultipleEmployeeOverAllocation(nil, nil, nil)).To(BeEmpty())
		})
	})
})
