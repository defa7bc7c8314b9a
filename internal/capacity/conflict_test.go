package capacity_test

import (
	"github.com/frahmantamala/resource-management/internal/capacity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DetectConflicts", func() {
	var employees []capacity.EmployeeCapacity

	BeforeEach(func() {
		employees = []capacity.EmployeeCapacity{
			{EmployeeID: "emp-2", EmployeeName: "Bob", WeeklyCapacity: 40},
			{EmployeeID: "emp-1", EmployeeName: "Alice", WeeklyCapacity: 40},
		}
	})

	It("should report overlapping allocations exceeding capacity", func() {
		allocations := []capacity.Allocation{
			allocation("a2", "emp-1", "2024-01-05", "2024-01-20", 20),
			allocation("a1", "emp-1", "2024-01-01", "2024-01-10", 30),
		}

		conflicts := capacity.DetectConflicts(employees, allocations)
		Expect(conflicts).To(HaveLen(1))

		conflict := conflicts[0]
		Expect(conflict.EmployeeID).To(Equal("emp-1"))
		Expect(conflict.AllocationIDs).To(Equal([]string{"a1", "a2"}))
		Expect(conflict.Overlap.Start).To(Equal(day("2024-01-05")))
		Expect(conflict.Overlap.End).To(Equal(day("2024-01-10")))
		Expect(conflict.CombinedHours).To(Equal(50.0))
		Expect(conflict.UtilizationRate).To(Equal(125.0))
		Expect(conflict.Type).To(Equal(capacity.ConflictTypeOverAllocation))
		Expect(conflict.Severity).To(Equal(capacity.SeverityHigh))
		Expect(conflict.Description).To(ContainSubstring("2024-01-05..2024-01-10"))
	})

	It("should not report allocations with disjoint date ranges", func() {
		allocations := []capacity.Allocation{
			allocation("a1", "emp-1", "2024-01-01", "2024-01-07", 35),
			allocation("a2", "emp-1", "2024-01-08", "2024-01-14", 35),
		}

		Expect(capacity.DetectConflicts(employees, allocations)).To(BeEmpty())
	})

	It("should not report overlaps that fit within capacity", func() {
		allocations := []capacity.Allocation{
			allocation("a1", "emp-1", "2024-01-01", "2024-01-10", 20),
			allocation("a2", "emp-1", "2024-01-05", "2024-01-20", 20),
		}

		Expect(capacity.DetectConflicts(employees, allocations)).To(BeEmpty())
	})

	It("should ignore inactive, malformed and orphan allocations", func() {
		inactive := allocation("a3", "emp-1", "2024-01-01", "2024-01-10", 40)
		inactive.IsActive = false
		allocations := []capacity.Allocation{
			allocation("a1", "emp-1", "2024-01-01", "2024-01-10", 30),
			inactive,
			allocation("a4", "emp-1", "2024-01-10", "2024-01-01", 40),
			allocation("o1", "emp-9", "2024-01-01", "2024-01-10", 30),
			allocation("o2", "emp-9", "2024-01-01", "2024-01-10", 30),
		}

		Expect(capacity.DetectConflicts(employees, allocations)).To(BeEmpty())
	})

	It("should order conflicts by employee then allocation ids", func() {
		allocations := []capacity.Allocation{
			allocation("c", "emp-2", "2024-01-01", "2024-01-31", 30),
			allocation("b", "emp-1", "2024-01-01", "2024-01-31", 30),
			allocation("a", "emp-2", "2024-01-01", "2024-01-31", 30),
			allocation("d", "emp-1", "2024-01-01", "2024-01-31", 30),
			allocation("e", "emp-2", "2024-01-15", "2024-01-31", 30),
		}

		conflicts := capacity.DetectConflicts(employees, allocations)
		pairs := make([][]string, len(conflicts))
		for i, c := range conflicts {
			pairs[i] = append([]string{c.EmployeeID}, c.AllocationIDs...)
		}
		Expect(pairs).To(Equal([][]string{
			{"emp-1", "b", "d"},
			{"emp-2", "a", "c"},
			{"emp-2", "a", "e"},
			{"emp-2", "c", "e"},
		}))
	})

	It("should return an identical result when run twice", func() {
		allocations := []capacity.Allocation{
			allocation("a1", "emp-1", "2024-01-01", "2024-01-31", 30),
			allocation("a2", "emp-1", "2024-01-10", "2024-01-20", 25),
			allocation("a3", "emp-1", "2024-01-15", "2024-02-10", 20),
			allocation("b1", "emp-2", "2024-01-01", "2024-01-31", 40),
			allocation("b2", "emp-2", "2024-01-31", "2024-02-28", 1),
		}

		first := capacity.DetectConflicts(employees, allocations)
		second := capacity.DetectConflicts(employees, allocations)
		Expect(first).NotTo(BeEmpty())
		Expect(second).To(Equal(first))
	})

	It("should not reorder the caller's allocations", func() {
		allocations := []capacity.Allocation{
			allocation("z", "emp-1", "2024-01-01", "2024-01-31", 30),
			allocation("a", "emp-1", "2024-01-01", "2024-01-31", 30),
		}

		capacity.DetectConflicts(employees, allocations)
		Expect(allocations[0].ID).To(Equal("z"))
	})

	It("should treat zero capacity as conflicting for any positive overlap", func() {
		idle := []capacity.EmployeeCapacity{{EmployeeID: "emp-1", WeeklyCapacity: 0}}
		allocations := []capacity.Allocation{
			allocation("a1", "emp-1", "2024-01-01", "2024-01-10", 1),
			allocation("a2", "emp-1", "2024-01-10", "2024-01-20", 1),
		}

		conflicts := capacity.DetectConflicts(idle, allocations)
		Expect(conflicts).To(HaveLen(1))
		Expect(conflicts[0].Severity).To(Equal(capacity.SeverityCritical))
	})
})
