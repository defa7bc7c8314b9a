package postgres_test

import (
	"context"

	"github.com/frahmantamala/resource-management/internal/capacity"
	allocationDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/allocation"
	employeeDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/resource-management/internal/utilization"
	utilizationPostgres "github.com/frahmantamala/resource-management/internal/utilization/postgres"
	"github.com/frahmantamala/resource-management/pkg/logger"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var _ = Describe("Utilization over windows that split a week", func() {
	var (
		ctx         context.Context
		service     *utilization.Service
		employee    capacity.EmployeeCapacity
		allocations []capacity.Allocation
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&employeeDatamodel.Employee{}, &allocationDatamodel.Allocation{})).To(Succeed())

		Expect(db.Create(&employeeDatamodel.Employee{ID: "e1", Name: "Ana", Email: "ana@example.com", WeeklyCapacity: 40, IsActive: true}).Error).To(Succeed())
		// both allocations fall in the week of 2024-01-01; only "wed" is inside the window
		rows := []*allocationDatamodel.Allocation{
			{ID: "mon", EmployeeID: "e1", ProjectID: "p1", StartDate: day("2024-01-01"), EndDate: day("2024-01-02"), AllocatedHours: 30, IsActive: true},
			{ID: "wed", EmployeeID: "e1", ProjectID: "p2", StartDate: day("2024-01-03"), EndDate: day("2024-01-05"), AllocatedHours: 30, IsActive: true},
		}
		Expect(db.Create(rows).Error).To(Succeed())

		employee = capacity.EmployeeCapacity{EmployeeID: "e1", EmployeeName: "Ana", WeeklyCapacity: 40}
		allocations = []capacity.Allocation{
			{ID: "mon", EmployeeID: "e1", ProjectID: "p1", StartDate: day("2024-01-01"), EndDate: day("2024-01-02"), AllocatedHours: 30, IsActive: true},
			{ID: "wed", EmployeeID: "e1", ProjectID: "p2", StartDate: day("2024-01-03"), EndDate: day("2024-01-05"), AllocatedHours: 30, IsActive: true},
		}

		reader := utilizationPostgres.NewSnapshotReader(sqlx.NewDb(sqlDB, "sqlite3"))
		service = utilization.NewService(reader, capacity.NewCalculator(), logger.Discard())
	})

	window := func() *capacity.DateRange {
		w := capacity.NewDateRange(day("2024-01-03"), day("2024-01-05"))
		return &w
	}

	It("should count every allocation in the weeks the window touches", func() {
		expected := capacity.CalculateEmployeeOverAllocation(employee, allocations, window())
		Expect(expected.MaxUtilizationRate).To(BeNumerically("~", 150, 0.001))

		summary, err := service.AllocationChecker().EmployeeSummary(ctx, "e1", window())
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.MaxUtilizationRate).To(BeNumerically("~", expected.MaxUtilizationRate, 0.001))
		Expect(summary.HasOverAllocation).To(BeTrue())
		Expect(summary.Severity).To(Equal(expected.Severity))
	})

	It("should agree with the calculator for batch summaries", func() {
		expected := capacity.CalculateMultipleEmployeeOverAllocation([]capacity.EmployeeCapacity{employee}, allocations, window())

		summaries, err := service.Summaries(ctx, window(), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(summaries).To(HaveLen(1))
		Expect(summaries[0].MaxUtilizationRate).To(BeNumerically("~", expected[0].MaxUtilizationRate, 0.001))
		Expect(summaries[0].TotalOverAllocationHours).To(BeNumerically("~", 20, 0.001))
	})

	It("should not mutate the caller's window", func() {
		w := window()
		_, err := service.EmployeeSummary(ctx, "e1", w)
		Expect(err).NotTo(HaveOccurred())
		Expect(*w).To(Equal(capacity.NewDateRange(day("2024-01-03"), day("2024-01-05"))))
	})
})
