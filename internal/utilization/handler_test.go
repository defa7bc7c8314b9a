package utilization_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/transport"
	"github.com/frahmantamala/resource-management/internal/utilization"
	"github.com/frahmantamala/resource-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Utilization Handler", func() {
	var router chi.Router

	BeforeEach(func() {
		lg := logger.Discard()
		service := utilization.NewService(newMemoryReader(), capacity.NewCalculator(), lg).
			WithLimits(90, 3).
			WithClock(func() time.Time { return day("2024-01-03") })
		handler := utilization.NewHandler(transport.NewBaseHandler(lg), service)

		router = chi.NewRouter()
		router.Get("/utilization", handler.GetUtilization)
		router.Get("/utilization/employees/{id}", handler.GetEmployeeUtilization)
		router.Get("/utilization/employees/{id}/weeks/{week_start}", handler.GetEmployeeWeek)
		router.Get("/conflicts", handler.GetConflicts)
	})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should list summaries for the default window", func() {
		w := get("/utilization")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp utilization.UtilizationResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Window.Start).To(Equal(day("2024-01-01")))
		Expect(resp.Summaries).To(HaveLen(2))
		Expect(resp.OverAllocatedCount).To(Equal(1))
	})

	It("should honor an explicit window and department", func() {
		w := get("/utilization?start_date=2024-01-15&end_date=2024-01-21&department_id=d1")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp utilization.UtilizationResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.DepartmentID).To(Equal("d1"))
		Expect(resp.Summaries).To(HaveLen(1))
		Expect(resp.Summaries[0].HasOverAllocation).To(BeFalse())
		Expect(resp.OverAllocatedCount).To(BeZero())
	})

	It("should reject a half-open window", func() {
		w := get("/utilization?start_date=2024-01-01")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_DATE_RANGE"))
	})

	It("should reject malformed dates", func() {
		w := get("/utilization?start_date=01/01/2024&end_date=2024-01-31")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_DATE"))
	})

	It("should reject windows longer than the limit", func() {
		w := get("/utilization?start_date=2024-01-01&end_date=2024-12-31")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("RANGE_TOO_LONG"))
	})

	It("should summarize one employee", func() {
		w := get("/utilization/employees/e1?start_date=2024-01-01&end_date=2024-01-21")
		Expect(w.Code).To(Equal(http.StatusOK))

		var summary capacity.OverAllocationSummary
		Expect(json.NewDecoder(w.Body).Decode(&summary)).To(Succeed())
		Expect(summary.Severity).To(Equal(capacity.SeverityHigh))
		Expect(summary.PeakWeekStart).NotTo(BeNil())
	})

	It("should answer 404 for unknown employees", func() {
		w := get("/utilization/employees/nobody")
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("EMPLOYEE_NOT_FOUND"))
	})

	It("should return one week", func() {
		w := get("/utilization/employees/e1/weeks/2024-01-14")
		Expect(w.Code).To(Equal(http.StatusOK))

		var weekly capacity.WeeklyAllocation
		Expect(json.NewDecoder(w.Body).Decode(&weekly)).To(Succeed())
		Expect(weekly.WeekStart).To(Equal(day("2024-01-08")))
		Expect(weekly.TotalHours).To(BeNumerically("~", 50, 1e-9))
	})

	It("should reject a malformed week", func() {
		w := get("/utilization/employees/e1/weeks/next-week")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should list conflicts", func() {
		w := get("/conflicts")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp utilization.ConflictsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Count).To(Equal(1))
		Expect(resp.Window).To(BeNil())
		Expect(resp.Conflicts[0].AllocationIDs).To(Equal([]string{"a1", "a2"}))
	})
})
