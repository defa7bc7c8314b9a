package allocation_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/resource-management/internal/allocation"
	"github.com/frahmantamala/resource-management/internal/transport"
	"github.com/frahmantamala/resource-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Allocation Handler", func() {
	var (
		router   chi.Router
		mockRepo *MockRepository
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		lg := logger.Discard()
		service := allocation.NewService(mockRepo, stubExists{"emp-1": true}, stubExists{"proj-1": true}, lg).
			WithOverAllocationChecker(&repoChecker{repo: mockRepo, capacity: 40})
		handler := allocation.NewHandler(transport.NewBaseHandler(lg), service)

		router = chi.NewRouter()
		router.Get("/allocations", handler.ListAllocations)
		router.Post("/allocations", handler.CreateAllocation)
		router.Get("/allocations/{id}", handler.GetAllocation)
		router.Patch("/allocations/{id}", handler.UpdateAllocation)
		router.Delete("/allocations/{id}", handler.DeleteAllocation)
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	body := func(hours float64) map[string]interface{} {
		return map[string]interface{}{
			"employee_id":     "emp-1",
			"project_id":      "proj-1",
			"start_date":      "2024-01-01",
			"end_date":        "2024-01-14",
			"allocated_hours": hours,
		}
	}

	It("should return the over-allocation summary with the created allocation", func() {
		Expect(do(http.MethodPost, "/allocations", body(30)).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPost, "/allocations", body(30))
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp allocation.AllocationResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Allocation.EmployeeID).To(Equal("emp-1"))
		Expect(resp.OverAllocation).NotTo(BeNil())
		Expect(resp.OverAllocation.HasOverAllocation).To(BeTrue())
		Expect(resp.OverAllocation.Warnings).To(HaveLen(2))
	})

	It("should answer 400 with INVALID_DATE_RANGE", func() {
		b := body(10)
		b["end_date"] = "2023-12-31"
		w := do(http.MethodPost, "/allocations", b)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_DATE_RANGE"))
	})

	It("should answer 400 with INVALID_HOURS", func() {
		w := do(http.MethodPost, "/allocations", body(200))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_HOURS"))
	})

	It("should answer 400 for malformed window filters", func() {
		Expect(do(http.MethodGet, "/allocations?start_date=jan", nil).Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, "/allocations?start_date=2024-01-01&employee_id=emp-1", nil).Code).To(Equal(http.StatusOK))
	})

	It("should answer 404 for unknown allocations", func() {
		w := do(http.MethodGet, "/allocations/missing", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("ALLOCATION_NOT_FOUND"))
	})
})
