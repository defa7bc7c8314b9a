package employee_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	departmentDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/department"
	employeeDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/resource-management/internal/department"
	departmentPostgres "github.com/frahmantamala/resource-management/internal/department/postgres"
	"github.com/frahmantamala/resource-management/internal/employee"
	employeePostgres "github.com/frahmantamala/resource-management/internal/employee/postgres"
	"github.com/frahmantamala/resource-management/internal/transport"
	"github.com/frahmantamala/resource-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ = Describe("Employee Handler Integration", func() {
	var (
		router       chi.Router
		departmentID string
	)

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&departmentDatamodel.Department{}, &employeeDatamodel.Employee{})).To(Succeed())

		lg := logger.Discard()
		departments := department.NewService(departmentPostgres.NewDepartmentRepository(db), lg)
		dep, err := departments.Create(context.Background(), department.CreateDepartmentDTO{Name: "Engineering"})
		Expect(err).NotTo(HaveOccurred())
		departmentID = dep.ID

		service := employee.NewService(employeePostgres.NewEmployeeRepository(db), departments, lg)
		handler := employee.NewHandler(transport.NewBaseHandler(lg), service)

		router = chi.NewRouter()
		router.Get("/employees", handler.ListEmployees)
		router.Post("/employees", handler.CreateEmployee)
		router.Get("/employees/{id}", handler.GetEmployee)
		router.Patch("/employees/{id}", handler.UpdateEmployee)
		router.Delete("/employees/{id}", handler.DeleteEmployee)
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

	It("should create employees and filter them by department", func() {
		w := do(http.MethodPost, "/employees", map[string]interface{}{
			"name": "Ana", "email": "ana@example.com", "department_id": departmentID, "weekly_capacity": 32,
		})
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodPost, "/employees", map[string]interface{}{"name": "Ben", "email": "ben@example.com"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var list employee.EmployeesResponse
		Expect(json.NewDecoder(do(http.MethodGet, "/employees?department_id="+departmentID, nil).Body).Decode(&list)).To(Succeed())
		Expect(list.Employees).To(HaveLen(1))
		Expect(list.Employees[0].Name).To(Equal("Ana"))
		Expect(list.Employees[0].WeeklyCapacity).To(Equal(32.0))

		Expect(json.NewDecoder(do(http.MethodGet, "/employees?limit=1", nil).Body).Decode(&list)).To(Succeed())
		Expect(list.Employees).To(HaveLen(1))
		Expect(list.Limit).To(Equal(1))
	})

	It("should answer 400 with INVALID_CAPACITY", func() {
		w := do(http.MethodPost, "/employees", map[string]interface{}{"name": "Ana", "email": "ana@example.com", "weekly_capacity": 0})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_CAPACITY"))
	})

	It("should answer 400 for unknown departments", func() {
		w := do(http.MethodPost, "/employees", map[string]interface{}{"name": "Ana", "email": "ana@example.com", "department_id": "nope"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("DEPARTMENT_NOT_FOUND"))
	})

	It("should answer 409 for duplicate emails", func() {
		Expect(do(http.MethodPost, "/employees", map[string]interface{}{"name": "Ana", "email": "ana@example.com"}).Code).To(Equal(http.StatusCreated))
		w := do(http.MethodPost, "/employees", map[string]interface{}{"name": "Ana", "email": "ana@example.com"})
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should patch and delete employees", func() {
		w := do(http.MethodPost, "/employees", map[string]interface{}{"name": "Ana", "email": "ana@example.com"})
		var created employee.Employee
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		w = do(http.MethodPatch, "/employees/"+created.ID, map[string]interface{}{"position": "Engineer"})
		Expect(w.Code).To(Equal(http.StatusOK))
		var updated employee.Employee
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.Position).To(Equal("Engineer"))

		Expect(do(http.MethodDelete, "/employees/"+created.ID, nil).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodDelete, "/employees/missing", nil).Code).To(Equal(http.StatusNotFound))
	})
})
