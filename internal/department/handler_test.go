package department_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	departmentDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/department"
	"github.com/frahmantamala/resource-management/internal/department"
	departmentPostgres "github.com/frahmantamala/resource-management/internal/department/postgres"
	"github.com/frahmantamala/resource-management/internal/transport"
	"github.com/frahmantamala/resource-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ = Describe("Department Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&departmentDatamodel.Department{})).To(Succeed())

		lg := logger.Discard()
		service := department.NewService(departmentPostgres.NewDepartmentRepository(db), lg)
		handler := department.NewHandler(transport.NewBaseHandler(lg), service)

		router = chi.NewRouter()
		router.Get("/departments", handler.ListDepartments)
		router.Post("/departments", handler.CreateDepartment)
		router.Get("/departments/{id}", handler.GetDepartment)
		router.Put("/departments/{id}", handler.UpdateDepartment)
		router.Delete("/departments/{id}", handler.DeleteDepartment)
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

	It("should create, fetch and list departments", func() {
		w := do(http.MethodPost, "/departments", map[string]string{"name": "Engineering"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created department.Department
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.ID).NotTo(BeEmpty())

		w = do(http.MethodGet, "/departments/"+created.ID, nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodGet, "/departments", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var list department.DepartmentsResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Departments).To(HaveLen(1))
		Expect(list.Departments[0].Name).To(Equal("Engineering"))
	})

	It("should answer 409 with the error code for duplicate names", func() {
		Expect(do(http.MethodPost, "/departments", map[string]string{"name": "Ops"}).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPost, "/departments", map[string]string{"name": "Ops"})
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring(`"code":"DUPLICATE_NAME"`))
	})

	It("should answer 400 for unknown fields", func() {
		w := do(http.MethodPost, "/departments", map[string]string{"name": "Ops", "budget": "1"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for unknown departments", func() {
		w := do(http.MethodGet, "/departments/missing", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("DEPARTMENT_NOT_FOUND"))
	})

	It("should hide deleted departments unless asked", func() {
		w := do(http.MethodPost, "/departments", map[string]string{"name": "Legal"})
		var created department.Department
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		Expect(do(http.MethodDelete, "/departments/"+created.ID, nil).Code).To(Equal(http.StatusNoContent))

		var list department.DepartmentsResponse
		Expect(json.NewDecoder(do(http.MethodGet, "/departments", nil).Body).Decode(&list)).To(Succeed())
		Expect(list.Departments).To(BeEmpty())

		Expect(json.NewDecoder(do(http.MethodGet, "/departments?include_inactive=true", nil).Body).Decode(&list)).To(Succeed())
		Expect(list.Departments).To(HaveLen(1))
		Expect(list.Departments[0].IsActive).To(BeFalse())
	})
})
