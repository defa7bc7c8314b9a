package project_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	projectDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-management/internal/project"
	projectPostgres "github.com/frahmantamala/resource-management/internal/project/postgres"
	"github.com/frahmantamala/resource-management/internal/transport"
	"github.com/frahmantamala/resource-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ = Describe("Project Handler Integration", func() {
	var (
		router  chi.Router
		counter stubCounter
	)

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&projectDatamodel.Project{})).To(Succeed())

		lg := logger.Discard()
		counter = stubCounter{}
		service := project.NewService(projectPostgres.NewProjectRepository(db), counter, lg)
		handler := project.NewHandler(transport.NewBaseHandler(lg), service)

		router = chi.NewRouter()
		router.Get("/projects", handler.ListProjects)
		router.Post("/projects", handler.CreateProject)
		router.Get("/projects/{id}", handler.GetProject)
		router.Patch("/projects/{id}", handler.UpdateProject)
		router.Delete("/projects/{id}", handler.DeleteProject)
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

	create := func(body map[string]interface{}) project.Project {
		w := do(http.MethodPost, "/projects", body)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var p project.Project
		Expect(json.NewDecoder(w.Body).Decode(&p)).To(Succeed())
		return p
	}

	It("should filter projects by status", func() {
		create(map[string]interface{}{"name": "Website", "status": "active", "start_date": "2024-01-01"})
		create(map[string]interface{}{"name": "Mobile app"})

		var list project.ProjectsResponse
		Expect(json.NewDecoder(do(http.MethodGet, "/projects?status=active", nil).Body).Decode(&list)).To(Succeed())
		Expect(list.Projects).To(HaveLen(1))
		Expect(list.Projects[0].Name).To(Equal("Website"))
		Expect(list.Projects[0].StartDate.Format("2006-01-02")).To(Equal("2024-01-01"))
	})

	It("should answer 400 with INVALID_STATUS", func() {
		w := do(http.MethodPost, "/projects", map[string]interface{}{"name": "Website", "status": "paused"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_STATUS"))
	})

	It("should answer 409 when deleting a project in use", func() {
		p := create(map[string]interface{}{"name": "Website"})
		counter[p.ID] = 1

		w := do(http.MethodDelete, "/projects/"+p.ID, nil)
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("PROJECT_IN_USE"))

		delete(counter, p.ID)
		Expect(do(http.MethodDelete, "/projects/"+p.ID, nil).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/projects/"+p.ID, nil).Code).To(Equal(http.StatusNotFound))
	})
})
