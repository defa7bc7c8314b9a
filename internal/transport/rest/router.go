package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/resource-management/api"
	"github.com/frahmantamala/resource-management/internal/allocation"
	"github.com/frahmantamala/resource-management/internal/department"
	"github.com/frahmantamala/resource-management/internal/employee"
	"github.com/frahmantamala/resource-management/internal/metrics"
	"github.com/frahmantamala/resource-management/internal/project"
	"github.com/frahmantamala/resource-management/internal/transport/middleware"
	"github.com/frahmantamala/resource-management/internal/transport/swagger"
	"github.com/frahmantamala/resource-management/internal/utilization"
	"github.com/go-chi/chi"
)

// Handlers groups the domain handlers mounted under /api/v1. Nil handlers
// are skipped.
type Handlers struct {
	Department  *department.Handler
	Employee    *employee.Handler
	Project     *project.Handler
	Allocation  *allocation.Handler
	Utilization *utilization.Handler
}

type RouterConfig struct {
	AllowedOrigins string
	MetricsEnabled bool
	MetricsPath    string
	RequestLogging bool
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, cfg RouterConfig, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	if cfg.MetricsEnabled {
		router.Use(metrics.Middleware)
	}
	if cfg.RequestLogging {
		router.Use(middleware.LoggingMiddleware(logger))
	}

	// Serve the OpenAPI document at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))

	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, metrics.Handler())
	}

	// Mount API under /api/v1 to match the OpenAPI servers entry
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		if h := handlers.Department; h != nil {
			r.Route("/departments", func(dr chi.Router) {
				dr.Get("/", h.ListDepartments)
				dr.Post("/", h.CreateDepartment)
				dr.Get("/{id}", h.GetDepartment)
				dr.Patch("/{id}", h.UpdateDepartment)
				dr.Delete("/{id}", h.DeleteDepartment)
			})
		}

		if h := handlers.Employee; h != nil {
			r.Route("/employees", func(er chi.Router) {
				er.Get("/", h.ListEmployees)
				er.Post("/", h.CreateEmployee)
				er.Get("/{id}", h.GetEmployee)
				er.Patch("/{id}", h.UpdateEmployee)
				er.Delete("/{id}", h.DeleteEmployee)
			})
		}

		if h := handlers.Project; h != nil {
			r.Route("/projects", func(pr chi.Router) {
				pr.Get("/", h.ListProjects)
				pr.Post("/", h.CreateProject)
				pr.Get("/{id}", h.GetProject)
				pr.Patch("/{id}", h.UpdateProject)
				pr.Delete("/{id}", h.DeleteProject)
			})
		}

		if h := handlers.Allocation; h != nil {
			r.Route("/allocations", func(ar chi.Router) {
				ar.Get("/", h.ListAllocations)
				ar.Post("/", h.CreateAllocation)
				ar.Get("/{id}", h.GetAllocation)
				ar.Patch("/{id}", h.UpdateAllocation)
				ar.Delete("/{id}", h.DeleteAllocation)
			})
		}

		if h := handlers.Utilization; h != nil {
			r.Route("/utilization", func(ur chi.Router) {
				ur.Get("/", h.GetUtilization)
				ur.Get("/employees/{id}", h.GetEmployeeUtilization)
				ur.Get("/employees/{id}/weeks/{week_start}", h.GetEmployeeWeek)
			})
			r.Get("/conflicts", h.GetConflicts)
		}
	})
}
