package utilization

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/resource-management/internal"
	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	DefaultWindow() capacity.DateRange
	Summaries(ctx context.Context, window *capacity.DateRange, departmentID string) ([]capacity.OverAllocationSummary, error)
	EmployeeSummary(ctx context.Context, employeeID string, window *capacity.DateRange) (*capacity.OverAllocationSummary, error)
	EmployeeWeek(ctx context.Context, employeeID string, weekStart time.Time) (*capacity.WeeklyAllocation, error)
	Conflicts(ctx context.Context, window *capacity.DateRange, departmentID string) ([]capacity.AllocationConflict, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetUtilization(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := ParseWindow(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if window == nil {
		def := h.Service.DefaultWindow()
		window = &def
	}

	departmentID := q.Get("department_id")
	summaries, err := h.Service.Summaries(r.Context(), window, departmentID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewUtilizationResponse(*window, departmentID, summaries))
}

func (h *Handler) GetEmployeeUtilization(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := ParseWindow(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	summary, err := h.Service.EmployeeSummary(r.Context(), chi.URLParam(r, "id"), window)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetEmployeeWeek(w http.ResponseWriter, r *http.Request) {
	weekStart, err := time.Parse(capacity.DateLayout, chi.URLParam(r, "week_start"))
	if err != nil {
		h.HandleServiceError(w, internal.NewValidationError("week_start must be formatted as YYYY-MM-DD", internal.ErrCodeInvalidDate))
		return
	}

	weekly, err := h.Service.EmployeeWeek(r.Context(), chi.URLParam(r, "id"), weekStart)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, weekly)
}

func (h *Handler) GetConflicts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := ParseWindow(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	departmentID := q.Get("department_id")
	conflicts, err := h.Service.Conflicts(r.Context(), window, departmentID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ConflictsResponse{
		Window:       window,
		DepartmentID: departmentID,
		Conflicts:    conflicts,
		Count:        len(conflicts),
	})
}
