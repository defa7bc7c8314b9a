package allocation

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Allocation, error)
	GetByID(ctx context.Context, id string) (*Allocation, error)
	Create(ctx context.Context, dto CreateAllocationDTO) (*AllocationResponse, error)
	Update(ctx context.Context, id string, dto UpdateAllocationDTO) (*AllocationResponse, error)
	Delete(ctx context.Context, id string) error
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

func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := h.Pagination(r)
	filter := ListFilter{
		EmployeeID: q.Get("employee_id"),
		ProjectID:  q.Get("project_id"),
		ActiveOnly: h.QueryBool(r, "active_only", false),
		Limit:      limit,
		Offset:     offset,
	}

	var ok bool
	if filter.From, ok = h.queryDate(w, r, "start_date"); !ok {
		return
	}
	if filter.To, ok = h.queryDate(w, r, "end_date"); !ok {
		return
	}

	allocations, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, AllocationsResponse{
		Allocations: allocations,
		Limit:       limit,
		Offset:      offset,
	})
}

func (h *Handler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	allocation, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, allocation)
}

func (h *Handler) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	var dto CreateAllocationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("CreateAllocation: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) UpdateAllocation(w http.ResponseWriter, r *http.Request) {
	var dto UpdateAllocationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("UpdateAllocation: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) queryDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(capacity.DateLayout, raw)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, name+" must be formatted as YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
