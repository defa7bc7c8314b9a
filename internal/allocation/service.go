package allocation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
	allocationDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/allocation"
	"github.com/frahmantamala/resource-management/internal/core/events"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*allocationDatamodel.Allocation, error)
	GetByID(ctx context.Context, id string) (*allocationDatamodel.Allocation, error)
	Create(ctx context.Context, allocation *allocationDatamodel.Allocation) error
	Update(ctx context.Context, allocation *allocationDatamodel.Allocation) error
	Delete(ctx context.Context, id string) error
	CountActiveByProject(ctx context.Context, projectID string) (int64, error)
}

// ExistenceChecker is satisfied by the employee and project services.
type ExistenceChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// OverAllocationChecker summarizes one employee over a window. It is
// satisfied by the utilization service.
type OverAllocationChecker interface {
	EmployeeSummary(ctx context.Context, employeeID string, window *capacity.DateRange) (*capacity.OverAllocationSummary, error)
}

type Service struct {
	repo      RepositoryAPI
	employees ExistenceChecker
	projects  ExistenceChecker
	checker   OverAllocationChecker
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, employees, projects ExistenceChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		projects:  projects,
		logger:    logger,
	}
}

// WithOverAllocationChecker attaches the summary returned with every write.
func (s *Service) WithOverAllocationChecker(checker OverAllocationChecker) *Service {
	s.checker = checker
	return s
}

// WithPublisher makes every mutation publish an allocation.changed event.
func (s *Service) WithPublisher(publisher events.Publisher) *Service {
	s.publisher = publisher
	return s
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Allocation, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list allocations", "error", err,
			"employee_id", filter.EmployeeID,
			"project_id", filter.ProjectID)
		return nil, err
	}

	allocations := make([]*Allocation, 0, len(rows))
	for _, row := range rows {
		allocations = append(allocations, FromDataModel(row))
	}
	return allocations, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Allocation, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get allocation", "error", err, "allocation_id", id)
		return nil, err
	}
	if row == nil {
		return nil, ErrAllocationNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateAllocationDTO) (*AllocationResponse, error) {
	start, appErr := parseDate("start_date", dto.StartDate)
	if appErr != nil {
		return nil, appErr
	}
	end, appErr := parseDate("end_date", dto.EndDate)
	if appErr != nil {
		return nil, appErr
	}

	isActive := true
	if dto.IsActive != nil {
		isActive = *dto.IsActive
	}

	now := time.Now()
	allocation := &Allocation{
		EmployeeID:     strings.TrimSpace(dto.EmployeeID),
		ProjectID:      strings.TrimSpace(dto.ProjectID),
		StartDate:      start,
		EndDate:        end,
		AllocatedHours: dto.AllocatedHours,
		Role:           strings.TrimSpace(dto.Role),
		Notes:          strings.TrimSpace(dto.Notes),
		IsActive:       isActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.check(ctx, allocation, true, true); err != nil {
		return nil, err
	}

	row := ToDataModel(allocation)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create allocation", "error", err, "employee_id", row.EmployeeID)
		return nil, err
	}
	created := FromDataModel(row)

	s.logger.Info("allocation created",
		"allocation_id", created.ID,
		"employee_id", created.EmployeeID,
		"project_id", created.ProjectID,
		"allocated_hours", created.AllocatedHours)

	s.publish(ctx, created, events.AllocationActionCreated)
	return s.respond(ctx, created), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateAllocationDTO) (*AllocationResponse, error) {
	allocation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := *allocation

	if dto.EmployeeID != nil {
		allocation.EmployeeID = strings.TrimSpace(*dto.EmployeeID)
	}
	if dto.ProjectID != nil {
		allocation.ProjectID = strings.TrimSpace(*dto.ProjectID)
	}
	if dto.StartDate != nil {
		start, appErr := parseDate("start_date", *dto.StartDate)
		if appErr != nil {
			return nil, appErr
		}
		allocation.StartDate = start
	}
	if dto.EndDate != nil {
		end, appErr := parseDate("end_date", *dto.EndDate)
		if appErr != nil {
			return nil, appErr
		}
		allocation.EndDate = end
	}
	if dto.AllocatedHours != nil {
		allocation.AllocatedHours = *dto.AllocatedHours
	}
	if dto.Role != nil {
		allocation.Role = strings.TrimSpace(*dto.Role)
	}
	if dto.Notes != nil {
		allocation.Notes = strings.TrimSpace(*dto.Notes)
	}
	if dto.IsActive != nil {
		allocation.IsActive = *dto.IsActive
	}
	allocation.UpdatedAt = time.Now()

	employeeChanged := allocation.EmployeeID != previous.EmployeeID
	projectChanged := allocation.ProjectID != previous.ProjectID
	if err := s.check(ctx, allocation, employeeChanged, projectChanged); err != nil {
		return nil, err
	}

	row := ToDataModel(allocation)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update allocation", "error", err, "allocation_id", id)
		return nil, err
	}
	updated := FromDataModel(row)

	s.logger.Info("allocation updated", "allocation_id", id, "employee_id", updated.EmployeeID)

	s.publish(ctx, updated, events.AllocationActionUpdated)
	if employeeChanged {
		s.publish(ctx, &previous, events.AllocationActionUpdated)
	}
	return s.respond(ctx, updated), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	allocation, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete allocation", "error", err, "allocation_id", id)
		return err
	}

	s.logger.Info("allocation deleted", "allocation_id", id, "employee_id", allocation.EmployeeID)
	s.publish(ctx, allocation, events.AllocationActionDeleted)
	return nil
}

func (s *Service) CountActiveByProject(ctx context.Context, projectID string) (int64, error) {
	return s.repo.CountActiveByProject(ctx, projectID)
}

// check validates the allocation and, when they changed, that its employee
// and project exist.
func (s *Service) check(ctx context.Context, a *Allocation, employee, project bool) error {
	if appErr := validateAllocation(a); appErr != nil {
		return appErr
	}

	if employee && s.employees != nil {
		ok, err := s.employees.Exists(ctx, a.EmployeeID)
		if err != nil {
			s.logger.Error("failed to check employee", "error", err, "employee_id", a.EmployeeID)
			return err
		}
		if !ok {
			return ErrUnknownEmployee
		}
	}

	if project && s.projects != nil {
		ok, err := s.projects.Exists(ctx, a.ProjectID)
		if err != nil {
			s.logger.Error("failed to check project", "error", err, "project_id", a.ProjectID)
			return err
		}
		if !ok {
			return ErrUnknownProject
		}
	}
	return nil
}

// respond attaches the employee's summary over the allocation's window. A
// failing summary never fails the write.
func (s *Service) respond(ctx context.Context, a *Allocation) *AllocationResponse {
	resp := &AllocationResponse{Allocation: a}
	if s.checker == nil {
		return resp
	}

	window := a.Period()
	summary, err := s.checker.EmployeeSummary(ctx, a.EmployeeID, &window)
	if err != nil {
		s.logger.Warn("failed to summarize employee after allocation write",
			"error", err,
			"allocation_id", a.ID,
			"employee_id", a.EmployeeID)
		return resp
	}
	resp.OverAllocation = summary
	return resp
}

func (s *Service) publish(ctx context.Context, a *Allocation, action string) {
	if s.publisher == nil {
		return
	}
	event := events.NewAllocationChangedEvent(a.ID, a.EmployeeID, a.ProjectID, action, a.StartDate, a.EndDate)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish allocation event", "error", err, "allocation_id", a.ID, "action", action)
	}
}
