package employee

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
	employeeDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/employee"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*employeeDatamodel.Employee, error)
	GetByID(ctx context.Context, id string) (*employeeDatamodel.Employee, error)
	GetByEmail(ctx context.Context, email string) (*employeeDatamodel.Employee, error)
	Create(ctx context.Context, employee *employeeDatamodel.Employee) error
	Update(ctx context.Context, employee *employeeDatamodel.Employee) error
	Delete(ctx context.Context, id string) error
}

// DepartmentChecker is satisfied by the department service.
type DepartmentChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo            RepositoryAPI
	departments     DepartmentChecker
	defaultCapacity float64
	logger          *slog.Logger
}

func NewService(repo RepositoryAPI, departments DepartmentChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:            repo,
		departments:     departments,
		defaultCapacity: capacity.DefaultWeeklyCapacity,
		logger:          logger,
	}
}

// WithDefaultCapacity sets the weekly capacity given to employees created without one.
func (s *Service) WithDefaultCapacity(hours float64) *Service {
	if hours > 0 {
		s.defaultCapacity = hours
	}
	return s
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Employee, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err, "department_id", filter.DepartmentID)
		return nil, err
	}

	employees := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, FromDataModel(row))
	}
	return employees, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Employee, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get employee", "error", err, "employee_id", id)
		return nil, err
	}
	if row == nil {
		return nil, ErrEmployeeNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueEmail(ctx, dto.Email, ""); err != nil {
		return nil, err
	}
	if err := s.ensureDepartment(ctx, dto.DepartmentID); err != nil {
		return nil, err
	}

	weeklyCapacity := s.defaultCapacity
	if dto.WeeklyCapacity != nil {
		weeklyCapacity = *dto.WeeklyCapacity
	}

	now := time.Now()
	row := ToDataModel(&Employee{
		Name:           dto.Name,
		Email:          dto.Email,
		Position:       dto.Position,
		DepartmentID:   dto.DepartmentID,
		WeeklyCapacity: weeklyCapacity,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create employee", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("employee created", "employee_id", row.ID, "weekly_capacity", row.WeeklyCapacity)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateEmployeeDTO) (*Employee, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	employee, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		employee.Name = *dto.Name
	}
	if dto.Email != nil {
		if err := s.ensureUniqueEmail(ctx, *dto.Email, id); err != nil {
			return nil, err
		}
		employee.Email = *dto.Email
	}
	if dto.Position != nil {
		employee.Position = *dto.Position
	}
	if dto.DepartmentID != nil {
		if strings.TrimSpace(*dto.DepartmentID) == "" {
			employee.DepartmentID = nil
		} else {
			if err := s.ensureDepartment(ctx, dto.DepartmentID); err != nil {
				return nil, err
			}
			employee.DepartmentID = dto.DepartmentID
		}
	}
	if dto.WeeklyCapacity != nil {
		employee.WeeklyCapacity = *dto.WeeklyCapacity
	}
	if dto.IsActive != nil {
		employee.IsActive = *dto.IsActive
	}
	employee.UpdatedAt = time.Now()

	row := ToDataModel(employee)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, err
	}

	s.logger.Info("employee updated", "employee_id", id)
	return FromDataModel(row), nil
}

// Delete deactivates the employee. Their allocations stay for reporting.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return err
	}

	s.logger.Info("employee deactivated", "employee_id", id)
	return nil
}

// Exists reports whether an active employee with id exists.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return row != nil && row.IsActive, nil
}

func (s *Service) ensureUniqueEmail(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to check employee email", "error", err)
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrDuplicateEmail
	}
	return nil
}

func (s *Service) ensureDepartment(ctx context.Context, departmentID *string) error {
	if departmentID == nil || s.departments == nil {
		return nil
	}
	ok, err := s.departments.Exists(ctx, *departmentID)
	if err != nil {
		s.logger.Error("failed to check department", "error", err, "department_id", *departmentID)
		return err
	}
	if !ok {
		return ErrUnknownDepartment
	}
	return nil
}
