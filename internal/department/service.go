package department

import (
	"context"
	"log/slog"
	"strings"
	"time"

	departmentDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/department"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*departmentDatamodel.Department, error)
	GetByID(ctx context.Context, id string) (*departmentDatamodel.Department, error)
	GetByName(ctx context.Context, name string) (*departmentDatamodel.Department, error)
	Create(ctx context.Context, department *departmentDatamodel.Department) error
	Update(ctx context.Context, department *departmentDatamodel.Department) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Department, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, err
	}

	departments := make([]*Department, 0, len(rows))
	for _, row := range rows {
		departments = append(departments, FromDataModel(row))
	}

	s.logger.Debug("retrieved departments", "count", len(departments))
	return departments, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Department, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get department", "error", err, "department_id", id)
		return nil, err
	}
	if row == nil {
		return nil, ErrDepartmentNotFound
	}
	return FromDataModel(row), nil
}

// Exists reports whether an active department with id exists.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return row != nil && row.IsActive, nil
}

func (s *Service) Create(ctx context.Context, dto CreateDepartmentDTO) (*Department, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureUniqueName(ctx, dto.Name, ""); err != nil {
		return nil, err
	}

	department := NewDepartment(dto.Name, dto.Description)
	row := ToDataModel(department)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("department created", "department_id", row.ID, "name", row.Name)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	department, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if err := s.ensureUniqueName(ctx, name, id); err != nil {
			return nil, err
		}
		department.Name = name
	}
	if dto.Description != nil {
		department.Description = strings.TrimSpace(*dto.Description)
	}
	if dto.IsActive != nil {
		if *dto.IsActive {
			department.Activate()
		} else {
			department.Deactivate()
		}
	}
	department.UpdatedAt = time.Now()

	row := ToDataModel(department)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}

	s.logger.Info("department updated", "department_id", id)
	return FromDataModel(row), nil
}

// Delete deactivates the department; employees keep their reference.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return err
	}

	s.logger.Info("department deactivated", "department_id", id)
	return nil
}

func (s *Service) ensureUniqueName(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		s.logger.Error("failed to check department name", "error", err, "name", name)
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrDuplicateName
	}
	return nil
}
