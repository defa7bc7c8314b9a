package project

import (
	"context"
	"log/slog"
	"strings"
	"time"

	projectDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/project"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*projectDatamodel.Project, error)
	GetByID(ctx context.Context, id string) (*projectDatamodel.Project, error)
	Create(ctx context.Context, project *projectDatamodel.Project) error
	Update(ctx context.Context, project *projectDatamodel.Project) error
	Delete(ctx context.Context, id string) error
}

// AllocationCounter is satisfied by the allocation repository.
type AllocationCounter interface {
	CountActiveByProject(ctx context.Context, projectID string) (int64, error)
}

type Service struct {
	repo        RepositoryAPI
	allocations AllocationCounter
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, allocations AllocationCounter, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		allocations: allocations,
		logger:      logger,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Project, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list projects", "error", err, "status", filter.Status)
		return nil, err
	}

	projects := make([]*Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, FromDataModel(row))
	}
	return projects, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Project, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get project", "error", err, "project_id", id)
		return nil, err
	}
	if row == nil {
		return nil, ErrProjectNotFound
	}
	return FromDataModel(row), nil
}

// Exists reports whether the project exists and still accepts allocations.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return row != nil && row.Status != StatusCompleted, nil
}

func (s *Service) Create(ctx context.Context, dto CreateProjectDTO) (*Project, error) {
	start, appErr := parseOptionalDate("start_date", dto.StartDate)
	if appErr != nil {
		return nil, appErr
	}
	end, appErr := parseOptionalDate("end_date", dto.EndDate)
	if appErr != nil {
		return nil, appErr
	}

	status := strings.TrimSpace(dto.Status)
	if status == "" {
		status = StatusPlanning
	}
	name := strings.TrimSpace(dto.Name)
	if appErr := validateProject(name, status, start, end); appErr != nil {
		return nil, appErr
	}

	now := time.Now()
	row := ToDataModel(&Project{
		Name:        name,
		Description: strings.TrimSpace(dto.Description),
		ClientName:  strings.TrimSpace(dto.ClientName),
		Status:      status,
		StartDate:   start,
		EndDate:     end,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create project", "error", err, "name", name)
		return nil, err
	}

	s.logger.Info("project created", "project_id", row.ID, "status", row.Status)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateProjectDTO) (*Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		project.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Description != nil {
		project.Description = strings.TrimSpace(*dto.Description)
	}
	if dto.ClientName != nil {
		project.ClientName = strings.TrimSpace(*dto.ClientName)
	}
	if dto.Status != nil {
		project.Status = strings.TrimSpace(*dto.Status)
	}
	if dto.StartDate != nil {
		start, appErr := parseOptionalDate("start_date", dto.StartDate)
		if appErr != nil {
			return nil, appErr
		}
		project.StartDate = start
	}
	if dto.EndDate != nil {
		end, appErr := parseOptionalDate("end_date", dto.EndDate)
		if appErr != nil {
			return nil, appErr
		}
		project.EndDate = end
	}
	if appErr := validateProject(project.Name, project.Status, project.StartDate, project.EndDate); appErr != nil {
		return nil, appErr
	}
	project.UpdatedAt = time.Now()

	row := ToDataModel(project)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update project", "error", err, "project_id", id)
		return nil, err
	}

	s.logger.Info("project updated", "project_id", id, "status", row.Status)
	return FromDataModel(row), nil
}

// Delete removes the project, refusing while active allocations reference it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if s.allocations != nil {
		count, err := s.allocations.CountActiveByProject(ctx, id)
		if err != nil {
			s.logger.Error("failed to count project allocations", "error", err, "project_id", id)
			return err
		}
		if count > 0 {
			s.logger.Warn("project delete refused", "project_id", id, "active_allocations", count)
			return ErrProjectInUse
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete project", "error", err, "project_id", id)
		return err
	}

	s.logger.Info("project deleted", "project_id", id)
	return nil
}
