package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/resource-management/internal/allocation"
	allocationDatamodel "github.com/frahmantamala/resource-management/internal/core/datamodel/allocation"
	"gorm.io/gorm"
)

type AllocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) allocation.RepositoryAPI {
	return &AllocationRepository{db: db}
}

func (r *AllocationRepository) List(ctx context.Context, filter allocation.ListFilter) ([]*allocationDatamodel.Allocation, error) {
	var allocations []*allocationDatamodel.Allocation
	query := r.db.WithContext(ctx).Order("start_date ASC").Order("id ASC")
	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.ProjectID != "" {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	// inclusive overlap with the requested window
	if !filter.From.IsZero() {
		query = query.Where("end_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("start_date <= ?", filter.To)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	err := query.Find(&allocations).Error
	return allocations, err
}

func (r *AllocationRepository) GetByID(ctx context.Context, id string) (*allocationDatamodel.Allocation, error) {
	var a allocationDatamodel.Allocation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AllocationRepository) Create(ctx context.Context, a *allocationDatamodel.Allocation) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AllocationRepository) Update(ctx context.Context, a *allocationDatamodel.Allocation) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AllocationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&allocationDatamodel.Allocation{}).Error
}

func (r *AllocationRepository) CountActiveByProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&allocationDatamodel.Allocation{}).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Count(&count).Error
	return count, err
}
