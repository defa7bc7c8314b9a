package allocation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Allocation struct {
	ID             string    `gorm:"primaryKey;size:36"`
	EmployeeID     string    `gorm:"column:employee_id;size:36;not null;index"`
	ProjectID      string    `gorm:"column:project_id;size:36;not null;index"`
	StartDate      time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate        time.Time `gorm:"column:end_date;type:date;not null"`
	AllocatedHours float64   `gorm:"column:allocated_hours;not null"`
	Role           string    `gorm:"column:role"`
	Notes          string    `gorm:"column:notes"`
	IsActive       bool      `gorm:"column:is_active;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Allocation) TableName() string {
	return "allocations"
}

func (a *Allocation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
