package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID             string    `gorm:"primaryKey;size:36"`
	Name           string    `gorm:"column:name;not null;index"`
	Email          string    `gorm:"column:email;uniqueIndex;not null"`
	Position       string    `gorm:"column:position"`
	DepartmentID   *string   `gorm:"column:department_id;size:36;index"`
	WeeklyCapacity float64   `gorm:"column:weekly_capacity;not null"`
	IsActive       bool      `gorm:"column:is_active;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
