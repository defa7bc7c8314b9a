package project

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Name        string     `gorm:"column:name;not null"`
	Description string     `gorm:"column:description"`
	ClientName  string     `gorm:"column:client_name"`
	Status      string     `gorm:"column:status;not null;index"`
	StartDate   *time.Time `gorm:"column:start_date;type:date"`
	EndDate     *time.Time `gorm:"column:end_date;type:date"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
