package model

import (
	"time"

	"gorm.io/datatypes"
)

// Project is a construction project. The ID is human-assigned in a
// PREFIX-NN scheme and is the foreign key every related collection uses.
type Project struct {
	ID   string `gorm:"type:text;primaryKey" json:"id"`
	Name string `gorm:"type:text;not null" json:"name"`

	Location   string            `gorm:"type:text" json:"location"`
	Contractor string            `gorm:"type:text" json:"contractor"`
	Engineer   string            `gorm:"type:text" json:"engineer"`
	Contacts   datatypes.JSONMap `gorm:"type:jsonb" json:"contacts"`

	StartDate *time.Time `gorm:"type:date" json:"start_date"`
	// Deadline is optional: projects may run without one.
	Deadline *time.Time `gorm:"type:date" json:"deadline"`

	Budget float64 `gorm:"not null;default:0;check:budget >= 0" json:"budget"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Cascade constraints only cover the Postgres backend; sheet backends
	// cascade best-effort in the service layer.
	Tasks     []Task     `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	Expenses  []Expense  `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	Materials []Material `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Project) TableName() string { return "projects" }
