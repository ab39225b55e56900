package model

import (
	"strings"
	"time"
)

// Task statuses. Sheet rows arrive with arbitrary casing and spacing, so
// comparisons go through NormalizeStatus.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Task is one step of a project's fixed workflow. Its identity within a
// project is its name: the sheet backends expose no surrogate row key, so
// task names are unique per project by construction.
type Task struct {
	ProjectID string `gorm:"type:text;primaryKey" json:"project_id"`
	Name      string `gorm:"type:text;primaryKey" json:"name"`

	Step int    `gorm:"not null" json:"step"`
	Role string `gorm:"type:text" json:"role"`

	Status string `gorm:"type:text;not null;default:'Pending'" json:"status"`
	// Progress is optional; some deployments track only status.
	Progress *int `gorm:"check:progress >= 0 AND progress <= 100" json:"progress"`

	DueDate *time.Time `gorm:"type:date" json:"due_date"`
	// CompletedAt is set exactly when status transitions to Completed and
	// cleared on any other transition.
	CompletedAt *time.Time `gorm:"type:date" json:"completed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// NormalizeStatus maps a raw status string onto one of the canonical task
// statuses, ignoring case and whitespace. Unrecognized input returns
// ok=false.
func NormalizeStatus(raw string) (string, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(raw), "")) {
	case "pending":
		return StatusPending, true
	case "inprogress":
		return StatusInProgress, true
	case "completed", "done":
		return StatusCompleted, true
	}
	return "", false
}
