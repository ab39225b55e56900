package model

import "time"

// Expense is a spend record against a project. Expenses are append-only:
// there is no edit or delete path outside the project cascade.
type Expense struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID string `gorm:"type:text;not null;index:ix_expense_project_id" json:"project_id"`

	Date        *time.Time `gorm:"type:date" json:"date"`
	Description string     `gorm:"type:text" json:"description"`
	Amount      float64    `gorm:"not null;default:0;check:amount >= 0" json:"amount"`
	Category    string     `gorm:"type:text" json:"category"`
	RecordedBy  string     `gorm:"type:text" json:"recorded_by"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Expense) TableName() string { return "expenses" }
