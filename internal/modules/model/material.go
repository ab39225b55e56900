package model

import "time"

// Material tracks dispatch of one item against a project. The item name is
// the identity within a project; rows are created on first dispatch and
// their dispatched quantity only ever grows.
type Material struct {
	ProjectID string `gorm:"type:text;primaryKey" json:"project_id"`
	Item      string `gorm:"type:text;primaryKey" json:"item"`

	Required   float64 `gorm:"not null;default:0;check:required >= 0" json:"required"`
	Dispatched float64 `gorm:"not null;default:0;check:dispatched >= 0" json:"dispatched"`
	Unit       string  `gorm:"type:text" json:"unit"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Material) TableName() string { return "materials" }

// Balance is the remaining quantity to dispatch. It can go negative when
// more was dispatched than required; that is data, not an error.
func (m Material) Balance() float64 { return m.Required - m.Dispatched }
