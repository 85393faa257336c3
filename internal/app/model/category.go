package model

import "time"

type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Icon      string    `json:"icon"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	Sort      int       `gorm:"default:0" json:"sort"` // ascending display order
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
