package model

import (
	"time"

	"gorm.io/gorm"
)

type Address struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	Receiver     string         `gorm:"size:100;not null" json:"receiver"`
	Contact      string         `gorm:"size:30;not null" json:"contact"`
	ProvinceCode string         `gorm:"size:20" json:"province_code"`
	CityCode     string         `gorm:"size:20" json:"city_code"`
	CountyCode   string         `gorm:"size:20" json:"county_code"`
	Address      string         `gorm:"type:text;not null" json:"address"`
	FullLocation string         `gorm:"type:text" json:"full_location"` // province/city/county display text
	IsDefault    bool           `gorm:"default:false" json:"is_default"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}
