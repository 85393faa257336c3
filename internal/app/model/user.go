package model

import (
	"time"

	"gorm.io/gorm"
)

type Gender int // 0 unknown, 1 male, 2 female

const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

type User struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	OpenID     string         `gorm:"size:64;uniqueIndex;not null" json:"-"` // provider-issued identifier
	Account    string         `gorm:"size:64;not null" json:"account"`       // generated on first login
	Nickname   string         `gorm:"size:64" json:"nickname"`
	Avatar     string         `json:"avatar"` // public URL
	Mobile     string         `gorm:"size:30" json:"mobile"`
	Gender     Gender         `gorm:"default:0" json:"gender"`
	Birthday   *time.Time     `gorm:"type:date" json:"birthday,omitempty"`
	Profession string         `gorm:"size:64" json:"profession"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
