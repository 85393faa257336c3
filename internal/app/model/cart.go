package model

import "time"

type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	GoodsID   uint      `gorm:"not null;index" json:"goods_id"`
	Count     int       `gorm:"not null;default:1" json:"count"`
	AttrsText string    `gorm:"size:255" json:"attrs_text"` // chosen variant, e.g. "color:red size:L"
	Selected  bool      `gorm:"default:true" json:"selected"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Goods Goods `gorm:"foreignKey:GoodsID" json:"goods,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
