package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Goods struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Cover       string          `json:"cover"`
	Pictures    pq.StringArray  `gorm:"type:text" json:"pictures"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`     // selling price
	OldPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"old_price"` // list price shown struck through
	Freight     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"freight"`
	Inventory   int             `gorm:"not null;default:0" json:"inventory"`
	SalesCount  int             `gorm:"not null;default:0" json:"sales_count"`
	IsRecommend bool            `gorm:"default:false;index" json:"is_recommend"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Goods) TableName() string {
	return "goods"
}
