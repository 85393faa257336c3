package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

type PayType int

const (
	PayTypeOnline    PayType = 1
	PayTypeOnArrival PayType = 2
)

type DeliveryTimeType int

const (
	DeliveryAnyTime  DeliveryTimeType = 1
	DeliveryWeekdays DeliveryTimeType = 2
	DeliveryWeekends DeliveryTimeType = 3
)

type Order struct {
	ID               uint             `gorm:"primarykey" json:"id"`
	UserID           uint             `gorm:"not null;index" json:"user_id"`
	AddressID        uint             `gorm:"not null;index" json:"address_id"` // referenced, not copied
	OrderNumber      string           `gorm:"size:64;uniqueIndex;not null" json:"order_number"`
	TotalPrice       decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"total_price"`
	TotalFreight     decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"total_freight"`
	TotalCount       int              `gorm:"not null;default:0" json:"total_count"`
	DeliveryTimeType DeliveryTimeType `gorm:"default:1" json:"delivery_time_type"`
	PayType          PayType          `gorm:"default:1" json:"pay_type"`
	PayChannel       int              `gorm:"default:1" json:"pay_channel"`
	BuyerMessage     string           `gorm:"size:500" json:"buyer_message"`
	Status           OrderStatus      `gorm:"type:varchar(20);default:'awaiting_payment';index" json:"status"`
	PayTime          *time.Time       `json:"pay_time,omitempty"`
	CancelTime       *time.Time       `json:"cancel_time,omitempty"`
	CancelReason     string           `gorm:"size:255" json:"cancel_reason,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots the goods as they were when the order was placed
type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	GoodsID   uint            `gorm:"not null;index" json:"goods_id"`
	Name      string          `gorm:"size:200;not null" json:"name"`
	Cover     string          `json:"cover"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Freight   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"freight"`
	Count     int             `gorm:"not null" json:"count"`
	AttrsText string          `gorm:"size:255" json:"attrs_text"`
	CreatedAt time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is price * count + freight, freight charged once per line
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Count))).Add(i.Freight)
}
