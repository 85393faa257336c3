package model

import "time"

// OrderCancelJob is a durable delayed task: once DueAt passes the order
// is cancelled if it is still awaiting payment.
type OrderCancelJob struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	OrderID     uint       `gorm:"not null;uniqueIndex" json:"order_id"`
	DueAt       time.Time  `gorm:"not null;index" json:"due_at"`
	ProcessedAt *time.Time `gorm:"index" json:"processed_at,omitempty"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	// NextAttemptAt holds a failed job back until its retry time
	NextAttemptAt *time.Time `gorm:"index" json:"next_attempt_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (OrderCancelJob) TableName() string {
	return "order_cancel_jobs"
}
