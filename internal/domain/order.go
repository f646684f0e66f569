package domain

import "time"

const (
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Order binds a customer to a business through a chosen offer detail tier.
// The business side is derived from the detail's offer creator at creation.
type Order struct {
	ID             int64     `json:"id"`
	OfferDetailID  int64     `gorm:"index" json:"offer_detail_id"`
	CustomerUserID int64     `gorm:"index" json:"customer_user"`
	BusinessUserID int64     `gorm:"index" json:"business_user"`
	Status         string    `gorm:"size:20;index" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	OfferDetail *OfferDetail `gorm:"foreignKey:OfferDetailID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// ValidOrderStatus checks the status enum
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}
