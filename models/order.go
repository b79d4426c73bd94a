package models

import "time"

const (
	PaymentMethodQR  = "qr"
	PaymentMethodCOD = "cod"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"

	OrderPlaced     = "placed"
	OrderProcessing = "processing"
	OrderDelivered  = "delivered"
)

// RoleAdmin is the elevated role allowed to manage the catalog,
// fulfill orders and see every order.
const RoleAdmin = "admin"

var orderStatusRank = map[string]int{
	OrderPlaced:     0,
	OrderProcessing: 1,
	OrderDelivered:  2,
}

// OrderStatusRank returns the position of s in the order lifecycle.
// Statuses only move to a strictly higher rank.
func OrderStatusRank(s string) (int, bool) {
	r, ok := orderStatusRank[s]
	return r, ok
}

func ValidPaymentMethod(m string) bool {
	return m == PaymentMethodQR || m == PaymentMethodCOD
}

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"not null;index" json:"user_id"`
	OrderItems    []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	TotalAmount   float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	PaymentMethod string      `gorm:"type:varchar(10);not null" json:"payment_method"`
	PaymentStatus string      `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	OrderStatus   string      `gorm:"type:varchar(20);not null;default:'placed'" json:"order_status"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
}
