package hub

import "fmt"

// Event types
const (
	EventNewOrder          = "new_order"
	EventCodOrder          = "cod_order"
	EventStockUpdate       = "stock_update"
	EventItemUpdate        = "item_update"
	EventItemDelete        = "item_delete"
	EventOrderStatusUpdate = "order_status_update"
	EventOrderUpdate       = "order_update"
	EventPaymentUpdate     = "payment_update"
)

// TopicStaff is joined by every elevated-privilege connection.
const TopicStaff = "staff"

// TopicUser is the per-customer topic, joined on handshake.
func TopicUser(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ---- Payloads per event ----

type NewOrderPayload struct {
	OrderID       uint    `json:"order_id"`
	UserID        uint    `json:"user_id"`
	TotalAmount   float64 `json:"total_amount"`
	PaymentMethod string  `json:"payment_method"`
}

type StockUpdatePayload struct {
	ItemID uint `json:"item_id"`
	Stock  int  `json:"stock"`
}

type ItemDeletePayload struct {
	ItemID uint `json:"item_id"`
}

type OrderStatusPayload struct {
	OrderID       uint   `json:"order_id"`
	OrderStatus   string `json:"order_status"`
	PaymentStatus string `json:"payment_status"`
}

type PaymentUpdatePayload struct {
	OrderID       uint   `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
}
