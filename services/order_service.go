package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rakawidhi/canteen-app/cache"
	"github.com/rakawidhi/canteen-app/hub"
	"github.com/rakawidhi/canteen-app/models"
	"github.com/rakawidhi/canteen-app/utils"
)

// LineInput is one requested order line.
type LineInput struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// OrderService validates order requests against the catalog, computes
// totals, and drives the order/payment state machine. Stock is checked
// here but only ever debited through CompletePayment.
type OrderService struct {
	DB        *gorm.DB
	Stock     *StockService
	QR        QRGenerator
	Publisher Publisher
	Cache     *cache.StatusCache
}

func NewOrderService(db *gorm.DB, stock *StockService, qr QRGenerator, pub Publisher, sc *cache.StatusCache) *OrderService {
	return &OrderService{DB: db, Stock: stock, QR: qr, Publisher: pub, Cache: sc}
}

// CreateOrder validates every requested line (fail fast, first
// violation wins, in line order), snapshots item name and price, and
// persists the order as placed/pending. Stock is not debited. For QR
// orders a payment artifact is generated and returned alongside the
// order; it is never persisted.
func (s *OrderService) CreateOrder(userID uint, lines []LineInput, paymentMethod string) (*models.Order, *QRArtifact, error) {
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("order has no items: %w", models.ErrInvalidRequest)
	}
	if !models.ValidPaymentMethod(paymentMethod) {
		return nil, nil, fmt.Errorf("unknown payment method %q: %w", paymentMethod, models.ErrInvalidRequest)
	}

	var (
		total      float64
		orderItems []models.OrderItem
	)
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, nil, fmt.Errorf("quantity must be at least 1 for item %d: %w", line.ItemID, models.ErrInvalidRequest)
		}

		var item models.Item
		if err := s.DB.First(&item, line.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("item %d: %w", line.ItemID, models.ErrNotFound)
			}
			return nil, nil, err
		}

		ok, err := s.Stock.CheckAvailability(item.ID, line.Quantity)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, fmt.Errorf("%s: %w", item.Name, models.ErrInsufficientStock)
		}

		total += item.Price * float64(line.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ItemID:   item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: line.Quantity,
		})
	}

	order := models.Order{
		UserID:        userID,
		OrderItems:    orderItems,
		TotalAmount:   total,
		PaymentMethod: paymentMethod,
		PaymentStatus: models.PaymentPending,
		OrderStatus:   models.OrderPlaced,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.DB.Create(&order).Error; err != nil {
		return nil, nil, err
	}

	var artifact *QRArtifact
	if paymentMethod == models.PaymentMethodQR && s.QR != nil {
		a, err := s.QR.Generate(order.ID, total)
		if err != nil {
			// The order exists either way; the customer can retry the
			// payment reference from the payment screen.
			utils.ErrorLogger.Printf("qr generate for order %d: %v", order.ID, err)
		} else {
			artifact = a
		}
	}

	s.publish(hub.TopicStaff, hub.EventNewOrder, hub.NewOrderPayload{
		OrderID:       order.ID,
		UserID:        userID,
		TotalAmount:   total,
		PaymentMethod: paymentMethod,
	})
	if paymentMethod == models.PaymentMethodCOD {
		// Staff flag cash collection separately from the generic feed.
		s.publish(hub.TopicStaff, hub.EventCodOrder, hub.NewOrderPayload{
			OrderID:       order.ID,
			UserID:        userID,
			TotalAmount:   total,
			PaymentMethod: paymentMethod,
		})
	}

	return &order, artifact, nil
}

// UpdateOrderStatus moves an order forward through
// placed -> processing -> delivered. Transitions never regress.
// Delivering a cash-on-delivery order also marks its payment completed,
// since cash changes hands at the door.
func (s *OrderService) UpdateOrderStatus(orderID uint, newStatus string) (*models.Order, error) {
	newRank, ok := models.OrderStatusRank(newStatus)
	if !ok {
		return nil, fmt.Errorf("unknown order status %q: %w", newStatus, models.ErrInvalidRequest)
	}

	var order models.Order
	if err := s.DB.Preload("OrderItems").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
		}
		return nil, err
	}

	curRank, _ := models.OrderStatusRank(order.OrderStatus)
	if newRank <= curRank {
		return nil, fmt.Errorf("%s -> %s: %w", order.OrderStatus, newStatus, models.ErrInvalidTransition)
	}

	order.OrderStatus = newStatus
	if newStatus == models.OrderDelivered && order.PaymentMethod == models.PaymentMethodCOD {
		order.PaymentStatus = models.PaymentCompleted
	}
	order.UpdatedAt = time.Now()
	if err := s.DB.Save(&order).Error; err != nil {
		return nil, err
	}

	s.Cache.SetOrderStatus(context.Background(), order.ID, order.UserID, order.OrderStatus, order.PaymentStatus)

	s.publish(hub.TopicStaff, hub.EventOrderStatusUpdate, hub.OrderStatusPayload{
		OrderID:       order.ID,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
	})
	s.publish(hub.TopicUser(order.UserID), hub.EventOrderUpdate, hub.OrderStatusPayload{
		OrderID:       order.ID,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
	})

	return &order, nil
}

// GetOrder returns the order if the requester owns it or is staff.
func (s *OrderService) GetOrder(orderID, requesterID uint, role string) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("OrderItems").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
		}
		return nil, err
	}
	if order.UserID != requesterID && role != models.RoleAdmin {
		return nil, fmt.Errorf("order %d: %w", orderID, models.ErrUnauthorized)
	}
	return &order, nil
}

// ListOrders returns all orders for staff, or the requester's own
// orders otherwise, most recent first.
func (s *OrderService) ListOrders(requesterID uint, role string) ([]models.Order, error) {
	q := s.DB.Preload("OrderItems").Order("created_at DESC")
	if role != models.RoleAdmin {
		q = q.Where("user_id = ?", requesterID)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderStatus is the cheap status read behind the cache. It is
// scoped like GetOrder: owners and staff only.
func (s *OrderService) GetOrderStatus(ctx context.Context, orderID, requesterID uint, role string) (orderStatus, paymentStatus string, err error) {
	if uid, os, ps, ok := s.Cache.GetOrderStatus(ctx, orderID); ok {
		if uid != requesterID && role != models.RoleAdmin {
			return "", "", fmt.Errorf("order %d: %w", orderID, models.ErrUnauthorized)
		}
		return os, ps, nil
	}

	var order models.Order
	if err := s.DB.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
		}
		return "", "", err
	}
	if order.UserID != requesterID && role != models.RoleAdmin {
		return "", "", fmt.Errorf("order %d: %w", orderID, models.ErrUnauthorized)
	}
	s.Cache.SetOrderStatus(ctx, order.ID, order.UserID, order.OrderStatus, order.PaymentStatus)
	return order.OrderStatus, order.PaymentStatus, nil
}

// CompletePayment marks the payment completed and debits stock for
// every line, in line order. This is the single point in the system
// where stock is decremented, for both payment methods. A repeat call
// on an already-completed order returns it unchanged without touching
// stock. Items deleted since order placement are skipped; that partial
// success is logged for operator follow-up, not surfaced as a failure.
func (s *OrderService) CompletePayment(orderID, requesterID uint, role string) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("OrderItems").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
		}
		return nil, err
	}
	if order.UserID != requesterID && role != models.RoleAdmin {
		return nil, fmt.Errorf("order %d: %w", orderID, models.ErrUnauthorized)
	}

	if order.PaymentStatus == models.PaymentCompleted {
		return &order, nil
	}

	order.PaymentStatus = models.PaymentCompleted
	order.UpdatedAt = time.Now()
	if err := s.DB.Save(&order).Error; err != nil {
		return nil, err
	}

	for _, line := range order.OrderItems {
		if _, err := s.Stock.Debit(line.ItemID, line.Quantity); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				utils.ErrorLogger.Printf("order %d: item %d gone before debit, skipping", order.ID, line.ItemID)
				continue
			}
			utils.ErrorLogger.Printf("order %d: debit item %d: %v", order.ID, line.ItemID, err)
		}
	}

	s.Cache.SetOrderStatus(context.Background(), order.ID, order.UserID, order.OrderStatus, order.PaymentStatus)

	// Published after the debit loop so every stock_update for this
	// order precedes it.
	s.publish(hub.TopicStaff, hub.EventPaymentUpdate, hub.PaymentUpdatePayload{
		OrderID:       order.ID,
		PaymentStatus: order.PaymentStatus,
	})

	return &order, nil
}

func (s *OrderService) publish(topic, event string, data interface{}) {
	if s.Publisher == nil {
		return
	}
	s.Publisher.Publish(topic, event, data)
}
