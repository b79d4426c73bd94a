package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/rakawidhi/canteen-app/hub"
	"github.com/rakawidhi/canteen-app/models"
)

// StockService is the only writer of Item.Stock and Item.IsAvailable.
// Every mutation is a read-modify-write under a per-item lock, so
// concurrent debits against the same item never lose updates.
type StockService struct {
	DB        *gorm.DB
	Publisher Publisher

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewStockService(db *gorm.DB, pub Publisher) *StockService {
	return &StockService{
		DB:        db,
		Publisher: pub,
		locks:     make(map[uint]*sync.Mutex),
	}
}

func (s *StockService) itemLock(itemID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[itemID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[itemID] = l
	}
	return l
}

// CheckAvailability reports whether the item exists and has at least
// qty units in stock. It is advisory only and reserves nothing; the
// stock may be gone by the time payment completes.
func (s *StockService) CheckAvailability(itemID uint, qty int) (bool, error) {
	var item models.Item
	if err := s.DB.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return item.Stock >= qty, nil
}

// Debit subtracts qty from the item's stock, clamping at zero instead
// of failing so concurrent overdraft degrades gracefully. It returns
// the new stock value and broadcasts it to staff.
func (s *StockService) Debit(itemID uint, qty int) (int, error) {
	l := s.itemLock(itemID)
	l.Lock()
	defer l.Unlock()

	var item models.Item
	if err := s.DB.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("item %d: %w", itemID, models.ErrNotFound)
		}
		return 0, err
	}

	newStock := item.Stock - qty
	if newStock < 0 {
		newStock = 0
	}
	item.Stock = newStock
	item.IsAvailable = newStock > 0
	item.UpdatedAt = time.Now()
	if err := s.DB.Save(&item).Error; err != nil {
		return 0, err
	}

	s.publishStock(item)
	return newStock, nil
}

// SetStock is the manual restock path: an absolute set that recomputes
// availability.
func (s *StockService) SetStock(itemID uint, stock int) (*models.Item, error) {
	if stock < 0 {
		return nil, fmt.Errorf("stock must not be negative: %w", models.ErrInvalidRequest)
	}

	l := s.itemLock(itemID)
	l.Lock()
	defer l.Unlock()

	var item models.Item
	if err := s.DB.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d: %w", itemID, models.ErrNotFound)
		}
		return nil, err
	}

	item.Stock = stock
	item.IsAvailable = stock > 0
	item.UpdatedAt = time.Now()
	if err := s.DB.Save(&item).Error; err != nil {
		return nil, err
	}

	s.publishStock(item)
	return &item, nil
}

// Stock visibility is staff-wide, never customer-scoped.
func (s *StockService) publishStock(item models.Item) {
	if s.Publisher == nil {
		return
	}
	s.Publisher.Publish(hub.TopicStaff, hub.EventStockUpdate, hub.StockUpdatePayload{
		ItemID: item.ID,
		Stock:  item.Stock,
	})
}
