package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rakawidhi/canteen-app/hub"
	"github.com/rakawidhi/canteen-app/models"
)

func TestDebitRecomputesAvailability(t *testing.T) {
	db := setupTestDB(t)
	pub := &recordPublisher{}
	stock := NewStockService(db, pub)
	item := seedItem(t, db, "Nasi Goreng", 10, 5)

	newStock, err := stock.Debit(item.ID, 3)
	assert.NoError(t, err)
	assert.Equal(t, 2, newStock)

	var got models.Item
	assert.NoError(t, db.First(&got, item.ID).Error)
	assert.Equal(t, 2, got.Stock)
	assert.True(t, got.IsAvailable)

	newStock, err = stock.Debit(item.ID, 2)
	assert.NoError(t, err)
	assert.Equal(t, 0, newStock)

	assert.NoError(t, db.First(&got, item.ID).Error)
	assert.Equal(t, 0, got.Stock)
	assert.False(t, got.IsAvailable)
}

func TestDebitClampsAtZero(t *testing.T) {
	db := setupTestDB(t)
	stock := NewStockService(db, nil)
	item := seedItem(t, db, "Es Teh", 3, 2)

	newStock, err := stock.Debit(item.ID, 10)
	assert.NoError(t, err)
	assert.Equal(t, 0, newStock)

	var got models.Item
	assert.NoError(t, db.First(&got, item.ID).Error)
	assert.Equal(t, 0, got.Stock)
	assert.False(t, got.IsAvailable)
}

func TestDebitUnknownItem(t *testing.T) {
	db := setupTestDB(t)
	stock := NewStockService(db, nil)

	_, err := stock.Debit(12345, 1)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDebitPublishesStockUpdate(t *testing.T) {
	db := setupTestDB(t)
	pub := &recordPublisher{}
	stock := NewStockService(db, pub)
	item := seedItem(t, db, "Risoles", 5, 4)

	_, err := stock.Debit(item.ID, 1)
	assert.NoError(t, err)

	events := pub.recorded()
	if assert.Len(t, events, 1) {
		assert.Equal(t, hub.TopicStaff, events[0].Topic)
		assert.Equal(t, hub.EventStockUpdate, events[0].Event)
		payload := events[0].Data.(hub.StockUpdatePayload)
		assert.Equal(t, item.ID, payload.ItemID)
		assert.Equal(t, 3, payload.Stock)
	}
}

func TestSetStock(t *testing.T) {
	db := setupTestDB(t)
	stock := NewStockService(db, nil)
	item := seedItem(t, db, "Kopi", 4, 0)

	updated, err := stock.SetStock(item.ID, 12)
	assert.NoError(t, err)
	assert.Equal(t, 12, updated.Stock)
	assert.True(t, updated.IsAvailable)

	updated, err = stock.SetStock(item.ID, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
	assert.False(t, updated.IsAvailable)

	_, err = stock.SetStock(item.ID, -1)
	assert.True(t, errors.Is(err, models.ErrInvalidRequest))

	_, err = stock.SetStock(99999, 5)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCheckAvailability(t *testing.T) {
	db := setupTestDB(t)
	stock := NewStockService(db, nil)
	item := seedItem(t, db, "Bakso", 8, 3)

	ok, err := stock.CheckAvailability(item.ID, 3)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = stock.CheckAvailability(item.ID, 4)
	assert.NoError(t, err)
	assert.False(t, ok)

	// Missing item is simply unavailable, not an error.
	ok, err = stock.CheckAvailability(424242, 1)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentDebitsNeverGoNegative(t *testing.T) {
	db := setupTestDB(t)
	stock := NewStockService(db, nil)
	item := seedItem(t, db, "Teh Botol", 3, 30)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			newStock, err := stock.Debit(item.ID, 5)
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, newStock, 0)
		}()
	}
	wg.Wait()

	// Demand was 50 against 30 in stock: the ledger absorbs the
	// overdraft by clamping instead of going negative.
	var got models.Item
	assert.NoError(t, db.First(&got, item.ID).Error)
	assert.Equal(t, 0, got.Stock)
	assert.False(t, got.IsAvailable)
}
