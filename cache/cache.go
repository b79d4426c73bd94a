package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyOrderStatus = "order:status:%d"
	statusTTL      = 30 * time.Second
)

type orderStatus struct {
	UserID        uint   `json:"user_id"`
	OrderStatus   string `json:"order_status"`
	PaymentStatus string `json:"payment_status"`
}

// StatusCache is a short-TTL Redis cache in front of order status
// reads. All methods are nil-receiver safe so callers can wire it only
// when REDIS_ADDR is configured.
type StatusCache struct {
	rdb *redis.Client
}

func New(addr string) *StatusCache {
	return &StatusCache{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *StatusCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// SetOrderStatus caches the order's status pair along with its owner,
// so cached reads can still be authorized.
func (c *StatusCache) SetOrderStatus(ctx context.Context, orderID, userID uint, order, payment string) {
	if c == nil || c.rdb == nil {
		return
	}
	b, err := json.Marshal(orderStatus{UserID: userID, OrderStatus: order, PaymentStatus: payment})
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, fmt.Sprintf(keyOrderStatus, orderID), b, statusTTL).Err()
}

func (c *StatusCache) GetOrderStatus(ctx context.Context, orderID uint) (userID uint, order, payment string, ok bool) {
	if c == nil || c.rdb == nil {
		return 0, "", "", false
	}
	s, err := c.rdb.Get(ctx, fmt.Sprintf(keyOrderStatus, orderID)).Result()
	if err != nil {
		return 0, "", "", false
	}
	var st orderStatus
	if err := json.Unmarshal([]byte(s), &st); err != nil {
		return 0, "", "", false
	}
	return st.UserID, st.OrderStatus, st.PaymentStatus, true
}
