package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Deployments without REDIS_ADDR run with a nil cache; every method
// must degrade to a miss instead of panicking.
func TestNilCacheIsSafe(t *testing.T) {
	var c *StatusCache

	assert.NotPanics(t, func() {
		c.SetOrderStatus(context.Background(), 1, 1, "placed", "pending")
	})

	_, _, _, ok := c.GetOrderStatus(context.Background(), 1)
	assert.False(t, ok)

	assert.NoError(t, c.Close())
}
