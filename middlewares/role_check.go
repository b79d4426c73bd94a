package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rakawidhi/canteen-app/models"
	"github.com/rakawidhi/canteen-app/utils"
)

// AdminOnly gates catalog management and order fulfillment behind the
// elevated role.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}
		if role != models.RoleAdmin {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("admin access required: %w", models.ErrUnauthorized))
			c.Abort()
			return
		}
		c.Next()
	}
}
