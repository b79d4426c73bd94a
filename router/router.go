package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rakawidhi/canteen-app/controllers"
	"github.com/rakawidhi/canteen-app/hub"
	"github.com/rakawidhi/canteen-app/middlewares"
	"github.com/rakawidhi/canteen-app/services"
)

type Deps struct {
	DB        *gorm.DB
	Hub       *hub.Hub
	Orders    *services.OrderService
	Stock     *services.StockService
	Uploader  services.Uploader
	Publisher services.Publisher
	UploadDir string
	Limiter   *middlewares.RateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	// Middleware added after route registration never reaches the
	// registered handlers, so the limiter must be installed here.
	if d.Limiter != nil {
		r.Use(d.Limiter.RateLimit())
	}

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	itemCtrl := controllers.NewItemController(d.DB, d.Stock, d.Uploader, d.Publisher)
	orderCtrl := controllers.NewOrderController(d.Orders)
	wsCtrl := controllers.NewWSController(d.Hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// -- CATALOG (public reads) --
	r.GET("/items", itemCtrl.GetAllItems)
	r.GET("/items/:item_id", itemCtrl.GetItemByID)
	r.GET("/categories/:category/items", itemCtrl.GetItemsByCategory)

	// -- NOTIFICATIONS (websocket handshake joins topics by role) --
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("", wsCtrl.Handle)
	}

	// -- ORDERS (any authenticated user) --
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/orders", orderCtrl.CreateOrder)
		auth.GET("/orders", orderCtrl.GetAllOrders)
		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		auth.GET("/orders/:order_id/status", orderCtrl.GetOrderStatus)
		auth.PUT("/orders/:order_id/payment", orderCtrl.CompletePayment)
	}

	// -- ADMIN (catalog management and fulfillment) --
	admin := r.Group("/")
	admin.Use(middlewares.AuthMiddleware(), middlewares.AdminOnly())
	{
		admin.POST("/items", itemCtrl.CreateItem)
		admin.PUT("/items/:item_id", itemCtrl.UpdateItem)
		admin.DELETE("/items/:item_id", itemCtrl.DeleteItem)
		admin.PUT("/items/:item_id/stock", itemCtrl.UpdateItemStock)

		admin.PUT("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	}

	return r
}
