package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rakawidhi/canteen-app/models"
	"github.com/rakawidhi/canteen-app/services"
	"github.com/rakawidhi/canteen-app/utils"
)

type OrderController struct {
	Service *services.OrderService
}

func NewOrderController(svc *services.OrderService) *OrderController {
	return &OrderController{Service: svc}
}

// requester pulls the identity the auth middleware stored on the
// context. The core never authenticates; it only authorizes with what
// it is given.
func requester(c *gin.Context) (uint, string) {
	id, _ := c.Get("user_id")
	role, _ := c.Get("role")
	uid, _ := id.(uint)
	r, _ := role.(string)
	return uid, r
}

func orderParam(c *gin.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid order id: %w", models.ErrInvalidRequest)
	}
	return uint(id), nil
}

// CreateOrder -> place an order against current stock
func (oc *OrderController) CreateOrder(c *gin.Context) {
	userID, _ := requester(c)

	var body struct {
		Items         []services.LineInput `json:"items"`
		PaymentMethod string               `json:"payment_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, artifact, err := oc.Service.CreateOrder(userID, body.Items, body.PaymentMethod)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order created", gin.H{
		"order":      order,
		"payment_qr": artifact,
	})
}

// GetAllOrders -> staff see everything, customers see their own
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	userID, role := requester(c)

	orders, err := oc.Service.ListOrders(userID, role)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, err := orderParam(c)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	userID, role := requester(c)

	order, err := oc.Service.GetOrder(orderID, userID, role)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetOrderStatus -> cheap status poll, cache-backed
func (oc *OrderController) GetOrderStatus(c *gin.Context) {
	orderID, err := orderParam(c)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	userID, role := requester(c)

	orderStatus, paymentStatus, err := oc.Service.GetOrderStatus(c.Request.Context(), orderID, userID, role)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status", gin.H{
		"order_id":       orderID,
		"order_status":   orderStatus,
		"payment_status": paymentStatus,
	})
}

// UpdateOrderStatus -> staff fulfillment, forward-only
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, err := orderParam(c)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.UpdateOrderStatus(orderID, body.Status)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// CompletePayment -> confirm payment and debit stock
func (oc *OrderController) CompletePayment(c *gin.Context) {
	orderID, err := orderParam(c)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	userID, role := requester(c)

	order, err := oc.Service.CompletePayment(orderID, userID, role)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment completed", order)
}
