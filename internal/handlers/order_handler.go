package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"staff_orders/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.Health)
	router.POST("/submit-order", h.SubmitOrder)
	router.GET("/get-orders", h.GetOrders)
	router.DELETE("/delete-order/:id", h.DeleteOrder)
	router.DELETE("/delete-all-orders", h.DeleteAllOrders)
	router.POST("/delete-item/:order_id/:item_index", h.DeleteItem)
	router.GET("/order-status", h.OrderStatus)
}

func (h *OrderHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type submitOrderRequest struct {
	Name  string                   `json:"name"`
	Phone string                   `json:"phone"`
	Table string                   `json:"table"`
	Items []map[string]interface{} `json:"items"`
	Total interface{}              `json:"total"`
}

func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	var req submitOrderRequest
	// Intake is deliberately tolerant: a malformed or missing body is treated
	// as an empty order rather than rejected.
	if err := c.ShouldBindJSON(&req); err != nil {
		req = submitOrderRequest{}
	}

	orderID, err := h.orderService.Submit(req.Name, req.Phone, req.Table, req.Items, numberOrZero(req.Total))
	if err != nil {
		logrus.WithError(err).Error("error in /submit-order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Order received successfully!",
		"order_id": orderID,
	})
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	orders, err := h.orderService.ActiveOrders()
	if err != nil {
		logrus.WithError(err).Error("error in /get-orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	if err := h.orderService.CompleteOrder(uint(id)); err != nil {
		logrus.WithError(err).Error("error in /delete-order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order marked as completed!"})
}

func (h *OrderHandler) DeleteAllOrders(c *gin.Context) {
	if err := h.orderService.CompleteAllOrders(); err != nil {
		logrus.WithError(err).Error("error in /delete-all-orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All orders marked as completed!"})
}

func (h *OrderHandler) DeleteItem(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}
	itemIndex, err := strconv.Atoi(c.Param("item_index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item index"})
		return
	}

	err = h.orderService.RemoveItem(uint(orderID), itemIndex)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, services.ErrItemIndexOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item index out of range"})
	case err != nil:
		logrus.WithError(err).Error("error in /delete-item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Item deleted and total updated!"})
	}
}

func (h *OrderHandler) OrderStatus(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"found": false, "error": "phone_required"})
		return
	}

	// An unparseable order id falls back to the phone-only lookup.
	var orderID uint
	if raw := c.Query("order"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			orderID = uint(v)
		}
	}

	status, err := h.orderService.StatusByPhone(phone, orderID)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"found": false})
	case err != nil:
		logrus.WithError(err).Error("error in /order-status")
		c.JSON(http.StatusInternalServerError, gin.H{"found": false, "error": "server"})
	default:
		c.JSON(http.StatusOK, gin.H{"found": true, "status": status})
	}
}

// numberOrZero coerces the advisory client total; anything non-numeric is 0.
func numberOrZero(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return 0
}
