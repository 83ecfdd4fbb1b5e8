package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"karsdrive/internal/devstore"
	"karsdrive/internal/domain"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	store *devstore.Store
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store *devstore.Store) *OrderHandler {
	return &OrderHandler{store: store}
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	orders := h.store.ListOrders()
	if orders == nil {
		orders = []*domain.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.store.GetOrder(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var order domain.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	order.IsActive = order.Status.InProgress()

	c.JSON(http.StatusCreated, h.store.CreateOrder(&order))
}

// Patch handles PATCH /orders/:id
func (h *OrderHandler) Patch(c *gin.Context) {
	var patch devstore.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.store.PatchOrder(c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
