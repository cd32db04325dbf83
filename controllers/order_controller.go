package controllers

import (
	"net/http"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OrderController handles order endpoints
type OrderController struct {
	orders *services.OrderService
}

// NewOrderController creates an OrderController
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Budget      *decimal.Decimal `json:"budget" binding:"required"`
	Deadline    string           `json:"deadline" binding:"required"`
	CategoryID  *uint            `json:"category_id"`
}

// UpdateOrderRequest represents the admin override body. Omitted fields are left unchanged.
type UpdateOrderRequest struct {
	Title        *string             `json:"title"`
	Description  *string             `json:"description"`
	Budget       *decimal.Decimal    `json:"budget"`
	Deadline     *string             `json:"deadline"`
	Status       *models.OrderStatus `json:"status"`
	CategoryID   *uint               `json:"category_id"`
	FreelancerID *uint               `json:"freelancer_id"`
}

// CreateOrder handles POST /api/orders (customers only)
func (oc *OrderController) CreateOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	deadline, err := services.ParseDeadline(req.Deadline)
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := oc.orders.Create(c.Request.Context(), caller, services.CreateOrderInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      *req.Budget,
		Deadline:    deadline,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /api/orders. The result depends on the caller's role.
func (oc *OrderController) ListOrders(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	orders, err := oc.orders.List(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListAllOrders handles GET /api/orders/all (admin only)
func (oc *OrderController) ListAllOrders(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	orders, err := oc.orders.ListAll(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListCustomerOrders handles GET /api/orders/customer/:customerId
func (oc *OrderController) ListCustomerOrders(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	customerID, ok := paramID(c, "customerId")
	if !ok {
		return
	}

	orders, err := oc.orders.ListByCustomer(c.Request.Context(), caller, customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/:id
func (oc *OrderController) GetOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrder handles PUT /api/orders/:id (admin override)
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := services.UpdateOrderInput{
		Title:        req.Title,
		Description:  req.Description,
		Budget:       req.Budget,
		Status:       req.Status,
		CategoryID:   req.CategoryID,
		FreelancerID: req.FreelancerID,
	}
	if req.Deadline != nil {
		deadline, err := services.ParseDeadline(*req.Deadline)
		if err != nil {
			respondError(c, err)
			return
		}
		in.Deadline = &deadline
	}

	order, err := oc.orders.Update(c.Request.Context(), caller, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CompleteOrder handles PUT /api/orders/:id/complete
func (oc *OrderController) CompleteOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.Complete(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder handles PUT /api/orders/:id/cancel (admin only)
func (oc *OrderController) CancelOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.Cancel(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/orders/:id (admin only)
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := oc.orders.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "Order deleted successfully")
}
