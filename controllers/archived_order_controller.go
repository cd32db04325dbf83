package controllers

import (
	"net/http"

	"github.com/freelance-platform/marketplace-api/services"
	"github.com/gin-gonic/gin"
)

// ArchivedOrderController handles archiving and reviews of completed orders
type ArchivedOrderController struct {
	orders   *services.OrderService
	archives *services.ArchiveService
}

// NewArchivedOrderController creates an ArchivedOrderController
func NewArchivedOrderController(orders *services.OrderService, archives *services.ArchiveService) *ArchivedOrderController {
	return &ArchivedOrderController{orders: orders, archives: archives}
}

// ArchiveOrderRequest represents the request body for archiving a completed order
type ArchiveOrderRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Review  string `json:"review"`
}

// ReviewRequest represents the request body for updating a review
type ReviewRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review"`
}

// ArchiveOrder handles POST /api/archived-orders
func (ac *ArchivedOrderController) ArchiveOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req ArchiveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	archived, err := ac.orders.Archive(c.Request.Context(), caller, services.ArchiveInput{
		OrderID: req.OrderID,
		Rating:  req.Rating,
		Review:  req.Review,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, archived)
}

// ListArchivedOrders handles GET /api/archived-orders (admin only)
func (ac *ArchivedOrderController) ListArchivedOrders(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	archived, err := ac.archives.ListAll(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, archived)
}

// ListUserArchivedOrders handles GET /api/archived-orders/user
func (ac *ArchivedOrderController) ListUserArchivedOrders(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	archived, err := ac.archives.ListForUser(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, archived)
}

// GetArchivedOrder handles GET /api/archived-orders/:id
func (ac *ArchivedOrderController) GetArchivedOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	archived, err := ac.archives.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, archived)
}

// UpdateReview handles PUT /api/archived-orders/:id/review
func (ac *ArchivedOrderController) UpdateReview(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	archived, err := ac.archives.UpdateReview(c.Request.Context(), caller, id, services.ReviewInput{
		Rating: req.Rating,
		Review: req.Review,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, archived)
}
