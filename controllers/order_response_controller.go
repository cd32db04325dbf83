package controllers

import (
	"context"
	"net/http"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AvatarResolver turns a stored avatar key into a URL clients can load
type AvatarResolver interface {
	AvatarURL(ctx context.Context, key string) string
}

// OrderResponseController handles freelancer proposals
type OrderResponseController struct {
	orders  *services.OrderService
	avatars AvatarResolver
}

// NewOrderResponseController creates an OrderResponseController
func NewOrderResponseController(orders *services.OrderService, avatars AvatarResolver) *OrderResponseController {
	return &OrderResponseController{orders: orders, avatars: avatars}
}

// CreateResponseRequest represents the request body for responding to an order
type CreateResponseRequest struct {
	OrderID       uint             `json:"order_id" binding:"required"`
	Proposal      string           `json:"proposal" binding:"required"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	EstimatedTime int              `json:"estimated_time" binding:"required,gt=0"`
}

// UpdateResponseStatusRequest represents the request body for accepting or rejecting a response
type UpdateResponseStatusRequest struct {
	Status models.ResponseStatus `json:"status" binding:"required,oneof=accepted rejected"`
}

func (rc *OrderResponseController) resolveAvatar(ctx context.Context, resp *models.OrderResponse) {
	if resp.FreelancerAvatar == nil || rc.avatars == nil {
		return
	}
	url := rc.avatars.AvatarURL(ctx, *resp.FreelancerAvatar)
	if url == "" {
		resp.FreelancerAvatar = nil
		return
	}
	resp.FreelancerAvatar = &url
}

func (rc *OrderResponseController) resolveAvatars(ctx context.Context, responses []models.OrderResponse) {
	for i := range responses {
		rc.resolveAvatar(ctx, &responses[i])
	}
}

// CreateResponse handles POST /api/order-responses (freelancers only)
func (rc *OrderResponseController) CreateResponse(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req CreateResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := rc.orders.Respond(c.Request.Context(), caller, services.RespondInput{
		OrderID:       req.OrderID,
		Proposal:      req.Proposal,
		Price:         *req.Price,
		EstimatedTime: req.EstimatedTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	rc.resolveAvatar(c.Request.Context(), resp)
	c.JSON(http.StatusCreated, resp)
}

// ListOrderResponses handles GET /api/order-responses/order/:orderId
func (rc *OrderResponseController) ListOrderResponses(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}

	responses, err := rc.orders.ListResponses(c.Request.Context(), caller, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.resolveAvatars(c.Request.Context(), responses)
	c.JSON(http.StatusOK, responses)
}

// ListFreelancerResponses handles GET /api/order-responses/freelancer
func (rc *OrderResponseController) ListFreelancerResponses(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	responses, err := rc.orders.ListFreelancerResponses(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.resolveAvatars(c.Request.Context(), responses)
	c.JSON(http.StatusOK, responses)
}

// UpdateResponseStatus handles PUT /api/order-responses/:id/status
func (rc *OrderResponseController) UpdateResponseStatus(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateResponseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := rc.orders.SetResponseStatus(c.Request.Context(), caller, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.resolveAvatar(c.Request.Context(), resp)
	c.JSON(http.StatusOK, resp)
}

// DeleteResponse handles DELETE /api/order-responses/:id
func (rc *OrderResponseController) DeleteResponse(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := rc.orders.DeleteResponse(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "Order response deleted successfully")
}
