package controllers

import (
	"net/http"

	"github.com/freelance-platform/marketplace-api/services"
	"github.com/gin-gonic/gin"
)

// MessageController handles per-order messaging.
// Message bodies are written with PureJSON so user text is not HTML-escaped.
type MessageController struct {
	messages *services.MessageService
}

// NewMessageController creates a MessageController
func NewMessageController(messages *services.MessageService) *MessageController {
	return &MessageController{messages: messages}
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	OrderID    uint   `json:"order_id" binding:"required"`
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// UpdateMessageRequest represents the request body for editing a message
type UpdateMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage handles POST /api/messages
func (mc *MessageController) SendMessage(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := mc.messages.Send(c.Request.Context(), caller, services.SendInput{
		OrderID:    req.OrderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.PureJSON(http.StatusCreated, msg)
}

// GetOrderMessages handles GET /api/messages/order/:orderId
func (mc *MessageController) GetOrderMessages(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}

	messages, err := mc.messages.ListForOrder(c.Request.Context(), caller, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, messages)
}

// GetConversation handles GET /api/messages/order/:orderId/chat/:participantId
func (mc *MessageController) GetConversation(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}
	participantID, ok := paramID(c, "participantId")
	if !ok {
		return
	}

	messages, err := mc.messages.Conversation(c.Request.Context(), caller, orderID, participantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, messages)
}

// GetThreads handles GET /api/messages/chats/:orderId
func (mc *MessageController) GetThreads(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}

	threads, err := mc.messages.Threads(c.Request.Context(), caller, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, threads)
}

// ListMessages handles GET /api/messages (admin only)
func (mc *MessageController) ListMessages(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	messages, err := mc.messages.ListAll(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, messages)
}

// GetMessage handles GET /api/messages/:id (admin only)
func (mc *MessageController) GetMessage(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	msg, err := mc.messages.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, msg)
}

// UpdateMessage handles PUT /api/messages/:id (sender or admin)
func (mc *MessageController) UpdateMessage(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := mc.messages.UpdateContent(c.Request.Context(), caller, id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, msg)
}

// DeleteMessage handles DELETE /api/messages/:id (admin only)
func (mc *MessageController) DeleteMessage(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := mc.messages.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "Message deleted successfully")
}
