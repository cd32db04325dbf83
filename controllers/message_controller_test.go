package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageRoutes(env *testEnv) func(r *gin.RouterGroup) {
	mc := NewMessageController(env.messages)
	return func(r *gin.RouterGroup) {
		r.POST("/api/messages", mc.SendMessage)
		r.GET("/api/messages", mc.ListMessages)
		r.GET("/api/messages/order/:orderId", mc.GetOrderMessages)
		r.GET("/api/messages/order/:orderId/chat/:participantId", mc.GetConversation)
		r.GET("/api/messages/chats/:orderId", mc.GetThreads)
		r.GET("/api/messages/:id", mc.GetMessage)
		r.PUT("/api/messages/:id", mc.UpdateMessage)
		r.DELETE("/api/messages/:id", mc.DeleteMessage)
	}
}

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	order := testutil.CreateOrder(t, env.db, env.customer.ID, testutil.Assigned(env.freelancer.ID, models.OrderStatusInProgress))
	router := routerAs(env.customer, messageRoutes(env))

	w := performRequest(t, router, "POST", "/api/messages", gin.H{
		"order_id":    order.ID,
		"receiver_id": env.freelancer.ID,
		"content":     "Please use <b>bold</b> headings & keep it short",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "<b>bold</b> headings & keep")
	response := decodeObject(t, w)
	assert.Equal(t, float64(env.customer.ID), response["sender_id"])
	assert.Equal(t, "carol", response["sender_name"])
	assert.Equal(t, "fiona", response["receiver_name"])

	notified := env.notifier.Notified()
	require.Len(t, notified, 1)
	assert.Equal(t, env.freelancer.ID, notified[0].ReceiverID)
}

func TestSendMessage_Errors(t *testing.T) {
	env := newTestEnv(t)
	order := testutil.CreateOrder(t, env.db, env.customer.ID, testutil.Assigned(env.freelancer.ID, models.OrderStatusInProgress))

	tests := []struct {
		name           string
		user           *models.User
		body           gin.H
		expectedStatus int
		expectedCode   string
	}{
		{"missing content", env.customer, gin.H{"order_id": order.ID, "receiver_id": env.freelancer.ID}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"blank content", env.customer, gin.H{"order_id": order.ID, "receiver_id": env.freelancer.ID, "content": "   "}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"outsider", env.other, gin.H{"order_id": order.ID, "receiver_id": env.freelancer.ID, "content": "hi"}, http.StatusForbidden, "FORBIDDEN"},
		{"unassigned freelancer", env.rival, gin.H{"order_id": order.ID, "receiver_id": env.customer.ID, "content": "hi"}, http.StatusForbidden, "FORBIDDEN"},
		{"admin cannot send", env.admin, gin.H{"order_id": order.ID, "receiver_id": env.customer.ID, "content": "hi"}, http.StatusForbidden, "FORBIDDEN"},
		{"wrong receiver", env.customer, gin.H{"order_id": order.ID, "receiver_id": env.rival.ID, "content": "hi"}, http.StatusBadRequest, "INVALID_RECEIVER"},
		{"missing order", env.customer, gin.H{"order_id": 9999, "receiver_id": env.freelancer.ID, "content": "hi"}, http.StatusNotFound, "ORDER_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := routerAs(tt.user, messageRoutes(env))
			w := performRequest(t, router, "POST", "/api/messages", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, decodeObject(t, w)["code"])
		})
	}
}

func TestOrderMessagesAndThreads(t *testing.T) {
	env := newTestEnv(t)
	order := testutil.CreateOrder(t, env.db, env.customer.ID)
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	testutil.CreateMessage(t, env.db, order.ID, env.freelancer.ID, env.customer.ID, "f1 question", base)
	testutil.CreateMessage(t, env.db, order.ID, env.rival.ID, env.customer.ID, "f2 question", base.Add(time.Minute))
	testutil.CreateMessage(t, env.db, order.ID, env.customer.ID, env.freelancer.ID, "answer f1", base.Add(2*time.Minute))
	testutil.CreateMessage(t, env.db, order.ID, env.rival.ID, env.customer.ID, "f2 again", base.Add(3*time.Minute))

	t.Run("customer sees whole order", func(t *testing.T) {
		w := performRequest(t, routerAs(env.customer, messageRoutes(env)), "GET", "/api/messages/order/"+itoa(order.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		messages := decodeList(t, w)
		require.Len(t, messages, 4)
		assert.Equal(t, "f1 question", messages[0]["content"])
		assert.Equal(t, "f2 again", messages[3]["content"])
	})

	t.Run("freelancer sees own conversation", func(t *testing.T) {
		w := performRequest(t, routerAs(env.rival, messageRoutes(env)), "GET", "/api/messages/order/"+itoa(order.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeList(t, w), 2)
	})

	t.Run("outsider forbidden", func(t *testing.T) {
		w := performRequest(t, routerAs(env.other, messageRoutes(env)), "GET", "/api/messages/order/"+itoa(order.ID), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("conversation", func(t *testing.T) {
		path := "/api/messages/order/" + itoa(order.ID) + "/chat/" + itoa(env.freelancer.ID)
		w := performRequest(t, routerAs(env.customer, messageRoutes(env)), "GET", path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		messages := decodeList(t, w)
		require.Len(t, messages, 2)
		assert.Equal(t, "answer f1", messages[1]["content"])
	})

	t.Run("threads with unread counts", func(t *testing.T) {
		w := performRequest(t, routerAs(env.customer, messageRoutes(env)), "GET", "/api/messages/chats/"+itoa(order.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		threads := decodeList(t, w)
		require.Len(t, threads, 2)

		assert.Equal(t, float64(env.rival.ID), threads[0]["participant_id"])
		assert.Equal(t, "frank", threads[0]["participant_name"])
		assert.Equal(t, "f2 again", threads[0]["last_message"])
		assert.Equal(t, float64(2), threads[0]["unread_count"])

		assert.Equal(t, float64(env.freelancer.ID), threads[1]["participant_id"])
		assert.Equal(t, float64(0), threads[1]["unread_count"])
	})
}

func TestMessageModeration(t *testing.T) {
	env := newTestEnv(t)
	order := testutil.CreateOrder(t, env.db, env.customer.ID, testutil.Assigned(env.freelancer.ID, models.OrderStatusInProgress))
	msg := testutil.CreateMessage(t, env.db, order.ID, env.freelancer.ID, env.customer.ID, "first draft", time.Now())
	path := "/api/messages/" + itoa(msg.ID)
	admin := routerAs(env.admin, messageRoutes(env))

	t.Run("list and get require admin", func(t *testing.T) {
		w := performRequest(t, routerAs(env.customer, messageRoutes(env)), "GET", "/api/messages", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = performRequest(t, admin, "GET", "/api/messages", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeList(t, w), 1)

		w = performRequest(t, admin, "GET", path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, order.Title, decodeObject(t, w)["order_title"])
	})

	t.Run("sender edits", func(t *testing.T) {
		w := performRequest(t, routerAs(env.customer, messageRoutes(env)), "PUT", path, gin.H{"content": "hijack"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = performRequest(t, routerAs(env.freelancer, messageRoutes(env)), "PUT", path, gin.H{"content": "final draft"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "final draft", decodeObject(t, w)["content"])

		w = performRequest(t, routerAs(env.freelancer, messageRoutes(env)), "PUT", path, gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("admin deletes", func(t *testing.T) {
		w := performRequest(t, routerAs(env.freelancer, messageRoutes(env)), "DELETE", path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = performRequest(t, admin, "DELETE", path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Message deleted successfully", decodeObject(t, w)["message"])

		w = performRequest(t, admin, "DELETE", path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "MESSAGE_NOT_FOUND", decodeObject(t, w)["code"])
	})
}
