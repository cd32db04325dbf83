package controllers

import (
	"net/http"
	"testing"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archiveRoutes(env *testEnv) func(r *gin.RouterGroup) {
	ac := NewArchivedOrderController(env.orders, env.archives)
	return func(r *gin.RouterGroup) {
		r.POST("/api/archived-orders", ac.ArchiveOrder)
		r.GET("/api/archived-orders", ac.ListArchivedOrders)
		r.GET("/api/archived-orders/user", ac.ListUserArchivedOrders)
		r.GET("/api/archived-orders/:id", ac.GetArchivedOrder)
		r.PUT("/api/archived-orders/:id/review", ac.UpdateReview)
	}
}

func TestArchiveOrder(t *testing.T) {
	env := newTestEnv(t)
	order := testutil.CreateOrder(t, env.db, env.customer.ID, testutil.Assigned(env.freelancer.ID, models.OrderStatusCompleted))
	testutil.CreateResponse(t, env.db, order.ID, env.freelancer.ID)

	w := performRequest(t, routerAs(env.freelancer, archiveRoutes(env)), "POST", "/api/archived-orders", gin.H{"order_id": order.ID, "rating": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(t, routerAs(env.customer, archiveRoutes(env)), "POST", "/api/archived-orders", gin.H{
		"order_id": order.ID,
		"rating":   4,
		"review":   "Solid work",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	response := decodeObject(t, w)
	assert.Equal(t, float64(order.ID), response["order_id"])
	assert.Equal(t, float64(4), response["rating"])
	assert.Equal(t, order.Title, response["title"])
	assert.NotEmpty(t, response["completion_date"])

	var live int64
	require.NoError(t, env.db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&live).Error)
	assert.Zero(t, live)

	w = performRequest(t, routerAs(env.customer, archiveRoutes(env)), "POST", "/api/archived-orders", gin.H{"order_id": order.ID, "rating": 4})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestArchiveOrder_Errors(t *testing.T) {
	env := newTestEnv(t)
	running := testutil.CreateOrder(t, env.db, env.customer.ID, testutil.Assigned(env.freelancer.ID, models.OrderStatusInProgress))
	done := testutil.CreateOrder(t, env.db, env.customer.ID, testutil.Assigned(env.freelancer.ID, models.OrderStatusCompleted))

	tests := []struct {
		name           string
		body           gin.H
		expectedStatus int
		expectedCode   string
	}{
		{"not completed", gin.H{"order_id": running.ID, "rating": 3}, http.StatusBadRequest, "ORDER_NOT_COMPLETED"},
		{"rating too high", gin.H{"order_id": done.ID, "rating": 6}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"rating missing", gin.H{"order_id": done.ID}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing order", gin.H{"order_id": 9999, "rating": 3}, http.StatusNotFound, "ORDER_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, routerAs(env.customer, archiveRoutes(env)), "POST", "/api/archived-orders", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, decodeObject(t, w)["code"])
		})
	}
}

func TestArchivedOrderQueries(t *testing.T) {
	env := newTestEnv(t)
	order := testutil.CreateOrder(t, env.db, env.customer.ID, testutil.Assigned(env.freelancer.ID, models.OrderStatusCompleted))
	w := performRequest(t, routerAs(env.customer, archiveRoutes(env)), "POST", "/api/archived-orders", gin.H{"order_id": order.ID, "rating": 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	archivedID := uint(decodeObject(t, w)["id"].(float64))
	path := "/api/archived-orders/" + itoa(archivedID)

	t.Run("admin list", func(t *testing.T) {
		w := performRequest(t, routerAs(env.customer, archiveRoutes(env)), "GET", "/api/archived-orders", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = performRequest(t, routerAs(env.admin, archiveRoutes(env)), "GET", "/api/archived-orders", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeList(t, w), 1)
	})

	t.Run("user list", func(t *testing.T) {
		for _, tt := range []struct {
			user     *models.User
			expected int
		}{
			{env.customer, 1},
			{env.freelancer, 1},
			{env.other, 0},
		} {
			w := performRequest(t, routerAs(tt.user, archiveRoutes(env)), "GET", "/api/archived-orders/user", nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Len(t, decodeList(t, w), tt.expected, tt.user.Username)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := performRequest(t, routerAs(env.freelancer, archiveRoutes(env)), "GET", path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeObject(t, w)
		assert.Equal(t, "carol", response["customer_name"])
		assert.Equal(t, "fiona", response["freelancer_name"])

		w = performRequest(t, routerAs(env.other, archiveRoutes(env)), "GET", path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = performRequest(t, routerAs(env.admin, archiveRoutes(env)), "GET", "/api/archived-orders/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("review", func(t *testing.T) {
		w := performRequest(t, routerAs(env.freelancer, archiveRoutes(env)), "PUT", path+"/review", gin.H{"rating": 5})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = performRequest(t, routerAs(env.customer, archiveRoutes(env)), "PUT", path+"/review", gin.H{"rating": 5, "review": "Even better on reflection"})
		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeObject(t, w)
		assert.Equal(t, float64(5), response["rating"])
		assert.Equal(t, "Even better on reflection", response["review"])

		w = performRequest(t, routerAs(env.customer, archiveRoutes(env)), "PUT", path+"/review", gin.H{"rating": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
