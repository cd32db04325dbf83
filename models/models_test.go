package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "categories", Category{}.TableName())
	assert.Equal(t, "orders", Order{}.TableName())
	assert.Equal(t, "order_responses", OrderResponse{}.TableName())
	assert.Equal(t, "messages", Message{}.TableName())
	assert.Equal(t, "archived_orders", ArchivedOrder{}.TableName())
}

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleCustomer, true},
		{RoleFreelancer, true},
		{RoleAdmin, true},
		{"", false},
		{"moderator", false},
		{"ADMIN", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Valid())
		})
	}
}

func TestOrderStatus(t *testing.T) {
	tests := []struct {
		status             OrderStatus
		valid              bool
		requiresFreelancer bool
	}{
		{OrderStatusOpen, true, false},
		{OrderStatusInProgress, true, true},
		{OrderStatusCompleted, true, true},
		{OrderStatusCancelled, true, false},
		{"archived", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
			assert.Equal(t, tt.requiresFreelancer, tt.status.RequiresFreelancer())
		})
	}
}

func TestUserJSONHidesSecrets(t *testing.T) {
	key := "avatars/1/a.png"
	user := User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "hash", Avatar: &key}

	body, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(body), "hash")
	assert.NotContains(t, string(body), key)
	assert.Contains(t, string(body), `"role"`)
}

func TestBudgetMarshalsAsNumber(t *testing.T) {
	order := Order{Title: "Logo", Budget: decimal.RequireFromString("150.50")}

	body, err := json.Marshal(order)
	require.NoError(t, err)

	assert.Contains(t, string(body), `"budget":150.5`)
}
