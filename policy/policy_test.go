package policy

import (
	"testing"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

var (
	admin      = Caller{ID: 1, Role: models.RoleAdmin}
	customer   = Caller{ID: 2, Role: models.RoleCustomer}
	freelancer = Caller{ID: 3, Role: models.RoleFreelancer}
	stranger   = Caller{ID: 4, Role: models.RoleFreelancer}
	otherCust  = Caller{ID: 5, Role: models.RoleCustomer}
)

func openOrder() *models.Order {
	return &models.Order{ID: 10, CustomerID: customer.ID, Status: models.OrderStatusOpen}
}

func assignedOrder(status models.OrderStatus) *models.Order {
	return &models.Order{ID: 11, CustomerID: customer.ID, FreelancerID: uintPtr(freelancer.ID), Status: status}
}

func TestCanViewOrder(t *testing.T) {
	tests := []struct {
		name   string
		caller Caller
		order  *models.Order
		want   bool
	}{
		{"admin sees any order", admin, assignedOrder(models.OrderStatusCompleted), true},
		{"customer sees own order", customer, assignedOrder(models.OrderStatusInProgress), true},
		{"assigned freelancer sees order", freelancer, assignedOrder(models.OrderStatusInProgress), true},
		{"other freelancer sees open order", stranger, openOrder(), true},
		{"other customer sees open order", otherCust, openOrder(), true},
		{"other freelancer cannot see in progress order", stranger, assignedOrder(models.OrderStatusInProgress), false},
		{"other customer cannot see completed order", otherCust, assignedOrder(models.OrderStatusCompleted), false},
		{"nil order denied", admin, nil, false},
		{"zero caller denied", Caller{}, openOrder(), false},
		{"unknown role denied", Caller{ID: 9, Role: "guest"}, openOrder(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewOrder(tt.caller, tt.order))
		})
	}
}

func TestCanMessage(t *testing.T) {
	tests := []struct {
		name   string
		caller Caller
		order  *models.Order
		want   bool
	}{
		{"owning customer", customer, openOrder(), true},
		{"owning customer on assigned order", customer, assignedOrder(models.OrderStatusInProgress), true},
		{"other customer", otherCust, openOrder(), false},
		{"any freelancer on open unassigned order", stranger, openOrder(), true},
		{"assigned freelancer", freelancer, assignedOrder(models.OrderStatusInProgress), true},
		{"assigned freelancer after completion", freelancer, assignedOrder(models.OrderStatusCompleted), true},
		{"other freelancer on assigned order", stranger, assignedOrder(models.OrderStatusInProgress), false},
		{"freelancer on cancelled order", stranger, &models.Order{ID: 12, CustomerID: customer.ID, Status: models.OrderStatusCancelled}, false},
		{"admin is not a party", admin, openOrder(), false},
		{"nil order", customer, nil, false},
		{"zero caller", Caller{Role: models.RoleCustomer}, openOrder(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMessage(tt.caller, tt.order))
		})
	}
}

func TestCanArchive(t *testing.T) {
	tests := []struct {
		name   string
		caller Caller
		order  *models.Order
		want   bool
	}{
		{"customer archives completed order", customer, assignedOrder(models.OrderStatusCompleted), true},
		{"admin archives completed order", admin, assignedOrder(models.OrderStatusCompleted), true},
		{"customer cannot archive in progress order", customer, assignedOrder(models.OrderStatusInProgress), false},
		{"freelancer cannot archive", freelancer, assignedOrder(models.OrderStatusCompleted), false},
		{"other customer cannot archive", otherCust, assignedOrder(models.OrderStatusCompleted), false},
		{"nil order", admin, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanArchive(tt.caller, tt.order))
		})
	}
}

func TestCanModerate(t *testing.T) {
	assert.True(t, CanModerate(admin))
	assert.False(t, CanModerate(customer))
	assert.False(t, CanModerate(freelancer))
	assert.False(t, CanModerate(Caller{Role: models.RoleAdmin}))
}

func TestCanManageResponses(t *testing.T) {
	assert.True(t, CanManageResponses(customer, openOrder()))
	assert.True(t, CanManageResponses(admin, openOrder()))
	assert.False(t, CanManageResponses(otherCust, openOrder()))
	assert.False(t, CanManageResponses(freelancer, assignedOrder(models.OrderStatusInProgress)))
	assert.False(t, CanManageResponses(customer, nil))
}

func TestCanViewCustomerOrders(t *testing.T) {
	assert.True(t, CanViewCustomerOrders(admin, customer.ID))
	assert.True(t, CanViewCustomerOrders(customer, customer.ID))
	assert.False(t, CanViewCustomerOrders(otherCust, customer.ID))
	assert.False(t, CanViewCustomerOrders(Caller{ID: customer.ID, Role: models.RoleFreelancer}, customer.ID))
	assert.False(t, CanViewCustomerOrders(admin, 0))
}

func TestCanEditMessage(t *testing.T) {
	msg := &models.Message{ID: 1, SenderID: freelancer.ID, ReceiverID: customer.ID}

	assert.True(t, CanEditMessage(freelancer, msg))
	assert.True(t, CanEditMessage(admin, msg))
	assert.False(t, CanEditMessage(customer, msg))
	assert.False(t, CanEditMessage(freelancer, nil))
}

func TestCanDeleteResponse(t *testing.T) {
	pending := &models.OrderResponse{ID: 1, FreelancerID: freelancer.ID, Status: models.ResponseStatusPending}
	accepted := &models.OrderResponse{ID: 2, FreelancerID: freelancer.ID, Status: models.ResponseStatusAccepted}

	assert.True(t, CanDeleteResponse(freelancer, pending))
	assert.False(t, CanDeleteResponse(freelancer, accepted))
	assert.False(t, CanDeleteResponse(stranger, pending))
	assert.False(t, CanDeleteResponse(admin, pending))
	assert.False(t, CanDeleteResponse(freelancer, nil))
}

func TestArchivedOrderAccess(t *testing.T) {
	archived := &models.ArchivedOrder{ID: 1, CustomerID: customer.ID, FreelancerID: uintPtr(freelancer.ID)}

	assert.True(t, CanViewArchived(customer, archived))
	assert.True(t, CanViewArchived(freelancer, archived))
	assert.True(t, CanViewArchived(admin, archived))
	assert.False(t, CanViewArchived(stranger, archived))
	assert.False(t, CanViewArchived(customer, nil))

	assert.True(t, CanReview(customer, archived))
	assert.True(t, CanReview(admin, archived))
	assert.False(t, CanReview(freelancer, archived))
	assert.False(t, CanReview(Caller{}, archived))
}
