// Package policy holds the authorization predicates shared by every handler.
//
// All predicates are pure and fail closed: a zero caller, an unknown role or
// a missing resource always denies.
package policy

import (
	"github.com/freelance-platform/marketplace-api/models"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID   uint
	Role models.Role
}

// Known reports whether the caller carries a usable identity.
func (c Caller) Known() bool {
	return c.ID != 0 && c.Role.Valid()
}

func (c Caller) is(role models.Role) bool {
	return c.Known() && c.Role == role
}

// CanModerate reports whether the caller has admin rights.
func CanModerate(c Caller) bool {
	return c.is(models.RoleAdmin)
}

func isAssigned(c Caller, o *models.Order) bool {
	return o.FreelancerID != nil && *o.FreelancerID == c.ID
}

// CanViewOrder: admin, the order's customer, the assigned freelancer, or anyone for an open order.
func CanViewOrder(c Caller, o *models.Order) bool {
	if o == nil || !c.Known() {
		return false
	}
	switch {
	case CanModerate(c):
		return true
	case c.is(models.RoleCustomer) && o.CustomerID == c.ID:
		return true
	case c.is(models.RoleFreelancer) && isAssigned(c, o):
		return true
	}
	return o.Status == models.OrderStatusOpen
}

// CanMessage: the owning customer, the assigned freelancer, or any freelancer
// while the order is open and nobody is assigned.
func CanMessage(c Caller, o *models.Order) bool {
	if o == nil || !c.Known() {
		return false
	}
	switch c.Role {
	case models.RoleCustomer:
		return o.CustomerID == c.ID
	case models.RoleFreelancer:
		if isAssigned(c, o) {
			return true
		}
		return o.Status == models.OrderStatusOpen && o.FreelancerID == nil
	}
	return false
}

// CanManageOrder: the order's customer or an admin.
func CanManageOrder(c Caller, o *models.Order) bool {
	if o == nil || !c.Known() {
		return false
	}
	return CanModerate(c) || (c.is(models.RoleCustomer) && o.CustomerID == c.ID)
}

// CanArchive: the order's customer or an admin, and only once the order is completed.
func CanArchive(c Caller, o *models.Order) bool {
	return CanManageOrder(c, o) && o.Status == models.OrderStatusCompleted
}

// CanViewCustomerOrders: admins, or customers looking at their own orders.
func CanViewCustomerOrders(c Caller, customerID uint) bool {
	if customerID == 0 {
		return false
	}
	return CanModerate(c) || (c.is(models.RoleCustomer) && c.ID == customerID)
}

// CanEditMessage: the original sender or an admin.
func CanEditMessage(c Caller, m *models.Message) bool {
	if m == nil || !c.Known() {
		return false
	}
	return CanModerate(c) || m.SenderID == c.ID
}

// CanDeleteResponse: the freelancer who wrote a still pending response.
func CanDeleteResponse(c Caller, r *models.OrderResponse) bool {
	if r == nil || !c.is(models.RoleFreelancer) {
		return false
	}
	return r.FreelancerID == c.ID && r.Status == models.ResponseStatusPending
}

// CanViewArchived: either party of the archived order or an admin.
func CanViewArchived(c Caller, a *models.ArchivedOrder) bool {
	if a == nil || !c.Known() {
		return false
	}
	if CanModerate(c) || a.CustomerID == c.ID {
		return true
	}
	return a.FreelancerID != nil && *a.FreelancerID == c.ID
}

// CanReview: the archived order's customer or an admin.
func CanReview(c Caller, a *models.ArchivedOrder) bool {
	if a == nil || !c.Known() {
		return false
	}
	return CanModerate(c) || a.CustomerID == c.ID
}

// CanManageResponses: whoever manages the order decides on its responses.
func CanManageResponses(c Caller, o *models.Order) bool {
	return CanManageOrder(c, o)
}
