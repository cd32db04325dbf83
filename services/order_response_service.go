package services

import (
	"context"
	"errors"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RespondInput is a freelancer's proposal for an order
type RespondInput struct {
	OrderID       uint
	Proposal      string
	Price         decimal.Decimal
	EstimatedTime int
}

func (in RespondInput) validate() error {
	if in.OrderID == 0 {
		return Invalid("order_id is required")
	}
	if err := requireText("proposal", in.Proposal); err != nil {
		return err
	}
	if err := requireAmount("price", in.Price); err != nil {
		return err
	}
	if in.EstimatedTime <= 0 {
		return Invalid("estimated_time must be greater than zero")
	}
	return nil
}

func responseQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.OrderResponse{}).
		Select("order_responses.*, fu.username AS freelancer_name, fu.avatar AS freelancer_avatar, " +
			"o.title AS order_title, o.status AS order_status, cu.username AS customer_name").
		Joins("LEFT JOIN users fu ON fu.id = order_responses.freelancer_id").
		Joins("LEFT JOIN orders o ON o.id = order_responses.order_id").
		Joins("LEFT JOIN users cu ON cu.id = o.customer_id")
}

func (s *OrderService) loadResponse(ctx context.Context, id uint) (*models.OrderResponse, error) {
	var resp models.OrderResponse
	if err := responseQuery(s.store.DB(ctx)).Where("order_responses.id = ?", id).Take(&resp).Error; err != nil {
		return nil, storeError("failed to load order response", err, ErrResponseNotFound)
	}
	return &resp, nil
}

func (s *OrderService) listResponses(ctx context.Context, where string, args ...interface{}) ([]models.OrderResponse, error) {
	responses := []models.OrderResponse{}
	err := responseQuery(s.store.DB(ctx)).
		Where(where, args...).
		Order("order_responses.created_at DESC").
		Order("order_responses.id DESC").
		Find(&responses).Error
	if err != nil {
		return nil, storeError("failed to list order responses", err, nil)
	}
	return responses, nil
}

// Respond records a freelancer's proposal on an open order. A freelancer
// can respond to an order only once.
func (s *OrderService) Respond(ctx context.Context, caller policy.Caller, in RespondInput) (*models.OrderResponse, error) {
	if !caller.Known() || caller.Role != models.RoleFreelancer {
		return nil, &Error{Kind: KindForbidden, Code: ErrForbidden.Code, Message: "Only freelancers can respond to orders"}
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	resp := models.OrderResponse{
		OrderID:       in.OrderID,
		FreelancerID:  caller.ID,
		Proposal:      in.Proposal,
		Price:         in.Price,
		EstimatedTime: in.EstimatedTime,
		Status:        models.ResponseStatusPending,
	}
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		order, err := lockOrder(tx, in.OrderID)
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusOpen {
			return ErrOrderNotOpen
		}

		var existing int64
		if err := tx.Model(&models.OrderResponse{}).
			Where("order_id = ? AND freelancer_id = ?", in.OrderID, caller.ID).
			Count(&existing).Error; err != nil {
			return storeError("failed to check existing responses", err, nil)
		}
		if existing > 0 {
			return ErrDuplicateResponse
		}

		if err := tx.Create(&resp).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateResponse
			}
			return storeError("failed to create order response", err, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadResponse(ctx, resp.ID)
}

// ListResponses returns the responses on an order. The order's customer and
// admins see all of them; a freelancer sees only their own.
func (s *OrderService) ListResponses(ctx context.Context, caller policy.Caller, orderID uint) ([]models.OrderResponse, error) {
	var order models.Order
	if err := s.store.DB(ctx).First(&order, orderID).Error; err != nil {
		return nil, storeError("failed to load order", err, ErrOrderNotFound)
	}
	switch {
	case policy.CanManageResponses(caller, &order):
		return s.listResponses(ctx, "order_responses.order_id = ?", orderID)
	case caller.Known() && caller.Role == models.RoleFreelancer:
		return s.listResponses(ctx, "order_responses.order_id = ? AND order_responses.freelancer_id = ?", orderID, caller.ID)
	}
	return nil, ErrForbidden
}

// ListFreelancerResponses returns the caller's own responses across all orders
func (s *OrderService) ListFreelancerResponses(ctx context.Context, caller policy.Caller) ([]models.OrderResponse, error) {
	if !caller.Known() || caller.Role != models.RoleFreelancer {
		return nil, ErrForbidden
	}
	return s.listResponses(ctx, "order_responses.freelancer_id = ?", caller.ID)
}

// SetResponseStatus accepts or rejects a pending response
func (s *OrderService) SetResponseStatus(ctx context.Context, caller policy.Caller, id uint, status models.ResponseStatus) (*models.OrderResponse, error) {
	switch status {
	case models.ResponseStatusAccepted:
		return s.Accept(ctx, caller, id)
	case models.ResponseStatusRejected:
		return s.Reject(ctx, caller, id)
	}
	return nil, Invalid("status must be accepted or rejected")
}

// Accept binds the response's freelancer to the order. Within one
// transaction the order row is locked, the response becomes accepted, the
// order moves to in_progress and every sibling response is rejected.
// A concurrent accept that lost the race fails with ErrOrderNotOpen and
// changes nothing.
func (s *OrderService) Accept(ctx context.Context, caller policy.Caller, id uint) (*models.OrderResponse, error) {
	rule := transitions[TransitionAccept]
	var orderID uint
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var resp models.OrderResponse
		if err := tx.First(&resp, id).Error; err != nil {
			return storeError("failed to load order response", err, ErrResponseNotFound)
		}
		order, err := lockOrder(tx, resp.OrderID)
		if err != nil {
			return err
		}
		orderID = order.ID
		if !rule.allowed(caller, order) {
			return ErrForbidden
		}
		if order.Status != rule.from {
			return ErrOrderNotOpen
		}

		// Re-read under the order lock
		if err := tx.First(&resp, id).Error; err != nil {
			return storeError("failed to load order response", err, ErrResponseNotFound)
		}
		if resp.Status != models.ResponseStatusPending {
			return ErrResponseNotPending
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, rule.from).
			Updates(map[string]interface{}{"status": rule.to, "freelancer_id": resp.FreelancerID})
		if res.Error != nil {
			return storeError("failed to assign order", res.Error, nil)
		}
		if res.RowsAffected != 1 {
			return ErrOrderNotOpen
		}

		res = tx.Model(&models.OrderResponse{}).
			Where("id = ? AND status = ?", resp.ID, models.ResponseStatusPending).
			Update("status", models.ResponseStatusAccepted)
		if res.Error != nil {
			return storeError("failed to accept order response", res.Error, nil)
		}
		if res.RowsAffected != 1 {
			return ErrResponseNotPending
		}

		if err := tx.Model(&models.OrderResponse{}).
			Where("order_id = ? AND id <> ?", order.ID, resp.ID).
			Update("status", models.ResponseStatusRejected).Error; err != nil {
			return storeError("failed to reject sibling responses", err, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order response accepted", "response_id", id, "order_id", orderID, "by", caller.ID)
	return s.loadResponse(ctx, id)
}

// Reject declines a pending response on an open order
func (s *OrderService) Reject(ctx context.Context, caller policy.Caller, id uint) (*models.OrderResponse, error) {
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var resp models.OrderResponse
		if err := tx.First(&resp, id).Error; err != nil {
			return storeError("failed to load order response", err, ErrResponseNotFound)
		}
		order, err := lockOrder(tx, resp.OrderID)
		if err != nil {
			return err
		}
		if !policy.CanManageResponses(caller, order) {
			return ErrForbidden
		}
		if order.Status != models.OrderStatusOpen {
			return ErrOrderNotOpen
		}

		res := tx.Model(&models.OrderResponse{}).
			Where("id = ? AND status = ?", id, models.ResponseStatusPending).
			Update("status", models.ResponseStatusRejected)
		if res.Error != nil {
			return storeError("failed to reject order response", res.Error, nil)
		}
		if res.RowsAffected != 1 {
			return ErrResponseNotPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadResponse(ctx, id)
}

// DeleteResponse withdraws the caller's own pending response
func (s *OrderService) DeleteResponse(ctx context.Context, caller policy.Caller, id uint) error {
	var resp models.OrderResponse
	if err := s.store.DB(ctx).First(&resp, id).Error; err != nil {
		return storeError("failed to load order response", err, ErrResponseNotFound)
	}
	if resp.FreelancerID != caller.ID {
		return ErrForbidden
	}
	if !policy.CanDeleteResponse(caller, &resp) {
		return ErrResponseNotPending
	}

	res := s.store.DB(ctx).
		Where("status = ?", models.ResponseStatusPending).
		Delete(&models.OrderResponse{}, id)
	if res.Error != nil {
		return storeError("failed to delete order response", res.Error, nil)
	}
	if res.RowsAffected != 1 {
		return ErrResponseNotPending
	}
	return nil
}
