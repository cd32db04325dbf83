package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/freelance-platform/marketplace-api/store"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Transition names a lifecycle move of an order
type Transition string

const (
	TransitionAccept   Transition = "accept"
	TransitionComplete Transition = "complete"
	TransitionCancel   Transition = "cancel"
)

type transitionRule struct {
	from    models.OrderStatus
	to      models.OrderStatus
	allowed func(policy.Caller, *models.Order) bool
}

// transitions is the complete set of non-privileged status changes.
// Anything else goes through the admin override in Update.
var transitions = map[Transition]transitionRule{
	TransitionAccept:   {from: models.OrderStatusOpen, to: models.OrderStatusInProgress, allowed: policy.CanManageOrder},
	TransitionComplete: {from: models.OrderStatusInProgress, to: models.OrderStatusCompleted, allowed: policy.CanManageOrder},
	TransitionCancel: {from: models.OrderStatusOpen, to: models.OrderStatusCancelled, allowed: func(c policy.Caller, _ *models.Order) bool {
		return policy.CanModerate(c)
	}},
}

const orderColumns = "orders.*, cu.username AS customer_name, fl.username AS freelancer_name"

// OrderService owns the order lifecycle: creation, responses, acceptance,
// completion, cancellation, admin overrides and archiving.
type OrderService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewOrderService creates an OrderService
func NewOrderService(st store.Store, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{store: st, logger: logger, now: time.Now}
}

// CreateOrderInput is the data a customer supplies for a new order
type CreateOrderInput struct {
	Title       string
	Description string
	Budget      decimal.Decimal
	Deadline    time.Time
	CategoryID  *uint
}

func (in CreateOrderInput) validate() error {
	if err := requireText("title", in.Title); err != nil {
		return err
	}
	if err := requireText("description", in.Description); err != nil {
		return err
	}
	if err := requireAmount("budget", in.Budget); err != nil {
		return err
	}
	if in.Deadline.IsZero() {
		return Invalid("deadline is required")
	}
	return nil
}

// UpdateOrderInput holds the fields an admin may override. Nil fields are left unchanged.
type UpdateOrderInput struct {
	Title        *string
	Description  *string
	Budget       *decimal.Decimal
	Deadline     *time.Time
	Status       *models.OrderStatus
	CategoryID   *uint
	FreelancerID *uint
}

func orderQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Order{}).
		Select(orderColumns).
		Joins("LEFT JOIN users cu ON cu.id = orders.customer_id").
		Joins("LEFT JOIN users fl ON fl.id = orders.freelancer_id")
}

func lockOrder(tx *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		return nil, storeError("failed to load order", err, ErrOrderNotFound)
	}
	return &order, nil
}

func (s *OrderService) load(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := orderQuery(s.store.DB(ctx)).Where("orders.id = ?", id).Take(&order).Error; err != nil {
		return nil, storeError("failed to load order", err, ErrOrderNotFound)
	}
	return &order, nil
}

func (s *OrderService) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]models.Order, error) {
	orders := []models.Order{}
	q := orderQuery(s.store.DB(ctx))
	if scope != nil {
		q = scope(q)
	}
	if err := q.Order("orders.created_at DESC").Order("orders.id DESC").Find(&orders).Error; err != nil {
		return nil, storeError("failed to list orders", err, nil)
	}
	return orders, nil
}

func categoryExists(tx *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, storeError("failed to check category", err, nil)
	}
	return count > 0, nil
}

// Create posts a new open order owned by the calling customer
func (s *OrderService) Create(ctx context.Context, caller policy.Caller, in CreateOrderInput) (*models.Order, error) {
	if !caller.Known() || caller.Role != models.RoleCustomer {
		return nil, &Error{Kind: KindForbidden, Code: ErrForbidden.Code, Message: "Only customers can create orders"}
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		ok, err := categoryExists(s.store.DB(ctx), *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidCategory
		}
	}

	order := models.Order{
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Deadline:    in.Deadline,
		CustomerID:  caller.ID,
		Status:      models.OrderStatusOpen,
		CategoryID:  in.CategoryID,
	}
	if err := s.store.DB(ctx).Create(&order).Error; err != nil {
		return nil, storeError("failed to create order", err, nil)
	}
	return s.load(ctx, order.ID)
}

// List returns the orders visible to the caller: customers see their own,
// freelancers see open orders and the ones assigned to them, admins see all
func (s *OrderService) List(ctx context.Context, caller policy.Caller) ([]models.Order, error) {
	if !caller.Known() {
		return nil, ErrForbidden
	}
	switch caller.Role {
	case models.RoleCustomer:
		return s.list(ctx, func(q *gorm.DB) *gorm.DB {
			return q.Where("orders.customer_id = ?", caller.ID)
		})
	case models.RoleFreelancer:
		return s.list(ctx, func(q *gorm.DB) *gorm.DB {
			return q.Where("orders.status = ? OR orders.freelancer_id = ?", models.OrderStatusOpen, caller.ID)
		})
	default:
		return s.list(ctx, nil)
	}
}

// ListAll returns every order (admin only)
func (s *OrderService) ListAll(ctx context.Context, caller policy.Caller) ([]models.Order, error) {
	if !policy.CanModerate(caller) {
		return nil, ErrForbidden
	}
	return s.list(ctx, nil)
}

// ListByCustomer returns the orders of one customer
func (s *OrderService) ListByCustomer(ctx context.Context, caller policy.Caller, customerID uint) ([]models.Order, error) {
	if !policy.CanViewCustomerOrders(caller, customerID) {
		return nil, ErrForbidden
	}
	return s.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("orders.customer_id = ?", customerID)
	})
}

// Get returns a single order if the caller may see it
func (s *OrderService) Get(ctx context.Context, caller policy.Caller, id uint) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewOrder(caller, order) {
		return nil, ErrForbidden
	}
	return order, nil
}

// Complete moves an in-progress order to completed
func (s *OrderService) Complete(ctx context.Context, caller policy.Caller, id uint) (*models.Order, error) {
	return s.apply(ctx, caller, id, TransitionComplete)
}

// Cancel moves an open order to cancelled
func (s *OrderService) Cancel(ctx context.Context, caller policy.Caller, id uint) (*models.Order, error) {
	return s.apply(ctx, caller, id, TransitionCancel)
}

func (s *OrderService) apply(ctx context.Context, caller policy.Caller, id uint, t Transition) (*models.Order, error) {
	rule := transitions[t]
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		order, err := lockOrder(tx, id)
		if err != nil {
			return err
		}
		if !rule.allowed(caller, order) {
			return ErrForbidden
		}
		if order.Status != rule.from {
			return ErrInvalidTransition
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, rule.from).
			Update("status", rule.to)
		if res.Error != nil {
			return storeError("failed to update order status", res.Error, nil)
		}
		if res.RowsAffected != 1 {
			return ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("order status changed", "order_id", id, "transition", string(t), "to", string(rule.to), "by", caller.ID)
	return s.load(ctx, id)
}

// Update applies an admin override. Status changes are normalized so that
// freelancer_id is set exactly when the status requires it.
func (s *OrderService) Update(ctx context.Context, caller policy.Caller, id uint, in UpdateOrderInput) (*models.Order, error) {
	if !policy.CanModerate(caller) {
		return nil, ErrForbidden
	}

	var before models.OrderStatus
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		order, err := lockOrder(tx, id)
		if err != nil {
			return err
		}
		before = order.Status

		updates, err := overrideUpdates(tx, order, in)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return ErrNothingToUpdate
		}
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return storeError("failed to update order", err, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("admin order override", "order_id", id, "admin_id", caller.ID,
		"status_before", string(before), "status_after", string(updated.Status))
	return updated, nil
}

func overrideUpdates(tx *gorm.DB, order *models.Order, in UpdateOrderInput) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if in.Title != nil {
		if err := requireText("title", *in.Title); err != nil {
			return nil, err
		}
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		if err := requireText("description", *in.Description); err != nil {
			return nil, err
		}
		updates["description"] = *in.Description
	}
	if in.Budget != nil {
		if err := requireAmount("budget", *in.Budget); err != nil {
			return nil, err
		}
		updates["budget"] = *in.Budget
	}
	if in.Deadline != nil {
		updates["deadline"] = *in.Deadline
	}
	if in.CategoryID != nil {
		ok, err := categoryExists(tx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidCategory
		}
		updates["category_id"] = *in.CategoryID
	}

	status := order.Status
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, Invalid("invalid order status")
		}
		status = *in.Status
		updates["status"] = status
	}

	if !status.RequiresFreelancer() {
		if in.FreelancerID != nil {
			return nil, ErrInvalidTransition
		}
		if order.FreelancerID != nil {
			updates["freelancer_id"] = nil
		}
		return updates, nil
	}

	freelancerID := order.FreelancerID
	if in.FreelancerID != nil {
		freelancerID = in.FreelancerID
	}
	if freelancerID == nil {
		return nil, ErrFreelancerRequired
	}
	if in.FreelancerID != nil {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("id = ? AND role = ?", *freelancerID, models.RoleFreelancer).
			Count(&count).Error; err != nil {
			return nil, storeError("failed to check freelancer", err, nil)
		}
		if count == 0 {
			return nil, ErrInvalidFreelancer
		}
		updates["freelancer_id"] = *freelancerID
	}
	return updates, nil
}

// Delete removes an order together with its responses and messages (admin only)
func (s *OrderService) Delete(ctx context.Context, caller policy.Caller, id uint) error {
	if !policy.CanModerate(caller) {
		return ErrForbidden
	}
	return s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := lockOrder(tx, id); err != nil {
			return err
		}
		if err := deleteOrderChildren(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return storeError("failed to delete order", res.Error, nil)
		}
		if res.RowsAffected != 1 {
			return ErrOrderNotFound
		}
		return nil
	})
}

func deleteOrderChildren(tx *gorm.DB, orderID uint) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&models.Message{}).Error; err != nil {
		return storeError("failed to delete order messages", err, nil)
	}
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderResponse{}).Error; err != nil {
		return storeError("failed to delete order responses", err, nil)
	}
	return nil
}

// ArchiveInput is the customer's rating of a completed order
type ArchiveInput struct {
	OrderID uint
	Rating  int
	Review  string
}

// Archive snapshots a completed order with its rating and removes the live
// order, its responses and its messages in one transaction
func (s *OrderService) Archive(ctx context.Context, caller policy.Caller, in ArchiveInput) (*models.ArchivedOrder, error) {
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}

	var archived models.ArchivedOrder
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		order, err := lockOrder(tx, in.OrderID)
		if err != nil {
			return err
		}
		if !policy.CanManageOrder(caller, order) {
			return ErrForbidden
		}
		if !policy.CanArchive(caller, order) {
			return ErrOrderNotCompleted
		}

		archived = models.ArchivedOrder{
			OrderID:        order.ID,
			Title:          order.Title,
			Description:    order.Description,
			Budget:         order.Budget,
			Deadline:       order.Deadline,
			CategoryID:     order.CategoryID,
			CustomerID:     order.CustomerID,
			FreelancerID:   order.FreelancerID,
			CompletionDate: s.now(),
			Rating:         in.Rating,
			Review:         in.Review,
		}
		if err := tx.Create(&archived).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyArchived
			}
			return storeError("failed to create archived order", err, nil)
		}

		if err := deleteOrderChildren(tx, order.ID); err != nil {
			return err
		}
		res := tx.Where("status = ?", models.OrderStatusCompleted).Delete(&models.Order{}, order.ID)
		if res.Error != nil {
			return storeError("failed to delete archived order", res.Error, nil)
		}
		if res.RowsAffected != 1 {
			return ErrOrderNotCompleted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order archived", "order_id", in.OrderID, "archived_id", archived.ID, "by", caller.ID)
	return &archived, nil
}
