package services

import (
	"context"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/freelance-platform/marketplace-api/store"
	"gorm.io/gorm"
)

// ArchiveService reads archived orders and edits their reviews.
// Archiving itself is part of the order lifecycle (OrderService.Archive).
type ArchiveService struct {
	store store.Store
}

// NewArchiveService creates an ArchiveService
func NewArchiveService(st store.Store) *ArchiveService {
	return &ArchiveService{store: st}
}

// ReviewInput replaces the rating and review of an archived order
type ReviewInput struct {
	Rating int
	Review string
}

func archivedQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.ArchivedOrder{}).
		Select("archived_orders.*, c.name AS category_name, cu.username AS customer_name, fl.username AS freelancer_name").
		Joins("LEFT JOIN categories c ON c.id = archived_orders.category_id").
		Joins("LEFT JOIN users cu ON cu.id = archived_orders.customer_id").
		Joins("LEFT JOIN users fl ON fl.id = archived_orders.freelancer_id")
}

func (s *ArchiveService) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]models.ArchivedOrder, error) {
	archived := []models.ArchivedOrder{}
	q := archivedQuery(s.store.DB(ctx))
	if scope != nil {
		q = scope(q)
	}
	if err := q.Order("archived_orders.completion_date DESC").Find(&archived).Error; err != nil {
		return nil, storeError("failed to list archived orders", err, nil)
	}
	return archived, nil
}

func (s *ArchiveService) load(ctx context.Context, id uint) (*models.ArchivedOrder, error) {
	var archived models.ArchivedOrder
	if err := archivedQuery(s.store.DB(ctx)).Where("archived_orders.id = ?", id).Take(&archived).Error; err != nil {
		return nil, storeError("failed to load archived order", err, ErrArchivedOrderNotFound)
	}
	return &archived, nil
}

// ListAll returns every archived order (admin only)
func (s *ArchiveService) ListAll(ctx context.Context, caller policy.Caller) ([]models.ArchivedOrder, error) {
	if !policy.CanModerate(caller) {
		return nil, ErrForbidden
	}
	return s.list(ctx, nil)
}

// ListForUser returns the archived orders the caller took part in
func (s *ArchiveService) ListForUser(ctx context.Context, caller policy.Caller) ([]models.ArchivedOrder, error) {
	if !caller.Known() {
		return nil, ErrForbidden
	}
	return s.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("archived_orders.customer_id = ? OR archived_orders.freelancer_id = ?", caller.ID, caller.ID)
	})
}

// Get returns one archived order
func (s *ArchiveService) Get(ctx context.Context, caller policy.Caller, id uint) (*models.ArchivedOrder, error) {
	archived, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewArchived(caller, archived) {
		return nil, ErrForbidden
	}
	return archived, nil
}

// UpdateReview changes the rating and review of an archived order
func (s *ArchiveService) UpdateReview(ctx context.Context, caller policy.Caller, id uint, in ReviewInput) (*models.ArchivedOrder, error) {
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	archived, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanReview(caller, archived) {
		return nil, ErrForbidden
	}

	err = s.store.DB(ctx).Model(&models.ArchivedOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"rating": in.Rating, "review": in.Review}).Error
	if err != nil {
		return nil, storeError("failed to update review", err, nil)
	}
	return s.load(ctx, id)
}
