package services

import (
	"context"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/freelance-platform/marketplace-api/store"
	"gorm.io/gorm"
)

// CategoryService manages the category tree
type CategoryService struct {
	store store.Store
}

// NewCategoryService creates a CategoryService
func NewCategoryService(st store.Store) *CategoryService {
	return &CategoryService{store: st}
}

// CategoryInput creates a category or, with nil fields left unchanged, updates one
type CategoryInput struct {
	Name        *string
	Description *string
	ParentID    *uint
}

func categoryQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Category{}).
		Select("categories.*, p.name AS parent_name, " +
			"(SELECT COUNT(*) FROM orders WHERE orders.category_id = categories.id) AS orders_count").
		Joins("LEFT JOIN categories p ON p.id = categories.parent_id")
}

// List returns all categories ordered by name
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := categoryQuery(s.store.DB(ctx)).Order("categories.name ASC").Find(&categories).Error; err != nil {
		return nil, storeError("failed to list categories", err, nil)
	}
	return categories, nil
}

// Get returns a single category
func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := categoryQuery(s.store.DB(ctx)).Where("categories.id = ?", id).Take(&category).Error; err != nil {
		return nil, storeError("failed to load category", err, ErrCategoryNotFound)
	}
	return &category, nil
}

// Create adds a category (admin only)
func (s *CategoryService) Create(ctx context.Context, caller policy.Caller, in CategoryInput) (*models.Category, error) {
	if !policy.CanModerate(caller) {
		return nil, ErrForbidden
	}
	if in.Name == nil {
		return nil, Invalid("name is required")
	}
	if err := requireText("name", *in.Name); err != nil {
		return nil, err
	}

	category := models.Category{Name: *in.Name, ParentID: in.ParentID}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if in.ParentID != nil {
		if err := s.checkParent(ctx, 0, *in.ParentID); err != nil {
			return nil, err
		}
	}
	if err := s.store.DB(ctx).Create(&category).Error; err != nil {
		return nil, storeError("failed to create category", err, nil)
	}
	return s.Get(ctx, category.ID)
}

// Update changes the given fields of a category (admin only)
func (s *CategoryService) Update(ctx context.Context, caller policy.Caller, id uint, in CategoryInput) (*models.Category, error) {
	if !policy.CanModerate(caller) {
		return nil, ErrForbidden
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		if err := requireText("name", *in.Name); err != nil {
			return nil, err
		}
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.ParentID != nil {
		if err := s.checkParent(ctx, id, *in.ParentID); err != nil {
			return nil, err
		}
		updates["parent_id"] = *in.ParentID
	}
	if len(updates) == 0 {
		return nil, ErrNothingToUpdate
	}

	if err := s.store.DB(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, storeError("failed to update category", err, nil)
	}
	return s.Get(ctx, id)
}

// checkParent rejects unknown parents and parents that would create a cycle
func (s *CategoryService) checkParent(ctx context.Context, id, parentID uint) error {
	db := s.store.DB(ctx)
	seen := map[uint]bool{}
	for current := &parentID; current != nil; {
		if *current == id || seen[*current] {
			return ErrInvalidParent
		}
		seen[*current] = true

		var parent models.Category
		if err := db.Select("id", "parent_id").First(&parent, *current).Error; err != nil {
			return storeError("failed to load parent category", err, ErrInvalidParent)
		}
		current = parent.ParentID
	}
	return nil
}

// Delete removes a category that has no subcategories and no orders (admin only)
func (s *CategoryService) Delete(ctx context.Context, caller policy.Caller, id uint) error {
	if !policy.CanModerate(caller) {
		return ErrForbidden
	}
	return s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return storeError("failed to load category", err, ErrCategoryNotFound)
		}

		var children, orders int64
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return storeError("failed to count subcategories", err, nil)
		}
		if err := tx.Model(&models.Order{}).Where("category_id = ?", id).Count(&orders).Error; err != nil {
			return storeError("failed to count category orders", err, nil)
		}
		if children > 0 || orders > 0 {
			return ErrCategoryInUse
		}

		if err := tx.Delete(&category).Error; err != nil {
			return storeError("failed to delete category", err, nil)
		}
		return nil
	})
}
