package controllers

import (
	"net/http"

	"github.com/freelance-platform/marketplace-api/services"
	"github.com/gin-gonic/gin"
)

// CategoryController handles the category tree
type CategoryController struct {
	categories *services.CategoryService
}

// NewCategoryController creates a CategoryController
func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

// CategoryRequest represents the body for creating or updating a category
type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *uint   `json:"parent_id"`
}

func (r CategoryRequest) input() services.CategoryInput {
	return services.CategoryInput{Name: r.Name, Description: r.Description, ParentID: r.ParentID}
}

// ListCategories handles GET /api/categories
func (cc *CategoryController) ListCategories(c *gin.Context) {
	categories, err := cc.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory handles GET /api/categories/:id
func (cc *CategoryController) GetCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	category, err := cc.categories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory handles POST /api/categories (admin only)
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := cc.categories.Create(c.Request.Context(), caller, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/categories/:id (admin only)
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := cc.categories.Update(c.Request.Context(), caller, id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/categories/:id (admin only)
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := cc.categories.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "Category deleted successfully")
}
