package controllers

import (
	"net/http"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/services"
	"github.com/gin-gonic/gin"
)

// UserController handles profile and user administration endpoints
type UserController struct {
	users *services.UserService
}

// NewUserController creates a UserController
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// UpdateProfileRequest represents the request body for updating the caller's profile
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// UpdateRoleRequest represents the request body for changing a user's role
type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// GetProfile handles GET /api/users/profile
func (uc *UserController) GetProfile(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	user, err := uc.users.Profile(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/users/profile
func (uc *UserController) UpdateProfile(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.users.UpdateProfile(c.Request.Context(), caller, services.ProfileInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadAvatar handles POST /api/users/profile/avatar (multipart field "avatar")
func (uc *UserController) UploadAvatar(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Avatar file is required",
			"code":    "MISSING_FILE",
		})
		return
	}

	user, err := uc.users.UploadAvatar(c.Request.Context(), caller, fileHeader)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /api/users (admin only)
func (uc *UserController) ListUsers(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	users, err := uc.users.List(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListUsersByRole handles GET /api/users/role/:role
func (uc *UserController) ListUsersByRole(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	users, err := uc.users.ListByRole(c.Request.Context(), caller, models.Role(c.Param("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/users/:id (admin only)
func (uc *UserController) GetUser(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	user, err := uc.users.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUserRole handles PUT /api/users/:id (admin only)
func (uc *UserController) UpdateUserRole(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.users.UpdateRole(c.Request.Context(), caller, id, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/:id (admin only)
func (uc *UserController) DeleteUser(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := uc.users.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "User deleted successfully")
}
