package services

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/freelance-platform/marketplace-api/store"
	"gorm.io/gorm"
)

// UserService manages profiles, avatars and admin user administration
type UserService struct {
	store  store.Store
	images ImageService
	logger *slog.Logger
}

// NewUserService creates a UserService
func NewUserService(st store.Store, images ImageService, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{store: st, images: images, logger: logger}
}

// ProfileInput updates the caller's own profile. Nil fields are left unchanged.
type ProfileInput struct {
	Username *string
	Email    *string
}

func (s *UserService) load(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.store.DB(ctx).First(&user, id).Error; err != nil {
		return nil, storeError("failed to load user", err, ErrUserNotFound)
	}
	s.resolveAvatar(ctx, &user)
	return &user, nil
}

func (s *UserService) resolveAvatar(ctx context.Context, user *models.User) {
	if user.Avatar == nil {
		return
	}
	user.AvatarURL = s.AvatarURL(ctx, *user.Avatar)
}

// AvatarURL turns a stored avatar key into a client URL. Failures yield "".
func (s *UserService) AvatarURL(ctx context.Context, key string) string {
	if key == "" || s.images == nil {
		return ""
	}
	url, err := s.images.GetImageURL(ctx, key)
	if err != nil {
		s.logger.Warn("failed to resolve avatar url", "key", key, "error", err)
		return ""
	}
	return url
}

func (s *UserService) list(ctx context.Context, where string, args ...interface{}) ([]models.User, error) {
	users := []models.User{}
	q := s.store.DB(ctx).Order("id ASC")
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, storeError("failed to list users", err, nil)
	}
	for i := range users {
		s.resolveAvatar(ctx, &users[i])
	}
	return users, nil
}

// Profile returns the caller's own user record
func (s *UserService) Profile(ctx context.Context, caller policy.Caller) (*models.User, error) {
	if !caller.Known() {
		return nil, ErrForbidden
	}
	return s.load(ctx, caller.ID)
}

// UpdateProfile changes the caller's username and/or email
func (s *UserService) UpdateProfile(ctx context.Context, caller policy.Caller, in ProfileInput) (*models.User, error) {
	if !caller.Known() {
		return nil, ErrForbidden
	}

	updates := map[string]interface{}{}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := requireText("username", username); err != nil {
			return nil, err
		}
		updates["username"] = username
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, Invalid("email is invalid")
		}
		updates["email"] = email
	}
	if len(updates) == 0 {
		return nil, ErrNothingToUpdate
	}

	res := s.store.DB(ctx).Model(&models.User{}).Where("id = ?", caller.ID).Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, storeError("failed to update profile", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return s.load(ctx, caller.ID)
}

// UploadAvatar stores a new avatar for the caller and removes the previous one
func (s *UserService) UploadAvatar(ctx context.Context, caller policy.Caller, fileHeader *multipart.FileHeader) (*models.User, error) {
	user, err := s.Profile(ctx, caller)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, storeError("avatar storage is not configured", errors.New("no image service"), nil)
	}

	key, err := s.images.UploadImage(ctx, caller.ID, fileHeader)
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, err
		}
		return nil, storeError("failed to store avatar", err, nil)
	}

	if err := s.store.DB(ctx).Model(&models.User{}).Where("id = ?", caller.ID).Update("avatar", key).Error; err != nil {
		if delErr := s.images.DeleteImage(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned avatar", "key", key, "error", delErr)
		}
		return nil, storeError("failed to save avatar", err, nil)
	}

	if user.Avatar != nil && *user.Avatar != key {
		if err := s.images.DeleteImage(ctx, *user.Avatar); err != nil {
			s.logger.Warn("failed to delete previous avatar", "key", *user.Avatar, "error", err)
		}
	}
	return s.load(ctx, caller.ID)
}

// List returns all users (admin only)
func (s *UserService) List(ctx context.Context, caller policy.Caller) ([]models.User, error) {
	if !policy.CanModerate(caller) {
		return nil, ErrForbidden
	}
	return s.list(ctx, "")
}

// ListByRole returns the users holding role
func (s *UserService) ListByRole(ctx context.Context, caller policy.Caller, role models.Role) ([]models.User, error) {
	if !caller.Known() {
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.list(ctx, "role = ?", role)
}

// Get returns a single user (admin only)
func (s *UserService) Get(ctx context.Context, caller policy.Caller, id uint) (*models.User, error) {
	if !policy.CanModerate(caller) {
		return nil, ErrForbidden
	}
	return s.load(ctx, id)
}

// UpdateRole changes a user's role (admin only)
func (s *UserService) UpdateRole(ctx context.Context, caller policy.Caller, id uint, role models.Role) (*models.User, error) {
	if !policy.CanModerate(caller) {
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	res := s.store.DB(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return nil, storeError("failed to update role", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	s.logger.Warn("user role changed", "user_id", id, "role", string(role), "by", caller.ID)
	return s.load(ctx, id)
}

// Delete removes a user (admin only). Users still referenced by orders cannot be deleted.
func (s *UserService) Delete(ctx context.Context, caller policy.Caller, id uint) error {
	if !policy.CanModerate(caller) {
		return ErrForbidden
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DB(ctx).Delete(&models.User{}, id).Error; err != nil {
		return storeError("failed to delete user", err, nil)
	}
	if user.Avatar != nil && s.images != nil {
		if err := s.images.DeleteImage(ctx, *user.Avatar); err != nil {
			s.logger.Warn("failed to delete avatar of removed user", "user_id", id, "error", err)
		}
	}
	return nil
}

// Promote sets the role of the user with the given email. It backs the
// promote command and is the only way to create an admin.
func (s *UserService) Promote(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	var user models.User
	if err := s.store.DB(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, storeError("failed to load user", err, ErrUserNotFound)
	}
	if err := s.store.DB(ctx).Model(&user).Update("role", role).Error; err != nil {
		return nil, storeError("failed to update role", err, nil)
	}
	s.logger.Warn("user promoted", "user_id", user.ID, "role", string(role))
	return s.load(ctx, user.ID)
}
