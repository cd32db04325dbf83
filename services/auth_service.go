package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/freelance-platform/marketplace-api/config"
	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/store"
	"github.com/freelance-platform/marketplace-api/utils"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// AuthService registers users and issues access tokens
type AuthService struct {
	store store.Store
	opts  utils.TokenOptions
	now   func() time.Time
}

// NewAuthService creates an AuthService signing tokens with the configured secret
func NewAuthService(st store.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		store: st,
		opts: utils.TokenOptions{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			TTL:      cfg.TokenTTL,
		},
		now: time.Now,
	}
}

// RegisterInput is a self sign-up request
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// AuthResult is returned on successful registration or login
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (in *RegisterInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}

	if err := requireText("username", in.Username); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return Invalid("email is invalid")
	}
	if len(in.Password) < minPasswordLength {
		return Invalid("password must be at least 8 characters")
	}
	// Admins are only created through the promote command
	if in.Role != models.RoleCustomer && in.Role != models.RoleFreelancer {
		return ErrInvalidRole
	}
	return nil
}

// Register creates a customer or freelancer account and signs them in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, storeError("failed to hash password", err, nil)
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.store.DB(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, storeError("failed to create user", err, nil)
	}
	return s.issue(&user)
}

// Login checks the credentials and returns a fresh token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user models.User
	err := s.store.DB(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, storeError("failed to load user", err, ErrInvalidCredentials)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(&user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := utils.SignJWT(s.opts, user.ID, string(user.Role), s.now())
	if err != nil {
		return nil, storeError("failed to issue token", err, nil)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
