package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/freelance-platform/marketplace-api/config"
	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/gin-gonic/gin"
)

// Gin context keys set by EnsureValidToken
const (
	UserIDKey = "user_id"
	ClaimsKey = "validated_claims"
)

// CustomClaims contains the marketplace specific claims of an access token.
type CustomClaims struct {
	Role models.Role `json:"role"`
}

// Validate rejects tokens carrying an unknown role.
func (c *CustomClaims) Validate(ctx context.Context) error {
	if !c.Role.Valid() {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	return nil
}

// NewValidator builds an HS256 validator for tokens issued by the auth service
func NewValidator(cfg *config.Config) (*validator.Validator, error) {
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}

	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

func writeAuthError(w http.ResponseWriter, status int, e *AuthError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body, _ := json.Marshal(gin.H{"message": e.Message, "code": e.Code})
	if _, err := w.Write(body); err != nil {
		slog.Warn("failed to write error response", "error", err)
	}
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
// A missing token is answered with 401, an invalid one with 403.
func EnsureValidToken(cfg *config.Config) (gin.HandlerFunc, error) {
	jwtValidator, err := NewValidator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			writeAuthError(w, http.StatusUnauthorized, ErrMissingToken)
			return
		}
		slog.Debug("rejected access token", "path", r.URL.Path, "error", err)
		writeAuthError(w, http.StatusForbidden, ErrInvalidToken)
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		authenticated := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok {
				writeAuthError(w, http.StatusForbidden, ErrInvalidToken)
				return
			}
			userID, err := strconv.ParseUint(claims.RegisteredClaims.Subject, 10, 64)
			if err != nil || userID == 0 {
				writeAuthError(w, http.StatusForbidden, ErrInvalidToken)
				return
			}

			authenticated = true
			c.Request = r
			c.Set(UserIDKey, uint(userID))
			c.Set(ClaimsKey, claims)
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !authenticated {
			c.Abort()
		}
	}, nil
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	id, ok := userID.(uint)
	if !ok || id == 0 {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not valid"}
	}

	return id, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// GetCaller returns the authenticated identity of the request
func GetCaller(c *gin.Context) (policy.Caller, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return policy.Caller{}, err
	}
	claims, err := GetClaims(c)
	if err != nil {
		return policy.Caller{}, err
	}

	custom, ok := claims.CustomClaims.(*CustomClaims)
	if !ok || !custom.Role.Valid() {
		return policy.Caller{}, &AuthError{Code: "INVALID_CLAIMS", Message: "Token does not carry a valid role"}
	}

	return policy.Caller{ID: userID, Role: custom.Role}, nil
}

// RequireAdmin is a middleware that only lets admins through
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := GetCaller(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": ErrMissingToken.Message,
				"code":    "MISSING_CLAIMS",
			})
			return
		}

		if !policy.CanModerate(caller) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Access denied. Admin rights required.",
				"code":    "ADMIN_REQUIRED",
			})
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

// Errors written by EnsureValidToken
var (
	ErrMissingToken = &AuthError{Code: "MISSING_TOKEN", Message: "Access denied"}
	ErrInvalidToken = &AuthError{Code: "INVALID_TOKEN", Message: "Invalid token"}
)

func (e *AuthError) Error() string {
	return e.Message
}
