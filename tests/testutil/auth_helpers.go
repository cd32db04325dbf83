package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/freelance-platform/marketplace-api/config"
	"github.com/freelance-platform/marketplace-api/middleware"
	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/freelance-platform/marketplace-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// TestConfig returns a configuration suitable for tests
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabaseURL:        "sqlite://test",
		Port:               "0",
		GoEnv:              "test",
		JWTSecret:          "test-secret",
		JWTIssuer:          "marketplace-api",
		JWTAudience:        "marketplace-clients",
		TokenTTL:           time.Hour,
		CORSAllowedOrigins: []string{"*"},
		UploadDir:          t.TempDir(),
		LogLevel:           "error",
	}
}

// MockValidatedClaims creates ValidatedClaims as produced by the auth middleware
func MockValidatedClaims(caller policy.Caller) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "marketplace-api",
			Subject: strconv.FormatUint(uint64(caller.ID), 10),
		},
		CustomClaims: &middleware.CustomClaims{Role: caller.Role},
	}
}

// SetMockAuthContext sets the same context keys as middleware.EnsureValidToken
func SetMockAuthContext(c *gin.Context, caller policy.Caller) {
	c.Set(middleware.UserIDKey, caller.ID)
	c.Set(middleware.ClaimsKey, MockValidatedClaims(caller))
}

// BearerToken issues a real access token for the user, signed with cfg
func BearerToken(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()
	token, _, err := utils.SignJWT(utils.TokenOptions{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}, user.ID, string(user.Role), time.Now())
	require.NoError(t, err)
	return "Bearer " + token
}
