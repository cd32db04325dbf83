//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/freelance-platform/marketplace-api/services"
	"github.com/freelance-platform/marketplace-api/tests/testutil"
	"github.com/stretchr/testify/suite"
)

// AuthIntegrationTestSuite checks account uniqueness against PostgreSQL constraints
type AuthIntegrationTestSuite struct {
	postgresSuite
	auth *services.AuthService
}

func (s *AuthIntegrationTestSuite) SetupTest() {
	s.postgresSuite.SetupTest()
	s.auth = services.NewAuthService(s.store, testutil.TestConfig(s.T()))
}

func (s *AuthIntegrationTestSuite) TestDuplicateEmail() {
	ctx := context.Background()
	_, err := s.auth.Register(ctx, services.RegisterInput{Username: "carol", Email: "carol@example.com", Password: "long-enough"})
	s.Require().NoError(err)

	_, err = s.auth.Register(ctx, services.RegisterInput{Username: "caroline", Email: "CAROL@example.com", Password: "long-enough"})
	s.True(errors.Is(err, services.ErrUserExists), "got %v", err)
}

func (s *AuthIntegrationTestSuite) TestLoginRoundTrip() {
	ctx := context.Background()
	registered, err := s.auth.Register(ctx, services.RegisterInput{Username: "fiona", Email: "fiona@example.com", Password: "long-enough", Role: "freelancer"})
	s.Require().NoError(err)

	result, err := s.auth.Login(ctx, "fiona@example.com", "long-enough")
	s.Require().NoError(err)
	s.Equal(registered.User.ID, result.User.ID)
	s.NotEmpty(result.Token)
}

func TestAuthIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthIntegrationTestSuite))
}
