//go:build integration

package integration

import (
	"context"
	"time"

	"github.com/freelance-platform/marketplace-api/config"
	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/store"
	"github.com/freelance-platform/marketplace-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// postgresSuite starts one PostgreSQL container per suite and truncates
// every table between tests
type postgresSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	store     *store.GormStore
}

// SetupSuite runs once before all tests
func (s *postgresSuite) SetupSuite() {
	testutil.RequireTestEnvironment(s.T())
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("marketplace_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	s.Require().NoError(err, "failed to start PostgreSQL container")
	s.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := config.ConnectDatabase(connStr)
	s.Require().NoError(err)
	s.Require().NoError(models.Migrate(db))

	s.db = db
	s.store = store.New(db)
}

// TearDownSuite runs once after all tests
func (s *postgresSuite) TearDownSuite() {
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			s.T().Logf("failed to terminate container: %v", err)
		}
	}
}

// SetupTest starts every test from empty tables
func (s *postgresSuite) SetupTest() {
	err := s.db.Exec("TRUNCATE messages, order_responses, archived_orders, orders, categories, users RESTART IDENTITY CASCADE").Error
	s.Require().NoError(err)
}
