// Package store wraps the relational database behind a small capability
// interface so services never hold package-level connection state.
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Store is the transactional store the services are built on.
type Store interface {
	// DB returns a handle for single-statement work bound to ctx.
	DB(ctx context.Context) *gorm.DB

	// Transaction runs fn inside one database transaction. The transaction
	// commits when fn returns nil and rolls back when fn returns an error or
	// panics.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error
}

// GormStore implements Store on top of a gorm connection pool.
type GormStore struct {
	db *gorm.DB
}

// New creates a Store backed by db.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
