package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Budgets and prices are sent to clients as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Order{},
		&OrderResponse{},
		&Message{},
		&ArchivedOrder{},
	}
}

// Migrate creates or updates the schema for all models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
