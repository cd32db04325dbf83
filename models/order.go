package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "open"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusOpen, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// RequiresFreelancer reports whether an order in this status must have a freelancer assigned
func (s OrderStatus) RequiresFreelancer() bool {
	return s == OrderStatusInProgress || s == OrderStatusCompleted
}

// Order represents a job posted by a customer
type Order struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Title        string          `gorm:"not null" json:"title"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Budget       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"budget"`
	Deadline     time.Time       `gorm:"not null" json:"deadline"`
	CustomerID   uint            `gorm:"not null;index" json:"customer_id"` // foreign key to users table
	Customer     *User           `gorm:"foreignKey:CustomerID" json:"-"`
	FreelancerID *uint           `gorm:"index" json:"freelancer_id"` // nullable, set when a response is accepted
	Freelancer   *User           `gorm:"foreignKey:FreelancerID" json:"-"`
	Status       OrderStatus     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	CategoryID   *uint           `gorm:"index" json:"category_id"`
	Category     *Category       `gorm:"foreignKey:CategoryID" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	CustomerName   *string `gorm:"->;-:migration" json:"customer_name,omitempty"`
	FreelancerName *string `gorm:"->;-:migration" json:"freelancer_name,omitempty"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
