package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResponseStatus is the state of a freelancer's proposal
type ResponseStatus string

const (
	ResponseStatusPending  ResponseStatus = "pending"
	ResponseStatusAccepted ResponseStatus = "accepted"
	ResponseStatusRejected ResponseStatus = "rejected"
)

// OrderResponse is a freelancer's proposal for an open order.
// A freelancer can respond to a given order at most once.
type OrderResponse struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;uniqueIndex:idx_order_responses_order_freelancer" json:"order_id"`
	Order         *Order          `gorm:"foreignKey:OrderID" json:"-"`
	FreelancerID  uint            `gorm:"not null;uniqueIndex:idx_order_responses_order_freelancer;index" json:"freelancer_id"`
	Freelancer    *User           `gorm:"foreignKey:FreelancerID" json:"-"`
	Proposal      string          `gorm:"type:text;not null" json:"proposal"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	EstimatedTime int             `gorm:"not null" json:"estimated_time"` // days
	Status        ResponseStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	FreelancerName   *string `gorm:"->;-:migration" json:"freelancer_name,omitempty"`
	FreelancerAvatar *string `gorm:"->;-:migration" json:"freelancer_avatar,omitempty"`
	OrderTitle       *string `gorm:"->;-:migration" json:"order_title,omitempty"`
	OrderStatus      *string `gorm:"->;-:migration" json:"order_status,omitempty"`
	CustomerName     *string `gorm:"->;-:migration" json:"customer_name,omitempty"`
}

// TableName specifies the table name for the OrderResponse model
func (OrderResponse) TableName() string {
	return "order_responses"
}
