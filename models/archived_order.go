package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArchivedOrder is the snapshot kept once a completed order has been rated.
// OrderID is a historical reference; the live order no longer exists.
type ArchivedOrder struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderID        uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	Title          string          `gorm:"not null" json:"title"`
	Description    string          `gorm:"type:text" json:"description"`
	Budget         decimal.Decimal `gorm:"type:numeric(12,2)" json:"budget"`
	Deadline       time.Time       `json:"deadline"`
	CategoryID     *uint           `gorm:"index" json:"category_id"`
	CustomerID     uint            `gorm:"not null;index" json:"customer_id"`
	FreelancerID   *uint           `gorm:"index" json:"freelancer_id"`
	CompletionDate time.Time       `gorm:"not null" json:"completion_date"`
	Rating         int             `gorm:"not null" json:"rating"`
	Review         string          `gorm:"type:text" json:"review"`
	CreatedAt      time.Time       `json:"created_at"`

	CategoryName   *string `gorm:"->;-:migration" json:"category_name,omitempty"`
	CustomerName   *string `gorm:"->;-:migration" json:"customer_name,omitempty"`
	FreelancerName *string `gorm:"->;-:migration" json:"freelancer_name,omitempty"`
}

// TableName specifies the table name for the ArchivedOrder model
func (ArchivedOrder) TableName() string {
	return "archived_orders"
}
