package models

import "time"

// Category groups orders. Categories form a tree through ParentID.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ParentID    *uint     `gorm:"index" json:"parent_id"`
	Parent      *Category `gorm:"foreignKey:ParentID" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Filled by list/get queries only
	ParentName  *string `gorm:"->;-:migration" json:"parent_name"`
	OrdersCount int64   `gorm:"->;-:migration" json:"orders_count"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
