package models

import (
	"time"
)

// Message represents a message between the two parties of an order
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"` // foreign key to orders table
	Order      *Order    `gorm:"foreignKey:OrderID" json:"-"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	Sender     *User     `gorm:"foreignKey:SenderID" json:"-"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	Receiver   *User     `gorm:"foreignKey:ReceiverID" json:"-"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	SenderName   *string `gorm:"->;-:migration" json:"sender_name,omitempty"`
	ReceiverName *string `gorm:"->;-:migration" json:"receiver_name,omitempty"`
	OrderTitle   *string `gorm:"->;-:migration" json:"order_title,omitempty"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
