package models

import (
	"time"
)

// Role is the closed set of roles a user can hold
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleFreelancer, RoleAdmin:
		return true
	}
	return false
}

// User represents an account on the marketplace (customer, freelancer or admin)
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'customer';index" json:"role"`
	Avatar       *string   `json:"-"`                             // storage key of the uploaded avatar
	AvatarURL    string    `gorm:"-" json:"avatar_url,omitempty"` // computed from Avatar
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
