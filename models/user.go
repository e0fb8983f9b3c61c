package models

import (
	"time"
)

type User struct {
	ID                uint         `json:"id" gorm:"primaryKey"`
	Name              string       `json:"name" gorm:"size:100;not null"`
	Email             string       `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password          string       `json:"-" gorm:"not null"`
	Role              Role         `json:"role" gorm:"size:20;default:'client';index"`
	Phone             string       `json:"phone" gorm:"size:30"`
	Address           string       `json:"address"`
	Status            EntityStatus `json:"status" gorm:"size:20;default:'active';index"`
	RememberToken     string       `json:"-" gorm:"size:64;index"`
	RememberExpiresAt *time.Time   `json:"-"`
	ResetToken        string       `json:"-" gorm:"size:64;index"`
	ResetExpiresAt    *time.Time   `json:"-"`
	LastLogin         *time.Time   `json:"last_login,omitempty"`
	SessionVersion    int          `json:"-" gorm:"not null;default:0"`
	Therapist         *Therapist   `json:"therapist,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// IsActive reports whether the account may sign in.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
