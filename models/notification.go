package models

import (
	"time"
)

type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Message   string    `json:"message" gorm:"type:text"`
	Type      string    `json:"type" gorm:"size:30"` // "appointment", "inquiry", "reminder", "system"
	IsRead    bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailLog records every outgoing email, including the ones never sent.
type EmailLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Recipient string    `json:"recipient" gorm:"size:255;index"`
	Subject   string    `json:"subject" gorm:"size:255"`
	Body      string    `json:"body" gorm:"type:text"`
	Status    string    `json:"status" gorm:"size:20"` // "logged", "sent", "failed"
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
