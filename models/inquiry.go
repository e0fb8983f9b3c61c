package models

import (
	"time"

	"gorm.io/gorm"
)

type InquiryStatus string

const (
	InquiryOpen     InquiryStatus = "open"
	InquiryAnswered InquiryStatus = "answered"
	InquiryClosed   InquiryStatus = "closed"
)

type InquiryPriority string

const (
	PriorityLow    InquiryPriority = "low"
	PriorityNormal InquiryPriority = "normal"
	PriorityHigh   InquiryPriority = "high"
)

type Inquiry struct {
	gorm.Model
	UserID      uint            `json:"user_id" gorm:"index;not null"`
	User        *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Subject     string          `json:"subject" gorm:"size:200;not null"`
	Message     string          `json:"message" gorm:"type:text;not null"`
	Priority    InquiryPriority `json:"priority" gorm:"size:10;default:'normal'"`
	Status      InquiryStatus   `json:"status" gorm:"size:20;default:'open';index"`
	Response    string          `json:"response" gorm:"type:text"`
	RespondedBy *uint           `json:"responded_by"`
	RespondedAt *time.Time      `json:"responded_at"`
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.Priority == "" {
		i.Priority = PriorityNormal
	}
	if i.Status == "" {
		i.Status = InquiryOpen
	}
	return nil
}
