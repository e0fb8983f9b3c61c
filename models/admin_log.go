package models

import (
	"time"
)

// AdminLog is an audit entry. AdminID is nil for system jobs.
type AdminLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AdminID   *uint     `json:"admin_id" gorm:"index"`
	Action    string    `json:"action" gorm:"size:100;not null"`
	Details   string    `json:"details" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

type SystemSetting struct {
	Key       string    `json:"key" gorm:"primaryKey;size:100"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}
