package models

import (
	"gorm.io/gorm"
)

type Service struct {
	gorm.Model
	Name        string       `json:"name" gorm:"size:100;not null"`
	Description string       `json:"description" gorm:"type:text"`
	Price       float64      `json:"price" gorm:"type:decimal(10,2)"`
	Duration    int          `json:"duration"` // minutes
	Status      EntityStatus `json:"status" gorm:"size:20;default:'active';index"`
}

func (s *Service) IsActive() bool {
	return s.Status == StatusActive
}
