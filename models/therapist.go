package models

import (
	"gorm.io/gorm"
)

// Therapist is the public profile of a therapist-role user.
type Therapist struct {
	gorm.Model
	UserID          *uint        `json:"user_id" gorm:"uniqueIndex"`
	User            *User        `json:"-" gorm:"foreignKey:UserID"`
	Name            string       `json:"name" gorm:"size:100;not null"`
	Specialization  string       `json:"specialization" gorm:"size:100"`
	Bio             string       `json:"bio" gorm:"type:text"`
	ExperienceYears int          `json:"experience_years"`
	PhotoURL        string       `json:"photo_url"`
	Status          EntityStatus `json:"status" gorm:"size:20;default:'active';index"`
}

func (t *Therapist) IsActive() bool {
	return t.Status == StatusActive
}
