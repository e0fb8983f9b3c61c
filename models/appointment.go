package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCanceled  AppointmentStatus = "canceled"
	StatusCompleted AppointmentStatus = "completed"
)

// Stored layouts of appointment_date and appointment_time.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// UpcomingStatuses are the statuses that count against a client's booking cap.
var UpcomingStatuses = []AppointmentStatus{StatusPending, StatusConfirmed}

type Appointment struct {
	gorm.Model
	UserID          uint              `json:"user_id" gorm:"index;not null"`
	User            *User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TherapistID     uint              `json:"therapist_id" gorm:"index;not null"`
	Therapist       *Therapist        `json:"therapist,omitempty" gorm:"foreignKey:TherapistID"`
	ServiceID       uint              `json:"service_id" gorm:"not null"`
	Service         *Service          `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	AppointmentDate string            `json:"appointment_date" gorm:"size:10;not null;index"`
	AppointmentTime string            `json:"appointment_time" gorm:"size:8;not null"`
	Status          AppointmentStatus `json:"status" gorm:"size:20;default:'pending';index"`
	ReminderSent    bool              `json:"reminder_sent" gorm:"default:false"`
	AdminNotes      string            `json:"admin_notes" gorm:"type:text"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

// StartsAt combines the stored date and time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, a.AppointmentDate+" "+a.AppointmentTime, loc)
}

// CanTransition checks a status change against the appointment lifecycle.
func (a *Appointment) CanTransition(newStatus AppointmentStatus) error {
	switch a.Status {
	case StatusPending:
		if newStatus != StatusConfirmed && newStatus != StatusCanceled {
			return fmt.Errorf("invalid transition from pending to %s", newStatus)
		}
	case StatusConfirmed:
		if newStatus != StatusCompleted && newStatus != StatusCanceled {
			return fmt.Errorf("invalid transition from confirmed to %s", newStatus)
		}
	case StatusCompleted, StatusCanceled:
		return fmt.Errorf("no transitions allowed from %s", a.Status)
	default:
		return fmt.Errorf("unknown status %q", a.Status)
	}
	return nil
}
