// Package booking validates and records appointment requests.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

const (
	// LeadTime is the minimum notice between booking and appointment start.
	LeadTime = 24 * time.Hour
	// MaxUpcoming caps a client's pending plus confirmed appointments.
	MaxUpcoming = 3
)

// Messages reported by ValidateBooking.
var (
	MsgServiceUnavailable   = "Selected service is not available"
	MsgTherapistUnavailable = "Selected therapist is not available"
	MsgInvalidDateTime      = "Invalid date or time, expected YYYY-MM-DD and HH:MM"
	MsgLeadTime             = "Appointments must be booked at least 24 hours in advance"
	MsgOutsideHours         = "Selected time is outside business hours"
	MsgOffGrid              = "Appointments start on the hour"
	MsgSlotTaken            = "This time slot is already booked"
	MsgLimitReached         = fmt.Sprintf("You already have %d upcoming appointments", MaxUpcoming)
)

// BookingRequest is what a client asks for.
type BookingRequest struct {
	UserID      uint   `json:"-"`
	TherapistID uint   `json:"therapist_id"`
	ServiceID   uint   `json:"service_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// AppointmentCounter answers the slot and cap questions of a booking.
type AppointmentCounter interface {
	CountActiveAtSlot(ctx context.Context, therapistID uint, date, clock string, lock bool) (int64, error)
	CountUpcomingForUser(ctx context.Context, userID uint, today string) (int64, error)
}

type TherapistFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Therapist, error)
}

type ServiceFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Service, error)
}

// Validator runs the booking rules against the database.
type Validator struct {
	appointments AppointmentCounter
	therapists   TherapistFinder
	services     ServiceFinder
	hours        models.BusinessHours
	loc          *time.Location
	now          func() time.Time
}

// Option customizes a Validator.
type Option func(*Validator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithLocation sets the clinic time zone dates and times are read in.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) { v.loc = loc }
}

func WithBusinessHours(bh models.BusinessHours) Option {
	return func(v *Validator) { v.hours = bh }
}

func NewValidator(appointments AppointmentCounter, therapists TherapistFinder, services ServiceFinder, opts ...Option) *Validator {
	v := &Validator{
		appointments: appointments,
		therapists:   therapists,
		services:     services,
		hours:        models.DefaultBusinessHours(),
		loc:          time.UTC,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateBooking checks req against every booking rule and returns one
// message per broken rule; an empty result means the booking may proceed.
// The error is only set when the database could not be read.
func (v *Validator) ValidateBooking(ctx context.Context, req BookingRequest) ([]string, error) {
	var problems []string

	service, err := v.services.FindByID(ctx, req.ServiceID)
	switch {
	case repository.IsNotFound(err):
		problems = append(problems, MsgServiceUnavailable)
	case err != nil:
		return nil, utils.Persistence("validate booking: load service", err)
	case !service.IsActive():
		problems = append(problems, MsgServiceUnavailable)
	}

	therapist, err := v.therapists.FindByID(ctx, req.TherapistID)
	switch {
	case repository.IsNotFound(err):
		problems = append(problems, MsgTherapistUnavailable)
	case err != nil:
		return nil, utils.Persistence("validate booking: load therapist", err)
	case !therapist.IsActive():
		problems = append(problems, MsgTherapistUnavailable)
	}

	now := v.now()
	start, err := v.startOf(req.Date, req.Time)
	if err != nil {
		problems = append(problems, MsgInvalidDateTime)
	} else {
		if start.Sub(now) < LeadTime {
			problems = append(problems, MsgLeadTime)
		}
		if !v.hours.Contains(start) {
			problems = append(problems, MsgOutsideHours)
		}
		if start.Minute() != 0 || start.Second() != 0 {
			problems = append(problems, MsgOffGrid)
		}

		taken, err := v.appointments.CountActiveAtSlot(ctx, req.TherapistID,
			start.Format(models.DateLayout), start.Format(models.TimeLayout), false)
		if err != nil {
			return nil, utils.Persistence("validate booking: slot conflict", err)
		}
		if taken > 0 {
			problems = append(problems, MsgSlotTaken)
		}
	}

	upcoming, err := v.appointments.CountUpcomingForUser(ctx, req.UserID, v.today())
	if err != nil {
		return nil, utils.Persistence("validate booking: upcoming count", err)
	}
	if upcoming >= MaxUpcoming {
		problems = append(problems, MsgLimitReached)
	}

	return problems, nil
}

// startOf parses the requested date and time in the clinic time zone.
func (v *Validator) startOf(date, clock string) (time.Time, error) {
	clock, err := utils.NormalizeClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, date+" "+clock, v.loc)
}

func (v *Validator) today() string {
	return v.now().In(v.loc).Format(models.DateLayout)
}

// isConflict reports whether msg describes a clash with existing bookings
// rather than a malformed request.
func isConflict(msg string) bool {
	return msg == MsgSlotTaken || msg == MsgLimitReached
}
