package booking

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// Notifier is told about appointment changes after they are committed.
type Notifier interface {
	AppointmentBooked(ctx context.Context, a *models.Appointment)
	AppointmentStatusChanged(ctx context.Context, a *models.Appointment)
}

// Service books, cancels and updates appointments.
type Service struct {
	db           *gorm.DB
	validator    *Validator
	appointments *repository.AppointmentRepository
	users        *repository.UserRepository
	notifier     Notifier
}

func NewService(db *gorm.DB, validator *Validator, notifier Notifier) *Service {
	return &Service{
		db:           db,
		validator:    validator,
		appointments: repository.NewAppointmentRepository(db),
		users:        repository.NewUserRepository(db),
		notifier:     notifier,
	}
}

// Validator exposes the rules Book runs, for callers that only want a dry run.
func (s *Service) Validator() *Validator {
	return s.validator
}

// Book validates req and inserts a pending appointment. The slot and cap are
// checked again inside the insert transaction; the partial unique index on
// the slot rejects whichever concurrent writer commits second.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	problems, err := s.validator.ValidateBooking(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, rejection(problems)
	}

	start, _ := s.validator.startOf(req.Date, req.Time)
	appointment := &models.Appointment{
		UserID:          req.UserID,
		TherapistID:     req.TherapistID,
		ServiceID:       req.ServiceID,
		AppointmentDate: start.Format(models.DateLayout),
		AppointmentTime: start.Format(models.TimeLayout),
		Status:          models.StatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.users.WithTx(tx).LockByID(ctx, req.UserID)
		if repository.IsNotFound(err) {
			return utils.NotFound("User not found")
		}
		if err != nil {
			return err
		}
		if !user.IsActive() {
			return utils.Forbidden("Account is inactive")
		}

		appointments := s.appointments.WithTx(tx)
		taken, err := appointments.CountActiveAtSlot(ctx, req.TherapistID,
			appointment.AppointmentDate, appointment.AppointmentTime, true)
		if err != nil {
			return err
		}
		if taken > 0 {
			return utils.Conflict(MsgSlotTaken)
		}

		upcoming, err := appointments.CountUpcomingForUser(ctx, req.UserID, s.validator.today())
		if err != nil {
			return err
		}
		if upcoming >= MaxUpcoming {
			return utils.Conflict(MsgLimitReached)
		}

		if err := appointments.Create(ctx, appointment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return utils.Conflict(MsgSlotTaken)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, asAppError("book appointment", err)
	}

	logrus.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"user_id":        appointment.UserID,
		"therapist_id":   appointment.TherapistID,
	}).Info("appointment booked")

	if full, err := s.appointments.FindByID(ctx, appointment.ID); err == nil {
		appointment = full
	}
	s.notifier.AppointmentBooked(ctx, appointment)
	return appointment, nil
}

// Cancel cancels one of the user's own pending or confirmed appointments.
func (s *Service) Cancel(ctx context.Context, userID, appointmentID uint) (*models.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, appointmentID)
	if repository.IsNotFound(err) || (err == nil && appointment.UserID != userID) {
		return nil, utils.NotFound("Appointment not found")
	}
	if err != nil {
		return nil, utils.Persistence("cancel appointment: load", err)
	}
	return s.transition(ctx, appointment, models.StatusCanceled, nil)
}

// UpdateStatus is the admin path: it moves the appointment to status (when
// different from the current one) and replaces the admin notes when given.
func (s *Service) UpdateStatus(ctx context.Context, appointmentID uint, status models.AppointmentStatus, notes *string) (*models.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, appointmentID)
	if repository.IsNotFound(err) {
		return nil, utils.NotFound("Appointment not found")
	}
	if err != nil {
		return nil, utils.Persistence("update appointment: load", err)
	}
	if status == "" || status == appointment.Status {
		if notes == nil {
			return appointment, nil
		}
		if err := s.appointments.UpdateFields(ctx, appointment.ID, map[string]interface{}{"admin_notes": *notes}); err != nil {
			return nil, utils.Persistence("update appointment: notes", err)
		}
		appointment.AdminNotes = *notes
		return appointment, nil
	}
	return s.transition(ctx, appointment, status, notes)
}

func (s *Service) transition(ctx context.Context, appointment *models.Appointment, status models.AppointmentStatus, notes *string) (*models.Appointment, error) {
	if err := appointment.CanTransition(status); err != nil {
		return nil, utils.Validation(err.Error())
	}

	fields := map[string]interface{}{"status": status}
	if notes != nil {
		fields["admin_notes"] = *notes
	}
	if err := s.appointments.UpdateFields(ctx, appointment.ID, fields); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.Conflict(MsgSlotTaken)
		}
		return nil, utils.Persistence("update appointment status", err)
	}
	appointment.Status = status
	if notes != nil {
		appointment.AdminNotes = *notes
	}

	s.notifier.AppointmentStatusChanged(ctx, appointment)
	return appointment, nil
}

// Get returns an appointment visible to the caller: its owner or an admin.
func (s *Service) Get(ctx context.Context, userID uint, isAdmin bool, appointmentID uint) (*models.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, appointmentID)
	if repository.IsNotFound(err) || (err == nil && !isAdmin && appointment.UserID != userID) {
		return nil, utils.NotFound("Appointment not found")
	}
	if err != nil {
		return nil, utils.Persistence("get appointment", err)
	}
	return appointment, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Appointment, error) {
	appointments, err := s.appointments.ListForUser(ctx, userID)
	if err != nil {
		return nil, utils.Persistence("list user appointments", err)
	}
	return appointments, nil
}

func (s *Service) List(ctx context.Context, f repository.AppointmentFilter) ([]models.Appointment, int64, error) {
	appointments, total, err := s.appointments.List(ctx, f)
	if err != nil {
		return nil, 0, utils.Persistence("list appointments", err)
	}
	return appointments, total, nil
}

// AvailableSlots returns the therapist's free slots on date.
func (s *Service) AvailableSlots(ctx context.Context, therapistID uint, date string) ([]string, error) {
	return AvailableSlots(ctx, s.appointments, therapistID, date)
}

// rejection turns validation messages into an error: a conflict when every
// problem is a clash with existing bookings, a validation error otherwise.
func rejection(problems []string) *utils.AppError {
	for _, p := range problems {
		if !isConflict(p) {
			return utils.Validation("Booking request is invalid", problems...)
		}
	}
	err := utils.Conflict(problems[0])
	err.Details = problems
	return err
}

func asAppError(op string, err error) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return utils.Persistence(op, err)
}
