package repository

import (
	"context"

	"github.com/meinhoongagan/wellness-portal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *AppointmentRepository) WithTx(tx *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: tx}
}

// AppointmentFilter narrows List. Zero fields are ignored.
type AppointmentFilter struct {
	UserID      uint
	TherapistID uint
	Status      models.AppointmentStatus
	DateFrom    string
	DateTo      string
	Page        int
	Limit       int
}

// Create inserts a; a live appointment already holding the slot yields ErrDuplicate.
func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Therapist").
		Preload("Service").
		First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CountActiveAtSlot counts appointments holding the therapist's slot. With lock
// set, the matching rows are locked until the surrounding transaction ends.
func (r *AppointmentRepository) CountActiveAtSlot(ctx context.Context, therapistID uint, date, clock string, lock bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("therapist_id = ? AND appointment_date = ? AND appointment_time = ?", therapistID, date, clock).
		Where("status <> ?", models.StatusCanceled)

	if lock && lockingSupported(r.db) {
		var ids []uint
		if err := q.Clauses(clause.Locking{Strength: "UPDATE"}).Pluck("id", &ids).Error; err != nil {
			return 0, err
		}
		return int64(len(ids)), nil
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}

// CountUpcomingForUser counts the user's pending or confirmed appointments
// dated on or after today.
func (r *AppointmentRepository) CountUpcomingForUser(ctx context.Context, userID uint, today string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("user_id = ? AND appointment_date >= ?", userID, today).
		Where("status IN ?", models.UpcomingStatuses).
		Count(&count).Error
	return count, err
}

// BookedTimes returns the distinct times the therapist is booked on date.
func (r *AppointmentRepository) BookedTimes(ctx context.Context, therapistID uint, date string) ([]string, error) {
	var times []string
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Distinct().
		Where("therapist_id = ? AND appointment_date = ?", therapistID, date).
		Where("status <> ?", models.StatusCanceled).
		Order("appointment_time asc").
		Pluck("appointment_time", &times).Error
	return times, err
}

func (r *AppointmentRepository) ListForUser(ctx context.Context, userID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Therapist").
		Preload("Service").
		Where("user_id = ?", userID).
		Order("appointment_date desc, appointment_time desc").
		Find(&appointments).Error
	return appointments, err
}

// List returns one page of appointments matching f and the total match count.
func (r *AppointmentRepository) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.TherapistID != 0 {
		q = q.Where("therapist_id = ?", f.TherapistID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.DateFrom != "" {
		q = q.Where("appointment_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("appointment_date <= ?", f.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := pageBounds(f.Page, f.Limit)
	var appointments []models.Appointment
	err := q.
		Preload("User").
		Preload("Therapist").
		Preload("Service").
		Order("appointment_date desc, appointment_time desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&appointments).Error
	return appointments, total, err
}

// DueReminders returns confirmed appointments on date whose reminder is still unsent.
func (r *AppointmentRepository) DueReminders(ctx context.Context, date string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Therapist").
		Preload("Service").
		Where("appointment_date = ? AND status = ? AND reminder_sent = ?", date, models.StatusConfirmed, false).
		Order("appointment_time asc").
		Find(&appointments).Error
	return appointments, err
}

func (r *AppointmentRepository) MarkReminderSent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
}

// UpdateFields writes the given columns of appointment id.
func (r *AppointmentRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return translate(r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(fields).Error)
}

func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// StatusCount is one row of CountByStatus.
type StatusCount struct {
	Status models.AppointmentStatus
	Count  int64
}

// CountByStatus groups appointments by status; a non-zero therapistID limits
// the count to that therapist.
func (r *AppointmentRepository) CountByStatus(ctx context.Context, therapistID uint) ([]StatusCount, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if therapistID != 0 {
		q = q.Where("therapist_id = ?", therapistID)
	}
	var rows []StatusCount
	err := q.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error
	return rows, err
}

// CompletedRevenue sums the service prices of completed appointments.
func (r *AppointmentRepository) CompletedRevenue(ctx context.Context, therapistID uint) (float64, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("appointments.status = ?", models.StatusCompleted)
	if therapistID != 0 {
		q = q.Where("appointments.therapist_id = ?", therapistID)
	}
	var total float64
	err := q.Select("COALESCE(SUM(services.price), 0)").Row().Scan(&total)
	return total, err
}
