// Package notify keeps in-app notifications and sends the portal's emails.
package notify

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// Notification types.
const (
	TypeAppointment = "appointment"
	TypeReminder    = "reminder"
	TypeInquiry     = "inquiry"
	TypeSystem      = "system"
)

type Service struct {
	db           *gorm.DB
	mailer       Mailer
	loc          *time.Location
	appointments *repository.AppointmentRepository
	users        *repository.UserRepository
}

func NewService(db *gorm.DB, mailer Mailer, loc *time.Location) *Service {
	return &Service{
		db:           db,
		mailer:       mailer,
		loc:          loc,
		appointments: repository.NewAppointmentRepository(db),
		users:        repository.NewUserRepository(db),
	}
}

// Notify stores an in-app notification for userID.
func (s *Service) Notify(ctx context.Context, userID uint, title, message, kind string) error {
	n := models.Notification{UserID: userID, Title: title, Message: message, Type: kind}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return utils.Persistence("create notification", err)
	}
	return nil
}

// Email sends through the configured mailer.
func (s *Service) Email(ctx context.Context, to, subject, body string) error {
	return s.mailer.Send(ctx, to, subject, body)
}

func (s *Service) List(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var notifications []models.Notification
	if err := q.Order("created_at desc, id desc").Limit(100).Find(&notifications).Error; err != nil {
		return nil, utils.Persistence("list notifications", err)
	}
	return notifications, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, utils.Persistence("count notifications", err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return utils.Persistence("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Notification not found")
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, utils.Persistence("mark notifications read", res.Error)
	}
	return res.RowsAffected, nil
}

// AppointmentBooked tells the client their request was received.
func (s *Service) AppointmentBooked(ctx context.Context, a *models.Appointment) {
	s.appointmentMessage(ctx, a, "Appointment requested",
		fmt.Sprintf("Your appointment on %s at %s is pending confirmation.", a.AppointmentDate, shortTime(a.AppointmentTime)))
}

// AppointmentStatusChanged tells the client about a confirmation, cancellation
// or completion.
func (s *Service) AppointmentStatusChanged(ctx context.Context, a *models.Appointment) {
	s.appointmentMessage(ctx, a, "Appointment "+string(a.Status),
		fmt.Sprintf("Your appointment on %s at %s is now %s.", a.AppointmentDate, shortTime(a.AppointmentTime), a.Status))
}

func (s *Service) appointmentMessage(ctx context.Context, a *models.Appointment, title, message string) {
	log := logrus.WithField("appointment_id", a.ID)
	if err := s.Notify(ctx, a.UserID, title, message, TypeAppointment); err != nil {
		log.WithError(err).Warn("appointment notification not stored")
	}

	user := a.User
	if user == nil {
		u, err := s.users.FindByID(ctx, a.UserID)
		if err != nil {
			log.WithError(err).Warn("appointment email skipped: user not loaded")
			return
		}
		user = u
	}
	if err := s.mailer.Send(ctx, user.Email, title, appointmentEmail(user.Name, message, a)); err != nil {
		log.WithError(err).Warn("appointment email not sent")
	}
}

// SendReminders emails every confirmed appointment dated the day after now
// that has not been reminded yet, then flags it. It returns how many
// reminders went out.
func (s *Service) SendReminders(ctx context.Context, now time.Time) (int, error) {
	tomorrow := now.In(s.loc).AddDate(0, 0, 1).Format(models.DateLayout)
	due, err := s.appointments.DueReminders(ctx, tomorrow)
	if err != nil {
		return 0, utils.Persistence("load due reminders", err)
	}

	sent := 0
	for i := range due {
		a := &due[i]
		log := logrus.WithField("appointment_id", a.ID)
		if a.User == nil {
			log.Warn("reminder skipped: appointment has no user")
			continue
		}

		message := fmt.Sprintf("Reminder: your appointment is tomorrow, %s at %s.", a.AppointmentDate, shortTime(a.AppointmentTime))
		if err := s.mailer.Send(ctx, a.User.Email, "Appointment reminder", appointmentEmail(a.User.Name, message, a)); err != nil {
			log.WithError(err).Warn("reminder email not sent")
			continue
		}
		if err := s.Notify(ctx, a.UserID, "Appointment reminder", message, TypeReminder); err != nil {
			log.WithError(err).Warn("reminder notification not stored")
		}
		if err := s.appointments.MarkReminderSent(ctx, a.ID); err != nil {
			return sent, utils.Persistence("mark reminder sent", err)
		}
		sent++
	}

	logrus.WithField("count", sent).Info("appointment reminders sent")
	return sent, nil
}

func appointmentEmail(name, message string, a *models.Appointment) string {
	service, therapist := "-", "-"
	if a.Service != nil {
		service = a.Service.Name
	}
	if a.Therapist != nil {
		therapist = a.Therapist.Name
	}
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>%s</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Service:</strong> %s</li>
			<li><strong>Therapist:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>
		<p>If you need to reschedule or cancel, please contact us as soon as possible.</p>
		<p>Best regards,</p>
		<p>Your Wellness Team</p>
	`, html.EscapeString(name), html.EscapeString(message), html.EscapeString(service),
		html.EscapeString(therapist), a.AppointmentDate, a.AppointmentTime, a.Status)
}

// shortTime trims "HH:MM:SS" to "HH:MM".
func shortTime(clock string) string {
	if len(clock) >= 5 {
		return clock[:5]
	}
	return clock
}
