package booking

import (
	"context"
	"time"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// TherapistOf returns the active therapist profile of a therapist-role user.
func (s *Service) TherapistOf(ctx context.Context, userID uint) (*models.Therapist, error) {
	t, err := repository.NewTherapistRepository(s.db).FindByUserID(ctx, userID)
	if repository.IsNotFound(err) || (err == nil && !t.IsActive()) {
		return nil, utils.Forbidden("No active therapist profile for this account")
	}
	if err != nil {
		return nil, utils.Persistence("load therapist profile", err)
	}
	return t, nil
}

// ListForTherapist lists the appointments booked with the therapist profile
// of userID; f.TherapistID is overwritten.
func (s *Service) ListForTherapist(ctx context.Context, userID uint, f repository.AppointmentFilter) ([]models.Appointment, int64, error) {
	t, err := s.TherapistOf(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	f.TherapistID = t.ID
	return s.List(ctx, f)
}

// UpdateStatusAsTherapist lets a therapist confirm, complete or cancel an
// appointment booked with them.
func (s *Service) UpdateStatusAsTherapist(ctx context.Context, userID, appointmentID uint, status models.AppointmentStatus) (*models.Appointment, error) {
	t, err := s.TherapistOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	appointment, err := s.appointments.FindByID(ctx, appointmentID)
	if repository.IsNotFound(err) || (err == nil && appointment.TherapistID != t.ID) {
		return nil, utils.NotFound("Appointment not found")
	}
	if err != nil {
		return nil, utils.Persistence("update appointment: load", err)
	}
	return s.transition(ctx, appointment, status, nil)
}

// Overview is the dashboard summary of appointments.
type Overview struct {
	Total       int64                              `json:"total_appointments"`
	ByStatus    map[models.AppointmentStatus]int64 `json:"by_status"`
	Upcoming    int64                              `json:"upcoming"`
	Revenue     float64                            `json:"revenue"`
	LastUpdated time.Time                          `json:"last_updated"`
}

// Overview summarises all appointments, or one therapist's when therapistID
// is non-zero.
func (s *Service) Overview(ctx context.Context, therapistID uint) (*Overview, error) {
	counts, err := s.appointments.CountByStatus(ctx, therapistID)
	if err != nil {
		return nil, utils.Persistence("overview: count by status", err)
	}

	o := &Overview{ByStatus: map[models.AppointmentStatus]int64{}, LastUpdated: s.validator.now()}
	for _, c := range counts {
		o.ByStatus[c.Status] = c.Count
		o.Total += c.Count
	}

	_, o.Upcoming, err = s.appointments.List(ctx, repository.AppointmentFilter{
		TherapistID: therapistID,
		Status:      models.StatusConfirmed,
		DateFrom:    s.validator.today(),
		Limit:       1,
	})
	if err != nil {
		return nil, utils.Persistence("overview: upcoming", err)
	}

	if o.Revenue, err = s.appointments.CompletedRevenue(ctx, therapistID); err != nil {
		return nil, utils.Persistence("overview: revenue", err)
	}
	return o, nil
}
