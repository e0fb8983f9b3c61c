package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/notify"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/testutil"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// now is Monday 2026-03-02 10:00 UTC.
var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	svc       *Service
	client    *models.User
	other     *models.User
	therapist *models.Therapist
	service   *models.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	validator := NewValidator(
		repository.NewAppointmentRepository(db),
		repository.NewTherapistRepository(db),
		repository.NewServiceRepository(db),
		WithClock(func() time.Time { return now }),
		WithLocation(time.UTC),
	)
	notifier := notify.NewService(db, notify.NewLogMailer(db), time.UTC)

	return &fixture{
		db:        db,
		svc:       NewService(db, validator, notifier),
		client:    testutil.CreateUser(t, db, "client@example.com", models.RoleClient),
		other:     testutil.CreateUser(t, db, "other@example.com", models.RoleClient),
		therapist: testutil.CreateTherapist(t, db, "therapist@example.com"),
		service:   testutil.CreateService(t, db, "Deep tissue massage"),
	}
}

func (f *fixture) request(user *models.User, date, clock string) BookingRequest {
	return BookingRequest{
		UserID:      user.ID,
		TherapistID: f.therapist.ID,
		ServiceID:   f.service.ID,
		Date:        date,
		Time:        clock,
	}
}

func (f *fixture) validate(t *testing.T, req BookingRequest) []string {
	t.Helper()
	problems, err := f.svc.Validator().ValidateBooking(context.Background(), req)
	require.NoError(t, err)
	return problems
}

func TestValidateBookingAcceptsValidRequest(t *testing.T) {
	f := setup(t)
	assert.Empty(t, f.validate(t, f.request(f.client, "2026-03-03", "11:00")))
}

func TestValidateBookingLeadTimeBoundary(t *testing.T) {
	f := setup(t)

	// a minute later the same slot is only 23h59m away
	late := NewValidator(
		repository.NewAppointmentRepository(f.db),
		repository.NewTherapistRepository(f.db),
		repository.NewServiceRepository(f.db),
		WithClock(func() time.Time { return now.Add(time.Minute) }),
		WithLocation(time.UTC),
	)
	problems, err := late.ValidateBooking(context.Background(), f.request(f.client, "2026-03-03", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, []string{MsgLeadTime}, problems)

	// now + 24h00m
	assert.Empty(t, f.validate(t, f.request(f.client, "2026-03-03", "10:00")))
}

func TestValidateBookingRejectsTimesOffTheGrid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.Equal(t, []string{MsgOffGrid}, f.validate(t, f.request(f.client, "2026-03-04", "10:30")))

	_, err := f.svc.Book(ctx, f.request(f.client, "2026-03-04", "10:30"))
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = f.svc.Book(ctx, f.request(f.other, "2026-03-04", "10:00"))
	require.NoError(t, err)

	slots, err := f.svc.AvailableSlots(ctx, f.therapist.ID, "2026-03-04")
	require.NoError(t, err)
	assert.Len(t, slots, len(SlotGrid)-1)
	assert.NotContains(t, slots, "10:00:00")
}

func TestValidateBookingBusinessHours(t *testing.T) {
	f := setup(t)

	cases := []struct {
		name, date, clock string
		open              bool
	}{
		{"sunday", "2026-03-08", "12:00", false},
		{"saturday before opening", "2026-03-07", "09:00", false},
		{"saturday opening", "2026-03-07", "10:00", true},
		{"saturday last hour", "2026-03-07", "15:00", true},
		{"saturday closing", "2026-03-07", "16:00", false},
		{"friday last hour", "2026-03-06", "17:00", true},
		{"friday closing", "2026-03-06", "18:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problems := f.validate(t, f.request(f.client, tc.date, tc.clock))
			if tc.open {
				assert.Empty(t, problems)
			} else {
				assert.Equal(t, []string{MsgOutsideHours}, problems)
			}
		})
	}
}

func TestValidateBookingAccumulatesProblems(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Model(f.service).Update("status", models.StatusInactive).Error)

	req := f.request(f.client, "2026-03-01", "08:00") // yesterday, a Sunday
	req.TherapistID = 999

	problems := f.validate(t, req)
	assert.Equal(t, []string{MsgServiceUnavailable, MsgTherapistUnavailable, MsgLeadTime, MsgOutsideHours}, problems)
}

func TestValidateBookingInactiveTherapist(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Model(f.therapist).Update("status", models.StatusInactive).Error)

	problems := f.validate(t, f.request(f.client, "2026-03-03", "11:00"))
	assert.Equal(t, []string{MsgTherapistUnavailable}, problems)
}

func TestValidateBookingRejectsMalformedInput(t *testing.T) {
	f := setup(t)

	problems := f.validate(t, f.request(f.client, "03/03/2026", "11:00"))
	assert.Equal(t, []string{MsgInvalidDateTime}, problems)

	problems = f.validate(t, f.request(f.client, "2026-03-03", "eleven"))
	assert.Equal(t, []string{MsgInvalidDateTime}, problems)
}

func TestDoubleBooking(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.svc.Book(ctx, f.request(f.client, "2026-03-04", "14:00"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, first.Status)
	assert.Equal(t, "14:00:00", first.AppointmentTime)

	problems := f.validate(t, f.request(f.other, "2026-03-04", "14:00"))
	assert.Equal(t, []string{MsgSlotTaken}, problems)

	_, err = f.svc.Book(ctx, f.request(f.other, "2026-03-04", "14:00:00"))
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	_, err = f.svc.Cancel(ctx, f.client.ID, first.ID)
	require.NoError(t, err)

	assert.Empty(t, f.validate(t, f.request(f.other, "2026-03-04", "14:00")))
	_, err = f.svc.Book(ctx, f.request(f.other, "2026-03-04", "14:00"))
	assert.NoError(t, err)
}

func TestSlotIndexRejectsSecondWriter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := repository.NewAppointmentRepository(f.db)

	slot := func(user *models.User, status models.AppointmentStatus) *models.Appointment {
		return &models.Appointment{
			UserID:          user.ID,
			TherapistID:     f.therapist.ID,
			ServiceID:       f.service.ID,
			AppointmentDate: "2026-03-05",
			AppointmentTime: "10:00:00",
			Status:          status,
		}
	}

	require.NoError(t, repo.Create(ctx, slot(f.client, models.StatusCanceled)))
	require.NoError(t, repo.Create(ctx, slot(f.client, models.StatusPending)))

	err := repo.Create(ctx, slot(f.other, models.StatusPending))
	assert.True(t, errors.Is(err, repository.ErrDuplicate), "got %v", err)
}

func TestUpcomingAppointmentCap(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// Past appointments do not count.
	testutil.CreateAppointment(t, f.db, f.client.ID, f.therapist.ID, f.service.ID, now.AddDate(0, 0, -1), "10:00:00", models.StatusPending)

	var booked []*models.Appointment
	for _, clock := range []string{"10:00", "11:00", "12:00"} {
		a, err := f.svc.Book(ctx, f.request(f.client, "2026-03-05", clock))
		require.NoError(t, err)
		booked = append(booked, a)
	}

	problems := f.validate(t, f.request(f.client, "2026-03-05", "13:00"))
	assert.Equal(t, []string{MsgLimitReached}, problems)

	_, err := f.svc.Book(ctx, f.request(f.client, "2026-03-05", "13:00"))
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	_, err = f.svc.Cancel(ctx, f.client.ID, booked[0].ID)
	require.NoError(t, err)

	assert.Empty(t, f.validate(t, f.request(f.client, "2026-03-05", "13:00")))
}

func TestBookRejectsInvalidRequestAsValidation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Book(context.Background(), f.request(f.client, "2026-03-08", "12:00"))
	require.Error(t, err)

	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.KindValidation, appErr.Kind)
	assert.Equal(t, []string{MsgOutsideHours}, appErr.Details)
}

func TestBookNotifiesClient(t *testing.T) {
	f := setup(t)

	a, err := f.svc.Book(context.Background(), f.request(f.client, "2026-03-03", "11:00"))
	require.NoError(t, err)
	require.NotNil(t, a.Service)

	var notifications int64
	require.NoError(t, f.db.Model(&models.Notification{}).Where("user_id = ?", f.client.ID).Count(&notifications).Error)
	assert.Equal(t, int64(1), notifications)

	var logs []models.EmailLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "client@example.com", logs[0].Recipient)
	assert.Equal(t, "logged", logs[0].Status)
}

func TestCancelOnlyOwnAppointments(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.Book(ctx, f.request(f.client, "2026-03-03", "11:00"))
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.other.ID, a.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = f.svc.Cancel(ctx, f.client.ID, a.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.client.ID, a.ID)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err), "canceled is final")
}

func TestUpdateStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.Book(ctx, f.request(f.client, "2026-03-03", "11:00"))
	require.NoError(t, err)

	notes := "Client prefers low pressure"
	updated, err := f.svc.UpdateStatus(ctx, a.ID, models.StatusConfirmed, &notes)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.Equal(t, notes, updated.AdminNotes)

	_, err = f.svc.UpdateStatus(ctx, a.ID, models.StatusPending, nil)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = f.svc.UpdateStatus(ctx, 4242, models.StatusConfirmed, nil)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}
