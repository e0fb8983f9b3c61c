// Package testutil opens throwaway databases and seeds fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/meinhoongagan/wellness-portal/db"
	"github.com/meinhoongagan/wellness-portal/models"
)

// Password is the plain-text password of every seeded user.
const Password = "correct-horse-battery"

// NewDB returns a migrated in-memory database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}

// CreateUser inserts an active user with Password.
func CreateUser(t *testing.T, gdb *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.User{
		Name:     strings.Split(email, "@")[0],
		Email:    email,
		Password: string(hash),
		Role:     role,
		Status:   models.StatusActive,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

// CreateTherapist inserts a therapist-role user and its active profile.
func CreateTherapist(t *testing.T, gdb *gorm.DB, email string) *models.Therapist {
	t.Helper()

	u := CreateUser(t, gdb, email, models.RoleTherapist)
	th := &models.Therapist{
		UserID:         &u.ID,
		Name:           u.Name,
		Specialization: "Massage",
		Status:         models.StatusActive,
	}
	require.NoError(t, gdb.Create(th).Error)
	return th
}

// CreateService inserts an active one-hour service.
func CreateService(t *testing.T, gdb *gorm.DB, name string) *models.Service {
	t.Helper()

	s := &models.Service{Name: name, Price: 60, Duration: 60, Status: models.StatusActive}
	require.NoError(t, gdb.Create(s).Error)
	return s
}

// CreateAppointment inserts an appointment bypassing validation.
func CreateAppointment(t *testing.T, gdb *gorm.DB, userID, therapistID, serviceID uint, date time.Time, clock string, status models.AppointmentStatus) *models.Appointment {
	t.Helper()

	a := &models.Appointment{
		UserID:          userID,
		TherapistID:     therapistID,
		ServiceID:       serviceID,
		AppointmentDate: date.Format(models.DateLayout),
		AppointmentTime: clock,
		Status:          status,
	}
	require.NoError(t, gdb.Create(a).Error)
	return a
}

// NextWeekday returns the first day strictly after from that falls on wd,
// at midnight in from's location.
func NextWeekday(from time.Time, wd time.Weekday) time.Time {
	d := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location()).AddDate(0, 0, 1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
