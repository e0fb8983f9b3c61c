package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/wellness")
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("PORT", "")
	t.Setenv("REMINDER_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Empty(t, cfg.ReminderSchedule, "reminders are on demand unless scheduled")
}

func TestReminderScheduleCanBeDisabled(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/wellness")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REMINDER_SCHEDULE", "off")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.ReminderSchedule)
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/wellness")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/wellness")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CLINIC_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}
