// Package cron runs the data-repair jobs and appointment reminders on a schedule.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/meinhoongagan/wellness-portal/admin"
)

// JobRunner runs one named maintenance job.
type JobRunner interface {
	RunJob(ctx context.Context, adminID *uint, job string) (*admin.Report, error)
}

// ReminderSender emails reminders for tomorrow's appointments.
type ReminderSender interface {
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

// jobTimeout bounds a single scheduled run.
const jobTimeout = 5 * time.Minute

// New returns a scheduler that skips a run while the previous one is still going.
func New() *cron.Cron {
	return cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
}

// AddMaintenance runs every maintenance job on schedule (a standard
// five-field cron expression).
func AddMaintenance(c *cron.Cron, schedule string, runner JobRunner) error {
	for _, job := range []string{admin.JobSyncTherapists, admin.JobMigrateRoles} {
		if _, err := c.AddFunc(schedule, runJob(runner, job)); err != nil {
			return fmt.Errorf("schedule %s: %w", job, err)
		}
	}
	logrus.WithField("schedule", schedule).Info("maintenance jobs scheduled")
	return nil
}

// AddReminders sends appointment reminders on schedule.
func AddReminders(c *cron.Cron, schedule string, sender ReminderSender) error {
	if _, err := c.AddFunc(schedule, sendReminders(sender)); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	logrus.WithField("schedule", schedule).Info("appointment reminders scheduled")
	return nil
}

func sendReminders(sender ReminderSender) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		sent, err := sender.SendReminders(ctx, time.Now())
		if err != nil {
			logrus.WithError(err).Error("scheduled reminders failed")
			return
		}
		logrus.WithField("sent", sent).Info("appointment reminders sent")
	}
}

func runJob(runner JobRunner, job string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, err := runner.RunJob(ctx, nil, job); err != nil {
			logrus.WithError(err).WithField("job", job).Error("scheduled maintenance failed")
		}
	}
}
