package admin

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/auth"
	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// Maintenance job names, as accepted by RunJob.
const (
	JobSyncTherapists = "sync-therapists"
	JobMigrateRoles   = "migrate-roles"
)

// Report summarises one maintenance run.
type Report struct {
	Job       string   `json:"job"`
	Fixed     int      `json:"fixed"`
	Created   int      `json:"created"`
	Unchanged []string `json:"unchanged,omitempty"`
}

// RunJob runs the named maintenance job. adminID is nil when the job is
// started by the scheduler or the command line.
func (s *Service) RunJob(ctx context.Context, adminID *uint, job string) (*Report, error) {
	switch job {
	case JobSyncTherapists:
		return s.SyncOrphanTherapists(ctx, adminID)
	case JobMigrateRoles:
		return s.MigrateLegacyRoles(ctx, adminID)
	default:
		return nil, utils.Validation(fmt.Sprintf("Unknown maintenance job %q", job))
	}
}

// SyncOrphanTherapists deactivates active therapist rows that no longer
// belong to an active therapist-role user, and gives active therapist-role
// users without a row a fresh profile.
func (s *Service) SyncOrphanTherapists(ctx context.Context, adminID *uint) (*Report, error) {
	report := &Report{Job: JobSyncTherapists}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		therapists := repository.NewTherapistRepository(tx)
		orphans, err := therapists.ActiveOrphans(ctx)
		if err != nil {
			return err
		}
		for _, t := range orphans {
			if err := therapists.UpdateFields(ctx, t.ID, map[string]interface{}{"status": models.StatusInactive}); err != nil {
				return err
			}
			report.Fixed++
		}

		missing, err := repository.NewUserRepository(tx).ActiveTherapistsWithoutProfile(ctx)
		if err != nil {
			return err
		}
		for i := range missing {
			if err := auth.SyncTherapistRecord(ctx, tx, &missing[i], nil); err != nil {
				return err
			}
			report.Created++
		}
		return nil
	})
	if err != nil {
		return nil, utils.Persistence("sync therapists", err)
	}

	s.finish(ctx, adminID, ActionSyncTherapists, report)
	return report, nil
}

// MigrateLegacyRoles rewrites role names from older releases to the current
// set and syncs therapist rows for the users it touched. Names it cannot map
// are reported and left alone.
func (s *Service) MigrateLegacyRoles(ctx context.Context, adminID *uint) (*Report, error) {
	report := &Report{Job: JobMigrateRoles}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		legacy, err := users.WithUnknownRoles(ctx)
		if err != nil {
			return err
		}
		for i := range legacy {
			u := &legacy[i]
			role, ok := models.NormalizeRole(string(u.Role))
			if !ok {
				report.Unchanged = append(report.Unchanged, fmt.Sprintf("user %d: %q", u.ID, u.Role))
				continue
			}
			if err := users.UpdateFields(ctx, u.ID, map[string]interface{}{"role": role}); err != nil {
				return err
			}
			u.Role = role
			if err := auth.SyncTherapistRecord(ctx, tx, u, nil); err != nil {
				return err
			}
			report.Fixed++
		}
		return nil
	})
	if err != nil {
		return nil, utils.Persistence("migrate roles", err)
	}

	s.finish(ctx, adminID, ActionMigrateRoles, report)
	return report, nil
}

func (s *Service) finish(ctx context.Context, adminID *uint, action string, report *Report) {
	s.LogAction(ctx, adminID, action, report)
	logrus.WithFields(logrus.Fields{
		"job":       report.Job,
		"fixed":     report.Fixed,
		"created":   report.Created,
		"unchanged": len(report.Unchanged),
	}).Info("maintenance job finished")
}
