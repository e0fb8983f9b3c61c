// Package admin holds the back-office operations: account and catalog
// management, settings, the audit log and data-repair jobs.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/auth"
	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

type Service struct {
	db         *gorm.DB
	accounts   *auth.Service
	users      *repository.UserRepository
	therapists *repository.TherapistRepository
	services   *repository.ServiceRepository
	uploader   utils.ImageUploader
}

// NewService wires the admin operations. uploader may be nil, in which case
// photo uploads are refused.
func NewService(db *gorm.DB, accounts *auth.Service, uploader utils.ImageUploader) *Service {
	return &Service{
		db:         db,
		accounts:   accounts,
		users:      repository.NewUserRepository(db),
		therapists: repository.NewTherapistRepository(db),
		services:   repository.NewServiceRepository(db),
		uploader:   uploader,
	}
}

// Audit actions.
const (
	ActionCreateUser        = "user.create"
	ActionUpdateRole        = "user.update_role"
	ActionSetStatus         = "user.set_status"
	ActionUpdateAppointment = "appointment.update_status"
	ActionCreateService     = "service.create"
	ActionUpdateService     = "service.update"
	ActionDeleteService     = "service.delete"
	ActionUpdateTherapist   = "therapist.update"
	ActionUploadPhoto       = "therapist.upload_photo"
	ActionUpsertSetting     = "setting.upsert"
	ActionSyncTherapists    = "maintenance.sync_therapists"
	ActionMigrateRoles      = "maintenance.migrate_roles"
)

// LogAction appends to admin_logs. adminID is nil for system jobs; details is
// stored as JSON. A failed write is logged and otherwise ignored.
func (s *Service) LogAction(ctx context.Context, adminID *uint, action string, details interface{}) {
	logAction(ctx, s.db, adminID, action, details)
}

func logAction(ctx context.Context, db *gorm.DB, adminID *uint, action string, details interface{}) {
	raw, err := json.Marshal(details)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", details))
	}
	entry := models.AdminLog{AdminID: adminID, Action: action, Details: string(raw)}
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		logrus.WithError(err).WithField("action", action).Error("admin log not written")
	}
}

type LogFilter struct {
	AdminID uint
	Action  string
	Limit   int
}

// ListLogs returns the newest audit entries first.
func (s *Service) ListLogs(ctx context.Context, f LogFilter) ([]models.AdminLog, error) {
	q := s.db.WithContext(ctx).Order("created_at desc, id desc")
	if f.AdminID != 0 {
		q = q.Where("admin_id = ?", f.AdminID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	limit := f.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var logs []models.AdminLog
	if err := q.Limit(limit).Find(&logs).Error; err != nil {
		return nil, utils.Persistence("list admin logs", err)
	}
	return logs, nil
}

func notFoundOr(op, message string, err error) error {
	if repository.IsNotFound(err) {
		return utils.NotFound(message)
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return utils.Persistence(op, err)
}
