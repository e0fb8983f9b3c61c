package admin

import (
	"context"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/utils"
)

func (s *Service) ListSettings(ctx context.Context) ([]models.SystemSetting, error) {
	var settings []models.SystemSetting
	if err := s.db.WithContext(ctx).Order("key asc").Find(&settings).Error; err != nil {
		return nil, utils.Persistence("list settings", err)
	}
	return settings, nil
}

func (s *Service) GetSetting(ctx context.Context, key string) (*models.SystemSetting, error) {
	var setting models.SystemSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, notFoundOr("load setting", "Setting not found", err)
	}
	return &setting, nil
}

// UpsertSetting creates key or overwrites its value.
func (s *Service) UpsertSetting(ctx context.Context, adminID uint, key, value string) (*models.SystemSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > 100 {
		return nil, utils.Validation("Setting key must be 1 to 100 characters")
	}

	setting := models.SystemSetting{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, utils.Persistence("upsert setting", err)
	}
	s.LogAction(ctx, &adminID, ActionUpsertSetting, map[string]interface{}{"key": key})
	return s.GetSetting(ctx, key)
}
