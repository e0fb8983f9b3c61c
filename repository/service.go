package repository

import (
	"context"

	"github.com/meinhoongagan/wellness-portal/models"
	"gorm.io/gorm"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ServiceRepository) FindByID(ctx context.Context, id uint) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	q := r.db.WithContext(ctx).Order("name asc")
	if activeOnly {
		q = q.Where("status = ?", models.StatusActive)
	}
	var services []models.Service
	err := q.Find(&services).Error
	return services, err
}

func (r *ServiceRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Service{}).
		Where("id = ?", id).
		Updates(fields).Error
}
