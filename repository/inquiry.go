package repository

import (
	"context"

	"github.com/meinhoongagan/wellness-portal/models"
	"gorm.io/gorm"
)

type InquiryRepository struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

type InquiryFilter struct {
	UserID   uint
	Status   models.InquiryStatus
	Priority models.InquiryPriority
	Page     int
	Limit    int
}

func (r *InquiryRepository) Create(ctx context.Context, i *models.Inquiry) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *InquiryRepository) FindByID(ctx context.Context, id uint) (*models.Inquiry, error) {
	var i models.Inquiry
	if err := r.db.WithContext(ctx).Preload("User").First(&i, id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InquiryRepository) List(ctx context.Context, f InquiryFilter) ([]models.Inquiry, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Inquiry{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := pageBounds(f.Page, f.Limit)
	var inquiries []models.Inquiry
	err := q.Preload("User").
		Order("created_at desc, id desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&inquiries).Error
	return inquiries, total, err
}

func (r *InquiryRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Inquiry{}).
		Where("id = ?", id).
		Updates(fields).Error
}
