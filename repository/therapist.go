package repository

import (
	"context"

	"github.com/meinhoongagan/wellness-portal/models"
	"gorm.io/gorm"
)

type TherapistRepository struct {
	db *gorm.DB
}

func NewTherapistRepository(db *gorm.DB) *TherapistRepository {
	return &TherapistRepository{db: db}
}

func (r *TherapistRepository) WithTx(tx *gorm.DB) *TherapistRepository {
	return &TherapistRepository{db: tx}
}

func (r *TherapistRepository) Create(ctx context.Context, t *models.Therapist) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TherapistRepository) FindByID(ctx context.Context, id uint) (*models.Therapist, error) {
	var t models.Therapist
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TherapistRepository) FindByUserID(ctx context.Context, userID uint) (*models.Therapist, error) {
	var t models.Therapist
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns therapists ordered by name; activeOnly hides inactive ones.
func (r *TherapistRepository) List(ctx context.Context, activeOnly bool) ([]models.Therapist, error) {
	q := r.db.WithContext(ctx).Order("name asc")
	if activeOnly {
		q = q.Where("status = ?", models.StatusActive)
	}
	var therapists []models.Therapist
	err := q.Find(&therapists).Error
	return therapists, err
}

func (r *TherapistRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return translate(r.db.WithContext(ctx).Model(&models.Therapist{}).
		Where("id = ?", id).
		Updates(fields).Error)
}

// SetStatusByUserID sets the status of the therapist row owned by userID.
func (r *TherapistRepository) SetStatusByUserID(ctx context.Context, userID uint, status models.EntityStatus) error {
	return r.db.WithContext(ctx).Model(&models.Therapist{}).
		Where("user_id = ?", userID).
		Update("status", status).Error
}

// ActiveOrphans returns active therapist rows whose user is missing, inactive
// or no longer has the therapist role.
func (r *TherapistRepository) ActiveOrphans(ctx context.Context) ([]models.Therapist, error) {
	var therapists []models.Therapist
	err := r.db.WithContext(ctx).
		Where("therapists.status = ?", models.StatusActive).
		Where(`therapists.user_id IS NULL OR NOT EXISTS (
			SELECT 1 FROM users u
			WHERE u.id = therapists.user_id AND u.status = ? AND u.role = ?)`,
			models.StatusActive, models.RoleTherapist).
		Find(&therapists).Error
	return therapists, err
}
