package repository

import (
	"context"
	"strings"
	"time"

	"github.com/meinhoongagan/wellness-portal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

type UserFilter struct {
	Role   models.Role
	Status models.EntityStatus
	Search string
	Page   int
	Limit  int
}

// Create inserts u; a taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Therapist").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// LockByID loads the user row with a write lock where the dialect allows it.
func (r *UserRepository) LockByID(ctx context.Context, id uint) (*models.User, error) {
	q := r.db.WithContext(ctx)
	if lockingSupported(r.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var u models.User
	if err := q.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByRememberToken looks up an active user by the hash of a remember token
// that has not expired at now.
func (r *UserRepository) FindByRememberToken(ctx context.Context, hash string, now time.Time) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where("remember_token = ? AND remember_expires_at > ? AND status = ?", hash, now, models.StatusActive).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByResetToken looks up an active user by the hash of an unexpired reset token.
func (r *UserRepository) FindByResetToken(ctx context.Context, hash string, now time.Time) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where("reset_token = ? AND reset_expires_at > ? AND status = ?", hash, now, models.StatusActive).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateFields writes the given columns of user id.
func (r *UserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return translate(r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error)
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := pageBounds(f.Page, f.Limit)
	var users []models.User
	err := q.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	return users, total, err
}

// WithUnknownRoles returns users whose role is outside the current role set.
func (r *UserRepository) WithUnknownRoles(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role IS NULL OR role NOT IN ?", []models.Role{models.RoleClient, models.RoleTherapist, models.RoleAdmin}).
		Find(&users).Error
	return users, err
}

// ActiveTherapistsWithoutProfile returns active therapist-role users that have
// no therapist row.
func (r *UserRepository) ActiveTherapistsWithoutProfile(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", models.RoleTherapist, models.StatusActive).
		Where("NOT EXISTS (SELECT 1 FROM therapists t WHERE t.user_id = users.id AND t.deleted_at IS NULL)").
		Find(&users).Error
	return users, err
}
