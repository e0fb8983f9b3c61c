package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
)

// SyncTherapistRecord makes the therapist row of user match the user's role
// and status: an active therapist gets an active row (created from profile
// when missing), anyone else keeps at most an inactive one. Run it in the
// same transaction as the user write.
func SyncTherapistRecord(ctx context.Context, tx *gorm.DB, user *models.User, profile *models.Therapist) error {
	therapists := repository.NewTherapistRepository(tx)
	wantActive := user.Role == models.RoleTherapist && user.IsActive()

	existing, err := therapists.FindByUserID(ctx, user.ID)
	if repository.IsNotFound(err) {
		if !wantActive {
			return nil
		}
		row := models.Therapist{}
		if profile != nil {
			row = *profile
		}
		row.UserID = &user.ID
		row.Status = models.StatusActive
		if row.Name == "" {
			row.Name = user.Name
		}
		return therapists.Create(ctx, &row)
	}
	if err != nil {
		return err
	}

	status := models.StatusInactive
	if wantActive {
		status = models.StatusActive
	}
	if existing.Status == status {
		return nil
	}
	return therapists.UpdateFields(ctx, existing.ID, map[string]interface{}{"status": status})
}
