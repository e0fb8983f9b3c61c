package admin

import (
	"context"

	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/auth"
	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

func (s *Service) ListUsers(ctx context.Context, f repository.UserFilter) ([]models.User, int64, error) {
	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, 0, utils.Persistence("list users", err)
	}
	return users, total, nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr("load user", "User not found", err)
	}
	return u, nil
}

// CreateUser opens an account with any role on behalf of adminID.
func (s *Service) CreateUser(ctx context.Context, adminID uint, in auth.RegisterInput) (*models.User, error) {
	u, err := s.accounts.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	s.LogAction(ctx, &adminID, ActionCreateUser, map[string]interface{}{"user_id": u.ID, "role": u.Role})
	return u, nil
}

// UpdateRole changes a user's role and brings the therapist row in line in
// the same transaction. Sessions opened under the old role end.
func (s *Service) UpdateRole(ctx context.Context, adminID, userID uint, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, utils.Validation("Unknown role")
	}
	if adminID == userID && role != models.RoleAdmin {
		return nil, utils.Validation("You cannot remove your own admin role")
	}

	var previous models.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		u, err := users.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		previous = u.Role
		fields := map[string]interface{}{"role": role}
		if role != u.Role {
			auth.EndSessions(fields)
		}
		if err := users.UpdateFields(ctx, u.ID, fields); err != nil {
			return err
		}
		u.Role = role
		return auth.SyncTherapistRecord(ctx, tx, u, nil)
	})
	if err != nil {
		return nil, notFoundOr("update role", "User not found", err)
	}

	s.LogAction(ctx, &adminID, ActionUpdateRole, map[string]interface{}{
		"user_id": userID, "from": previous, "to": role,
	})
	return s.GetUser(ctx, userID)
}

// SetStatus activates or deactivates an account. Deactivation also retires
// the therapist row and ends the user's sessions.
func (s *Service) SetStatus(ctx context.Context, adminID, userID uint, status models.EntityStatus) (*models.User, error) {
	if status != models.StatusActive && status != models.StatusInactive {
		return nil, utils.Validation("Status must be active or inactive")
	}
	if adminID == userID && status == models.StatusInactive {
		return nil, utils.Validation("You cannot deactivate your own account")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		u, err := users.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		fields := map[string]interface{}{"status": status}
		if status == models.StatusInactive {
			fields["remember_token"] = ""
			fields["remember_expires_at"] = nil
			auth.EndSessions(fields)
		}
		if err := users.UpdateFields(ctx, u.ID, fields); err != nil {
			return err
		}
		u.Status = status
		return auth.SyncTherapistRecord(ctx, tx, u, nil)
	})
	if err != nil {
		return nil, notFoundOr("set user status", "User not found", err)
	}

	s.LogAction(ctx, &adminID, ActionSetStatus, map[string]interface{}{"user_id": userID, "status": status})
	return s.GetUser(ctx, userID)
}
