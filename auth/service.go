// Package auth handles accounts, sessions, remember-me tokens and password resets.
package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

const (
	// RememberTTL is how long a remember token lives after its last use.
	RememberTTL = 30 * 24 * time.Hour
	// ResetTTL is how long a password-reset token stays valid.
	ResetTTL = time.Hour

	minPasswordLength = 8
)

// Emailer sends one HTML email.
type Emailer interface {
	Email(ctx context.Context, to, subject, body string) error
}

type Service struct {
	db         *gorm.DB
	users      *repository.UserRepository
	issuer     *TokenIssuer
	revoker    Revoker
	emailer    Emailer
	resetURL   string
	bcryptCost int
	now        func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for token expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost lowers the hashing cost, for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// WithResetURL sets the page the reset email links to; the token is appended.
func WithResetURL(url string) Option {
	return func(s *Service) { s.resetURL = url }
}

func NewService(db *gorm.DB, issuer *TokenIssuer, revoker Revoker, emailer Emailer, opts ...Option) *Service {
	s := &Service{
		db:         db,
		users:      repository.NewUserRepository(db),
		issuer:     issuer,
		revoker:    revoker,
		emailer:    emailer,
		resetURL:   "/reset-password?token=",
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput is the data of a new account. Therapist profile fields are
// only used when Role is therapist.
type RegisterInput struct {
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	Phone           string      `json:"phone"`
	Address         string      `json:"address"`
	Role            models.Role `json:"role"`
	Specialization  string      `json:"specialization"`
	Bio             string      `json:"bio"`
	ExperienceYears int         `json:"experience_years"`
}

// LoginResult is what a successful login or session restore hands back.
// RememberToken is only set when a new remember token was issued.
type LoginResult struct {
	User          *models.User
	Token         string
	Session       *Session
	RememberToken string
}

// Register creates a client account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Role = models.RoleClient
	return s.CreateUser(ctx, in)
}

// CreateUser creates an account with any role. The user row and, for
// therapists, the therapist row are written in one transaction.
func (s *Service) CreateUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = models.RoleClient
	}

	var problems []string
	if in.Name == "" {
		problems = append(problems, "Name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		problems = append(problems, "A valid email address is required")
	}
	if len(in.Password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if !in.Role.Valid() {
		problems = append(problems, "Unknown role")
	}
	if len(problems) > 0 {
		return nil, utils.Validation("Registration data is invalid", problems...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     in.Role,
		Phone:    in.Phone,
		Address:  in.Address,
		Status:   models.StatusActive,
	}
	profile := &models.Therapist{
		Name:            in.Name,
		Specialization:  in.Specialization,
		Bio:             in.Bio,
		ExperienceYears: in.ExperienceYears,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return SyncTherapistRecord(ctx, tx, user, profile)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, utils.Conflict("User with this email already exists")
	}
	if err != nil {
		return nil, utils.Persistence("register user", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return user, nil
}

// Login verifies the credentials and opens a session. With remember set a
// remember token is issued as well.
func (s *Service) Login(ctx context.Context, email, password string, remember bool) (*LoginResult, error) {
	invalid := utils.Unauthorized("Invalid credentials")

	user, err := s.users.FindByEmail(ctx, email)
	if repository.IsNotFound(err) {
		return nil, invalid
	}
	if err != nil {
		return nil, utils.Persistence("login: load user", err)
	}
	if !user.IsActive() {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}

	now := s.now()
	fields := map[string]interface{}{"last_login": now}
	result := &LoginResult{User: user}
	if remember {
		token, err := utils.GenerateToken()
		if err != nil {
			return nil, fmt.Errorf("generate remember token: %w", err)
		}
		expires := now.Add(RememberTTL)
		fields["remember_token"] = utils.HashToken(token)
		fields["remember_expires_at"] = expires
		result.RememberToken = token
		user.RememberExpiresAt = &expires
	}
	if err := s.users.UpdateFields(ctx, user.ID, fields); err != nil {
		return nil, utils.Persistence("login: update user", err)
	}
	user.LastLogin = &now

	if err := s.openSession(result); err != nil {
		return nil, err
	}
	logrus.WithField("user_id", user.ID).Info("user logged in")
	return result, nil
}

// RestoreSession opens a new session from a remember token and slides the
// token's expiry forward.
func (s *Service) RestoreSession(ctx context.Context, rememberToken string) (*LoginResult, error) {
	if len(rememberToken) != 64 {
		return nil, utils.Unauthorized("Session expired")
	}

	now := s.now()
	user, err := s.users.FindByRememberToken(ctx, utils.HashToken(rememberToken), now)
	if repository.IsNotFound(err) {
		return nil, utils.Unauthorized("Session expired")
	}
	if err != nil {
		return nil, utils.Persistence("restore session: load user", err)
	}

	expires := now.Add(RememberTTL)
	err = s.users.UpdateFields(ctx, user.ID, map[string]interface{}{
		"remember_expires_at": expires,
		"last_login":          now,
	})
	if err != nil {
		return nil, utils.Persistence("restore session: slide expiry", err)
	}
	user.RememberExpiresAt = &expires
	user.LastLogin = &now

	result := &LoginResult{User: user}
	if err := s.openSession(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) openSession(result *LoginResult) error {
	token, sess, err := s.issuer.Issue(result.User)
	if err != nil {
		return err
	}
	result.Token = token
	result.Session = sess
	return nil
}

// Logout revokes the session token and forgets the user's remember token.
func (s *Service) Logout(ctx context.Context, sess *Session) error {
	if ttl := sess.ExpiresAt.Sub(s.now()); ttl > 0 {
		if err := s.revoker.Revoke(ctx, sess.TokenID, ttl); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}
	err := s.users.UpdateFields(ctx, sess.UserID, map[string]interface{}{
		"remember_token":      "",
		"remember_expires_at": nil,
	})
	if err != nil {
		return utils.Persistence("logout: clear remember token", err)
	}
	logrus.WithField("user_id", sess.UserID).Info("user logged out")
	return nil
}

// IsRevoked reports whether the session was logged out.
func (s *Service) IsRevoked(ctx context.Context, sess *Session) (bool, error) {
	return s.revoker.IsRevoked(ctx, sess.TokenID)
}

// Authorize checks a verified session token against the account it belongs
// to. Logged out tokens are refused, and so are tokens of inactive accounts
// or tokens issued before a role or password change.
func (s *Service) Authorize(ctx context.Context, sess *Session) error {
	ended := utils.Unauthorized("Session has ended, please log in again")

	revoked, err := s.IsRevoked(ctx, sess)
	if err != nil {
		return fmt.Errorf("session revocation lookup: %w", err)
	}
	if revoked {
		return ended
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if repository.IsNotFound(err) {
		return ended
	}
	if err != nil {
		return utils.Persistence("authorize session: load user", err)
	}
	if !user.IsActive() || user.Role != sess.Role || user.SessionVersion != sess.Version {
		return ended
	}
	return nil
}

// EndSessions adds the update to fields that invalidates every session
// token issued to the user so far.
func EndSessions(fields map[string]interface{}) {
	fields["session_version"] = gorm.Expr("session_version + 1")
}

// Me returns the signed-in user.
func (s *Service) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if repository.IsNotFound(err) {
		return nil, utils.NotFound("User not found")
	}
	if err != nil {
		return nil, utils.Persistence("load profile", err)
	}
	return user, nil
}

// ProfileInput holds the fields a user may change on their own account.
type ProfileInput struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, utils.Validation("Name is required")
		}
		fields["name"] = name
	}
	if in.Phone != nil {
		fields["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		fields["address"] = strings.TrimSpace(*in.Address)
	}
	if len(fields) > 0 {
		if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
			return nil, utils.Persistence("update profile", err)
		}
	}
	return s.Me(ctx, userID)
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return utils.Validation("Current password is incorrect")
	}
	return s.setPassword(ctx, user.ID, next)
}

// ForgotPassword emails a reset link when email belongs to an active user.
// It reports success either way so the endpoint does not reveal accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if repository.IsNotFound(err) || (err == nil && !user.IsActive()) {
		return nil
	}
	if err != nil {
		return utils.Persistence("forgot password: load user", err)
	}

	token, err := s.IssueResetToken(ctx, user.ID)
	if err != nil {
		return err
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received a request to reset your password. The link below is valid for one hour.</p>
		<p><a href="%s%s">Reset your password</a></p>
		<p>If you did not ask for this, you can ignore this email.</p>
	`, html.EscapeString(user.Name), s.resetURL, token)
	if err := s.emailer.Email(ctx, user.Email, "Password reset", body); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("password reset email not sent")
	}
	return nil
}

// IssueResetToken stores a fresh reset token for userID, replacing any
// earlier one, and returns it.
func (s *Service) IssueResetToken(ctx context.Context, userID uint) (string, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	err = s.users.UpdateFields(ctx, userID, map[string]interface{}{
		"reset_token":      utils.HashToken(token),
		"reset_expires_at": s.now().Add(ResetTTL),
	})
	if err != nil {
		return "", utils.Persistence("store reset token", err)
	}
	return token, nil
}

// ResetPassword sets a new password with a reset token. The token is single
// use; remember tokens are dropped with it.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	user, err := s.users.FindByResetToken(ctx, utils.HashToken(token), s.now())
	if repository.IsNotFound(err) {
		return utils.Validation("Reset link is invalid or has expired")
	}
	if err != nil {
		return utils.Persistence("reset password: load user", err)
	}
	return s.setPassword(ctx, user.ID, password)
}

func (s *Service) setPassword(ctx context.Context, userID uint, password string) error {
	if len(password) < minPasswordLength {
		return utils.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	fields := map[string]interface{}{
		"password":            string(hash),
		"reset_token":         "",
		"reset_expires_at":    nil,
		"remember_token":      "",
		"remember_expires_at": nil,
	}
	EndSessions(fields)
	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return utils.Persistence("set password", err)
	}
	return nil
}
