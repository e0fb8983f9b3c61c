package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/notify"
	"github.com/meinhoongagan/wellness-portal/redis"
	"github.com/meinhoongagan/wellness-portal/testutil"
	"github.com/meinhoongagan/wellness-portal/utils"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time           { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	db    *gorm.DB
	svc   *Service
	clock *clock
	mr    *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	clk := &clock{t: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
	issuer := NewTokenIssuer("test-secret", 2*time.Hour)
	issuer.now = clk.now

	svc := NewService(db, issuer, redis.NewSessionStore(client),
		notify.NewService(db, notify.NewLogMailer(db), time.UTC),
		WithClock(clk.now),
		WithBcryptCost(bcrypt.MinCost),
	)
	return &fixture{db: db, svc: svc, clock: clk, mr: mr}
}

func input(email string) RegisterInput {
	return RegisterInput{Name: "Ana Client", Email: email, Password: testutil.Password}
}

func TestRegisterCreatesClient(t *testing.T) {
	f := setup(t)

	in := input("  Ana@Example.com ")
	in.Role = models.RoleAdmin
	u, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, models.RoleClient, u.Role, "public registration always yields a client")
	assert.NotEqual(t, testutil.Password, u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(testutil.Password)))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, input("ana@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, input("ANA@example.com"))
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "nope", Password: "short"})
	require.Error(t, err)

	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Details, 3)
}

func TestCreateTherapistCreatesProfile(t *testing.T) {
	f := setup(t)

	in := input("tom@example.com")
	in.Role = models.RoleTherapist
	in.Specialization = "Physiotherapy"
	u, err := f.svc.CreateUser(context.Background(), in)
	require.NoError(t, err)

	var th models.Therapist
	require.NoError(t, f.db.Where("user_id = ?", u.ID).First(&th).Error)
	assert.Equal(t, models.StatusActive, th.Status)
	assert.Equal(t, "Physiotherapy", th.Specialization)
}

func TestRegistrationIsAtomic(t *testing.T) {
	f := setup(t)

	err := f.db.Callback().Create().Before("gorm:create").Register("fail_therapists", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "therapists" {
			_ = tx.AddError(errors.New("therapists table unavailable"))
		}
	})
	require.NoError(t, err)

	in := input("tom@example.com")
	in.Role = models.RoleTherapist
	_, err = f.svc.CreateUser(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, utils.KindPersistence, utils.KindOf(err))

	var users int64
	require.NoError(t, f.db.Model(&models.User{}).Where("email = ?", "tom@example.com").Count(&users).Error)
	assert.Zero(t, users, "user row must roll back with the therapist row")
}

func TestLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)

	res, err := f.svc.Login(ctx, "ANA@example.com", testutil.Password, false)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Empty(t, res.RememberToken)
	assert.Equal(t, u.ID, res.Session.UserID)

	sess, err := f.svc.issuer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.TokenID, sess.TokenID)
	assert.Equal(t, models.RoleClient, sess.Role)

	var stored models.User
	require.NoError(t, f.db.First(&stored, u.ID).Error)
	require.NotNil(t, stored.LastLogin)
}

func TestLoginFailures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)

	_, err := f.svc.Login(ctx, "ana@example.com", "wrong-password", false)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	_, err = f.svc.Login(ctx, "nobody@example.com", testutil.Password, false)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	require.NoError(t, f.db.Model(u).Update("status", models.StatusInactive).Error)
	_, err = f.svc.Login(ctx, "ana@example.com", testutil.Password, false)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
}

func TestRememberTokenRestoresAndSlides(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)

	res, err := f.svc.Login(ctx, u.Email, testutil.Password, true)
	require.NoError(t, err)
	require.Len(t, res.RememberToken, 64)

	var stored models.User
	require.NoError(t, f.db.First(&stored, u.ID).Error)
	assert.Equal(t, utils.HashToken(res.RememberToken), stored.RememberToken, "only the hash is stored")

	f.clock.advance(29 * 24 * time.Hour)
	restored, err := f.svc.RestoreSession(ctx, res.RememberToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, restored.Session.UserID)
	assert.Equal(t, f.clock.t.Add(RememberTTL), *restored.User.RememberExpiresAt)

	// the slide keeps the token alive past the first 30 days
	f.clock.advance(29 * 24 * time.Hour)
	_, err = f.svc.RestoreSession(ctx, res.RememberToken)
	require.NoError(t, err)

	f.clock.advance(31 * 24 * time.Hour)
	_, err = f.svc.RestoreSession(ctx, res.RememberToken)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
}

func TestRestoreSessionRejectsGarbage(t *testing.T) {
	f := setup(t)

	_, err := f.svc.RestoreSession(context.Background(), "abc")
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
}

func TestLogoutRevokesSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)

	res, err := f.svc.Login(ctx, u.Email, testutil.Password, true)
	require.NoError(t, err)

	revoked, err := f.svc.IsRevoked(ctx, res.Session)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, f.svc.Logout(ctx, res.Session))

	revoked, err = f.svc.IsRevoked(ctx, res.Session)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 2*time.Hour, f.mr.TTL("session:revoked:"+res.Session.TokenID))

	_, err = f.svc.RestoreSession(ctx, res.RememberToken)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err), "logout forgets the remember token")
}

func TestAuthorizeFollowsAccountChanges(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)

	res, err := f.svc.Login(ctx, u.Email, testutil.Password, false)
	require.NoError(t, err)
	require.NoError(t, f.svc.Authorize(ctx, res.Session))

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, testutil.Password, "a-brand-new-password"))
	err = f.svc.Authorize(ctx, res.Session)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err), "a password change ends older sessions")

	res, err = f.svc.Login(ctx, u.Email, "a-brand-new-password", false)
	require.NoError(t, err)
	require.NoError(t, f.svc.Authorize(ctx, res.Session))

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", u.ID).Update("role", models.RoleAdmin).Error)
	err = f.svc.Authorize(ctx, res.Session)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err), "the token still carries the old role")

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", u.ID).
		Updates(map[string]interface{}{"role": models.RoleClient, "status": models.StatusInactive}).Error)
	err = f.svc.Authorize(ctx, res.Session)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err), "inactive accounts have no sessions")
}

func TestForgotPasswordEscapesName(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)
	require.NoError(t, f.db.Model(u).Update("name", "<b>Ana</b>").Error)

	require.NoError(t, f.svc.ForgotPassword(ctx, u.Email))

	var entry models.EmailLog
	require.NoError(t, f.db.Where("recipient = ?", u.Email).Last(&entry).Error)
	assert.Contains(t, entry.Body, "&lt;b&gt;Ana&lt;/b&gt;")
	assert.NotContains(t, entry.Body, "<b>Ana</b>")
}

var resetLink = regexp.MustCompile(`token=([0-9a-f]{64})`)

func lastResetToken(t *testing.T, db *gorm.DB, email string) string {
	t.Helper()

	var entry models.EmailLog
	require.NoError(t, db.Where("recipient = ?", email).Order("id desc").First(&entry).Error)
	m := resetLink.FindStringSubmatch(entry.Body)
	require.Len(t, m, 2)
	return m[1]
}

func TestForgotAndResetPassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)

	login, err := f.svc.Login(ctx, u.Email, testutil.Password, true)
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, u.Email))
	token := lastResetToken(t, f.db, u.Email)

	require.NoError(t, f.svc.ResetPassword(ctx, token, "a-brand-new-password"))

	_, err = f.svc.Login(ctx, u.Email, "a-brand-new-password", false)
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, token, "yet-another-password")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err), "reset tokens are single use")

	_, err = f.svc.RestoreSession(ctx, login.RememberToken)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err), "reset drops remember tokens")
}

func TestResetTokenExpiresAndIsReplaced(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)

	first, err := f.svc.IssueResetToken(ctx, u.ID)
	require.NoError(t, err)
	second, err := f.svc.IssueResetToken(ctx, u.ID)
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, first, "a-brand-new-password")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err), "reissue invalidates the earlier token")

	f.clock.advance(ResetTTL + time.Second)
	err = f.svc.ResetPassword(ctx, second, "a-brand-new-password")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "nobody@example.com"))

	var count int64
	require.NoError(t, f.db.Model(&models.EmailLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestChangePasswordAndProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)

	err := f.svc.ChangePassword(ctx, u.ID, "not-my-password", "a-brand-new-password")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, testutil.Password, "a-brand-new-password"))
	_, err = f.svc.Login(ctx, u.Email, "a-brand-new-password", false)
	require.NoError(t, err)

	phone := "+1 555 0100"
	updated, err := f.svc.UpdateProfile(ctx, u.ID, ProfileInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, u.Name, updated.Name)

	blank := " "
	_, err = f.svc.UpdateProfile(ctx, u.ID, ProfileInput{Name: &blank})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}
