package admin

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/auth"
	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/notify"
	"github.com/meinhoongagan/wellness-portal/redis"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/testutil"
	"github.com/meinhoongagan/wellness-portal/utils"
)

type fakeUploader struct {
	publicID string
	err      error
}

func (f *fakeUploader) Upload(_ context.Context, _ interface{}, publicID, folder string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.publicID = publicID
	return "https://cdn.example.com/" + folder + "/" + publicID + ".jpg", nil
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	uploader *fakeUploader
	admin    *models.User
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	accounts := auth.NewService(db,
		auth.NewTokenIssuer("test-secret", time.Hour),
		redis.NewSessionStore(client),
		notify.NewService(db, notify.NewLogMailer(db), time.UTC),
		auth.WithBcryptCost(bcrypt.MinCost),
	)
	uploader := &fakeUploader{}
	return &fixture{
		db:       db,
		svc:      NewService(db, accounts, uploader),
		uploader: uploader,
		admin:    testutil.CreateUser(t, db, "admin@example.com", models.RoleAdmin),
	}
}

func therapistRow(t *testing.T, db *gorm.DB, userID uint) *models.Therapist {
	t.Helper()
	var th models.Therapist
	err := db.Where("user_id = ?", userID).First(&th).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	require.NoError(t, err)
	return &th
}

func TestUpdateRoleSyncsTherapistRow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)

	updated, err := f.svc.UpdateRole(ctx, f.admin.ID, u.ID, models.RoleTherapist)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTherapist, updated.Role)
	th := therapistRow(t, f.db, u.ID)
	require.NotNil(t, th)
	assert.Equal(t, models.StatusActive, th.Status)
	assert.Equal(t, u.Name, th.Name)

	_, err = f.svc.UpdateRole(ctx, f.admin.ID, u.ID, models.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, therapistRow(t, f.db, u.ID).Status)

	_, err = f.svc.UpdateRole(ctx, f.admin.ID, u.ID, models.RoleTherapist)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, therapistRow(t, f.db, u.ID).Status, "the old row is reactivated, not duplicated")

	var rows int64
	require.NoError(t, f.db.Model(&models.Therapist{}).Where("user_id = ?", u.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestUpdateRoleRejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.UpdateRole(ctx, f.admin.ID, f.admin.ID, models.RoleClient)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = f.svc.UpdateRole(ctx, f.admin.ID, 9999, models.RoleClient)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = f.svc.UpdateRole(ctx, f.admin.ID, f.admin.ID, models.Role("wizard"))
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestDeactivateTherapist(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	th := testutil.CreateTherapist(t, f.db, "tom@example.com")
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", *th.UserID).
		Update("remember_token", "somehash").Error)

	u, err := f.svc.SetStatus(ctx, f.admin.ID, *th.UserID, models.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, u.Status)
	assert.Empty(t, u.RememberToken)
	assert.Equal(t, models.StatusInactive, therapistRow(t, f.db, *th.UserID).Status)

	_, err = f.svc.SetStatus(ctx, f.admin.ID, *th.UserID, models.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, therapistRow(t, f.db, *th.UserID).Status)

	logs, err := f.svc.ListLogs(ctx, LogFilter{Action: ActionSetStatus})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.NotNil(t, logs[0].AdminID)
	assert.Equal(t, f.admin.ID, *logs[0].AdminID)
}

func TestSyncOrphanTherapists(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	healthy := testutil.CreateTherapist(t, f.db, "healthy@example.com")
	demoted := testutil.CreateTherapist(t, f.db, "demoted@example.com")
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", *demoted.UserID).Update("role", models.RoleClient).Error)
	orphan := &models.Therapist{Name: "Nobody", Status: models.StatusActive}
	require.NoError(t, f.db.Create(orphan).Error)
	bare := testutil.CreateUser(t, f.db, "bare@example.com", models.RoleTherapist)

	report, err := f.svc.SyncOrphanTherapists(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Fixed)
	assert.Equal(t, 1, report.Created)

	var check models.Therapist
	require.NoError(t, f.db.First(&check, healthy.ID).Error)
	assert.Equal(t, models.StatusActive, check.Status)
	require.NoError(t, f.db.First(&check, demoted.ID).Error)
	assert.Equal(t, models.StatusInactive, check.Status)
	require.NoError(t, f.db.First(&check, orphan.ID).Error)
	assert.Equal(t, models.StatusInactive, check.Status)
	require.NotNil(t, therapistRow(t, f.db, bare.ID))

	again, err := f.svc.SyncOrphanTherapists(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, again.Fixed+again.Created, "a second run finds nothing to repair")

	logs, err := f.svc.ListLogs(ctx, LogFilter{Action: ActionSyncTherapists})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Nil(t, logs[0].AdminID)
	var logged Report
	require.NoError(t, json.Unmarshal([]byte(logs[1].Details), &logged))
	assert.Equal(t, 2, logged.Fixed)
}

func TestMigrateLegacyRoles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	customer := testutil.CreateUser(t, f.db, "customer@example.com", models.Role("customer"))
	doctor := testutil.CreateUser(t, f.db, "doctor@example.com", models.Role("doctor"))
	odd := testutil.CreateUser(t, f.db, "odd@example.com", models.Role("wizard"))

	report, err := f.svc.RunJob(ctx, &f.admin.ID, JobMigrateRoles)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Fixed)
	require.Len(t, report.Unchanged, 1)

	var u models.User
	require.NoError(t, f.db.First(&u, customer.ID).Error)
	assert.Equal(t, models.RoleClient, u.Role)
	require.NoError(t, f.db.First(&u, doctor.ID).Error)
	assert.Equal(t, models.RoleTherapist, u.Role)
	require.NotNil(t, therapistRow(t, f.db, doctor.ID))
	require.NoError(t, f.db.First(&u, odd.ID).Error)
	assert.Equal(t, models.Role("wizard"), u.Role)

	_, err = f.svc.RunJob(ctx, nil, "defragment")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestServiceCatalog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	name, price, duration := "Hot stone", 80.0, 90

	svc, err := f.svc.CreateService(ctx, f.admin.ID, ServiceInput{Name: &name, Price: &price, Duration: &duration})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, svc.Status)

	bad := -1
	_, err = f.svc.UpdateService(ctx, f.admin.ID, svc.ID, ServiceInput{Duration: &bad})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	price = 95
	updated, err := f.svc.UpdateService(ctx, f.admin.ID, svc.ID, ServiceInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 95.0, updated.Price)

	require.NoError(t, f.svc.DeleteService(ctx, f.admin.ID, svc.ID))
	active, err := f.svc.ListServices(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := f.svc.ListServices(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1, "deleting a service only retires it")

	assert.Equal(t, utils.KindNotFound, utils.KindOf(f.svc.DeleteService(ctx, f.admin.ID, 9999)))
}

func TestTherapistProfileAndPhoto(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	th := testutil.CreateTherapist(t, f.db, "tom@example.com")

	bio := "Sports massage since 2015."
	updated, err := f.svc.UpdateTherapist(ctx, f.admin.ID, th.ID, TherapistInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)

	withPhoto, err := f.svc.UploadPhoto(ctx, f.admin.ID, th.ID, []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/therapists/"+f.uploader.publicID+".jpg", withPhoto.PhotoURL)

	f.uploader.err = errors.New("cloud down")
	_, err = f.svc.UploadPhoto(ctx, f.admin.ID, th.ID, []byte("jpeg"))
	assert.Error(t, err)
}

func TestSettingsUpsert(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.UpsertSetting(ctx, f.admin.ID, "clinic_name", "Calm Waters")
	require.NoError(t, err)
	s, err := f.svc.UpsertSetting(ctx, f.admin.ID, "clinic_name", "Calm Waters Spa")
	require.NoError(t, err)
	assert.Equal(t, "Calm Waters Spa", s.Value)

	all, err := f.svc.ListSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.svc.GetSetting(ctx, "missing")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	_, err = f.svc.UpsertSetting(ctx, f.admin.ID, " ", "x")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestListUsersFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "ana@example.com", models.RoleClient)
	testutil.CreateTherapist(t, f.db, "tom@example.com")

	users, total, err := f.svc.ListUsers(ctx, repository.UserFilter{Role: models.RoleTherapist})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "tom@example.com", users[0].Email)

	_, total, err = f.svc.ListUsers(ctx, repository.UserFilter{Search: "ANA"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
