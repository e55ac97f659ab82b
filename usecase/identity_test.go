package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/utils"
)

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  Ana.Lopez@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "ana.lopez@example.com", got)

	for _, bad := range []string{"", "no-at-sign", "@example.com", "ana@", "a b@example.com"} {
		_, err := NormalizeEmail(bad)
		assert.ErrorIs(t, err, utils.ErrValidation, bad)
	}
}

func TestRegisterWithVerificationCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ch, err := f.identity.SendVerificationOTP(ctx, "New@Example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.ChannelEmail, ch)
	code := f.email.Last("new@example.com")
	require.NotEmpty(t, code)

	in := RegisterInput{
		Email:    "new@example.com",
		Password: "password123",
		Role:     "provider",
		Type:     "organization",
		Profile:  models.Profile{Name: "Acme Clinic", Organization: &models.OrganizationDetails{CompanyName: "Acme"}},
		OTP:      "000000",
	}
	if code == in.OTP {
		in.OTP = "111111"
	}
	_, err = f.identity.Register(ctx, in)
	assert.ErrorIs(t, err, utils.ErrAuth)

	// a failed attempt does not consume the stored code
	in.OTP = code
	sess, err := f.identity.Register(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.Equal(t, models.EmployeeOwner, sess.User.EmployeeRole)
	assert.Equal(t, models.RoleProvider, sess.User.Role)

	_, err = f.identity.SendVerificationOTP(ctx, "NEW@example.com", "", "EMAIL")
	assert.ErrorIs(t, err, utils.ErrConflict)
}

func TestRegisterRejectsMismatchedProfileVariant(t *testing.T) {
	f := newFixture(t)
	_, err := f.identity.Register(context.Background(), RegisterInput{
		Email:    "x@example.com",
		Password: "password123",
		Type:     "INDIVIDUAL",
		Profile:  models.Profile{Name: "X", Organization: &models.OrganizationDetails{CompanyName: "Nope"}},
		OTP:      "123456",
	})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestSendVerificationOverSMS(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.identity.SendVerificationOTP(ctx, "sms@example.com", "", "SMS")
	assert.ErrorIs(t, err, utils.ErrValidation)

	ch, err := f.identity.SendVerificationOTP(ctx, "sms@example.com", "+15551234567", "sms")
	require.NoError(t, err)
	assert.Equal(t, models.ChannelSMS, ch)
	assert.NotEmpty(t, f.sms.Last("+15551234567"))
}

func TestLoginRequiresSecondStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.client(t, "d@example.com")

	_, err := f.identity.Login(ctx, "missing@example.com", "password123", "")
	assert.ErrorIs(t, err, utils.ErrNotFound)
	_, err = f.identity.Login(ctx, "d@example.com", "wrong-password", "")
	assert.ErrorIs(t, err, utils.ErrAuth)

	challenge, err := f.identity.Login(ctx, "D@example.com", "password123", "")
	require.NoError(t, err)
	assert.True(t, challenge.RequireOTP)
	assert.Equal(t, models.ChannelEmail, challenge.Channel)

	code := f.email.Last("d@example.com")
	sess, err := f.identity.LoginVerify(ctx, "d@example.com", code)
	require.NoError(t, err)
	claims, err := utils.ParseToken(testSecret, sess.Token, utils.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// codes are single use
	_, err = f.identity.LoginVerify(ctx, "d@example.com", code)
	assert.ErrorIs(t, err, utils.ErrAuth)
}

func TestLoginVerifyExpiredCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client(t, "e@example.com")

	_, err := f.identity.Login(ctx, "e@example.com", "password123", "")
	require.NoError(t, err)
	code := f.email.Last("e@example.com")

	f.mr.FastForward(11 * time.Minute)
	_, err = f.identity.LoginVerify(ctx, "e@example.com", code)
	assert.ErrorIs(t, err, utils.ErrAuth)
}

func TestPasswordFlows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.client(t, "r@example.com")

	_, err := f.identity.ForgotPassword(ctx, "r@example.com", "")
	require.NoError(t, err)
	code := f.email.Last("r@example.com")

	assert.ErrorIs(t, f.identity.ResetPassword(ctx, "r@example.com", code, "short"), utils.ErrValidation)
	require.NoError(t, f.identity.ResetPassword(ctx, "r@example.com", code, "brand-new-pass"))

	_, err = f.identity.Login(ctx, "r@example.com", "password123", "")
	assert.ErrorIs(t, err, utils.ErrAuth)

	assert.ErrorIs(t, f.identity.UpdatePassword(ctx, user.ID, "password123", "another-pass"), utils.ErrAuth)
	require.NoError(t, f.identity.UpdatePassword(ctx, user.ID, "brand-new-pass", "another-pass"))
	_, err = f.identity.Login(ctx, "r@example.com", "another-pass", "")
	assert.NoError(t, err)
}

func TestResetCodeCannotSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client(t, "s@example.com")

	_, err := f.identity.ForgotPassword(ctx, "s@example.com", "")
	require.NoError(t, err)
	code := f.email.Last("s@example.com")

	_, err = f.identity.LoginVerify(ctx, "s@example.com", code)
	assert.ErrorIs(t, err, utils.ErrAuth)

	// still usable for the flow that issued it
	assert.NoError(t, f.identity.ResetPassword(ctx, "s@example.com", code, "brand-new-pass"))
}

func TestRefreshIssuesNewPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.client(t, "t@example.com")

	refresh, err := utils.SignToken(testSecret, user.ID, user.Email, string(user.Role), utils.TokenRefresh, time.Hour)
	require.NoError(t, err)
	sess, err := f.identity.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	access, err := utils.SignToken(testSecret, user.ID, user.Email, string(user.Role), utils.TokenAccess, time.Hour)
	require.NoError(t, err)
	_, err = f.identity.Refresh(ctx, access)
	assert.ErrorIs(t, err, utils.ErrAuth)
}

func TestEmployeesOfOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, "org@example.com", models.RoleProvider, models.AccountOrganization)
	solo := f.provider(t, "solo@example.com")

	first, err := f.identity.AddEmployee(ctx, org.ID, EmployeeInput{Name: "Ana", Email: "ana@example.com", Password: "password123", EmployeeRole: "manager"})
	require.NoError(t, err)
	_, err = f.identity.AddEmployee(ctx, org.ID, EmployeeInput{Name: "Ben", Email: "ben@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = f.identity.AddEmployee(ctx, org.ID, EmployeeInput{Name: "Dup", Email: "ANA@example.com", Password: "password123"})
	assert.ErrorIs(t, err, utils.ErrConflict)
	_, err = f.identity.AddEmployee(ctx, org.ID, EmployeeInput{Name: "Boss", Email: "boss@example.com", Password: "password123", EmployeeRole: "OWNER"})
	assert.ErrorIs(t, err, utils.ErrValidation)
	_, err = f.identity.AddEmployee(ctx, solo.ID, EmployeeInput{Name: "X", Email: "x@example.com", Password: "password123"})
	assert.ErrorIs(t, err, utils.ErrForbidden)

	list, err := f.identity.ListEmployees(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, e := range list {
		require.NotNil(t, e.OrganizationID)
		assert.Equal(t, org.ID, *e.OrganizationID)
		assert.Equal(t, models.RoleProvider, e.Role)
	}
	assert.Equal(t, models.EmployeeManager, list[0].EmployeeRole)
	assert.Equal(t, models.EmployeeStaff, list[1].EmployeeRole)

	require.NoError(t, f.identity.RemoveEmployee(ctx, org.ID, first.ID))
	assert.ErrorIs(t, f.identity.RemoveEmployee(ctx, org.ID, first.ID), utils.ErrNotFound)
	list, err = f.identity.ListEmployees(ctx, org.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProfileUpdateAndPublicProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prov := f.provider(t, "p@example.com")
	cli := f.client(t, "c@example.com")
	f.service(t, prov.ID, nil)
	prov.Profile = models.Profile{Name: "Old", AvatarURL: "https://cdn.example/a.png"}
	require.NoError(t, f.db.Model(&prov).Select("profile").Updates(&prov).Error)

	sms := "sms"
	updated, err := f.identity.UpdateProfile(ctx, prov.ID, ProfileUpdate{
		Profile:          &models.Profile{Name: "Dr. Pat", Bio: "GP", Individual: &models.IndividualDetails{DOB: "1980-04-01"}},
		PreferredChannel: &sms,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.png", updated.Profile.AvatarURL)
	assert.Equal(t, models.ChannelSMS, updated.PreferredChannel)

	_, err = f.identity.UpdateProfile(ctx, prov.ID, ProfileUpdate{Profile: &models.Profile{Name: "Dr. Pat", Individual: &models.IndividualDetails{DOB: "April"}}})
	assert.ErrorIs(t, err, utils.ErrValidation)

	reloaded, err := f.identity.GetProfile(ctx, prov.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Pat", reloaded.Profile.Name)

	pub, err := f.identity.PublicProfile(ctx, prov.ID)
	require.NoError(t, err)
	assert.Len(t, pub.Services, 1)

	_, err = f.identity.PublicProfile(ctx, cli.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.identity.UploadAvatar(ctx, prov.ID, nil)
	assert.ErrorIs(t, err, utils.ErrNotReady)
}

func TestSavePushSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.client(t, "c@example.com")

	assert.ErrorIs(t, f.identity.SavePushSubscription(ctx, user.ID, models.PushSubscription{}), utils.ErrValidation)
	sub := models.PushSubscription{Endpoint: "https://push.example/1", Keys: models.PushKeys{P256dh: "k", Auth: "a"}}
	require.NoError(t, f.identity.SavePushSubscription(ctx, user.ID, sub))

	reloaded, err := f.identity.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.PushSubscription)
	assert.Equal(t, sub, *reloaded.PushSubscription)
}
