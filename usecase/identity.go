package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/otp"
	"github.com/meinhoongagan/booking-platform/utils"
)

const minPasswordLength = 8

type IdentityUsecase struct {
	db         *gorm.DB
	otp        OTPIssuer
	avatars    AvatarUploader
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *zap.Logger
}

func NewIdentityUsecase(db *gorm.DB, codes OTPIssuer, avatars AvatarUploader, secret string, accessTTL, refreshTTL time.Duration, log *zap.Logger) *IdentityUsecase {
	return &IdentityUsecase{
		db:         db,
		otp:        codes,
		avatars:    avatars,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log.Named("identity"),
	}
}

// Session is returned by every successful sign-in.
type Session struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// LoginChallenge tells the client a code is on its way.
type LoginChallenge struct {
	RequireOTP bool           `json:"require_otp"`
	Channel    models.Channel `json:"channel"`
}

// NormalizeEmail trims and case-folds an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) (string, error) {
	e := cases.Fold().String(strings.TrimSpace(email))
	at := strings.LastIndex(e, "@")
	if at < 1 || at == len(e)-1 || strings.ContainsAny(e, " \t") {
		return "", fmt.Errorf("%w: invalid email", utils.ErrValidation)
	}
	return e, nil
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", utils.ErrValidation, minPasswordLength)
	}
	return nil
}

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func destination(ch models.Channel, email, phone string) string {
	if ch == models.ChannelEmail {
		return email
	}
	return strings.TrimSpace(phone)
}

func (u *IdentityUsecase) byEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no account for %s", utils.ErrNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *IdentityUsecase) session(user *models.User) (*Session, error) {
	access, err := utils.SignToken(u.secret, user.ID, user.Email, string(user.Role), utils.TokenAccess, u.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.SignToken(u.secret, user.ID, user.Email, string(user.Role), utils.TokenRefresh, u.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: access, RefreshToken: refresh, User: user}, nil
}

// SendVerificationOTP starts registration for an unused email.
func (u *IdentityUsecase) SendVerificationOTP(ctx context.Context, email, phone, channel string) (models.Channel, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	ch, err := models.ParseChannel(channel, models.ChannelEmail)
	if err != nil {
		return "", err
	}
	var n int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return "", err
	}
	if n > 0 {
		return "", fmt.Errorf("%w: email already registered", utils.ErrConflict)
	}
	return ch, u.otp.Issue(ctx, otp.PurposeRegister, email, ch, destination(ch, email, phone))
}

type RegisterInput struct {
	Email            string         `json:"email"`
	Password         string         `json:"password"`
	Role             string         `json:"role"`
	Type             string         `json:"type"`
	Profile          models.Profile `json:"profile"`
	PreferredChannel string         `json:"preferred_channel"`
	OTP              string         `json:"otp"`
}

// Register creates the account once the verification code checks out.
func (u *IdentityUsecase) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	accType, err := models.ParseAccountType(in.Type)
	if err != nil {
		return nil, err
	}
	ch, err := models.ParseChannel(in.PreferredChannel, models.ChannelEmail)
	if err != nil {
		return nil, err
	}
	in.Profile.Name = strings.TrimSpace(in.Profile.Name)
	if in.Profile.Name == "" {
		return nil, fmt.Errorf("%w: profile.name is required", utils.ErrValidation)
	}
	if err := in.Profile.Validate(accType); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.OTP) == "" {
		return nil, fmt.Errorf("%w: otp is required", utils.ErrValidation)
	}
	if err := u.otp.Verify(ctx, otp.PurposeRegister, email, in.OTP); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:            email,
		Password:         hash,
		Role:             role,
		Type:             accType,
		Profile:          in.Profile,
		PreferredChannel: ch,
	}
	if accType == models.AccountOrganization {
		user.EmployeeRole = models.EmployeeOwner
	}
	if err := u.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", utils.ErrConflict)
		}
		return nil, err
	}
	u.log.Info("account registered", zap.Uint("user", user.ID), zap.String("role", string(role)))
	return u.session(&user)
}

// Login checks the password and sends the second-factor code. No session
// is issued until LoginVerify.
func (u *IdentityUsecase) Login(ctx context.Context, email, password, channel string) (*LoginChallenge, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := u.byEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", utils.ErrAuth)
	}
	ch, err := models.ParseChannel(channel, user.PreferredChannel)
	if err != nil {
		return nil, err
	}
	if err := u.otp.Issue(ctx, otp.PurposeLogin, email, ch, destination(ch, email, user.Profile.Phone)); err != nil {
		return nil, err
	}
	return &LoginChallenge{RequireOTP: true, Channel: ch}, nil
}

func (u *IdentityUsecase) LoginVerify(ctx context.Context, email, code string) (*Session, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := u.otp.Verify(ctx, otp.PurposeLogin, email, code); err != nil {
		return nil, err
	}
	user, err := u.byEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return u.session(user)
}

func (u *IdentityUsecase) ForgotPassword(ctx context.Context, email, channel string) (models.Channel, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	user, err := u.byEmail(ctx, email)
	if err != nil {
		return "", err
	}
	ch, err := models.ParseChannel(channel, user.PreferredChannel)
	if err != nil {
		return "", err
	}
	return ch, u.otp.Issue(ctx, otp.PurposeReset, email, ch, destination(ch, email, user.Profile.Phone))
}

func (u *IdentityUsecase) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	user, err := u.byEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := u.otp.Verify(ctx, otp.PurposeReset, email, code); err != nil {
		return err
	}
	return u.setPassword(ctx, user.ID, newPassword)
}

func (u *IdentityUsecase) UpdatePassword(ctx context.Context, userID uint, current, next string) error {
	if err := checkPassword(next); err != nil {
		return err
	}
	user, err := loadUser(ctx, u.db, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", utils.ErrAuth)
	}
	return u.setPassword(ctx, user.ID, next)
}

func (u *IdentityUsecase) setPassword(ctx context.Context, userID uint, pw string) error {
	hash, err := hashPassword(pw)
	if err != nil {
		return err
	}
	return u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", hash).Error
}

// Refresh trades a refresh token for a new token pair.
func (u *IdentityUsecase) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := utils.ParseToken(u.secret, refreshToken, utils.TokenRefresh)
	if err != nil {
		return nil, err
	}
	user, err := loadUser(ctx, u.db, claims.UserID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, fmt.Errorf("%w: account no longer exists", utils.ErrAuth)
	}
	if err != nil {
		return nil, err
	}
	return u.session(user)
}

func (u *IdentityUsecase) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return loadUser(ctx, u.db, userID)
}

type ProfileUpdate struct {
	Profile          *models.Profile `json:"profile"`
	PreferredChannel *string         `json:"preferred_channel"`
}

// UpdateProfile replaces the profile. The avatar is only changed through
// UploadAvatar.
func (u *IdentityUsecase) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	user, err := loadUser(ctx, u.db, userID)
	if err != nil {
		return nil, err
	}
	if in.Profile != nil {
		p := *in.Profile
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("%w: profile.name is required", utils.ErrValidation)
		}
		if err := p.Validate(user.Type); err != nil {
			return nil, err
		}
		p.AvatarURL = user.Profile.AvatarURL
		user.Profile = p
	}
	if in.PreferredChannel != nil {
		ch, err := models.ParseChannel(*in.PreferredChannel, user.PreferredChannel)
		if err != nil {
			return nil, err
		}
		user.PreferredChannel = ch
	}
	if err := u.db.WithContext(ctx).Model(user).Select("profile", "preferred_channel").Updates(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (u *IdentityUsecase) UploadAvatar(ctx context.Context, userID uint, file io.Reader) (*models.User, error) {
	if u.avatars == nil {
		return nil, fmt.Errorf("%w: avatar storage is not configured", utils.ErrNotReady)
	}
	user, err := loadUser(ctx, u.db, userID)
	if err != nil {
		return nil, err
	}
	url, err := u.avatars.UploadAvatar(ctx, file, fmt.Sprintf("avatar_%d", user.ID))
	if err != nil {
		return nil, fmt.Errorf("%w: upload avatar: %v", utils.ErrDelivery, err)
	}
	user.Profile.AvatarURL = url
	if err := u.db.WithContext(ctx).Model(user).Select("profile").Updates(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

type PublicProfile struct {
	Provider *models.User     `json:"provider"`
	Services []models.Service `json:"services"`
}

// PublicProfile shows a provider with their active services.
func (u *IdentityUsecase) PublicProfile(ctx context.Context, id uint) (*PublicProfile, error) {
	user, err := loadUser(ctx, u.db, id)
	if err != nil {
		return nil, err
	}
	if !user.IsProvider() {
		return nil, fmt.Errorf("%w: provider %d", utils.ErrNotFound, id)
	}
	services := []models.Service{}
	err = u.db.WithContext(ctx).
		Where("provider_id = ? AND is_active = ?", user.ProviderScope(), true).
		Order("id ASC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	user.PushSubscription = nil
	return &PublicProfile{Provider: user, Services: services}, nil
}

func (u *IdentityUsecase) organization(ctx context.Context, ownerID uint) (*models.User, error) {
	owner, err := loadUser(ctx, u.db, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Type != models.AccountOrganization {
		return nil, fmt.Errorf("%w: only organization accounts manage employees", utils.ErrForbidden)
	}
	return owner, nil
}

func (u *IdentityUsecase) ListEmployees(ctx context.Context, ownerID uint) ([]models.User, error) {
	owner, err := u.organization(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := []models.User{}
	if err := u.db.WithContext(ctx).Where("organization_id = ?", owner.ID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type EmployeeInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	EmployeeRole string `json:"employee_role"`
}

// AddEmployee creates a provider account that acts on behalf of the
// organization.
func (u *IdentityUsecase) AddEmployee(ctx context.Context, ownerID uint, in EmployeeInput) (*models.User, error) {
	owner, err := u.organization(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", utils.ErrValidation)
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	role, err := models.ParseEmployeeRole(in.EmployeeRole)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	employee := models.User{
		Email:            email,
		Password:         hash,
		Role:             models.RoleProvider,
		Type:             models.AccountIndividual,
		Profile:          models.Profile{Name: name, Phone: in.Phone},
		EmployeeRole:     role,
		OrganizationID:   &owner.ID,
		PreferredChannel: models.ChannelEmail,
	}
	var n int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: email already registered", utils.ErrConflict)
	}
	if err := u.db.WithContext(ctx).Create(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", utils.ErrConflict)
		}
		return nil, err
	}
	return &employee, nil
}

// RemoveEmployee detaches the account from the organization. The account
// itself stays because it may hold appointments as a client.
func (u *IdentityUsecase) RemoveEmployee(ctx context.Context, ownerID, employeeID uint) error {
	owner, err := u.organization(ctx, ownerID)
	if err != nil {
		return err
	}
	res := u.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND organization_id = ?", employeeID, owner.ID).
		Updates(map[string]any{"organization_id": nil, "employee_role": "", "role": models.RoleClient})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: employee %d", utils.ErrNotFound, employeeID)
	}
	return nil
}

func (u *IdentityUsecase) SavePushSubscription(ctx context.Context, userID uint, sub models.PushSubscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	user, err := loadUser(ctx, u.db, userID)
	if err != nil {
		return err
	}
	user.PushSubscription = &sub
	return u.db.WithContext(ctx).Model(user).Select("push_subscription").Updates(user).Error
}
