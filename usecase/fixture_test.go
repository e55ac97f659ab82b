package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/db/dbtest"
	"github.com/meinhoongagan/booking-platform/events"
	"github.com/meinhoongagan/booking-platform/models"
	"github.com/meinhoongagan/booking-platform/notify"
	"github.com/meinhoongagan/booking-platform/otp"
	"github.com/meinhoongagan/booking-platform/otp/otptest"
)

const testSecret = "usecase-secret"

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingNotifier) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

type fixture struct {
	db           *gorm.DB
	mr           *miniredis.Miniredis
	email        *otptest.Recorder
	sms          *otptest.Recorder
	notifier     *recordingNotifier
	published    *events.Recorder
	appointments *AppointmentUsecase
	catalog      *CatalogUsecase
	identity     *IdentityUsecase
	dashboard    *DashboardUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.New(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	email := otptest.NewRecorder("smtp")
	sms := otptest.NewRecorder("twilio")
	router := otp.NewRouter(email, nil, true, zap.NewNop(), sms)
	otpSvc := otp.NewService(otp.NewStore(rdb, 10*time.Minute, 0), router, 6)

	f := &fixture{
		db:        gdb,
		mr:        mr,
		email:     email,
		sms:       sms,
		notifier:  &recordingNotifier{},
		published: &events.Recorder{},
	}
	f.appointments = NewAppointmentUsecase(gdb, f.notifier, f.published, nil, time.UTC, false, zap.NewNop())
	f.catalog = NewCatalogUsecase(gdb)
	f.identity = NewIdentityUsecase(gdb, otpSvc, nil, testSecret, time.Hour, 24*time.Hour, zap.NewNop())
	f.dashboard = NewDashboardUsecase(gdb)
	return f
}

func (f *fixture) user(t *testing.T, email string, role models.UserRole, typ models.AccountType) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{
		Email:            email,
		Password:         string(hash),
		Role:             role,
		Type:             typ,
		Profile:          models.Profile{Name: email[:1] + " user", Phone: "+15550001111"},
		PreferredChannel: models.ChannelEmail,
	}
	if typ == models.AccountOrganization {
		u.EmployeeRole = models.EmployeeOwner
	}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) provider(t *testing.T, email string) models.User {
	return f.user(t, email, models.RoleProvider, models.AccountIndividual)
}

func (f *fixture) client(t *testing.T, email string) models.User {
	return f.user(t, email, models.RoleClient, models.AccountIndividual)
}

func (f *fixture) service(t *testing.T, providerID uint, availability models.Availability) models.Service {
	t.Helper()
	s := models.Service{
		ProviderID:   providerID,
		Name:         "Haircut",
		Description:  "Classic cut",
		Category:     "Beauty",
		DeliveryType: models.DeliveryInPerson,
		Duration:     60,
		Price:        decimal.RequireFromString("25.50"),
		Currency:     "USD",
		MaxCapacity:  1,
		Availability: availability,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&s).Error)
	return s
}

// nextMonday returns the first Monday strictly after today, at midnight UTC.
func nextMonday() time.Time {
	d := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
