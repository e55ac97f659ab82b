package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/config"
	"github.com/meinhoongagan/booking-platform/controllers"
	"github.com/meinhoongagan/booking-platform/cron"
	"github.com/meinhoongagan/booking-platform/db"
	"github.com/meinhoongagan/booking-platform/events"
	"github.com/meinhoongagan/booking-platform/logger"
	"github.com/meinhoongagan/booking-platform/notify"
	"github.com/meinhoongagan/booking-platform/otp"
	"github.com/meinhoongagan/booking-platform/realtime"
	rds "github.com/meinhoongagan/booking-platform/redis"
	"github.com/meinhoongagan/booking-platform/routes"
	"github.com/meinhoongagan/booking-platform/usecase"
	"github.com/meinhoongagan/booking-platform/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load config: " + err.Error())
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	rdb, err := rds.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// OTP channels
	mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.EmailFrom)
	whatsapp := otp.NewWhatsAppSession(cfg.WhatsAppGatewayURL, cfg.WhatsAppToken, cfg.WhatsAppPairingNumber, cfg.WhatsAppPollInterval, cfg.OTPTTL, log)
	router := otp.NewRouter(
		otp.NewEmailSender(mailer, cfg.OTPTTL),
		whatsapp,
		cfg.OTPStrictDelivery,
		log,
		otp.NewTwilioSender(cfg.TwilioBaseURL, cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom, cfg.OTPTTL),
		otp.NewFast2SMSSender(cfg.Fast2SMSBaseURL, cfg.Fast2SMSAPIKey),
	)
	otpService := otp.NewService(otp.NewStore(rdb, cfg.OTPTTL, cfg.OTPResendCooldown), router, cfg.OTPDigits)
	if whatsapp.Configured() {
		go whatsapp.Run(ctx)
	}

	// Realtime hub and notification dispatcher
	hub := realtime.NewManager(log)
	go hub.Heartbeat(ctx, 30*time.Second)
	dispatcher := notify.NewDispatcher(gdb, hub, notify.NewWebPusher(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject), cfg.ClientURL, cfg.NotifyQueueSize, log)
	dispatcher.Start(cfg.NotifyWorkers)

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitURL != "" {
		p, err := events.NewAMQPPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return err
		}
		publisher = p
	}
	defer publisher.Close()

	var avatars usecase.AvatarUploader
	if cfg.CloudinaryCloudName != "" {
		cld, err := utils.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadPreset)
		if err != nil {
			return err
		}
		avatars = cld
	}

	loc := utils.LoadLocation(cfg.Timezone)
	appointments := usecase.NewAppointmentUsecase(gdb, dispatcher, publisher, mailer, loc, cfg.AutoConfirmBookings, log)
	catalog := usecase.NewCatalogUsecase(gdb)
	identity := usecase.NewIdentityUsecase(gdb, otpService, avatars, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL, log)
	dashboard := usecase.NewDashboardUsecase(gdb)

	scheduler := cron.New(appointments, log)
	if err := scheduler.Start(); err != nil {
		return err
	}

	app := routes.NewApp(routes.Handlers{
		Auth:          controllers.NewAuthController(identity, log),
		Users:         controllers.NewUserController(identity, log),
		Services:      controllers.NewServiceController(catalog, appointments, log),
		Appointments:  controllers.NewAppointmentController(appointments, log),
		Notifications: controllers.NewNotificationController(notify.NewStore(gdb), log),
		Dashboard:     controllers.NewDashboardController(dashboard, log),
		Health:        controllers.NewHealthController(gdb, rdb, whatsapp),
	}, cfg.JWTSecret, cfg.CORSOrigins, log)

	wsServer := &http.Server{
		Addr:              cfg.WSAddr,
		Handler:           realtime.NewRouter(realtime.NewHandler(hub, cfg.JWTSecret, log), strings.Split(cfg.CORSOrigins, ",")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("websocket listening", zap.String("addr", cfg.WSAddr))
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		log.Info("api listening", zap.String("addr", cfg.HTTPAddr))
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("api shutdown", zap.Error(err))
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("websocket shutdown", zap.Error(err))
	}
	hub.CloseAll()
	scheduler.Stop(shutdownCtx)
	dispatcher.Stop()
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return runErr
}
