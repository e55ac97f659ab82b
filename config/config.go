package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8000"`
	WSAddr   string `envconfig:"WS_ADDR" default:":8001"`
	Timezone string `envconfig:"APP_TIMEZONE" default:"UTC"`
	// Comma separated, as fiber's cors middleware expects.
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// DB
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Redis
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// JWT
	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"24h"`
	RefreshTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`

	// Booking policy
	AutoConfirmBookings bool `envconfig:"AUTO_CONFIRM_BOOKINGS" default:"false"`

	// SMTP
	SMTPHost  string `envconfig:"SMTP_HOST"`
	SMTPPort  int    `envconfig:"SMTP_PORT" default:"587"`
	EmailUser string `envconfig:"EMAIL_USER"`
	EmailPass string `envconfig:"EMAIL_PASS"`
	EmailFrom string `envconfig:"EMAIL_FROM"`

	// SMS, primary then fallback
	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `envconfig:"TWILIO_FROM"`
	TwilioBaseURL    string `envconfig:"TWILIO_BASE_URL" default:"https://api.twilio.com"`
	Fast2SMSAPIKey   string `envconfig:"FAST2SMS_API_KEY"`
	Fast2SMSBaseURL  string `envconfig:"FAST2SMS_BASE_URL" default:"https://www.fast2sms.com"`

	// WhatsApp session gateway
	WhatsAppGatewayURL    string        `envconfig:"WHATSAPP_GATEWAY_URL"`
	WhatsAppToken         string        `envconfig:"WHATSAPP_TOKEN"`
	WhatsAppPairingNumber string        `envconfig:"WHATSAPP_PAIRING_NUMBER"`
	WhatsAppPollInterval  time.Duration `envconfig:"WHATSAPP_POLL_INTERVAL" default:"10s"`

	// OTP
	OTPTTL            time.Duration `envconfig:"OTP_TTL" default:"10m"`
	OTPDigits         int           `envconfig:"OTP_DIGITS" default:"6"`
	OTPResendCooldown time.Duration `envconfig:"OTP_RESEND_COOLDOWN" default:"30s"`
	OTPStrictDelivery bool          `envconfig:"OTP_STRICT_DELIVERY" default:"false"`

	// Browser push
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `envconfig:"VAPID_SUBJECT" default:"mailto:admin@example.com"`
	ClientURL       string `envconfig:"CLIENT_URL" default:"http://localhost:3000"`

	// Notification dispatcher
	NotifyWorkers   int `envconfig:"NOTIFY_WORKERS" default:"2"`
	NotifyQueueSize int `envconfig:"NOTIFY_QUEUE_SIZE" default:"256"`

	// RabbitMQ, empty URL disables domain events
	RabbitURL      string `envconfig:"RABBITMQ_URL"`
	RabbitExchange string `envconfig:"RABBITMQ_EXCHANGE" default:"appointments"`

	// Cloudinary
	CloudinaryCloudName    string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey       string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret    string `envconfig:"CLOUDINARY_API_SECRET"`
	CloudinaryUploadPreset string `envconfig:"CLOUDINARY_UPLOAD_PRESET"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	var c Config
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, err
	}
	err := envconfig.Process("", &c)
	return c, err
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
