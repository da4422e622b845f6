package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	Env        string
	ServerPort string
	BaseURL    string
	APIURL     string
	LogLevel   string

	DBUrl string

	JWTSecret     string
	JWTTTL        time.Duration
	SessionSecret string
	AdminEmails   []string

	GoogleClientID     string
	GoogleClientSecret string

	Timezone               string
	SlotStartHour          int
	SlotEndHour            int
	BlockingStatuses       []string
	ValidateEmailDomain    bool
	CORSOrigins            []string
	RateLimitPerSecond     float64
	RateLimitBurst         int
	NotificationQueueSize  int
	DefaultEmailLanguage   string
	AppointmentMinAdvance  time.Duration
	PaymentProvider        string
	PaymentCurrency        string
	StripeSecretKey        string
	StripeWebhookSecret    string
	MercadoPagoAccessToken string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	RedisURL string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	port := getEnvAny("8080", "SERVER_PORT", "PORT")

	return &Config{
		Env:        strings.ToLower(getEnvAny(EnvDevelopment, "APP_ENV", "NODE_ENV")),
		ServerPort: port,
		BaseURL:    strings.TrimRight(getEnv("BASE_URL", "http://localhost:5173"), "/"),
		APIURL:     strings.TrimRight(getEnv("API_URL", "http://localhost:"+port), "/"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBUrl: os.Getenv("DATABASE_URL"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        getDuration("JWT_TTL", 7*24*time.Hour),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AdminEmails:   lowerAll(CSV(os.Getenv("ADMIN_EMAILS"))),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

		Timezone:               getEnv("SALON_TIMEZONE", "Europe/Kyiv"),
		SlotStartHour:          getInt("SLOT_START_HOUR", 9),
		SlotEndHour:            getInt("SLOT_END_HOUR", 20),
		BlockingStatuses:       lowerAll(CSV(getEnv("BOOKING_BLOCKING_STATUSES", "pending,confirmed"))),
		ValidateEmailDomain:    getBool("VALIDATE_EMAIL_DOMAIN", false),
		CORSOrigins:            CSV(os.Getenv("CORS_ORIGINS")),
		RateLimitPerSecond:     getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:         getInt("RATE_LIMIT_BURST", 20),
		NotificationQueueSize:  getInt("NOTIFICATION_QUEUE_SIZE", 100),
		DefaultEmailLanguage:   getEnv("DEFAULT_EMAIL_LANGUAGE", "ua"),
		AppointmentMinAdvance:  getDuration("APPOINTMENT_MIN_ADVANCE", 0),
		PaymentProvider:        strings.ToLower(getEnv("PAYMENT_PROVIDER", "stripe")),
		PaymentCurrency:        strings.ToLower(getEnv("PAYMENT_CURRENCY", "uah")),
		StripeSecretKey:        os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:    os.Getenv("STRIPE_WEBHOOK_SECRET"),
		MercadoPagoAccessToken: os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnv("SMTP_FROM", os.Getenv("SMTP_USER")),

		RedisURL: os.Getenv("REDIS_URL"),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3PublicURL: strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
	}
}

// Validate reports every missing or inconsistent setting at once.
// There are no built-in fallback secrets: the service refuses to start instead.
func (c *Config) Validate() error {
	var errs []error

	if c.DBUrl == "" {
		errs = append(errs, errors.New("missing required env DATABASE_URL"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	if c.StripeSecretKey != "" && c.StripeWebhookSecret == "" {
		errs = append(errs, errors.New("missing required env STRIPE_WEBHOOK_SECRET (needed by STRIPE_SECRET_KEY)"))
	}
	if c.GoogleEnabled() && c.SessionSecret == "" {
		errs = append(errs, errors.New("missing required env SESSION_SECRET (needed by Google OAuth)"))
	}
	if c.SlotStartHour < 0 || c.SlotEndHour > 23 || c.SlotStartHour > c.SlotEndHour {
		errs = append(errs, fmt.Errorf("invalid slot grid %d..%d", c.SlotStartHour, c.SlotEndHour))
	}
	if len(c.BlockingStatuses) == 0 {
		errs = append(errs, errors.New("BOOKING_BLOCKING_STATUSES must not be empty"))
	}
	switch c.PaymentProvider {
	case "stripe", "mercadopago":
	default:
		errs = append(errs, fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.PaymentProvider))
	}

	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}

// GoogleRedirectURL is the OAuth callback registered with Google.
func (c *Config) GoogleRedirectURL() string {
	return c.APIURL + "/api/auth/google/callback"
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	for i := range in {
		in[i] = strings.ToLower(in[i])
	}
	return in
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAny(def string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return f
}

func getBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return d
}
