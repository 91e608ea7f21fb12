package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Learner schema variants. Exactly one is active per database.
const (
	LearnersModeIndividual = "individual"
	LearnersModeAggregate  = "aggregate"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	Database   DatabaseConfig
	Redis      RedisConfig
	Session    SessionConfig
	CSRF       CSRFConfig
	CORS       CORSConfig
	Log        LogConfig
	Mail       MailConfig
	Attendance AttendanceConfig
	Reminder   ReminderConfig
	Learners   LearnersConfig
	Seed       SeedConfig
	Metrics    MetricsConfig
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	PoolSize int
}

// Addr returns host:port for the redis server.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SessionConfig controls the browser session cookie and its backing store.
type SessionConfig struct {
	Name        string
	Secret      string
	Store       string
	RememberFor time.Duration
	Secure      bool
}

// CSRFConfig toggles form CSRF protection.
type CSRFConfig struct {
	Enabled        bool
	Secret         string
	TrustedOrigins []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MailConfig selects the outbound email backend.
type MailConfig struct {
	Backend        string
	From           string
	FromName       string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPTimeout    time.Duration
	SendGridAPIKey string
}

// AttendanceConfig holds the early departure cutoff as HH:MM local time.
type AttendanceConfig struct {
	EarlyDepartureCutoff string
}

// ReminderConfig drives the daily sign-out reminder job.
type ReminderConfig struct {
	Enabled  bool
	Schedule string
}

type LearnersConfig struct {
	Mode string
}

// SeedConfig controls the initial staff roster inserted into an empty database.
type SeedConfig struct {
	Enabled         bool
	DefaultPassword string
	AdminStaffID    string
	AdminPassword   string
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("TIMEZONE")

	cfg.Database = DatabaseConfig{
		URL:          v.GetString("DATABASE_URL"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		PoolSize: v.GetInt("REDIS_POOL_SIZE"),
	}

	cfg.Session = SessionConfig{
		Name:        v.GetString("SESSION_NAME"),
		Secret:      v.GetString("SESSION_SECRET"),
		Store:       strings.ToLower(v.GetString("SESSION_STORE")),
		RememberFor: parseDuration(v.GetString("SESSION_REMEMBER_FOR"), 31*24*time.Hour),
		Secure:      v.GetBool("SESSION_SECURE"),
	}

	cfg.CSRF = CSRFConfig{
		Enabled:        v.GetBool("CSRF_ENABLED"),
		Secret:         v.GetString("CSRF_SECRET"),
		TrustedOrigins: splitAndTrim(v.GetString("CSRF_TRUSTED_ORIGINS")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	mailBackend := strings.ToLower(v.GetString("MAIL_BACKEND"))
	if mailBackend == "" {
		mailBackend = "console"
		if cfg.Env == EnvProduction {
			mailBackend = "smtp"
		}
	}
	cfg.Mail = MailConfig{
		Backend:        mailBackend,
		From:           v.GetString("MAIL_FROM"),
		FromName:       v.GetString("MAIL_FROM_NAME"),
		SMTPHost:       v.GetString("SMTP_HOST"),
		SMTPPort:       v.GetInt("SMTP_PORT"),
		SMTPUsername:   v.GetString("SMTP_USERNAME"),
		SMTPPassword:   v.GetString("SMTP_PASSWORD"),
		SMTPTimeout:    parseDuration(v.GetString("SMTP_TIMEOUT"), 15*time.Second),
		SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
	}
	if cfg.Mail.SMTPUsername == "" {
		cfg.Mail.SMTPUsername = cfg.Mail.From
	}

	cfg.Attendance = AttendanceConfig{
		EarlyDepartureCutoff: v.GetString("EARLY_DEPARTURE_CUTOFF"),
	}

	cfg.Reminder = ReminderConfig{
		Enabled:  v.GetBool("REMINDER_ENABLED"),
		Schedule: v.GetString("REMINDER_SCHEDULE"),
	}

	cfg.Learners = LearnersConfig{Mode: strings.ToLower(v.GetString("LEARNERS_MODE"))}
	if cfg.Learners.Mode != LearnersModeAggregate {
		cfg.Learners.Mode = LearnersModeIndividual
	}

	cfg.Seed = SeedConfig{
		Enabled:         v.GetBool("SEED_ENABLED"),
		DefaultPassword: v.GetString("SEED_DEFAULT_PASSWORD"),
		AdminStaffID:    v.GetString("SEED_ADMIN_ID"),
		AdminPassword:   v.GetString("SEED_ADMIN_PASSWORD"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TIMEZONE", "Africa/Nairobi")

	v.SetDefault("DATABASE_URL", "sqlite://attendance.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("SESSION_NAME", "attendance_session")
	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_STORE", "cookie")
	v.SetDefault("SESSION_REMEMBER_FOR", "744h")
	v.SetDefault("SESSION_SECURE", false)

	v.SetDefault("CSRF_ENABLED", true)
	v.SetDefault("CSRF_SECRET", "dev_csrf_secret_change_me_32byte")
	v.SetDefault("CSRF_TRUSTED_ORIGINS", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAIL_BACKEND", "")
	v.SetDefault("MAIL_FROM", "gofishnethappykids2025@yahoo.com")
	v.SetDefault("MAIL_FROM_NAME", "Happy Kids Staff Attendance")
	v.SetDefault("SMTP_HOST", "smtp.mail.yahoo.com")
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_TIMEOUT", "15s")
	v.SetDefault("SENDGRID_API_KEY", "")

	v.SetDefault("EARLY_DEPARTURE_CUTOFF", "16:30")
	v.SetDefault("REMINDER_ENABLED", true)
	v.SetDefault("REMINDER_SCHEDULE", "0 17 * * *")

	v.SetDefault("LEARNERS_MODE", LearnersModeIndividual)

	v.SetDefault("SEED_ENABLED", true)
	v.SetDefault("SEED_DEFAULT_PASSWORD", "123456")
	v.SetDefault("SEED_ADMIN_ID", "Gofishnet001")
	v.SetDefault("SEED_ADMIN_PASSWORD", "Gofishnet001*")

	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
