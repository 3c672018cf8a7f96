package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	SMTP      SMTPConfig
	Reminder  ReminderConfig
	Storage   StorageConfig
	PDF       PDFConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	URL         string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	AutoMigrate bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Version        string
	BaseURL        string
	AllowedOrigins []string
	MetricsEnabled bool
}

type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type ReminderConfig struct {
	DailyReportSpec      string
	ApprovalReminderSpec string
	TimeZone             string
}

type StorageConfig struct {
	BasePath      string
	BaseURL       string
	MaxUploadSize int64
}

type PDFConfig struct {
	FontPath string
}

type RateLimitConfig struct {
	Login string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "kintai")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ACCESS_EXPIRATION_TIME", "8h")

	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("METRICS_ENABLED", true)

	v.SetDefault("SMTP_ENABLED", false)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "noreply@example.com")
	v.SetDefault("SMTP_FROM_NAME", "勤怠管理システム")

	v.SetDefault("REMINDER_DAILY_REPORT_SPEC", "0 18 * * *")
	v.SetDefault("REMINDER_APPROVAL_SPEC", "0 9 * * *")
	v.SetDefault("REMINDER_TIME_ZONE", "Asia/Tokyo")

	v.SetDefault("STORAGE_BASE_PATH", "./uploads")
	v.SetDefault("STORAGE_BASE_URL", "/api/v1/files")
	v.SetDefault("STORAGE_MAX_UPLOAD_SIZE", 10<<20)

	v.SetDefault("PDF_FONT_PATH", "/usr/share/fonts/opentype/ipaexfont-gothic/ipaexg.ttf")

	v.SetDefault("RATE_LIMIT_LOGIN", "10-M")
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is fine in containers where everything comes from the environment.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	config := &Config{}

	config.Database = DatabaseConfig{
		URL:         v.GetString("DATABASE_URL"),
		Host:        v.GetString("DB_HOST"),
		Port:        v.GetInt("DB_PORT"),
		User:        v.GetString("DB_USER"),
		Password:    v.GetString("DB_PASSWORD"),
		Name:        v.GetString("DB_NAME"),
		SSLMode:     v.GetString("DB_SSL_MODE"),
		MaxConns:    v.GetInt32("DB_MAX_CONNS"),
		MinConns:    v.GetInt32("DB_MIN_CONNS"),
		AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
	}

	config.App = AppConfig{
		Port:           v.GetInt("APP_PORT"),
		Env:            v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		Version:        v.GetString("APP_VERSION"),
		BaseURL:        v.GetString("APP_BASE_URL"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
	}

	config.JWT = JWTConfig{
		Secret:           v.GetString("JWT_SECRET_KEY"),
		AccessExpiration: v.GetString("JWT_ACCESS_EXPIRATION_TIME"),
	}

	config.SMTP = SMTPConfig{
		Enabled:  v.GetBool("SMTP_ENABLED"),
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		User:     v.GetString("SMTP_USER"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
		FromName: v.GetString("SMTP_FROM_NAME"),
	}

	config.Reminder = ReminderConfig{
		DailyReportSpec:      v.GetString("REMINDER_DAILY_REPORT_SPEC"),
		ApprovalReminderSpec: v.GetString("REMINDER_APPROVAL_SPEC"),
		TimeZone:             v.GetString("REMINDER_TIME_ZONE"),
	}

	config.Storage = StorageConfig{
		BasePath:      v.GetString("STORAGE_BASE_PATH"),
		BaseURL:       v.GetString("STORAGE_BASE_URL"),
		MaxUploadSize: v.GetInt64("STORAGE_MAX_UPLOAD_SIZE"),
	}

	config.PDF = PDFConfig{FontPath: v.GetString("PDF_FONT_PATH")}
	config.RateLimit = RateLimitConfig{Login: v.GetString("RATE_LIMIT_LOGIN")}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DB_HOST is required")
	}
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET_KEY is required")
		}
		c.JWT.Secret = "development-only-secret-change-me"
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.LoadLocation(c.Reminder.TimeZone); err != nil {
		return fmt.Errorf("invalid REMINDER_TIME_ZONE: %w", err)
	}
	if c.SMTP.Enabled && c.SMTP.Host == "" {
		return fmt.Errorf("SMTP_HOST is required when SMTP is enabled")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
