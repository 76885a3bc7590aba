package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTExpiration time.Duration `mapstructure:"JWT_EXPIRATION"`
	BcryptCost    int           `mapstructure:"BCRYPT_COST"`
	CORSOrigins   string        `mapstructure:"CORS_ORIGINS"`

	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`

	SMTPHost  string `mapstructure:"SMTP_HOST"`
	SMTPPort  int    `mapstructure:"SMTP_PORT"`
	EmailUser string `mapstructure:"EMAIL_USER"`
	EmailPass string `mapstructure:"EMAIL_PASS"`

	CloudinaryCloudName    string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey       string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret    string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryUploadPreset string `mapstructure:"CLOUDINARY_UPLOAD_PRESET"`
	CloudinaryFolder       string `mapstructure:"CLOUDINARY_FOLDER"`

	ReminderSchedule string        `mapstructure:"REMINDER_SCHEDULE"`
	ReminderLead     time.Duration `mapstructure:"REMINDER_LEAD"`
	TimeZone         string        `mapstructure:"TIMEZONE"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "MONGO_URI", "MONGO_DATABASE", "REDIS_ADDR",
	"JWT_SECRET", "JWT_EXPIRATION", "BCRYPT_COST", "CORS_ORIGINS",
	"AMQP_URL", "AMQP_EXCHANGE",
	"SMTP_HOST", "SMTP_PORT", "EMAIL_USER", "EMAIL_PASS",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET",
	"CLOUDINARY_UPLOAD_PRESET", "CLOUDINARY_FOLDER",
	"REMINDER_SCHEDULE", "REMINDER_LEAD", "TIMEZONE",
}

// minSecretLen is the HS256 key size outside development.
const minSecretLen = 32

// Load reads the optional .env file into the process environment and then
// binds every known key through viper. Missing .env files are not an error.
func Load() (*Config, error) {
	// Existing environment variables win over .env entries.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "smart_clinic")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("AMQP_EXCHANGE", "clinic.events")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("CLOUDINARY_FOLDER", "smart-clinic")
	v.SetDefault("REMINDER_SCHEDULE", "* * * * *")
	v.SetDefault("REMINDER_LEAD", "1h")
	v.SetDefault("TIMEZONE", "UTC")

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if !c.IsDev() && len(c.JWTSecret) < minSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes outside development", minSecretLen)
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.EmailUser != ""
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// AllowedOrigins normalizes the comma separated CORS_ORIGINS value.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}
