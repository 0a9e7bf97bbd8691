package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the immutable process configuration, constructed once at
// startup and passed explicitly to the components that need it.
type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	UploadPath     string `mapstructure:"UPLOAD_PATH"`
	MaxUploadBytes int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort string `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`

	FromEmail  string `mapstructure:"FROM_EMAIL"`
	AdminEmail string `mapstructure:"ADMIN_EMAIL"`

	NotificationsEnabled bool `mapstructure:"NOTIFICATIONS_ENABLED"`
	EmailChannelEnabled  bool `mapstructure:"EMAIL_NOTIFICATIONS_ENABLED"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "4000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("UPLOAD_PATH", "./uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("SMTP_HOST", "sandbox.smtp.mailtrap.io")
	v.SetDefault("SMTP_PORT", "2525")
	v.SetDefault("FROM_EMAIL", "noreply@patientregistration.com")
	v.SetDefault("ADMIN_EMAIL", "admin@patientregistration.com")
	v.SetDefault("NOTIFICATIONS_ENABLED", true)
	v.SetDefault("EMAIL_NOTIFICATIONS_ENABLED", true)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("UPLOAD_PATH")
	v.BindEnv("MAX_UPLOAD_BYTES")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("SMTP_HOST")
	v.BindEnv("SMTP_PORT")
	v.BindEnv("SMTP_USER")
	v.BindEnv("SMTP_PASS")
	v.BindEnv("FROM_EMAIL")
	v.BindEnv("ADMIN_EMAIL")
	v.BindEnv("NOTIFICATIONS_ENABLED")
	v.BindEnv("EMAIL_NOTIFICATIONS_ENABLED")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// EnabledChannels returns the notification channel ids that are switched
// on. NOTIFICATIONS_ENABLED=false disables everything; each channel also
// has its own flag. Only email exists today.
func (c *Config) EnabledChannels() []string {
	if !c.NotificationsEnabled {
		return nil
	}
	var channels []string
	if c.EmailChannelEnabled {
		channels = append(channels, "email")
	}
	return channels
}

// Validate checks that the configuration is safe to serve with.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if len(c.EnabledChannels()) > 0 {
		if c.FromEmail == "" {
			return fmt.Errorf("FROM_EMAIL is required when notifications are enabled")
		}
		if c.AdminEmail == "" {
			return fmt.Errorf("ADMIN_EMAIL is required when notifications are enabled")
		}
		if c.SMTPHost == "" || c.SMTPPort == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_PORT are required when notifications are enabled")
		}
	}
	return nil
}
