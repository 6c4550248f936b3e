// Package config loads service configuration from defaults, an optional yaml
// file, a .env file and the environment, in increasing order of precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	ProviderEmailjs = "emailjs"
	ProviderMailgun = "mailgun"
	ProviderSes     = "ses"
)

type Config struct {
	Http      HttpConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Email     EmailConfig     `mapstructure:"email"`
	Mailgun   MailgunConfig   `mapstructure:"mailgun"`
	Ses       SesConfig       `mapstructure:"ses"`
	Fonts     FontsConfig     `mapstructure:"fonts"`
	Render    RenderConfig    `mapstructure:"render"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

type HttpConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Url string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	MaxAttempts int    `mapstructure:"max_attempts"`
	WindowMs    int    `mapstructure:"window_ms"`
	Sweep       string `mapstructure:"sweep"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

type TemplatesConfig struct {
	Notification string `mapstructure:"notification"`
	AutoReply    string `mapstructure:"auto_reply"`
	Reply        string `mapstructure:"reply"`
}

type EmailConfig struct {
	Provider    string          `mapstructure:"provider"`
	ServiceId   string          `mapstructure:"service_id"`
	PublicKey   string          `mapstructure:"public_key"`
	AccessToken string          `mapstructure:"access_token"`
	Endpoint    string          `mapstructure:"endpoint"`
	From        string          `mapstructure:"from"`
	AdminEmail  string          `mapstructure:"admin_email"`
	AdminName   string          `mapstructure:"admin_name"`
	Templates   TemplatesConfig `mapstructure:"templates"`
	MaxRetries  int             `mapstructure:"max_retries"`
	BaseBackoff time.Duration   `mapstructure:"base_backoff"`
	SendTimeout time.Duration   `mapstructure:"send_timeout"`
	RatePerSec  float64         `mapstructure:"rate_per_sec"`
}

type MailgunConfig struct {
	Domain string `mapstructure:"domain"`
	ApiKey string `mapstructure:"api_key"`
}

type SesConfig struct {
	Region string `mapstructure:"region"`
}

type FontsConfig struct {
	RegularUrl string `mapstructure:"regular_url"`
	BoldUrl    string `mapstructure:"bold_url"`
}

type RenderConfig struct {
	SettingsTimeout time.Duration `mapstructure:"settings_timeout"`
	BrandTimeout    time.Duration `mapstructure:"brand_timeout"`
	FontsTimeout    time.Duration `mapstructure:"fonts_timeout"`
	RenderTimeout   time.Duration `mapstructure:"render_timeout"`
}

type AdminConfig struct {
	Token string `mapstructure:"token"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.url", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.max_attempts", 3)
	v.SetDefault("rate_limit.window_ms", 60000)
	v.SetDefault("rate_limit.sweep", "@every 10m")

	v.SetDefault("email.provider", ProviderEmailjs)
	v.SetDefault("email.service_id", "")
	v.SetDefault("email.public_key", "")
	v.SetDefault("email.access_token", "")
	v.SetDefault("email.endpoint", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.admin_email", "")
	v.SetDefault("email.admin_name", "")
	v.SetDefault("email.templates.notification", "template_notification")
	v.SetDefault("email.templates.auto_reply", "template_auto_reply")
	v.SetDefault("email.templates.reply", "template_reply")
	v.SetDefault("email.max_retries", 2)
	v.SetDefault("email.base_backoff", time.Second)
	v.SetDefault("email.send_timeout", 10*time.Second)
	v.SetDefault("email.rate_per_sec", 0)

	v.SetDefault("mailgun.domain", "")
	v.SetDefault("mailgun.api_key", "")

	v.SetDefault("ses.region", "eu-west-1")

	v.SetDefault("fonts.regular_url", "")
	v.SetDefault("fonts.bold_url", "")

	v.SetDefault("render.settings_timeout", 5*time.Second)
	v.SetDefault("render.brand_timeout", 2*time.Second)
	v.SetDefault("render.fonts_timeout", 10*time.Second)
	v.SetDefault("render.render_timeout", 15*time.Second)

	v.SetDefault("admin.token", "")
}

// Load reads the configuration. An empty path looks for showcase.yaml in the
// working directory and carries on without it when absent.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "Failed to load .env")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("showcase")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, errors.Wrap(err, "Failed to read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "Failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the secrets of the selected provider are present.
func (c *Config) Validate() error {
	if c.Database.Url == "" {
		return errors.New("database.url is required")
	}

	if c.RateLimit.MaxAttempts <= 0 || c.RateLimit.WindowMs <= 0 {
		return errors.New("rate_limit.max_attempts and rate_limit.window_ms must be positive")
	}

	if c.Email.AdminEmail == "" {
		return errors.New("email.admin_email is required")
	}

	if (c.Fonts.RegularUrl == "") != (c.Fonts.BoldUrl == "") {
		return errors.New("fonts.regular_url and fonts.bold_url must be set together")
	}

	switch c.Email.Provider {
	case ProviderEmailjs:
		if c.Email.ServiceId == "" || c.Email.PublicKey == "" {
			return errors.New("email.service_id and email.public_key are required for emailjs")
		}

	case ProviderMailgun:
		if c.Mailgun.Domain == "" || c.Mailgun.ApiKey == "" || c.Email.From == "" {
			return errors.New("mailgun.domain, mailgun.api_key and email.from are required for mailgun")
		}

	case ProviderSes:
		if c.Email.From == "" {
			return errors.New("email.from is required for ses")
		}

	default:
		return errors.Errorf("unknown email provider %q", c.Email.Provider)
	}

	return nil
}
