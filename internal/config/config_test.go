package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "showcase.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

const minimal = `
database:
  url: postgres://localhost/showcase
email:
  service_id: service_1
  public_key: key_1
  admin_email: owner@example.com
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Http.Addr)
	assert.Equal(t, 3, cfg.RateLimit.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window())
	assert.Equal(t, "@every 10m", cfg.RateLimit.Sweep)
	assert.Equal(t, ProviderEmailjs, cfg.Email.Provider)
	assert.Equal(t, 2, cfg.Email.MaxRetries)
	assert.Equal(t, time.Second, cfg.Email.BaseBackoff)
	assert.Equal(t, "template_auto_reply", cfg.Email.Templates.AutoReply)
	assert.Equal(t, 5*time.Second, cfg.Render.SettingsTimeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW_MS", "1500")
	t.Setenv("EMAIL_SEND_TIMEOUT", "3s")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, 1500*time.Millisecond, cfg.RateLimit.Window())
	assert.Equal(t, 3*time.Second, cfg.Email.SendTimeout)
	assert.Equal(t, ":9090", cfg.Http.Addr)
}

func TestMissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:  DatabaseConfig{Url: "postgres://localhost/showcase"},
			RateLimit: RateLimitConfig{MaxAttempts: 3, WindowMs: 60000},
			Email: EmailConfig{
				Provider:   ProviderEmailjs,
				ServiceId:  "service_1",
				PublicKey:  "key_1",
				AdminEmail: "owner@example.com",
			},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Email.Provider = ProviderMailgun
	assert.Error(t, cfg.Validate())

	cfg.Mailgun = MailgunConfig{Domain: "mg.example.com", ApiKey: "key"}
	cfg.Email.From = "site@example.com"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Email.Provider = "carrier-pigeon"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Fonts.RegularUrl = "https://fonts.example.com/regular.ttf"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RateLimit.WindowMs = 0
	assert.Error(t, cfg.Validate())
}
