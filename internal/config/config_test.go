package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./qr_codes", cfg.QRDir)
	assert.Equal(t, "red", cfg.FillColor)
	assert.Equal(t, "white", cfg.BackColor)
	assert.Equal(t, 10, cfg.QRSize)
	assert.Equal(t, "http://localhost:80", cfg.BaseURL)
	assert.Equal(t, "downloads", cfg.DownloadFolder)
	assert.Equal(t, "HS256", cfg.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "admin", cfg.AdminUser)
	assert.Equal(t, "secret", cfg.AdminPassword)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("QR_CODE_DIR", "/tmp/qr")
	t.Setenv("FILL_COLOR", "black")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("ALGORITHM", "HS512")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/qr", cfg.QRDir)
	assert.Equal(t, "black", cfg.FillColor)
	assert.Equal(t, 5*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "HS512", cfg.Algorithm)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			QRDir:          "./qr_codes",
			FillColor:      "red",
			BackColor:      "white",
			QRSize:         10,
			BaseURL:        "http://localhost:80",
			DownloadFolder: "downloads",
			SecretKey:      "s",
			Algorithm:      "HS256",
			TokenTTL:       time.Minute,
			AdminUser:      "admin",
			AdminPassword:  "secret",
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unsupported algorithm", func(c *Config) { c.Algorithm = "RS256" }},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }},
		{"empty admin user", func(c *Config) { c.AdminUser = "" }},
		{"size too small", func(c *Config) { c.QRSize = 0 }},
		{"size too large", func(c *Config) { c.QRSize = 100 }},
		{"empty dir", func(c *Config) { c.QRDir = "" }},
		{"empty base url", func(c *Config) { c.BaseURL = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
