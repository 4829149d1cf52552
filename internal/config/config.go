// Package config loads the process-wide configuration snapshot from the
// environment. The snapshot is built once at startup and passed by
// reference into each component's constructor; nothing reads the
// environment after Load returns.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the immutable configuration snapshot.
type Config struct {
	// QRDir is the root directory holding generated QR images.
	QRDir string
	// FillColor and BackColor are the default rendering colors.
	FillColor string
	BackColor string
	// QRSize is the default pixel scale per QR module.
	QRSize int

	// BaseURL and DownloadFolder build the locators returned to clients.
	BaseURL        string
	DownloadFolder string

	// SecretKey and Algorithm sign access tokens; TokenTTL bounds their
	// validity.
	SecretKey string
	Algorithm string
	TokenTTL  time.Duration

	// AdminUser and AdminPassword are the single administrative
	// principal's credentials.
	AdminUser     string
	AdminPassword string

	ListenAddr string
	LogLevel   string
}

// Load reads the configuration from environment variables, applying the
// documented defaults, and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("QR_CODE_DIR", "./qr_codes")
	v.SetDefault("FILL_COLOR", "red")
	v.SetDefault("BACK_COLOR", "white")
	v.SetDefault("QR_SIZE", 10)
	v.SetDefault("SERVER_BASE_URL", "http://localhost:80")
	v.SetDefault("SERVER_DOWNLOAD_FOLDER", "downloads")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASSWORD", "secret")
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	cfg := &Config{
		QRDir:          v.GetString("QR_CODE_DIR"),
		FillColor:      v.GetString("FILL_COLOR"),
		BackColor:      v.GetString("BACK_COLOR"),
		QRSize:         v.GetInt("QR_SIZE"),
		BaseURL:        v.GetString("SERVER_BASE_URL"),
		DownloadFolder: v.GetString("SERVER_DOWNLOAD_FOLDER"),
		SecretKey:      v.GetString("SECRET_KEY"),
		Algorithm:      v.GetString("ALGORITHM"),
		TokenTTL:       time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		AdminUser:      v.GetString("ADMIN_USER"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		ListenAddr:     v.GetString("LISTEN_ADDR"),
		LogLevel:       v.GetString("LOG_LEVEL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required fields are set and within bounds.
func (c *Config) Validate() error {
	if c.QRDir == "" {
		return fmt.Errorf("config: QR_CODE_DIR is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("config: SECRET_KEY is required")
	}
	if c.AdminUser == "" || c.AdminPassword == "" {
		return fmt.Errorf("config: ADMIN_USER and ADMIN_PASSWORD are required")
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: unsupported signing algorithm %q", c.Algorithm)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.QRSize < 1 || c.QRSize > 64 {
		return fmt.Errorf("config: QR_SIZE must be between 1 and 64")
	}
	if c.BaseURL == "" || c.DownloadFolder == "" {
		return fmt.Errorf("config: SERVER_BASE_URL and SERVER_DOWNLOAD_FOLDER are required")
	}
	return nil
}
