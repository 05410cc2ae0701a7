package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Media  MediaConfig       `yaml:"media"`
	SMTP   SMTPConfig        `yaml:"smtp"`
	CORS   CORSConfig        `yaml:"cors"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Media.Validate(); err != nil {
		return err
	}
	return c.SMTP.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds admin sign-in and session configuration.
//
// The static admin pair is checked before the identity delegate is ever
// contacted. AdminPasswordHash, when set, takes precedence over
// AdminPassword and must be a bcrypt hash.
type AuthConfig struct {
	AdminEmail        string        `yaml:"admin_email"`
	AdminPassword     string        `yaml:"admin_password"`
	AdminPasswordHash string        `yaml:"admin_password_hash"`
	AdminDisplayName  string        `yaml:"admin_display_name"`
	JWTSecret         string        `yaml:"jwt_secret"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	DelegateURL       string        `yaml:"delegate_url"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.AdminEmail, validation.Required, is.EmailFormat),
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.DelegateURL, is.URL),
	); err != nil {
		return err
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return fmt.Errorf("auth: admin_password or admin_password_hash must be set")
	}
	return nil
}

// MediaConfig holds the third-party media host configuration. Endpoint
// empty disables uploads; the rest of the API keeps working.
type MediaConfig struct {
	Endpoint       string `yaml:"endpoint"`
	UploadPreset   string `yaml:"upload_preset"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Enabled returns true when an upload endpoint is configured.
func (c *MediaConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Validate validates the media configuration.
func (c *MediaConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, is.URL),
		validation.Field(&c.UploadPreset, validation.Required),
	)
}

// SMTPConfig holds the contact-notification mail configuration. Host
// empty disables notifications; submissions are still stored. Mail is
// sent from the authenticated username.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	To       string `yaml:"to"`
}

// Enabled returns true when a mail host is configured.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns the host:port dial address.
func (c *SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the SMTP configuration.
func (c *SMTPConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.To, validation.Required, is.EmailFormat),
	)
}

// CORSConfig holds the allowed browser origins. The public site and the
// admin panel are served from their own origins.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./folio.db",
		},
		Auth: AuthConfig{
			AdminDisplayName: "Admin",
			SessionTTL:       24 * time.Hour,
		},
		Media: MediaConfig{
			UploadPreset:   "ml_default",
			MaxUploadBytes: 10 << 20,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}
