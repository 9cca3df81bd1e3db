package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Identity provider kinds
const (
	IdentityFirebase = "firebase"
	IdentityJWT      = "jwt"
)

// HTTP status-code policies for request-level errors
const (
	StatusPolicyConventional = "conventional"
	StatusPolicyLegacy       = "legacy"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Identity  IdentityConfig  `yaml:"identity"`
	Email     EmailConfig     `yaml:"email"`
	Invite    InviteConfig    `yaml:"invite"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains listener settings
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	HealthPort int    `yaml:"health_port"` // gRPC health service, 0 disables it
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// IdentityConfig selects and configures the identity provider
type IdentityConfig struct {
	Provider        string `yaml:"provider"` // "firebase" or "jwt"
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	JWTSecret       string `yaml:"jwt_secret"`
}

// EmailConfig contains email delivery settings
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromName       string `yaml:"from_name"`
	FromAddress    string `yaml:"from_address"`
}

// InviteConfig contains batch invite pipeline settings
type InviteConfig struct {
	PasswordLength     int    `yaml:"password_length"`
	IncludeInviteLink  bool   `yaml:"include_invite_link"`
	Subject            string `yaml:"subject"`
	CallTimeoutSeconds int    `yaml:"call_timeout_seconds"`
	MaxConcurrency     int    `yaml:"max_concurrency"` // 0 = unbounded
	AuditEnabled       bool   `yaml:"audit_enabled"`
	AuditRetentionDays int    `yaml:"audit_retention_days"`
}

// HTTPConfig controls the shape of HTTP responses
type HTTPConfig struct {
	StatusPolicy     string `yaml:"status_policy"`
	ResponseEnvelope bool   `yaml:"response_envelope"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	PruneInviteAudit string `yaml:"prune_invite_audit"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes, applies environment
// overrides and defaults, then validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	setString(&c.Database.Host, "DB_HOST")
	setInt(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSL_MODE")

	// Server
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setInt(&c.Server.HealthPort, "HEALTH_PORT")

	// Identity
	setString(&c.Identity.Provider, "IDENTITY_PROVIDER")
	setString(&c.Identity.ProjectID, "FIREBASE_PROJECT_ID")
	setString(&c.Identity.CredentialsFile, "FIREBASE_CREDENTIALS_FILE")
	setString(&c.Identity.JWTSecret, "JWT_SECRET")

	// Email
	setString(&c.Email.SendGridAPIKey, "SENDGRID_API_KEY")
	setString(&c.Email.FromName, "EMAIL_FROM_NAME")
	setString(&c.Email.FromAddress, "EMAIL_FROM_ADDRESS")

	// Invite / HTTP
	if val := os.Getenv("INVITE_INCLUDE_LINK"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Invite.IncludeInviteLink = b
		}
	}
	setString(&c.HTTP.StatusPolicy, "HTTP_STATUS_POLICY")

	// Log
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Identity.Provider == "" {
		c.Identity.Provider = IdentityFirebase
	}
	if c.Invite.PasswordLength == 0 {
		c.Invite.PasswordLength = 13
	}
	if c.Invite.Subject == "" {
		c.Invite.Subject = "You are invited to join our platform"
	}
	if c.Invite.CallTimeoutSeconds == 0 {
		c.Invite.CallTimeoutSeconds = 10
	}
	if c.Invite.AuditRetentionDays == 0 {
		c.Invite.AuditRetentionDays = 90
	}
	if c.HTTP.StatusPolicy == "" {
		c.HTTP.StatusPolicy = StatusPolicyConventional
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Scheduler.PruneInviteAudit == "" {
		c.Scheduler.PruneInviteAudit = "0 0 3 * * *" // 3 AM UTC
	}
}

// Validate checks that every required value is present. Missing values
// fail at startup instead of at the first remote call.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HealthPort < 0 || c.Server.HealthPort > 65535 {
		return fmt.Errorf("invalid health port: %d", c.Server.HealthPort)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	switch c.Identity.Provider {
	case IdentityFirebase:
		if c.Identity.ProjectID == "" {
			return fmt.Errorf("firebase project id is required")
		}
	case IdentityJWT:
		if c.Identity.JWTSecret == "" {
			return fmt.Errorf("JWT secret is required")
		}
		if len(c.Identity.JWTSecret) < 32 {
			return fmt.Errorf("JWT secret must be at least 32 characters")
		}
	default:
		return fmt.Errorf("unsupported identity provider: %q", c.Identity.Provider)
	}

	if c.Email.SendGridAPIKey == "" {
		return fmt.Errorf("SendGrid API key is required")
	}
	if c.Email.FromAddress == "" {
		return fmt.Errorf("email sender address is required")
	}
	if !strings.Contains(c.Email.FromAddress, "@") {
		return fmt.Errorf("invalid email sender address: %q", c.Email.FromAddress)
	}

	if c.Invite.PasswordLength < 8 {
		return fmt.Errorf("password length must be at least 8, got %d", c.Invite.PasswordLength)
	}
	if c.Invite.CallTimeoutSeconds < 0 {
		return fmt.Errorf("invalid call timeout: %d", c.Invite.CallTimeoutSeconds)
	}
	if c.Invite.MaxConcurrency < 0 {
		return fmt.Errorf("invalid max concurrency: %d", c.Invite.MaxConcurrency)
	}
	if c.Invite.AuditRetentionDays < 0 {
		return fmt.Errorf("invalid audit retention: %d days", c.Invite.AuditRetentionDays)
	}

	switch c.HTTP.StatusPolicy {
	case StatusPolicyConventional, StatusPolicyLegacy:
	default:
		return fmt.Errorf("unsupported status policy: %q", c.HTTP.StatusPolicy)
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHealthAddress returns the gRPC health server address
func (c *Config) GetHealthAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HealthPort)
}

// CallTimeout is the per-call deadline applied to every collaborator request
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Invite.CallTimeoutSeconds) * time.Second
}

// AuditRetention is how long invite audit rows are kept
func (c *Config) AuditRetention() time.Duration {
	return time.Duration(c.Invite.AuditRetentionDays) * 24 * time.Hour
}
