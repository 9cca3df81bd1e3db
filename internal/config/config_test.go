package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
server:
  port: 9000
database:
  host: db
  user: invites
  database: invites
identity:
  provider: jwt
  jwt_secret: 0123456789abcdef0123456789abcdef
email:
  sendgrid_api_key: SG.key
  from_name: Company
  from_address: invites@example.com
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(baseYAML))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 13, cfg.Invite.PasswordLength)
	assert.Equal(t, "You are invited to join our platform", cfg.Invite.Subject)
	assert.Equal(t, 10*time.Second, cfg.CallTimeout())
	assert.Equal(t, 90*24*time.Hour, cfg.AuditRetention())
	assert.Equal(t, StatusPolicyConventional, cfg.HTTP.StatusPolicy)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "0 0 3 * * *", cfg.Scheduler.PruneInviteAudit)
	assert.Equal(t, ":9000", cfg.GetServerAddress())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SENDGRID_API_KEY", "SG.from-env")
	t.Setenv("INVITE_INCLUDE_LINK", "true")
	t.Setenv("HTTP_STATUS_POLICY", StatusPolicyLegacy)

	cfg, err := Parse([]byte(baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "SG.from-env", cfg.Email.SendGridAPIKey)
	assert.True(t, cfg.Invite.IncludeInviteLink)
	assert.Equal(t, StatusPolicyLegacy, cfg.HTTP.StatusPolicy)
}

func TestParse_FailsFast(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing database host", func(c *Config) { c.Database.Host = "" }, "database host is required"},
		{"missing sendgrid key", func(c *Config) { c.Email.SendGridAPIKey = "" }, "SendGrid API key is required"},
		{"missing sender", func(c *Config) { c.Email.FromAddress = "" }, "email sender address is required"},
		{"short jwt secret", func(c *Config) { c.Identity.JWTSecret = "short" }, "at least 32 characters"},
		{"firebase without project", func(c *Config) { c.Identity.Provider = IdentityFirebase }, "firebase project id is required"},
		{"unknown provider", func(c *Config) { c.Identity.Provider = "ldap" }, "unsupported identity provider"},
		{"unknown policy", func(c *Config) { c.HTTP.StatusPolicy = "teapot" }, "unsupported status policy"},
		{"short password", func(c *Config) { c.Invite.PasswordLength = 4 }, "password length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(baseYAML))
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("Reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(baseYAML), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "db", cfg.Database.Host)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		_, err := Parse([]byte("server: [unterminated"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestGetDatabaseConnectionString(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p@ss", Database: "invites", SSLMode: "require",
	}}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/invites?sslmode=require", cfg.GetDatabaseConnectionString())
}
