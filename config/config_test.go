package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("EMAIL", "robot@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("CONNECTION_STRING", "")

	return home
}

func newInitializedManager(t *testing.T) *ManagerDefault {
	t.Helper()

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Init())

	return m
}

func TestManagerEnvOnly(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_EXPIRES_IN", "7d")

	m := newInitializedManager(t)
	cfg := m.Config().Core

	assert.Equal(t, uint(8080), cfg.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.JWTExpiresIn)
	assert.Equal(t, "robot@example.com", cfg.Mail.Username)
	assert.Equal(t, "robot@example.com", cfg.Mail.From)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, DatabaseTypeSQLite, cfg.DB.Type)
	assert.Equal(t, "accountd.db", cfg.DB.File)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, m.ConfigFile())
}

func TestManagerDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg := newInitializedManager(t).Config().Core

	assert.Equal(t, uint(3000), cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiresIn)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	require.NotNil(t, cfg.DB.Cache)
	assert.Equal(t, CacheModeNone, cfg.DB.Cache.Mode)
	assert.Equal(t, 5*time.Minute, cfg.DB.Cache.TTL)
}

func TestManagerConnectionString(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CONNECTION_STRING", "mysql://app:pw@db.internal:3307/accounts")

	db := newInitializedManager(t).Config().Core.DB

	assert.Equal(t, DatabaseTypeMySQL, db.Type)
	assert.Equal(t, "db.internal", db.Host)
	assert.Equal(t, 3307, db.Port)
	assert.Equal(t, "accounts", db.Name)
	assert.Equal(t, "app", db.Username)
	assert.Equal(t, "pw", db.Password)
}

func TestManagerGenericEnv(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ACCOUNTD_CORE__LOG__LEVEL", "debug")
	t.Setenv("ACCOUNTD_CORE__AUTH__BCRYPT_COST", "12")

	cfg := newInitializedManager(t).Config().Core

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
}

func TestManagerMissingSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET_KEY", "")

	m, err := NewManager()
	require.NoError(t, err)
	assert.ErrorContains(t, m.Init(), "jwt_secret")
}

func TestManagerConfigFile(t *testing.T) {
	home := setBaseEnv(t)

	dir := filepath.Join(home, ".lumeweb", "accountd")
	require.NoError(t, os.MkdirAll(dir, 0755))

	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("core:\n  port: 9000\n  mail:\n    host: smtp.example.com\n"), 0600))

	m := newInitializedManager(t)

	assert.Equal(t, file, m.ConfigFile())
	assert.Equal(t, dir, m.ConfigDir())
	assert.Equal(t, uint(9000), m.Config().Core.Port)
	assert.Equal(t, "smtp.example.com", m.Config().Core.Mail.Host)

	written, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(written), "jwt_expires_in")
	assert.NotContains(t, string(written), "s3cret")
	assert.NotContains(t, string(written), "app-password")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"PORT":                    "core.port",
		"CONNECTION_STRING":       "core.db.dsn",
		"JWT_SECRET_KEY":          "core.auth.jwt_secret",
		"JWT_EXPIRES_IN":          "core.auth.jwt_expires_in",
		"EMAIL":                   "core.mail.username",
		"EMAIL_PASSWORD":          "core.mail.password",
		"ACCOUNTD_CORE__DB__TYPE": "core.db.type",
		"ACCOUNTD_":               "",
		"PATH":                    "",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, envKey(in))
		})
	}
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"3600", time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"", 0, true},
		{"soon", 0, true},
		{"xd", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpiry(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDSN(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		d := DatabaseConfig{DSN: "postgres://app:pw@pg:5433/accounts?sslmode=require"}
		require.NoError(t, d.resolveDSN())

		assert.Equal(t, DatabaseTypePostgres, d.Type)
		assert.Equal(t, "pg", d.Host)
		assert.Equal(t, 5433, d.Port)
		assert.Equal(t, "require", d.SSLMode)
		assert.Equal(t, 5433, d.DefaultPort())
	})

	t.Run("sqlite", func(t *testing.T) {
		d := DatabaseConfig{DSN: "sqlite:///var/lib/accountd/users.db"}
		require.NoError(t, d.resolveDSN())

		assert.Equal(t, DatabaseTypeSQLite, d.Type)
		assert.Equal(t, "/var/lib/accountd/users.db", d.File)
	})

	t.Run("default ports", func(t *testing.T) {
		assert.Equal(t, 3306, DatabaseConfig{Type: DatabaseTypeMySQL}.DefaultPort())
		assert.Equal(t, 5432, DatabaseConfig{Type: DatabaseTypePostgres}.DefaultPort())
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		d := DatabaseConfig{DSN: "mongodb://localhost/db"}
		assert.Error(t, d.resolveDSN())
	})

	t.Run("empty is a no-op", func(t *testing.T) {
		d := DatabaseConfig{Type: DatabaseTypeSQLite, File: "a.db"}
		require.NoError(t, d.resolveDSN())
		assert.Equal(t, "a.db", d.File)
	})
}

func TestValidation(t *testing.T) {
	assert.Error(t, AuthConfig{JWTSecret: "x", JWTExpiresIn: 0, BcryptCost: 10}.Validate())
	assert.Error(t, AuthConfig{JWTSecret: "x", JWTExpiresIn: time.Hour, BcryptCost: 99}.Validate())
	assert.NoError(t, AuthConfig{JWTSecret: "x", JWTExpiresIn: time.Hour, BcryptCost: 10}.Validate())

	assert.Error(t, CacheConfig{Mode: CacheModeRedis}.Validate())
	assert.Error(t, CacheConfig{Mode: "bogus"}.Validate())
	assert.NoError(t, CacheConfig{Mode: CacheModeRedis, Redis: &RedisConfig{Address: "localhost:6379"}}.Validate())

	assert.Error(t, DatabaseConfig{Type: DatabaseTypeMySQL}.Validate())
	assert.Error(t, DatabaseConfig{Type: "oracle"}.Validate())
}
