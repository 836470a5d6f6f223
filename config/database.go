package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var _ Defaults = (*DatabaseConfig)(nil)
var _ Validator = (*DatabaseConfig)(nil)

const (
	DatabaseTypeSQLite   = "sqlite"
	DatabaseTypeMySQL    = "mysql"
	DatabaseTypePostgres = "postgres"
)

type DatabaseConfig struct {
	Type     string       `mapstructure:"type"`
	DSN      string       `mapstructure:"dsn"`
	File     string       `mapstructure:"file"`
	Charset  string       `mapstructure:"charset"`
	Host     string       `mapstructure:"host"`
	Name     string       `mapstructure:"name"`
	Password string       `mapstructure:"password"`
	Port     int          `mapstructure:"port"`
	Username string       `mapstructure:"username"`
	SSLMode  string       `mapstructure:"ssl_mode"`
	Cache    *CacheConfig `mapstructure:"cache"`
}

func (d DatabaseConfig) Validate() error {
	switch d.Type {
	case DatabaseTypeSQLite:
		if d.File == "" {
			return errors.New("core.db.file is required")
		}
	case DatabaseTypeMySQL, DatabaseTypePostgres:
		if d.Host == "" {
			return errors.New("core.db.host is required")
		}
		if d.Username == "" {
			return errors.New("core.db.username is required")
		}
		if d.Name == "" {
			return errors.New("core.db.name is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", d.Type)
	}

	return nil
}

func (d DatabaseConfig) Defaults() map[string]any {
	return map[string]any{
		"type":     DatabaseTypeSQLite,
		"file":     "accountd.db",
		"host":     "localhost",
		"charset":  "utf8mb4",
		"name":     "accountd",
		"ssl_mode": "disable",
	}
}

// DefaultPort returns the configured port or the driver's well-known port.
func (d DatabaseConfig) DefaultPort() int {
	if d.Port != 0 {
		return d.Port
	}

	switch d.Type {
	case DatabaseTypeMySQL:
		return 3306
	case DatabaseTypePostgres:
		return 5432
	}

	return 0
}

// resolveDSN expands a connection URL into the discrete fields. The URL wins
// over anything set individually.
func (d *DatabaseConfig) resolveDSN() error {
	if d.DSN == "" {
		return nil
	}

	u, err := url.Parse(d.DSN)
	if err != nil {
		return fmt.Errorf("core.db.dsn: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "sqlite", "sqlite3", "file":
		d.Type = DatabaseTypeSQLite
		d.File = u.Opaque
		if d.File == "" {
			d.File = u.Host + u.Path
		}
		return nil
	case "mysql", "mariadb":
		d.Type = DatabaseTypeMySQL
		if cs := u.Query().Get("charset"); cs != "" {
			d.Charset = cs
		}
	case "postgres", "postgresql":
		d.Type = DatabaseTypePostgres
		if mode := u.Query().Get("sslmode"); mode != "" {
			d.SSLMode = mode
		}
	default:
		return fmt.Errorf("core.db.dsn: unsupported scheme %q", u.Scheme)
	}

	d.Host = u.Hostname()
	d.Name = strings.TrimPrefix(u.Path, "/")

	if u.User != nil {
		d.Username = u.User.Username()
		d.Password, _ = u.User.Password()
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("core.db.dsn: invalid port %q", p)
		}
		d.Port = port
	}

	return nil
}
