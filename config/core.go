package config

import (
	"errors"
)

var _ Defaults = (*CoreConfig)(nil)
var _ Validator = (*CoreConfig)(nil)

type CoreConfig struct {
	Name string         `mapstructure:"name"`
	Port uint           `mapstructure:"port"`
	DB   DatabaseConfig `mapstructure:"db"`
	Log  LogConfig      `mapstructure:"log"`
	Auth AuthConfig     `mapstructure:"auth"`
	Mail MailConfig     `mapstructure:"mail"`
}

func (c CoreConfig) Validate() error {
	if c.Name == "" {
		return errors.New("core.name is required")
	}
	if c.Port == 0 {
		return errors.New("core.port is required")
	}

	return nil
}

func (c CoreConfig) Defaults() map[string]any {
	return map[string]any{
		"name": "accountd",
		"port": 3000,
	}
}
