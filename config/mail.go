package config

import "errors"

var _ Defaults = (*MailConfig)(nil)
var _ Validator = (*MailConfig)(nil)

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	SSL      bool   `mapstructure:"ssl"`
	AuthType string `mapstructure:"auth_type"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

func (m MailConfig) Defaults() map[string]any {
	return map[string]any{
		"host":      "smtp.gmail.com",
		"port":      587,
		"auth_type": "plain",
	}
}

func (m MailConfig) Validate() error {
	if m.Host == "" {
		return errors.New("core.mail.host is required")
	}
	if m.Username == "" {
		return errors.New("core.mail.username is required")
	}
	if m.Password == "" {
		return errors.New("core.mail.password is required")
	}
	return nil
}

// Sender returns the From address, falling back to the SMTP account.
func (m MailConfig) Sender() string {
	if m.From != "" {
		return m.From
	}

	return m.Username
}
