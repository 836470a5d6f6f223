package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/crypto/bcrypt"
)

var _ Defaults = (*AuthConfig)(nil)
var _ Validator = (*AuthConfig)(nil)

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTExpiresIn time.Duration `mapstructure:"jwt_expires_in"`
	BcryptCost   int           `mapstructure:"bcrypt_cost"`
}

func (a AuthConfig) Defaults() map[string]any {
	return map[string]any{
		"jwt_expires_in": "24h",
		"bcrypt_cost":    10,
	}
}

func (a AuthConfig) Validate() error {
	if a.JWTSecret == "" {
		return errors.New("core.auth.jwt_secret is required")
	}
	if a.JWTExpiresIn <= 0 {
		return errors.New("core.auth.jwt_expires_in must be positive")
	}
	if a.BcryptCost < bcrypt.MinCost || a.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("core.auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return nil
}

// ParseExpiry parses token lifetimes. It accepts Go durations ("90m"),
// whole seconds ("3600") and day counts ("7d").
func ParseExpiry(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty duration")
	}

	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", value, err)
		}
		return time.Duration(n * float64(24*time.Hour)), nil
	}

	return time.ParseDuration(value)
}

func expiryHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))

	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != durationType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ParseExpiry(v)
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		}

		return data, nil
	}
}
