package config

import (
	"fmt"
	"time"
)

var _ Defaults = (*CacheConfig)(nil)
var _ Validator = (*CacheConfig)(nil)

type CacheMode string

const (
	CacheModeMemory CacheMode = "memory"
	CacheModeRedis  CacheMode = "redis"
	CacheModeNone   CacheMode = "none"
)

type CacheConfig struct {
	Mode  CacheMode     `mapstructure:"mode"`
	TTL   time.Duration `mapstructure:"ttl"`
	Redis *RedisConfig  `mapstructure:"redis"`
}

func (c CacheConfig) Defaults() map[string]any {
	return map[string]any{
		"mode": string(CacheModeNone),
		"ttl":  "5m",
	}
}

func (c CacheConfig) Validate() error {
	switch c.Mode {
	case "", CacheModeNone, CacheModeMemory:
		return nil
	case CacheModeRedis:
		if c.Redis == nil {
			return fmt.Errorf("core.db.cache.redis is required for mode %s", c.Mode)
		}
		return c.Redis.Validate()
	default:
		return fmt.Errorf("invalid cache mode: %s", c.Mode)
	}
}
