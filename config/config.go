package config

import "go.uber.org/zap"

// Defaults is implemented by config sections that ship default values.
// Keys are relative to the section's own prefix.
type Defaults interface {
	Defaults() map[string]any
}

// Validator is implemented by config sections that can reject a loaded value.
type Validator interface {
	Validate() error
}

type Manager interface {
	// Init loads, defaults, decodes and validates the configuration.
	Init() error

	// Config returns the decoded configuration. It is nil until Init succeeds.
	Config() *Config

	// ConfigFile returns the file the configuration was loaded from, if any.
	ConfigFile() string

	// ConfigDir returns the directory relative paths are resolved against.
	ConfigDir() string

	// Save writes the file-backed configuration back to disk.
	Save() error

	SetLogger(logger *zap.Logger)
}

type Config struct {
	Core CoreConfig `mapstructure:"core"`
}
