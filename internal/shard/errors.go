package shard

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned, wrapped in a *ConfigError, when the shard
// count or algorithm cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError describes a rejected configuration value
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfig
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
