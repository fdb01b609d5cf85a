package rag

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPrompt       = errors.New("prompt must not be empty")
	ErrMissingCredential = errors.New("search API credential is not set")
	ErrSessionBusy       = errors.New("session is busy with another request")
)

// ConfigError is a fatal configuration problem. The chat cannot continue
// until the configuration or environment is fixed.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err is a ConfigError
func IsFatal(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
