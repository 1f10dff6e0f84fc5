package driver

import (
	"fmt"
)

// ConfigError is a bad or missing adapter option.
// It is fatal at startup and never retried.
type ConfigError struct {
	Option string
	Msg    string
}

func (e *ConfigError) Error() string {
	if e.Option == "" {
		return "configuration error: " + e.Msg
	}
	return fmt.Sprintf("configuration error: option %s: %s", e.Option, e.Msg)
}

// ServiceError means the remote backend was unreachable or rejected a call.
// It aborts the current operation.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string { return "service error: " + e.Err.Error() }
func (e *ServiceError) Unwrap() error { return e.Err }

// ServiceErrorf produces a *ServiceError.
func ServiceErrorf(format string, args ...interface{}) error {
	return &ServiceError{Err: fmt.Errorf(format, args...)}
}

// DriverError is a fatal condition detected by the adapter,
// such as a remote id it cannot resolve.
// It aborts the current operation.
type DriverError struct {
	Err error
}

func (e *DriverError) Error() string { return "driver error: " + e.Err.Error() }
func (e *DriverError) Unwrap() error { return e.Err }

// DriverErrorf produces a *DriverError.
func DriverErrorf(format string, args ...interface{}) error {
	return &DriverError{Err: fmt.Errorf(format, args...)}
}

// TryAgainError is an explicitly transient failure, such as rate limiting.
// The hub retries the same call after a delay.
type TryAgainError struct {
	Err error
}

func (e *TryAgainError) Error() string { return "try again: " + e.Err.Error() }
func (e *TryAgainError) Unwrap() error { return e.Err }

// TryAgain wraps err as a *TryAgainError.
func TryAgain(err error) error {
	return &TryAgainError{Err: err}
}
