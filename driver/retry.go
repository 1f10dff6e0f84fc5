package driver

import (
	"context"
	stderrs "errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the retrying of calls that fail with *TryAgainError.
type RetryPolicy struct {
	Initial     time.Duration
	MaxInterval time.Duration
	MaxRetries  uint64
}

// DefaultRetry is the policy used when none is configured.
var DefaultRetry = RetryPolicy{
	Initial:     500 * time.Millisecond,
	MaxInterval: 30 * time.Second,
	MaxRetries:  10,
}

// Call invokes fn,
// retrying it with exponential backoff for as long as it fails with a *TryAgainError
// and the policy allows.
// A panic in fn is returned as a *DriverError.
// When retries run out, the result is the last *TryAgainError.
func (p RetryPolicy) Call(ctx context.Context, fn func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.Initial
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, p.MaxRetries), ctx)

	return backoff.Retry(
		func() error {
			err := safeCall(fn)
			var ta *TryAgainError
			if err == nil || stderrs.As(err, &ta) {
				return err
			}
			return backoff.Permanent(err)
		},
		b,
	)
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DriverError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return fn()
}
