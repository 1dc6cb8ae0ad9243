package retry

// This code follows: https://github.com/gruntwork-io/terratest/blob/master/modules/retry/retry.go

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// DoWithRetry runs the specified action. If it returns an error, sleep for
// sleepBetweenRetries and try again, up to a maximum of maxRetries retries.
// A FatalError stops retrying immediately, and so does ctx cancellation.
// If maxRetries is exceeded, return a MaxRetriesExceeded error.
func DoWithRetry(ctx context.Context, actionDescription string, maxRetries int, sleepBetweenRetries time.Duration, logger *logrus.Entry, action func(attempt int) error) error {
	for i := 0; i <= maxRetries; i++ {
		err := action(i)
		if err == nil {
			return nil
		}

		if fatal, ok := err.(FatalError); ok {
			return fatal.Underlying
		}

		// don't sleep after the final retry attempt
		if i < maxRetries {
			logger.WithError(err).Warningf("%s returned an error: %s. Sleeping for %s and will try again. Retry Count: %v.", actionDescription, err.Error(), sleepBetweenRetries, i)

			select {
			case <-time.After(sleepBetweenRetries):
			case <-ctx.Done():
				return ctx.Err()
			}
		} else {
			logger.WithError(err).Warningf("%s returned an error: %s. Retry Count: %v.", actionDescription, err.Error(), i)
		}
	}

	return MaxRetriesExceeded{Description: actionDescription, MaxRetries: maxRetries}
}

// MaxRetriesExceeded is an error that occurs when the maximum amount of retries is exceeded.
type MaxRetriesExceeded struct {
	Description string
	MaxRetries  int
}

func (err MaxRetriesExceeded) Error() string {
	return fmt.Sprintf("'%s' unsuccessful after %d retries", err.Description, err.MaxRetries)
}

// FatalError wraps an error the action knows is not transient, stopping
// further attempts
type FatalError struct {
	Underlying error
}

func (err FatalError) Error() string {
	return fmt.Sprintf("FatalError{Underlying: %v}", err.Underlying)
}
