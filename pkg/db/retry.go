package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
)

const defaultRetryAttempts = 3

type retryDelay time.Duration

// Retry runs fn under a bounded retry with a linearly increasing delay.
// Only connection-class failures are retried; any other error, and the
// original error after the final attempt, is returned as-is.
func (c *Client) Retry(ctx context.Context, fn func(conn *gorm.DB) error) error {
	attempts := c.attempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}

	err := retry.Do(ctx, retry.WithMaxRetries(uint64(attempts), linearBackoff(time.Duration(c.delay))), func(ctx context.Context) error {
		if err := fn(c.conn.WithContext(ctx)); err != nil {
			if IsConnectionError(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	return err
}

// linearBackoff waits base, 2*base, 3*base, ... between attempts.
func linearBackoff(base time.Duration) retry.Backoff {
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * base, false
	})
}

// IsConnectionError classifies a failure as connection-level using the typed
// errors exposed by the driver rather than message substrings.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exception; 57P01-57P03 cover server
		// shutdown and connection refusal.
		if strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		switch pgErr.Code {
		case "57P01", "57P02", "57P03":
			return true
		}
	}

	return pgconn.SafeToRetry(err)
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// optionally scoped to a named constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return false
		}
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// sqlite (tests) has no typed sqlstate surface.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a foreign-key violation,
// optionally scoped to a named constraint.
func IsForeignKeyViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23503" {
			return false
		}
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
