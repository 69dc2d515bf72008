package db

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RetryPolicy bounds how store operations respond to transient contention.
// The backoff delay doubles after every failed attempt.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 100 * time.Millisecond
)

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = defaultInitialBackoff
	}
	return p
}

// Store wraps a shared Gorm connection and applies the retry policy to every
// read and write. It is the single entry point for store access; callers must
// treat each operation as potentially blocking through store I/O and backoff
// sleeps.
type Store struct {
	conn   *gorm.DB
	policy RetryPolicy
	logger *logrus.Logger
}

// ExecResult reports the outcome of a write statement.
type ExecResult struct {
	RowsAffected int64
}

// NewStore constructs a retry-wrapping store over an open Gorm connection.
func NewStore(conn *gorm.DB, policy RetryPolicy, logger *logrus.Logger) (*Store, error) {
	if conn == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &Store{conn: conn, policy: policy.withDefaults(), logger: logger}, nil
}

// DB exposes the wrapped Gorm connection for schema migration and tests.
func (s *Store) DB() *gorm.DB {
	return s.conn
}

// Read runs fn against the store under the retry policy. The closure may use
// the full Gorm query API; it must be safe to invoke more than once.
func (s *Store) Read(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	return s.do(ctx, operation, fn)
}

// Write runs fn against the store under the retry policy.
func (s *Store) Write(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	return s.do(ctx, operation, fn)
}

// Query executes a raw statement and scans all resulting rows into dest.
func (s *Store) Query(ctx context.Context, operation string, dest any, statement string, args ...any) error {
	return s.do(ctx, operation, func(tx *gorm.DB) error {
		return tx.Raw(statement, args...).Scan(dest).Error
	})
}

// GetOne executes a raw statement expected to yield at most one row. The
// returned flag reports whether a row was found; absence is not an error.
func (s *Store) GetOne(ctx context.Context, operation string, dest any, statement string, args ...any) (bool, error) {
	found := false
	err := s.do(ctx, operation, func(tx *gorm.DB) error {
		result := tx.Raw(statement, args...).Scan(dest)
		if result.Error != nil {
			return result.Error
		}
		found = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Execute runs a raw write statement and reports the affected row count.
func (s *Store) Execute(ctx context.Context, operation string, statement string, args ...any) (ExecResult, error) {
	var res ExecResult
	err := s.do(ctx, operation, func(tx *gorm.DB) error {
		result := tx.Exec(statement, args...)
		if result.Error != nil {
			return result.Error
		}
		res.RowsAffected = result.RowsAffected
		return nil
	})
	if err != nil {
		return ExecResult{}, err
	}
	return res, nil
}

// do retries fn on transient busy/locked failures with doubling backoff.
// Structural errors and constraint violations propagate immediately; after the
// final attempt the last observed error propagates unchanged.
func (s *Store) do(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	delay := s.policy.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		lastErr = fn(s.conn.WithContext(ctx))
		if lastErr == nil {
			return nil
		}

		if !IsTransient(lastErr) {
			s.logError(logrus.Fields{
				"operation": operation,
				"attempt":   attempt,
			}, lastErr, "store operation failed")
			return lastErr
		}

		if attempt == s.policy.MaxAttempts {
			break
		}

		s.logWarn(logrus.Fields{
			"operation": operation,
			"attempt":   attempt,
			"delay_ms":  delay.Milliseconds(),
		}, lastErr, "store busy, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return eris.Wrapf(ctx.Err(), "waiting to retry store operation: %s", operation)
		}
		delay *= 2
	}

	s.logError(logrus.Fields{
		"operation": operation,
		"attempts":  s.policy.MaxAttempts,
	}, lastErr, "store retries exhausted")

	return lastErr
}

func (s *Store) logWarn(fields logrus.Fields, err error, message string) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(fields).WithField("error", err.Error()).Warn(message)
}

func (s *Store) logError(fields logrus.Fields, err error, message string) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(fields).WithField("error", err.Error()).Error(message)
}
