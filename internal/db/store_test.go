package db

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func setupStore(t *testing.T, policy RetryPolicy) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store.db")
	conn, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	t.Cleanup(func() {
		if closeErr := Close(conn); closeErr != nil {
			t.Errorf("closing database failed: %v", closeErr)
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := NewStore(conn, policy, logger)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	return store
}

func TestNewStoreRequiresConnection(t *testing.T) {
	t.Parallel()

	if _, err := NewStore(nil, RetryPolicy{}, nil); err == nil {
		t.Fatalf("expected error when connection is nil")
	}
}

func TestReadRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	store := setupStore(t, RetryPolicy{MaxAttempts: 3, InitialBackoff: 5 * time.Millisecond})

	attempts := 0
	err := store.Read(context.Background(), "test.read", func(tx *gorm.DB) error {
		attempts++
		if attempts < 3 {
			return sqlite3.Error{Code: sqlite3.ErrBusy}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestWritePropagatesAfterExhaustingRetries(t *testing.T) {
	t.Parallel()

	store := setupStore(t, RetryPolicy{MaxAttempts: 3, InitialBackoff: 100 * time.Millisecond})

	attempts := 0
	start := time.Now()
	err := store.Write(context.Background(), "test.write", func(tx *gorm.DB) error {
		attempts++
		return sqlite3.Error{Code: sqlite3.ErrBusy}
	})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if !IsTransient(err) {
		t.Fatalf("expected the last transient error to propagate, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	// Backoff doubles: 100ms after the first failure, 200ms after the second.
	if elapsed < 300*time.Millisecond {
		t.Fatalf("expected at least 300ms of backoff, got %s", elapsed)
	}
}

func TestWriteDoesNotRetryStructuralErrors(t *testing.T) {
	t.Parallel()

	store := setupStore(t, RetryPolicy{MaxAttempts: 3, InitialBackoff: 5 * time.Millisecond})

	structural := eris.New("no such table: missing")
	attempts := 0
	err := store.Write(context.Background(), "test.structural", func(tx *gorm.DB) error {
		attempts++
		return structural
	})

	if !eris.Is(err, structural) {
		t.Fatalf("expected structural error to propagate unchanged, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestWriteDoesNotRetryConstraintViolations(t *testing.T) {
	t.Parallel()

	store := setupStore(t, RetryPolicy{MaxAttempts: 3, InitialBackoff: 5 * time.Millisecond})

	attempts := 0
	err := store.Write(context.Background(), "test.constraint", func(tx *gorm.DB) error {
		attempts++
		return sqlite3.Error{Code: sqlite3.ErrConstraint}
	})

	if !IsConstraint(err) {
		t.Fatalf("expected constraint error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestDoAbortsBackoffWhenContextCancelled(t *testing.T) {
	t.Parallel()

	store := setupStore(t, RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := store.Read(ctx, "test.cancel", func(tx *gorm.DB) error {
		return sqlite3.Error{Code: sqlite3.ErrBusy}
	})

	if err == nil {
		t.Fatalf("expected error when context is cancelled during backoff")
	}
	if !eris.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("cancellation did not interrupt the backoff sleep")
	}
}

func TestQueryGetOneExecuteRoundTrip(t *testing.T) {
	t.Parallel()

	store := setupStore(t, RetryPolicy{})
	ctx := context.Background()

	if _, err := store.Execute(ctx, "test.create", "CREATE TABLE notes (id TEXT PRIMARY KEY, body TEXT)"); err != nil {
		t.Fatalf("creating table failed: %v", err)
	}

	res, err := store.Execute(ctx, "test.insert", "INSERT INTO notes (id, body) VALUES (?, ?), (?, ?)", "a", "first", "b", "second")
	if err != nil {
		t.Fatalf("inserting rows failed: %v", err)
	}
	if res.RowsAffected != 2 {
		t.Fatalf("expected 2 rows affected, got %d", res.RowsAffected)
	}

	type note struct {
		ID   string
		Body string
	}

	var rows []note
	if err := store.Query(ctx, "test.query", &rows, "SELECT id, body FROM notes ORDER BY id"); err != nil {
		t.Fatalf("querying rows failed: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "a" || rows[1].Body != "second" {
		t.Fatalf("unexpected rows: %#v", rows)
	}

	var single note
	found, err := store.GetOne(ctx, "test.getone", &single, "SELECT id, body FROM notes WHERE id = ?", "a")
	if err != nil {
		t.Fatalf("GetOne failed: %v", err)
	}
	if !found || single.Body != "first" {
		t.Fatalf("expected to find row a, got found=%v row=%#v", found, single)
	}

	found, err = store.GetOne(ctx, "test.getone.missing", &single, "SELECT id, body FROM notes WHERE id = ?", "zzz")
	if err != nil {
		t.Fatalf("GetOne for missing row failed: %v", err)
	}
	if found {
		t.Fatalf("expected missing row to report found=false")
	}
}
