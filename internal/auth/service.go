// internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"time"

	"gatelog/internal/audit"
	"gatelog/internal/database"

	"golang.org/x/crypto/bcrypt"
)

// DefaultFailureDelay is how long a failed attempt blocks its own
// request before the response is written.
const DefaultFailureDelay = 3 * time.Second

// Result is the outcome of one login attempt as seen by the HTTP layer.
type Result struct {
	OK       bool
	Username string
	Reason   string
	Delay    time.Duration
}

// Service verifies credentials against the store, throttles failures
// with a fixed delay, and writes one attempt record per login.
type Service struct {
	db           *database.DB
	attempts     *audit.Logger
	failureDelay time.Duration
}

// NewService wires the store and attempt logger together. A
// non-positive failureDelay falls back to DefaultFailureDelay.
func NewService(db *database.DB, attempts *audit.Logger, failureDelay time.Duration) *Service {
	if failureDelay <= 0 {
		failureDelay = DefaultFailureDelay
	}
	return &Service{
		db:           db,
		attempts:     attempts,
		failureDelay: failureDelay,
	}
}

// Login checks the submitted credentials. A failed attempt sleeps the
// fixed delay on this request's goroutine only, then both outcomes are
// appended to the attempt log. Store errors other than a missing
// record are returned as-is and abort the request without a record,
// matching the store's fatal-failure semantics.
func (s *Service) Login(ctx context.Context, username, password, clientIP string) (*Result, error) {
	ok := false
	user, err := s.db.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		verify := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
		ok = verify == nil
	case errors.Is(err, database.ErrNotFound):
		// An unknown username takes the same path as a wrong password.
	default:
		return nil, err
	}

	res := &Result{OK: ok, Username: username}
	if ok {
		res.Reason = "login successful"
	} else {
		res.Reason = ErrInvalidCredentials.Error()
		res.Delay = s.failureDelay
		sleep(ctx, s.failureDelay)
	}

	rec := audit.NewRecord(clientIP, username, outcome(ok), res.Reason, res.Delay)
	if err := s.attempts.Record(rec); err != nil {
		return nil, err
	}
	return res, nil
}

func outcome(ok bool) audit.Result {
	if ok {
		return audit.ResultSuccess
	}
	return audit.ResultFailure
}

// sleep blocks for d or until the request context is done. A client
// that disconnects mid-delay stops being waited on; the attempt is
// still recorded with the configured delay.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
