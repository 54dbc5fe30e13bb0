package auth

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gatelog/internal/audit"
	"gatelog/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDelay keeps failure throttling measurable without slowing the suite.
const testDelay = 250 * time.Millisecond

type fixture struct {
	db       *database.DB
	attempts *audit.Logger
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), database.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	attempts, err := audit.NewLogger(t.TempDir(), audit.FailOpen, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { attempts.Close() })

	return &fixture{
		db:       db,
		attempts: attempts,
		service:  NewService(db, attempts, testDelay),
	}
}

func (f *fixture) records(t *testing.T) []audit.Record {
	t.Helper()
	data, err := os.ReadFile(f.attempts.Path())
	require.NoError(t, err)

	var records []audit.Record
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec audit.Record
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestEnsureSeedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, EnsureSeedUser(ctx, f.db, nil))

	user, err := f.db.GetUserByUsername(ctx, SeedUsername)
	require.NoError(t, err)
	assert.Equal(t, SeedUsername, user.Username)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestEnsureSeedUser_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, EnsureSeedUser(ctx, f.db, nil))
	first, err := f.db.GetUserByUsername(ctx, SeedUsername)
	require.NoError(t, err)

	// Second run must neither duplicate the record nor rewrite the hash
	require.NoError(t, EnsureSeedUser(ctx, f.db, nil))

	count, err := f.db.UserCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	second, err := f.db.GetUserByUsername(ctx, SeedUsername)
	require.NoError(t, err)
	assert.Equal(t, first.PasswordHash, second.PasswordHash)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, EnsureSeedUser(ctx, f.db, nil))

	result, err := f.service.Login(ctx, SeedUsername, SeedPassword, "127.0.0.1")

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, SeedUsername, result.Username)
	assert.Zero(t, result.Delay)

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, audit.ResultSuccess, records[0].Result)
	assert.Equal(t, SeedUsername, records[0].AttemptedUsername)
	assert.Equal(t, "127.0.0.1", records[0].IPAddress)
	assert.Equal(t, 0.0, records[0].DelayS)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, EnsureSeedUser(ctx, f.db, nil))

	start := time.Now()
	result, err := f.service.Login(ctx, SeedUsername, "wrong", "127.0.0.1")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, ErrInvalidCredentials.Error(), result.Reason)
	assert.GreaterOrEqual(t, elapsed, testDelay, "failure must be delayed")

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, audit.ResultFailure, records[0].Result)
	assert.Equal(t, testDelay.Seconds(), records[0].DelayS)
}

func TestLogin_UnknownUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, EnsureSeedUser(ctx, f.db, nil))

	start := time.Now()
	result, err := f.service.Login(ctx, "ghost", "anything", "10.0.0.9")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.GreaterOrEqual(t, elapsed, testDelay)

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "ghost", records[0].AttemptedUsername)
	assert.Equal(t, "10.0.0.9", records[0].IPAddress)
}

func TestLogin_UnknownUserMatchesWrongPassword(t *testing.T) {
	// Username enumeration defense: both failure modes must be
	// indistinguishable in the result and the record reason.
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, EnsureSeedUser(ctx, f.db, nil))

	wrongPass, err := f.service.Login(ctx, SeedUsername, "wrong", "127.0.0.1")
	require.NoError(t, err)
	unknownUser, err := f.service.Login(ctx, "ghost", "anything", "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, wrongPass.Reason, unknownUser.Reason)
	assert.Equal(t, wrongPass.Delay, unknownUser.Delay)

	records := f.records(t)
	require.Len(t, records, 2)
	assert.Equal(t, records[0].Reason, records[1].Reason)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, EnsureSeedUser(ctx, f.db, nil))

	result, err := f.service.Login(ctx, "", "", "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, ErrInvalidCredentials.Error(), result.Reason)
}

func TestLogin_OneRecordPerAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, EnsureSeedUser(ctx, f.db, nil))

	_, err := f.service.Login(ctx, SeedUsername, SeedPassword, "127.0.0.1")
	require.NoError(t, err)
	_, err = f.service.Login(ctx, SeedUsername, "wrong", "127.0.0.1")
	require.NoError(t, err)
	_, err = f.service.Login(ctx, "ghost", "x", "127.0.0.1")
	require.NoError(t, err)

	assert.Len(t, f.records(t), 3)
}

func TestLogin_CanceledContextSkipsDelay(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, EnsureSeedUser(context.Background(), f.db, nil))

	// Deadline fires after the lookup but well inside the delay window
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := f.service.Login(ctx, "ghost", "x", "127.0.0.1")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Less(t, elapsed, testDelay)

	// The attempt is still recorded with the configured delay
	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, testDelay.Seconds(), records[0].DelayS)
}

func TestHashPassword_Verifiable(t *testing.T) {
	hash, err := HashPassword("aaay")
	require.NoError(t, err)
	assert.NotEqual(t, "aaay", hash)

	// Two hashes of the same password differ (salted)
	other, err := HashPassword("aaay")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}
