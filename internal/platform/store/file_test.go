// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/orvia/internal/commerce/order"
	"github.com/taibuivan/orvia/internal/platform/apperr"
	"github.com/taibuivan/orvia/internal/platform/store"
	"github.com/taibuivan/orvia/internal/users/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openTestStore(t *testing.T) (*store.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orvia.json")
	fs, err := store.Open(path, testLogger())
	require.NoError(t, err)
	return fs, path
}

/*
TestFileStore_PersistAndReload verifies that a mutated document survives a
process restart byte-for-byte in meaning.
*/
func TestFileStore_PersistAndReload(t *testing.T) {
	fs, path := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	err := fs.Mutate(func(doc *store.Document) error {
		doc.Users["u1"] = &auth.User{ID: "u1", Email: "a@x.com", CreatedAt: now}
		doc.Orders["ord-1"] = &order.Order{
			ID: "ord-1", UserID: "u1", ServiceID: "svc", ServiceName: "Svc",
			PlanName: "Plan", Price: 1000, Status: order.StatusPending,
			Source: order.DefaultSource, CreatedAt: now, UpdatedAt: now,
		}
		return nil
	})
	require.NoError(t, err)

	// Simulate restart by opening a second store over the same file.
	reopened, err := store.Open(path, testLogger())
	require.NoError(t, err)

	err = reopened.View(func(doc *store.Document) error {
		require.Contains(t, doc.Users, "u1")
		assert.Equal(t, "a@x.com", doc.Users["u1"].Email)
		require.Contains(t, doc.Orders, "ord-1")
		assert.Equal(t, int64(1000), doc.Orders["ord-1"].Price)
		assert.Equal(t, order.StatusPending, doc.Orders["ord-1"].Status)
		return nil
	})
	require.NoError(t, err)
}

/*
TestFileStore_CorruptDocumentStartsEmpty verifies the availability-over-durability
choice: a truncated or garbage document yields an empty store, not a crash.
*/
func TestFileStore_CorruptDocumentStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orvia.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users": {"u1": trunc`), 0o644))

	fs, err := store.Open(path, testLogger())
	require.NoError(t, err)

	err = fs.View(func(doc *store.Document) error {
		assert.Empty(t, doc.Users)
		assert.Empty(t, doc.Orders)
		assert.Empty(t, doc.Sessions)
		assert.Empty(t, doc.OTPChallenges)
		return nil
	})
	require.NoError(t, err)
}

/*
TestFileStore_NoTemporaryLeftovers verifies that the atomic write cleans up
its temporary files after every persist.
*/
func TestFileStore_NoTemporaryLeftovers(t *testing.T) {
	fs, path := openTestStore(t)

	for i := 0; i < 5; i++ {
		err := fs.Mutate(func(doc *store.Document) error {
			doc.Users["u1"] = &auth.User{ID: "u1", Email: "a@x.com"}
			return nil
		})
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.Contains(entry.Name(), ".tmp-"),
			"leftover temporary file: %s", entry.Name())
	}
}

/*
TestFileStore_MutateErrorSkipsPersist verifies that a failed transaction does
not rewrite the document on disk.
*/
func TestFileStore_MutateErrorSkipsPersist(t *testing.T) {
	fs, path := openTestStore(t)

	require.NoError(t, fs.Mutate(func(doc *store.Document) error {
		doc.Users["u1"] = &auth.User{ID: "u1", Email: "a@x.com"}
		return nil
	}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = fs.Mutate(func(doc *store.Document) error {
		return apperr.Conflict("boom")
	})
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

/*
TestFileStore_CleanupExpired verifies lazy reaping of expired challenges and
sessions while live entries survive.
*/
func TestFileStore_CleanupExpired(t *testing.T) {
	fs, _ := openTestStore(t)

	now := time.Now().UTC()
	require.NoError(t, fs.Mutate(func(doc *store.Document) error {
		doc.OTPChallenges["old@x.com"] = &auth.OTPChallenge{
			ID: "c1", Email: "old@x.com", ExpiresAt: now.Add(-time.Minute),
		}
		doc.OTPChallenges["live@x.com"] = &auth.OTPChallenge{
			ID: "c2", Email: "live@x.com", ExpiresAt: now.Add(time.Minute),
		}
		doc.Sessions["hash-old"] = &auth.Session{
			ID: "s1", UserID: "u1", TokenHash: "hash-old", ExpiresAt: now.Add(-time.Minute),
		}
		doc.Sessions["hash-live"] = &auth.Session{
			ID: "s2", UserID: "u1", TokenHash: "hash-live", ExpiresAt: now.Add(time.Minute),
		}
		return nil
	}))

	require.NoError(t, fs.CleanupExpired(now))

	err := fs.View(func(doc *store.Document) error {
		assert.NotContains(t, doc.OTPChallenges, "old@x.com")
		assert.Contains(t, doc.OTPChallenges, "live@x.com")
		assert.NotContains(t, doc.Sessions, "hash-old")
		assert.Contains(t, doc.Sessions, "hash-live")
		return nil
	})
	require.NoError(t, err)
}

/*
TestUserStore_Lifecycle exercises the file-backed user repository end to end.
*/
func TestUserStore_Lifecycle(t *testing.T) {
	fs, _ := openTestStore(t)
	repo := store.NewUserStore(fs)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "a@x.com")
	assert.True(t, apperr.IsNotFound(err))

	user := &auth.User{ID: "u1", Email: "a@x.com", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, user))

	// Duplicate email is a conflict even under a different id.
	err = repo.Create(ctx, &auth.User{ID: "u2", Email: "a@x.com"})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	found, err := repo.FindByEmail(ctx, "  A@X.COM  ")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)

	found.FullName = "Alpha"
	require.NoError(t, repo.Update(ctx, found))

	byID, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", byID.FullName)

	err = repo.Update(ctx, &auth.User{ID: "ghost"})
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestChallengeStore_SingleActivePerEmail verifies that storing a new challenge
supersedes the previous one for the same email.
*/
func TestChallengeStore_SingleActivePerEmail(t *testing.T) {
	fs, _ := openTestStore(t)
	repo := store.NewChallengeStore(fs)
	ctx := context.Background()

	first := &auth.OTPChallenge{ID: "c1", Email: "a@x.com", CodeHash: "h1"}
	second := &auth.OTPChallenge{ID: "c2", Email: "a@x.com", CodeHash: "h2"}

	require.NoError(t, repo.Upsert(ctx, first))
	require.NoError(t, repo.Upsert(ctx, second))

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "c2", found.ID)

	require.NoError(t, repo.Delete(ctx, "a@x.com"))
	_, err = repo.FindByEmail(ctx, "a@x.com")
	assert.True(t, apperr.IsNotFound(err))

	// Deleting an absent challenge is not an error.
	assert.NoError(t, repo.Delete(ctx, "a@x.com"))
}

/*
TestChallengeStore_ChargeAndReplace exercises the transactional operations:
Replace refuses a too-young predecessor, and Charge classifies mismatch,
lock-out, consumption, and expiry while charging one attempt per call.
*/
func TestChallengeStore_ChargeAndReplace(t *testing.T) {
	fs, _ := openTestStore(t)
	repo := store.NewChallengeStore(fs)
	ctx := context.Background()
	now := time.Now().UTC()

	wrongCode := func(*auth.OTPChallenge) bool { return false }

	first := &auth.OTPChallenge{ID: "c1", Email: "a@x.com", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)}
	require.NoError(t, repo.Replace(ctx, first, time.Minute))

	tooSoon := &auth.OTPChallenge{ID: "c2", Email: "a@x.com", CreatedAt: now.Add(10 * time.Second)}
	err := repo.Replace(ctx, tooSoon, time.Minute)
	require.Error(t, err)
	assert.Equal(t, "RATE_LIMITED", apperr.As(err).Code)

	// The refused replacement left the original untouched.
	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "c1", found.ID)

	later := &auth.OTPChallenge{ID: "c3", Email: "a@x.com", CreatedAt: now.Add(2 * time.Minute), ExpiresAt: now.Add(12 * time.Minute)}
	require.NoError(t, repo.Replace(ctx, later, time.Minute))

	// Wrong codes charge one attempt each until the ceiling consumes it.
	_, outcome, err := repo.Charge(ctx, "a@x.com", now, 2, wrongCode)
	require.NoError(t, err)
	assert.Equal(t, auth.ChargeMismatch, outcome)

	_, outcome, err = repo.Charge(ctx, "a@x.com", now, 2, wrongCode)
	require.NoError(t, err)
	assert.Equal(t, auth.ChargeLocked, outcome)

	_, _, err = repo.Charge(ctx, "a@x.com", now, 2, wrongCode)
	assert.True(t, apperr.IsNotFound(err))

	// A matching attempt consumes the challenge and hands back a copy.
	fresh := &auth.OTPChallenge{ID: "c4", Email: "b@x.com", PendingFullName: "Beta", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)}
	require.NoError(t, repo.Upsert(ctx, fresh))

	consumed, outcome, err := repo.Charge(ctx, "b@x.com", now, 2, func(*auth.OTPChallenge) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, auth.ChargeMatched, outcome)
	require.NotNil(t, consumed)
	assert.Equal(t, "Beta", consumed.PendingFullName)
	assert.Equal(t, 1, consumed.Attempts)

	_, err = repo.FindByEmail(ctx, "b@x.com")
	assert.True(t, apperr.IsNotFound(err))

	// An expired challenge is consumed by the attempt itself.
	stale := &auth.OTPChallenge{ID: "c5", Email: "c@x.com", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, repo.Upsert(ctx, stale))

	_, outcome, err = repo.Charge(ctx, "c@x.com", now, 2, wrongCode)
	require.NoError(t, err)
	assert.Equal(t, auth.ChargeExpired, outcome)

	_, err = repo.FindByEmail(ctx, "c@x.com")
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestOrderStore_ListOrdering verifies newest-first ordering for both owner and
admin listings.
*/
func TestOrderStore_ListOrdering(t *testing.T) {
	fs, _ := openTestStore(t)
	repo := store.NewOrderStore(fs)
	ctx := context.Background()

	base := time.Now().UTC()
	mk := func(id, userID string, age time.Duration) *order.Order {
		return &order.Order{
			ID: id, UserID: userID, ServiceID: "svc", ServiceName: "Svc",
			PlanName: "Plan", Status: order.StatusPending, Source: order.DefaultSource,
			CreatedAt: base.Add(-age), UpdatedAt: base.Add(-age),
		}
	}

	require.NoError(t, repo.Create(ctx, mk("ord-a", "u1", 2*time.Hour)))
	require.NoError(t, repo.Create(ctx, mk("ord-b", "u2", time.Hour)))
	require.NoError(t, repo.Create(ctx, mk("ord-c", "u1", 0)))

	mine, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "ord-c", mine[0].ID)
	assert.Equal(t, "ord-a", mine[1].ID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ord-c", all[0].ID)
	assert.Equal(t, "ord-a", all[2].ID)

	none, err := repo.ListByUser(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, none)
}
