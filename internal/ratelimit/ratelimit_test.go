package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(p Policy) (*Limiter, *fakeClock, *MemoryStore) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	return New(store, p, WithClock(clk)), clk, store
}

func TestLimiter_BlocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLimiter(AdminPolicy())

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Check(ctx, "client-a"), "attempt %d should be allowed", i+1)
		require.NoError(t, l.Fail(ctx, "client-a"))
	}

	err := l.Check(ctx, "client-a")
	var limited *LimitedError
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, 30*time.Minute, limited.Remaining)
	assert.Equal(t, 30, limited.RemainingMinutes())
	assert.Equal(t, 1800, limited.RetryAfterSeconds())
}

func TestLimiter_IdentifiersAreIndependent(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLimiter(AdminPolicy())

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Fail(ctx, "client-a"))
	}
	assert.Error(t, l.Check(ctx, "client-a"))
	assert.NoError(t, l.Check(ctx, "client-b"))
}

func TestLimiter_PoliciesDoNotShareState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	pin := New(store, PinPolicy())
	admin := New(store, AdminPolicy())

	for i := 0; i < 3; i++ {
		require.NoError(t, admin.Fail(ctx, "same-client"))
	}
	assert.Error(t, admin.Check(ctx, "same-client"))
	assert.NoError(t, pin.Check(ctx, "same-client"))
}

func TestLimiter_CooldownExpires(t *testing.T) {
	ctx := context.Background()
	l, clk, _ := newTestLimiter(PinPolicy())

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Fail(ctx, "c"))
	}
	require.Error(t, l.Check(ctx, "c"))

	clk.Advance(14 * time.Minute)
	var limited *LimitedError
	require.ErrorAs(t, l.Check(ctx, "c"), &limited)
	assert.Equal(t, 1, limited.RemainingMinutes())

	clk.Advance(time.Minute + time.Second)
	assert.NoError(t, l.Check(ctx, "c"))

	// A fresh failure after the cooldown starts a new window at count 1.
	require.NoError(t, l.Fail(ctx, "c"))
	assert.NoError(t, l.Check(ctx, "c"))
}

func TestLimiter_WindowResetsCount(t *testing.T) {
	ctx := context.Background()
	l, clk, store := newTestLimiter(AdminPolicy())

	require.NoError(t, l.Fail(ctx, "c"))
	require.NoError(t, l.Fail(ctx, "c"))
	clk.Advance(31 * time.Minute)

	require.NoError(t, l.Check(ctx, "c"))
	assert.Equal(t, 0, store.Len(), "stale record should be dropped")

	require.NoError(t, l.Fail(ctx, "c"))
	require.NoError(t, l.Fail(ctx, "c"))
	assert.NoError(t, l.Check(ctx, "c"))
}

func TestLimiter_ResetClearsFailures(t *testing.T) {
	ctx := context.Background()
	l, _, store := newTestLimiter(AdminPolicy())

	require.NoError(t, l.Fail(ctx, "c"))
	require.NoError(t, l.Fail(ctx, "c"))
	require.NoError(t, l.Reset(ctx, "c"))
	assert.Equal(t, 0, store.Len())

	require.NoError(t, l.Fail(ctx, "c"))
	require.NoError(t, l.Fail(ctx, "c"))
	assert.NoError(t, l.Check(ctx, "c"))
}

func TestLimiter_CustomCooldown(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLimiter(Policy{Name: "x", MaxAttempts: 1, Window: time.Minute, Cooldown: time.Hour})

	require.NoError(t, l.Fail(ctx, "c"))
	var limited *LimitedError
	require.ErrorAs(t, l.Check(ctx, "c"), &limited)
	assert.Equal(t, time.Hour, limited.Remaining)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*Record, error) {
	return nil, errors.New("boom")
}
func (brokenStore) Put(context.Context, string, *Record, time.Duration) error {
	return errors.New("boom")
}
func (brokenStore) Delete(context.Context, string) error { return errors.New("boom") }

func TestLimiter_StoreErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	l := New(brokenStore{}, PinPolicy())

	err := l.Check(ctx, "c")
	require.Error(t, err)
	var limited *LimitedError
	assert.False(t, errors.As(err, &limited))
	assert.Contains(t, err.Error(), "load attempts")

	assert.Error(t, l.Fail(ctx, "c"))
	assert.Error(t, l.Reset(ctx, "c"))
}

func TestLimiter_KeyHidesIdentifier(t *testing.T) {
	l, _, _ := newTestLimiter(PinPolicy())
	k := l.key("fingerprint-123")
	assert.NotContains(t, k, "fingerprint")
	assert.Equal(t, k, l.key("  fingerprint-123 "))
	assert.Contains(t, k, "rate:pin:")
}
