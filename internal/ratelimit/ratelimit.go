// Package ratelimit counts failed authentication attempts per client identifier
// and blocks an identifier for a cooldown once it reaches the attempt ceiling.
// Code logins and admin logins each get their own Limiter so the two counters
// never share state.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"strings"
	"time"
)

// Record is the attempt state kept for one identifier
type Record struct {
	Count        int       `json:"count"`
	WindowEndsAt time.Time `json:"windowEndsAt"`
	BlockedUntil time.Time `json:"blockedUntil,omitempty"`
}

// Store persists attempt records. Get returns (nil, nil) when no record exists.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Put(ctx context.Context, key string, rec *Record, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Clock abstracts time for tests
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// Policy configures one limiter
type Policy struct {
	Name        string
	MaxAttempts int
	Window      time.Duration
	// Cooldown is how long an identifier stays blocked; defaults to Window.
	Cooldown time.Duration
}

// PinPolicy is 5 failures per 15 minutes
func PinPolicy() Policy {
	return Policy{Name: "pin", MaxAttempts: 5, Window: 15 * time.Minute}
}

// AdminPolicy is 3 failures per 30 minutes
func AdminPolicy() Policy {
	return Policy{Name: "admin", MaxAttempts: 3, Window: 30 * time.Minute}
}

// LimitedError is returned while an identifier is blocked
type LimitedError struct {
	BlockedUntil time.Time
	Remaining    time.Duration
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("rate limited for %s", e.Remaining.Round(time.Second))
}

// RemainingMinutes rounds the remaining lockout up to whole minutes
func (e *LimitedError) RemainingMinutes() int {
	return int(math.Ceil(e.Remaining.Minutes()))
}

// RetryAfterSeconds rounds the remaining lockout up to whole seconds
func (e *LimitedError) RetryAfterSeconds() int {
	return int(math.Ceil(e.Remaining.Seconds()))
}

// Limiter enforces a Policy against a Store
type Limiter struct {
	store  Store
	policy Policy
	clock  Clock
}

// Option customizes a Limiter
type Option func(*Limiter)

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// New creates a Limiter
func New(store Store, policy Policy, opts ...Option) *Limiter {
	if policy.Cooldown <= 0 {
		policy.Cooldown = policy.Window
	}
	l := &Limiter{store: store, policy: policy, clock: SystemClock}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the limiter's configuration
func (l *Limiter) Policy() Policy {
	return l.policy
}

// Check returns a *LimitedError if id is currently blocked
func (l *Limiter) Check(ctx context.Context, id string) error {
	key := l.key(id)
	rec, err := l.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load attempts: %w", err)
	}
	if rec == nil {
		return nil
	}

	now := l.clock.Now()
	if rec.BlockedUntil.After(now) {
		return &LimitedError{BlockedUntil: rec.BlockedUntil, Remaining: rec.BlockedUntil.Sub(now)}
	}
	if now.After(rec.WindowEndsAt) {
		if err := l.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("drop stale attempts: %w", err)
		}
	}
	return nil
}

// Fail records a failed attempt for id and starts the cooldown once the
// ceiling is reached
func (l *Limiter) Fail(ctx context.Context, id string) error {
	key := l.key(id)
	rec, err := l.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load attempts: %w", err)
	}

	now := l.clock.Now()
	if rec == nil || (now.After(rec.WindowEndsAt) && !rec.BlockedUntil.After(now)) {
		rec = &Record{WindowEndsAt: now.Add(l.policy.Window)}
	}
	rec.Count++
	if rec.Count >= l.policy.MaxAttempts {
		rec.BlockedUntil = now.Add(l.policy.Cooldown)
	}

	ttl := rec.WindowEndsAt.Sub(now)
	if until := rec.BlockedUntil.Sub(now); until > ttl {
		ttl = until
	}
	if err := l.store.Put(ctx, key, rec, ttl); err != nil {
		return fmt.Errorf("save attempts: %w", err)
	}
	return nil
}

// Reset clears the attempt record after a successful login
func (l *Limiter) Reset(ctx context.Context, id string) error {
	if err := l.store.Delete(ctx, l.key(id)); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

// key hashes the identifier so raw client fingerprints never reach the store
func (l *Limiter) key(id string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(id)))
	return fmt.Sprintf("rate:%s:%x", l.policy.Name, sum[:8])
}
