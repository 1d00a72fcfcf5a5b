package cache

import (
	"context"
	"testing"
	"time"

	"streamgate/internal/model"
	"streamgate/internal/ratelimit"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewSessionCache(client)

	got, err := c.Get(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.Nil(t, got)

	expiry := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	state := &model.MarkerState{CodeID: "1", Marker: "m1", IsActive: true, ExpiryDate: expiry, Version: 3}
	require.NoError(t, c.Set(ctx, "ABCD1234", state))

	assert.True(t, mr.Exists("marker:ABCD1234"))
	assert.Equal(t, markerTTL, mr.TTL("marker:ABCD1234"))

	got, err = c.Get(ctx, "ABCD1234")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1", got.CodeID)
	assert.Equal(t, "m1", got.Marker)
	assert.True(t, got.IsActive)
	assert.True(t, expiry.Equal(got.ExpiryDate))
	assert.Equal(t, int64(3), got.Version)

	require.NoError(t, c.Delete(ctx, "ABCD1234"))
	got, err = c.Get(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionCache_EntryExpires(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewSessionCache(client)

	state := &model.MarkerState{Marker: "m1", IsActive: true, ExpiryDate: time.Now().Add(time.Hour)}
	require.NoError(t, c.Set(ctx, "CODE01", state))

	mr.FastForward(markerTTL)
	got, err := c.Get(ctx, "CODE01")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionCache_KeepsHigherVersion(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)
	c := NewSessionCache(client)
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, c.Set(ctx, "CODE01", &model.MarkerState{Marker: "newer", IsActive: true, ExpiryDate: expiry, Version: 2}))
	require.NoError(t, c.Set(ctx, "CODE01", &model.MarkerState{Marker: "older", IsActive: true, ExpiryDate: expiry, Version: 1}))

	got, err := c.Get(ctx, "CODE01")
	require.NoError(t, err)
	assert.Equal(t, "newer", got.Marker)

	require.NoError(t, c.Set(ctx, "CODE01", &model.MarkerState{Marker: "same", IsActive: false, ExpiryDate: expiry, Version: 2}))
	got, err = c.Get(ctx, "CODE01")
	require.NoError(t, err)
	assert.Equal(t, "same", got.Marker)
	assert.False(t, got.IsActive)
}

func TestSessionCache_OverwritesUnreadableEntry(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewSessionCache(client)
	require.NoError(t, mr.Set("marker:CODE01", "not json"))

	require.NoError(t, c.Set(ctx, "CODE01", &model.MarkerState{Marker: "m1", ExpiryDate: time.Now().Add(time.Hour)}))
	got, err := c.Get(ctx, "CODE01")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.Marker)
}

func TestAttemptCache_GetPutDelete(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewAttemptCache(client)

	got, err := c.Get(ctx, "pin:device-a")
	require.NoError(t, err)
	assert.Nil(t, got)

	rec := &ratelimit.Record{Count: 2}
	require.NoError(t, c.Put(ctx, "pin:device-a", rec, 15*time.Minute))
	assert.Equal(t, 15*time.Minute, mr.TTL("pin:device-a"))

	got, err = c.Get(ctx, "pin:device-a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Count)

	require.NoError(t, c.Delete(ctx, "pin:device-a"))
	got, err = c.Get(ctx, "pin:device-a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAttemptCache_NonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewAttemptCache(client)

	require.NoError(t, c.Put(ctx, "admin:console", &ratelimit.Record{Count: 1}, 0))
	assert.Equal(t, time.Second, mr.TTL("admin:console"))

	mr.FastForward(time.Second)
	got, err := c.Get(ctx, "admin:console")
	require.NoError(t, err)
	assert.Nil(t, got)
}
