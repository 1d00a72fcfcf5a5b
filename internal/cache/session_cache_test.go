package cache

import (
	"context"
	"testing"
	"time"

	"streamgate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySessionCache()

	got, err := c.Get(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.Nil(t, got)

	state := &model.MarkerState{CodeID: "1", Marker: "m1", IsActive: true, ExpiryDate: time.Now().Add(time.Hour)}
	require.NoError(t, c.Set(ctx, "ABCD1234", state))

	got, err = c.Get(ctx, "ABCD1234")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "m1", got.Marker)

	// the cache holds a copy
	got.Marker = "changed"
	again, _ := c.Get(ctx, "ABCD1234")
	assert.Equal(t, "m1", again.Marker)

	require.NoError(t, c.Delete(ctx, "ABCD1234"))
	got, err = c.Get(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionCache_EntryExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &memorySessionCache{entries: make(map[string]memoryEntry), now: func() time.Time { return now }}

	state := &model.MarkerState{Marker: "m1", IsActive: true, ExpiryDate: now.Add(time.Hour)}
	require.NoError(t, c.Set(ctx, "CODE01", state))

	now = now.Add(markerTTL)
	got, err := c.Get(ctx, "CODE01")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTTLFor(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, markerTTL, ttlFor(&model.MarkerState{ExpiryDate: now.Add(48 * time.Hour)}, now))
	assert.Equal(t, 2*time.Minute, ttlFor(&model.MarkerState{ExpiryDate: now.Add(2 * time.Minute)}, now))
	assert.Equal(t, time.Second, ttlFor(&model.MarkerState{ExpiryDate: now.Add(-time.Hour)}, now))
}

func TestMemorySessionCache_KeepsHigherVersion(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySessionCache()
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, c.Set(ctx, "CODE01", &model.MarkerState{Marker: "newer", ExpiryDate: expiry, Version: 2}))
	require.NoError(t, c.Set(ctx, "CODE01", &model.MarkerState{Marker: "older", ExpiryDate: expiry, Version: 1}))

	got, err := c.Get(ctx, "CODE01")
	require.NoError(t, err)
	assert.Equal(t, "newer", got.Marker)

	require.NoError(t, c.Delete(ctx, "CODE01"))
	require.NoError(t, c.Set(ctx, "CODE01", &model.MarkerState{Marker: "older", ExpiryDate: expiry, Version: 1}))
	got, err = c.Get(ctx, "CODE01")
	require.NoError(t, err)
	assert.Equal(t, "older", got.Marker)
}
