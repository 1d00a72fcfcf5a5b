package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"streamgate/internal/model"

	"github.com/redis/go-redis/v9"
)

// markerTTL bounds how long a cached marker may outlive a change made
// behind the cache's back
const markerTTL = 10 * time.Minute

// SessionCache holds the current marker state per access code so liveness
// checks can skip Mongo. Get returns (nil, nil) on a miss. Set leaves an
// entry with a higher Version in place.
type SessionCache interface {
	Set(ctx context.Context, code string, state *model.MarkerState) error
	Get(ctx context.Context, code string) (*model.MarkerState, error)
	Delete(ctx context.Context, code string) error
}

type sessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a Redis-backed marker cache
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
	}
}

func markerKey(code string) string {
	return "marker:" + code
}

// setIfNewer writes ARGV[1] with a PX of ARGV[3] unless the stored entry
// carries a version above ARGV[2]
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ok, stored = pcall(cjson.decode, cur)
	if ok and type(stored) == 'table' and tonumber(stored.version) and tonumber(stored.version) > tonumber(ARGV[2]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

func (c *sessionCache) Set(ctx context.Context, code string, state *model.MarkerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	ttl := ttlFor(state, time.Now())
	return setIfNewer.Run(ctx, c.client, []string{markerKey(code)}, data, state.Version, ttl.Milliseconds()).Err()
}

func (c *sessionCache) Get(ctx context.Context, code string) (*model.MarkerState, error) {
	data, err := c.client.Get(ctx, markerKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.MarkerState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *sessionCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, markerKey(code)).Err()
}

// ttlFor never keeps an entry past the code's own expiry
func ttlFor(state *model.MarkerState, now time.Time) time.Duration {
	left := state.ExpiryDate.Sub(now)
	if left <= 0 {
		return time.Second
	}
	if left < markerTTL {
		return left
	}
	return markerTTL
}

// memorySessionCache is the in-process fallback used without Redis
type memorySessionCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	state     model.MarkerState
	expiresAt time.Time
}

// NewMemorySessionCache creates a marker cache kept in process memory
func NewMemorySessionCache() SessionCache {
	return &memorySessionCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *memorySessionCache) Set(_ context.Context, code string, state *model.MarkerState) error {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[code]; ok && now.Before(e.expiresAt) && e.state.Version > state.Version {
		return nil
	}
	c.entries[code] = memoryEntry{state: *state, expiresAt: now.Add(ttlFor(state, now))}
	return nil
}

func (c *memorySessionCache) Get(_ context.Context, code string) (*model.MarkerState, error) {
	c.mu.RLock()
	e, ok := c.entries[code]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, nil
	}
	state := e.state
	return &state, nil
}

func (c *memorySessionCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
	return nil
}
