package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) GetJSON(_ context.Context, key string, dest any) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryStore) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) CacheKey(parts ...string) string {
	return "cache:" + strings.Join(parts, ":")
}

type countingObserver struct{ hits, misses int }

func (o *countingObserver) CacheLookup(hit bool) {
	if hit {
		o.hits++
		return
	}
	o.misses++
}

func TestLoadReadsThrough(t *testing.T) {
	store := newMemoryStore()
	obs := &countingObserver{}
	c := New(store, 5*time.Minute, nil, obs)
	key := c.Key("agents", "user", "1", "")
	assert.Equal(t, "cache:agents:user:1:-", key)

	calls := 0
	loader := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	first, err := Load(context.Background(), c, key, loader)
	require.NoError(t, err)
	second, err := Load(context.Background(), c, key, loader)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5*time.Minute, store.ttls[key])
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)
}

func TestLoadFallsBackOnStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")
	c := New(store, time.Minute, nil, nil)

	value, err := Load(context.Background(), c, c.Key("x"), func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, value)
}

func TestLoadWithoutStoreCallsLoader(t *testing.T) {
	var c *Cache
	value, err := Load(context.Background(), c, "", func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)
}

func TestLoadDoesNotCacheErrors(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil, nil)
	_, err := Load(context.Background(), c, c.Key("boom"), func(context.Context) (int, error) { return 0, errors.New("db down") })
	require.Error(t, err)
	assert.Empty(t, store.data)
}
