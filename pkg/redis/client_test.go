package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "blog:key-1", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 1 {
		t.Fatalf("expected first call allowed with count 1, got allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 || mock.expireCalls[0].ttl != time.Minute {
		t.Fatalf("expected expire for first increment, got %#v", mock.expireCalls)
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "blog:key-1", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "blog:key-1", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestJSONCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	type page struct {
		IDs   []string `json:"ids"`
		Total int      `json:"total"`
	}

	var out page
	if err := client.GetJSON(ctx, "missing", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	key := client.CacheKey("agents", "public", "1", "")
	if err := client.SetJSON(ctx, key, page{IDs: []string{"a", "b"}, Total: 2}, 5*time.Minute); err != nil {
		t.Fatalf("set json: %v", err)
	}
	if err := client.GetJSON(ctx, key, &out); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if out.Total != 2 || len(out.IDs) != 2 {
		t.Fatalf("unexpected cached value %#v", out)
	}
}

func TestQueueFIFO(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	if err := client.Enqueue(ctx, "tasks", []byte("first")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := client.Enqueue(ctx, "tasks", []byte("second")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := client.Dequeue(ctx, "tasks", time.Second)
	if err != nil || string(got) != "first" {
		t.Fatalf("expected first, got %q err=%v", got, err)
	}
	got, err = client.Dequeue(ctx, "tasks", time.Second)
	if err != nil || string(got) != "second" {
		t.Fatalf("expected second, got %q err=%v", got, err)
	}
	got, err = client.Dequeue(ctx, "tasks", time.Second)
	if err != nil || got != nil {
		t.Fatalf("expected empty queue to return nil, got %q err=%v", got, err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.RateLimitKey("scope"); got != "iacol:rate_limit:scope" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.CacheKey("agents", "staff", "2", ""); got != "iacol:cache:agents:staff:2" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
	if got := client.AccessSessionKey("abc"); got != "iacol:session:access:abc" {
		t.Fatalf("unexpected session key %s", got)
	}
	if got := client.QueueKey("tasks"); got != "iacol:queue:tasks" {
		t.Fatalf("unexpected queue key %s", got)
	}
}

func TestUninitializedClient(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error for nil client")
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	lists       map[string][]string
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:  make(map[string]string),
		incr:  make(map[string]int64),
		lists: make(map[string][]string),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) LPush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	for _, v := range values {
		var s string
		if b, ok := v.([]byte); ok {
			s = string(b)
		} else {
			s = fmt.Sprint(v)
		}
		m.lists[key] = append([]string{s}, m.lists[key]...)
	}
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}

func (m *mockCmdable) BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	for _, key := range keys {
		list := m.lists[key]
		if len(list) == 0 {
			continue
		}
		last := list[len(list)-1]
		m.lists[key] = list[:len(list)-1]
		return redis.NewStringSliceResult([]string{key, last}, nil)
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}
