package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestPushCappedDedupesAndTrims(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	for _, id := range []string{"a", "b", "c", "b"} {
		if err := client.PushCapped(ctx, "lc:list:recent:u1", id, 3, time.Hour); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}

	got, err := client.ListRange(ctx, "lc:list:recent:u1", 0)
	if err != nil {
		t.Fatalf("range failed: %v", err)
	}
	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}

	// Cap of 3 evicts the oldest entry on overflow.
	if err := client.PushCapped(ctx, "lc:list:recent:u1", "d", 3, time.Hour); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	got, err = client.ListRange(ctx, "lc:list:recent:u1", 0)
	if err != nil {
		t.Fatalf("range failed: %v", err)
	}
	if len(got) != 3 || got[0] != "d" || got[2] != "c" {
		t.Fatalf("expected [d b c], got %v", got)
	}
}

func TestPushCappedRejectsNonPositiveCap(t *testing.T) {
	client := &Client{store: newMockCmdable()}
	if err := client.PushCapped(context.Background(), "k", "v", 0, 0); err == nil {
		t.Fatal("expected error for zero cap")
	}
}

func TestListRemove(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	for _, id := range []string{"a", "b"} {
		if err := client.PushCapped(ctx, "k", id, 5, 0); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}
	if err := client.ListRemove(ctx, "k", "a"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	got, err := client.ListRange(ctx, "k", 0)
	if err != nil {
		t.Fatalf("range failed: %v", err)
	}
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b], got %v", got)
	}
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed on first request")
	}
	if count != 1 {
		t.Fatalf("expected counter 1 got %d", count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "lc:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.RateLimitKey("scope"); got != "lc:rate_limit:scope" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.ListKey("recently_viewed", "u1"); got != "lc:list:recently_viewed:u1" {
		t.Fatalf("unexpected list key %s", got)
	}
	if got := client.ListKey("comparison", ""); got != "lc:list:comparison" {
		t.Fatalf("empty owner should be skipped, got %s", got)
	}
}

type mockCmdable struct {
	data        map[string]string
	lists       map[string][]string
	incr        map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:  make(map[string]string),
		lists: make(map[string][]string),
		incr:  make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
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
		delete(m.lists, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) LPush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	for _, v := range values {
		m.lists[key] = append([]string{fmt.Sprint(v)}, m.lists[key]...)
	}
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}

func (m *mockCmdable) LRem(ctx context.Context, key string, count int64, value any) *redis.IntCmd {
	target := fmt.Sprint(value)
	kept := m.lists[key][:0:0]
	removed := int64(0)
	for _, v := range m.lists[key] {
		if v == target {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	m.lists[key] = kept
	return redis.NewIntResult(removed, nil)
}

func (m *mockCmdable) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	list := m.lists[key]
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop || len(list) == 0 {
		m.lists[key] = nil
	} else {
		m.lists[key] = list[start : stop+1]
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	list := m.lists[key]
	if len(list) == 0 {
		return redis.NewStringSliceResult(nil, nil)
	}
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop {
		return redis.NewStringSliceResult(nil, nil)
	}
	return redis.NewStringSliceResult(append([]string(nil), list[start:stop+1]...), nil)
}

func (m *mockCmdable) LLen(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}
