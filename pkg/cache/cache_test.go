package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	derrors "github.com/matzehuels/declutter/pkg/errors"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}

	// A solved arrangement written through the JSON helpers is never served.
	key := NewDefaultKeyer().ResultKey(Hash([]byte(`{"entities":[]}`)), ResultKeyOpts{Resolution: 1, BudgetMS: 300})
	if err := SetJSON(ctx, c, key, map[string]int{"moved": 2}, TTLResult); err != nil {
		t.Errorf("SetJSON error: %v", err)
	}
	var got map[string]int
	if err := GetJSON(ctx, c, key, &got); err != ErrCacheMiss {
		t.Errorf("GetJSON(%s) = %v, want ErrCacheMiss", key, err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashJSON(t *testing.T) {
	h1, err := HashJSON(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("HashJSON error: %v", err)
	}
	h2, _ := HashJSON(map[string]int{"b": 2, "a": 1})
	if h1 != h2 {
		t.Error("HashJSON should not depend on map order")
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON should fail for unencodable values")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	opts := ResultKeyOpts{Resolution: 1, BudgetMS: 300, AngleStep: 45, SearchLimit: 1000}
	rk1 := k.ResultKey("doc123", opts)
	if rk1 != k.ResultKey("doc123", opts) {
		t.Error("ResultKey should be deterministic")
	}
	if !strings.HasPrefix(rk1, "result:") {
		t.Errorf("ResultKey unexpected prefix: %s", rk1)
	}

	opts.Resolution = 5
	if rk1 == k.ResultKey("doc123", opts) {
		t.Error("Different ResultKeyOpts should produce different keys")
	}
	if rk1 == k.ResultKey("doc456", ResultKeyOpts{Resolution: 1, BudgetMS: 300, AngleStep: 45, SearchLimit: 1000}) {
		t.Error("Different documents should produce different keys")
	}

	pk1 := k.PreviewKey("res123", PreviewKeyOpts{Width: 800, ShowLabels: true})
	pk2 := k.PreviewKey("res123", PreviewKeyOpts{Width: 800})
	if pk1 == pk2 {
		t.Error("Different PreviewKeyOpts should produce different keys")
	}

	if gk := k.GraphKey("doc123"); !strings.HasPrefix(gk, "graph:") || len(gk) != len("graph:")+64 {
		t.Errorf("GraphKey unexpected: %s", gk)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	rk := scoped.ResultKey("doc", ResultKeyOpts{})
	if rk != "user:123:"+inner.ResultKey("doc", ResultKeyOpts{}) {
		t.Errorf("ScopedKeyer ResultKey unexpected: %s", rk)
	}

	pk := scoped.PreviewKey("res", PreviewKeyOpts{})
	if !strings.HasPrefix(pk, "user:123:preview:") {
		t.Errorf("ScopedKeyer PreviewKey should be prefixed: %s", pk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.GraphKey("doc")
	if key != "prefix:"+NewDefaultKeyer().GraphKey("doc") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if c.Dir() != dir {
		t.Errorf("Dir() = %s, want %s", c.Dir(), dir)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get(key) = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set error: %v", err)
		}
	}

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries behind", len(entries))
	}
}

func TestNetworkCacheURLValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := NewRedisCache(ctx, "http://localhost:6379"); !derrors.Is(err, derrors.ErrCodeInvalidInput) {
		t.Errorf("NewRedisCache with http url: %v", err)
	}
	if _, err := NewMongoCache(ctx, "redis://localhost", "", ""); !derrors.Is(err, derrors.ErrCodeInvalidInput) {
		t.Errorf("NewMongoCache with redis url: %v", err)
	}
}

func TestMongoEntryExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	forever := newMongoEntry("k", []byte("v"), 0, now)
	if forever.ExpiresAt != nil {
		t.Error("zero ttl should not set expires_at")
	}
	if forever.expired(now.Add(24 * time.Hour)) {
		t.Error("entry without expiry should never expire")
	}

	short := newMongoEntry("k", []byte("v"), time.Minute, now)
	if short.expired(now.Add(30 * time.Second)) {
		t.Error("entry expired early")
	}
	if !short.expired(now.Add(2 * time.Minute)) {
		t.Error("entry should have expired")
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	type payload struct {
		N int `json:"n"`
	}

	var got payload
	if err := GetJSON(ctx, c, "k", &got); err != ErrCacheMiss {
		t.Errorf("GetJSON on empty cache = %v, want ErrCacheMiss", err)
	}

	if err := SetJSON(ctx, c, "k", payload{N: 7}, time.Hour); err != nil {
		t.Fatalf("SetJSON error: %v", err)
	}
	if err := GetJSON(ctx, c, "k", &got); err != nil || got.N != 7 {
		t.Errorf("GetJSON = %+v, %v", got, err)
	}

	if err := c.Set(ctx, "k", []byte("{broken"), 0); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(ctx, c, "k", &got); err != ErrCacheMiss {
		t.Errorf("GetJSON on corrupt entry = %v, want ErrCacheMiss", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("corrupt entry should be deleted")
	}
}
