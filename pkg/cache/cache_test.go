package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
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

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss on empty cache
	if _, hit, err := c.Get(ctx, "tag:abc"); hit || err != nil {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "tag:abc", []byte(`{"title":"Home"}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "tag:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `{"title":"Home"}` {
		t.Errorf("Get data = %s", data)
	}

	if err := c.Delete(ctx, "tag:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "tag:abc"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "tag:abc"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without TTL should hit")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry = hit %v, err %v; want clean miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if n, err := c.Len(); err != nil || n != 3 {
		t.Fatalf("Len() = %d, %v, want 3", n, err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n, _ := c.Len(); n != 0 {
		t.Errorf("Len() after Clear = %d", n)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir should survive Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %s, want %s", c.Dir(), dir)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	h := Hash([]byte("png bytes"))

	k1 := k.TagKey(h, TagKeyOpts{Model: "gemini-2.5-flash"})
	k2 := k.TagKey(h, TagKeyOpts{Model: "gemini-2.5-pro"})
	k3 := k.TagKey(h, TagKeyOpts{Model: "gemini-2.5-flash", Hint: "Home"})
	if k1 == k2 || k1 == k3 {
		t.Error("Different TagKeyOpts should produce different keys")
	}
	if k1 != k.TagKey(h, TagKeyOpts{Model: "gemini-2.5-flash"}) {
		t.Error("TagKey should be deterministic")
	}
	if !strings.HasPrefix(k1, "tag:") {
		t.Errorf("TagKey should start with tag: prefix: %s", k1)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "spritetag:")

	opts := TagKeyOpts{Model: "m"}
	got := scoped.TagKey("abc", opts)
	if got != "spritetag:"+inner.TagKey("abc", opts) {
		t.Errorf("ScopedKeyer TagKey unexpected: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.TagKey("abc", TagKeyOpts{})
	if key != "prefix:"+NewDefaultKeyer().TagKey("abc", TagKeyOpts{}) {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("SPRITETAG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SPRITETAG_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr)
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()

	key := "spritetag-test:" + Hash([]byte(t.Name()))
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Fatalf("Get before Set = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get after Set = %q, hit %v, err %v", data, hit, err)
	}
}
