package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want miss", ok, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := c.Get(ctx, "key")
	if err != nil || !ok || string(data) != "value" {
		t.Errorf("Get = %q ok=%v err=%v, want value", data, ok, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("Get after Delete still hits")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("expired entry still hits")
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("null cache returned a hit")
	}
}

func TestOrderKey(t *testing.T) {
	scopes := [][]int{{0, 1}, {1, 2}}
	doms := [][]int{{2, 2}, {2, 2}}

	k1 := OrderKey(scopes, doms, 10, "min-fill", 1, 7)
	k2 := OrderKey(scopes, doms, 10, "min-fill", 1, 7)
	if k1 != k2 {
		t.Error("identical inputs produce different keys")
	}
	if k1 == OrderKey(scopes, doms, 11, "min-fill", 1, 7) {
		t.Error("budget change does not change the key")
	}
	if k1 == OrderKey(scopes, doms, 10, "min-deg", 1, 7) {
		t.Error("heuristic change does not change the key")
	}
}
