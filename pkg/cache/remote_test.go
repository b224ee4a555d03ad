package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// remoteCaches opens the Redis and Mongo backends configured through
// DITHERMASK_REDIS_ADDR and DITHERMASK_MONGO_URI. Backends without a
// configured address are skipped.
func remoteCaches(t *testing.T) map[string]Cache {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	caches := map[string]Cache{}
	if addr := os.Getenv("DITHERMASK_REDIS_ADDR"); addr != "" {
		c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "dithermask-test:"})
		if err != nil {
			t.Fatalf("NewRedisCache: %v", err)
		}
		caches["redis"] = c
	}
	if uri := os.Getenv("DITHERMASK_MONGO_URI"); uri != "" {
		c, err := NewMongoCache(ctx, MongoConfig{URI: uri, Database: "dithermask_test"})
		if err != nil {
			t.Fatalf("NewMongoCache: %v", err)
		}
		caches["mongo"] = c
	}
	if len(caches) == 0 {
		t.Skip("set DITHERMASK_REDIS_ADDR or DITHERMASK_MONGO_URI to test remote backends")
	}
	t.Cleanup(func() {
		for _, c := range caches {
			c.Close()
		}
	})
	return caches
}

func TestRemoteCaches(t *testing.T) {
	for name, c := range remoteCaches(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := c.(Clearer).Clear(ctx); err != nil {
				t.Fatalf("Clear: %v", err)
			}

			if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
				t.Fatalf("Get on empty cache: hit %v, err %v", hit, err)
			}
			if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
				t.Fatalf("Set: %v", err)
			}
			data, hit, err := c.Get(ctx, "k")
			if err != nil || !hit || string(data) != "v" {
				t.Errorf("Get(k) = %q, %v, %v", data, hit, err)
			}

			if err := c.Delete(ctx, "k"); err != nil {
				t.Errorf("Delete: %v", err)
			}
			if _, hit, _ := c.Get(ctx, "k"); hit {
				t.Error("entry should be gone after Delete")
			}

			for _, k := range []string{"a", "b"} {
				if err := c.Set(ctx, k, []byte(k), 0); err != nil {
					t.Fatal(err)
				}
			}
			n, err := c.(Clearer).Clear(ctx)
			if err != nil || n != 2 {
				t.Errorf("Clear = %d, %v; want 2, nil", n, err)
			}
		})
	}
}
