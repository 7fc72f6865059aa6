package storage

import (
	"context"
	"testing"

	"storefront/internal/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	kv, release, err := Open(ctx, config.CartConfig{Store: config.StoreMemory}, nil)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	release()
	if _, ok := kv.(*Memory); !ok {
		t.Fatalf("expected *Memory, got %T", kv)
	}

	kv, release, err = Open(ctx, config.CartConfig{Store: config.StoreFile, FileDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	release()
	if _, ok := kv.(*File); !ok {
		t.Fatalf("expected *File, got %T", kv)
	}

	if _, _, err := Open(ctx, config.CartConfig{Store: config.StorePostgres}, nil); err == nil {
		t.Fatalf("expected error for postgres without pool")
	}
	if _, _, err := Open(ctx, config.CartConfig{Store: "cookies"}, nil); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}

func TestRedisOptionsFromConfig(t *testing.T) {
	opts := redisOptions(config.CartConfig{
		Store:         config.StoreRedis,
		RedisAddr:     "localhost:6379",
		RedisPassword: "secret",
		RedisDB:       3,
		RedisPrefix:   "storefront:",
	})
	want := RedisOptions{Addr: "localhost:6379", Password: "secret", DB: 3, Prefix: "storefront:"}
	if opts != want {
		t.Fatalf("unexpected redis options %+v", opts)
	}
}
