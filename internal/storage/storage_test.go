package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhouzirui/ai-code-helper/client/internal/storage"
)

func exerciseStore(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, storage.KeyLocale, "zh"); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	got, err := store.Get(ctx, storage.KeyLocale)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got != "zh" {
		t.Fatalf("unexpected value: got %q want %q", got, "zh")
	}

	if err := store.Set(ctx, storage.KeyLocale, "en"); err != nil {
		t.Fatalf("overwrite err: %v", err)
	}
	if got, _ := store.Get(ctx, storage.KeyLocale); got != "en" {
		t.Fatalf("overwrite not visible: got %q", got)
	}

	if err := store.Delete(ctx, storage.KeyLocale); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, err := store.Get(ctx, storage.KeyLocale); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, storage.KeyLocale); err != nil {
		t.Fatalf("deleting a missing key should succeed, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, storage.NewMemory())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store, err := storage.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile err: %v", err)
	}
	exerciseStore(t, store)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	first, err := storage.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile err: %v", err)
	}
	if err := first.Set(ctx, storage.KeyLocale, "zh"); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	second, err := storage.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen err: %v", err)
	}
	got, err := second.Get(ctx, storage.KeyLocale)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got != "zh" {
		t.Fatalf("value not persisted: got %q", got)
	}
}

func TestOpenFileRejectsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := storage.OpenFile(path); err == nil {
		t.Fatal("expected decode error for corrupt state file")
	}
}

func TestOpenFileEmptyPath(t *testing.T) {
	if _, err := storage.OpenFile(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	store := storage.NewRedis(rdb, "ai-code-helper-test:"+time.Now().Format("150405.000")+":", time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	exerciseStore(t, store)
}
