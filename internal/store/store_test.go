package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}

	if err := kv.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get: want v1, got %q", got)
	}

	// Overwrite replaces the value.
	if err := kv.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _ = kv.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("Get after overwrite: want v2, got %q", got)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: want ErrNotFound, got %v", err)
	}

	// Deleting a missing key is not an error.
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	_ = kv.Set(ctx, "k", []byte("abc"))
	got, _ := kv.Get(ctx, "k")
	got[0] = 'x'

	again, _ := kv.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value was mutated through Get result: %q", again)
	}
}

func TestNamespace_PrefixesKeys(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	a := Namespace(base, "scope:a")
	b := Namespace(base, "scope:b:")

	_ = a.Set(ctx, "csrf_token", []byte("tok-a"))
	_ = b.Set(ctx, "csrf_token", []byte("tok-b"))

	gotA, err := a.Get(ctx, "csrf_token")
	if err != nil || string(gotA) != "tok-a" {
		t.Fatalf("scope a: got %q, %v", gotA, err)
	}
	gotB, _ := b.Get(ctx, "csrf_token")
	if string(gotB) != "tok-b" {
		t.Fatalf("scope b: got %q", gotB)
	}

	// The underlying store sees the prefixed keys.
	if _, err := base.Get(ctx, "scope:a:csrf_token"); err != nil {
		t.Errorf("prefixed key missing in base store: %v", err)
	}

	// Deleting in one scope leaves the other untouched.
	_ = a.Delete(ctx, "csrf_token")
	if _, err := b.Get(ctx, "csrf_token"); err != nil {
		t.Errorf("scope b record lost after scope a delete: %v", err)
	}
}

func TestRedis_GetSetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	kv := NewRedis(client, 0)

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}

	if err := kv.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := kv.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get: got %q, %v", got, err)
	}

	// Set applies the scope TTL so abandoned scopes age out.
	if mr.TTL("k") <= 0 {
		t.Errorf("expected a TTL on the key, got %v", mr.TTL("k"))
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: want ErrNotFound, got %v", err)
	}
}

func TestRedis_KeyExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	kv := NewRedis(client, time.Minute)

	_ = kv.Set(ctx, "k", []byte("v"))
	mr.FastForward(2 * time.Minute)

	if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired key to read as absent, got %v", err)
	}
}
