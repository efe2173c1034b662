package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	value := []byte(`{"items":[]}`)
	if err := m.Set(ctx, KeyCart, value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'X'

	got, err := m.Get(ctx, KeyCart)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"items":[]}` {
		t.Fatalf("stored value was aliased: %q", got)
	}

	if err := m.Remove(ctx, KeyCart); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty store, got %d keys", m.Len())
	}
	if err := m.Remove(ctx, KeyCart); err != nil {
		t.Fatalf("removing an absent key should be a no-op, got %v", err)
	}
}

func TestMemoryRejectsEmptyKey(t *testing.T) {
	m := NewMemory()
	if err := m.Set(context.Background(), "", nil); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var ids []int
	found, err := LoadJSON(ctx, m, KeyWishlist, &ids)
	if err != nil || found {
		t.Fatalf("expected absent key, got found=%v err=%v", found, err)
	}

	if err := SaveJSON(ctx, m, KeyWishlist, []int{3, 1, 2}); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	found, err = LoadJSON(ctx, m, KeyWishlist, &ids)
	if err != nil || !found {
		t.Fatalf("LoadJSON: found=%v err=%v", found, err)
	}
	if len(ids) != 3 || ids[0] != 3 {
		t.Fatalf("unexpected ids: %v", ids)
	}

	_ = m.Set(ctx, KeyFilters, []byte("{not json"))
	var filters map[string]any
	if _, err := LoadJSON(ctx, m, KeyFilters, &filters); err == nil {
		t.Fatalf("expected decode error for corrupt value")
	}
}

func TestWithPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	alice := WithPrefix(m, "alice")
	bob := WithPrefix(m, "bob")

	if err := alice.Set(ctx, KeyCart, []byte(`1`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := bob.Get(ctx, KeyCart); !errors.Is(err, ErrNotFound) {
		t.Fatalf("profiles must not share keys, got %v", err)
	}
	raw, err := m.Get(ctx, "alice:"+KeyCart)
	if err != nil || string(raw) != "1" {
		t.Fatalf("expected namespaced key in backend, got %q %v", raw, err)
	}
	if WithPrefix(m, "") != KV(m) {
		t.Fatalf("empty prefix should return the backend unchanged")
	}
}
