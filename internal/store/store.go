package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys for each logical store. One JSON document lives under each key.
const (
	KeyUsers          = "eventflow_users"
	KeyAuthSession    = "eventflow_auth_session"
	KeyCart           = "eventflow_cart"
	KeyWishlist       = "eventflow_wishlist"
	KeyOrders         = "eventflow_orders"
	KeyRecentlyViewed = "eventflow_recently_viewed"
	KeyFilters        = "eventflow_filters"
	KeyAnalytics      = "eventflow_analytics"
)

var (
	// ErrNotFound signals that no value is stored under the key.
	ErrNotFound = errors.New("key not found")
	// ErrInvalidKey indicates an empty key was supplied.
	ErrInvalidKey = errors.New("invalid key")
)

// KV is the persistence surface handed to every manager. Values are written
// and read wholesale; there is no revision check, the last writer wins.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// LoadJSON decodes the value stored under key into dst. It reports false
// without error when the key is absent.
func LoadJSON(ctx context.Context, kv KV, key string, dst any) (bool, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

type prefixed struct {
	kv     KV
	prefix string
}

// WithPrefix scopes every key under "prefix:". It is how one backend is
// shared by many storefront profiles.
func WithPrefix(kv KV, prefix string) KV {
	if prefix == "" {
		return kv
	}
	return &prefixed{kv: kv, prefix: prefix + ":"}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.kv.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.kv.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.kv.Remove(ctx, p.prefix+key)
}

func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
