package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventflow/internal/store"
)

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("boom") }
func (failingKV) Set(context.Context, string, []byte) error   { return errors.New("boom") }
func (failingKV) Remove(context.Context, string) error        { return errors.New("boom") }

func TestPopularityBoost(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	tr := New(ctx, kv)

	tr.TrackView(ctx, 1)
	tr.TrackView(ctx, 1)
	tr.TrackView(ctx, 1)
	tr.TrackAddToCart(ctx, 1)

	assert.Equal(t, 3, tr.ViewCount(1))
	assert.Equal(t, 1, tr.AddToCartCount(1))
	assert.InDelta(t, 3.5, tr.PopularityBoost(1), 1e-9)
	assert.Zero(t, tr.PopularityBoost(2))
}

func TestCountersPersist(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	New(ctx, kv).TrackAddToCart(ctx, 7)

	reloaded := New(ctx, kv)
	assert.Equal(t, 1, reloaded.AddToCartCount(7))

	var raw map[string]int
	ok, err := store.LoadJSON(ctx, kv, store.KeyAnalytics, &raw)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"atc_7": 1}, raw)
}

func TestUnavailableStoreStillCounts(t *testing.T) {
	ctx := context.Background()
	tr := New(ctx, failingKV{})

	tr.TrackView(ctx, 4)
	assert.Equal(t, 1, tr.ViewCount(4))
}
