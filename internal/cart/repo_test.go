package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	empty, err := repo.Load(ctx, "missing")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	state, _ := Apply(Empty(), AddItem{Item: item(1, "2.50", 4), Quantity: 2})
	require.NoError(t, repo.Save(ctx, "s1", state))

	loaded, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalQuantity)

	// mutating the loaded copy must not leak into the store
	loaded.Lines[0].Quantity = 99
	again, _ := repo.Load(ctx, "s1")
	assert.Equal(t, 2, again.Lines[0].Quantity)

	require.NoError(t, repo.Save(ctx, "s1", Empty()))
	assert.Empty(t, repo.states)
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	store := newFakeKV()
	repo, err := NewRedisRepository(store, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	state, _ := Apply(Empty(), AddItem{Item: item(3, "19.99", 5), Quantity: 3})
	require.NoError(t, repo.Save(ctx, "abc", state))
	assert.Equal(t, time.Hour, store.ttls["cart:abc"])

	loaded, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, 3, loaded.TotalQuantity)
	assert.True(t, loaded.TotalAmount.Equal(decimal.RequireFromString("59.97")), "got %s", loaded.TotalAmount)

	require.NoError(t, repo.Save(ctx, "abc", Empty()))
	_, ok := store.data["cart:abc"]
	assert.False(t, ok, "empty cart should delete the key")

	missing, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, missing.IsEmpty())
}

func TestRedisRepositoryRecomputesStoredTotals(t *testing.T) {
	store := newFakeKV()
	store.data["cart:tampered"] = `{"items":[{"id":1,"title":"x","price":"2.00","thumbnail":"","stock":5,"quantity":2}],"totalQuantity":999,"totalAmount":"1"}`
	repo, err := NewRedisRepository(store, 0)
	require.NoError(t, err)

	loaded, err := repo.Load(context.Background(), "tampered")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalQuantity)
	assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromInt(4)))
}

func TestRedisRepositoryDropsInvalidLines(t *testing.T) {
	store := newFakeKV()
	store.data["cart:legacy"] = `{"items":[` +
		`{"id":1,"title":"zero","price":"2.00","stock":5,"quantity":0},` +
		`{"id":2,"title":"over","price":"3.00","stock":1,"quantity":4},` +
		`{"id":3,"title":"ok","price":"1.50","stock":3,"quantity":2},` +
		`{"id":3,"title":"dup","price":"1.50","stock":3,"quantity":1},` +
		`{"id":4,"title":"negative","price":"-1.00","stock":3,"quantity":1}]}`
	repo, err := NewRedisRepository(store, 0)
	require.NoError(t, err)

	loaded, err := repo.Load(context.Background(), "legacy")
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, 3, loaded.Lines[0].ID)
	assert.Equal(t, "ok", loaded.Lines[0].Title)
	assert.Equal(t, 2, loaded.TotalQuantity)
	assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromInt(3)))
}

func TestRedisRepositoryErrors(t *testing.T) {
	_, err := NewRedisRepository(nil, time.Hour)
	assert.Error(t, err)

	store := newFakeKV()
	store.getErr = errors.New("connection reset")
	repo, err := NewRedisRepository(store, time.Hour)
	require.NoError(t, err)
	_, err = repo.Load(context.Background(), "x")
	assert.Error(t, err)

	store.getErr = nil
	store.data["cart:bad"] = "{not json"
	_, err = repo.Load(context.Background(), "bad")
	assert.Error(t, err)
}

type fakeKV struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) CartKey(sessionID string) string {
	return "cart:" + sessionID
}
