package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisRepository stores each session's cart as JSON with a sliding TTL.
type RedisRepository struct {
	store kvStore
	ttl   time.Duration
}

// NewRedisRepository binds a cart repository to the provided redis client.
func NewRedisRepository(store kvStore, ttl time.Duration) (*RedisRepository, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	return &RedisRepository{store: store, ttl: ttl}, nil
}

type storedCart struct {
	Lines []Line `json:"items"`
}

// Load reads the session's cart. Lines that break the cart's line rules are
// dropped and the aggregates are rebuilt from what remains.
func (r *RedisRepository) Load(ctx context.Context, sessionID string) (State, error) {
	raw, err := r.store.Get(ctx, r.store.CartKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return Empty(), nil
		}
		return State{}, fmt.Errorf("load cart: %w", err)
	}
	var stored storedCart
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return State{}, fmt.Errorf("decode cart: %w", err)
	}
	return Recompute(validLines(stored.Lines)), nil
}

// Save writes the session's cart and refreshes its TTL. An empty cart deletes the key.
func (r *RedisRepository) Save(ctx context.Context, sessionID string, state State) error {
	if state.IsEmpty() {
		return r.remove(ctx, sessionID)
	}
	payload, err := json.Marshal(storedCart{Lines: state.Lines})
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.store.Set(ctx, r.store.CartKey(sessionID), string(payload), r.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *RedisRepository) remove(ctx context.Context, sessionID string) error {
	if err := r.store.Del(ctx, r.store.CartKey(sessionID)); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// validLines keeps the first line per product id whose quantity lies in
// [1, stock] and whose price is not negative.
func validLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	seen := make(map[int]struct{}, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 || l.Quantity > l.Stock || l.Price.IsNegative() {
			continue
		}
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	return out
}
