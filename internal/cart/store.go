package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/ovenline/storefront-backend/pkg/redis"
)

type cartKeyer interface {
	CartKey(token string) string
}

// Store persists session carts in Redis as JSON documents with a sliding
// TTL. Each token has exactly one writer (the session that owns it), so no
// locking is needed beyond Redis's per-command atomicity.
type Store struct {
	kv    redisclient.KVStore
	keyer cartKeyer
	ttl   time.Duration
}

// NewStore builds a cart store on the shared Redis client.
func NewStore(client *redisclient.Client, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &Store{kv: client, keyer: client, ttl: ttl}, nil
}

// Load returns the cart for the token, or an empty cart when none is stored.
func (s *Store) Load(ctx context.Context, token string) (*Cart, error) {
	if token == "" {
		return &Cart{Token: newToken()}, nil
	}
	raw, err := s.kv.Get(ctx, s.keyer.CartKey(token))
	if err != nil {
		if redisclient.IsNil(err) {
			return &Cart{Token: token}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	cart.Token = token
	return &cart, nil
}

// Save writes the cart document and refreshes its TTL.
func (s *Store) Save(ctx context.Context, cart *Cart) error {
	if cart == nil || cart.Token == "" {
		return fmt.Errorf("cart token is required")
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, s.keyer.CartKey(cart.Token), string(raw), s.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Clear deletes the cart document.
func (s *Store) Clear(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.kv.Del(ctx, s.keyer.CartKey(token))
}

func newToken() string {
	return uuid.NewString()
}
