package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxUpdateAttempts bounds optimistic retries when concurrent writers race on one cart.
const maxUpdateAttempts = 20

var ErrConcurrentUpdate = errors.New("cart was modified concurrently")

// Store persists one cart snapshot per user.
type Store interface {
	Load(ctx context.Context, userID uint) (*Cart, error)
	Save(ctx context.Context, userID uint, c *Cart) error
	Delete(ctx context.Context, userID uint) error
	// Update applies fn to the stored cart and writes it back atomically.
	// An error from fn aborts without writing.
	Update(ctx context.Context, userID uint, fn func(*Cart) error) (*Cart, error)
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore keeps snapshots for ttl after the last mutation; ttl <= 0 keeps them forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Load returns an empty cart when the user has no snapshot.
func (s *RedisStore) Load(ctx context.Context, userID uint) (*Cart, error) {
	return decodeCart(s.client.Get(ctx, cartKey(userID)).Bytes())
}

func decodeCart(data []byte, err error) (*Cart, error) {
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return c, nil
}

// Update watches the cart key and retries when another writer commits first.
func (s *RedisStore) Update(ctx context.Context, userID uint, fn func(*Cart) error) (*Cart, error) {
	key := cartKey(userID)
	var updated *Cart

	txf := func(tx *redis.Tx) error {
		c, err := decodeCart(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}

		var data []byte
		if !c.Empty() {
			if data, err = json.Marshal(c); err != nil {
				return fmt.Errorf("marshal cart failed: %w", err)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if data == nil {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, data, s.ttl)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = c
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrConcurrentUpdate
}

func (s *RedisStore) Save(ctx context.Context, userID uint, c *Cart) error {
	if c.Empty() {
		return s.Delete(ctx, userID)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}
