// Package kvstore stores JSON documents in Redis with optimistic updates.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	redisclient "github.com/richxcame/logistics-pricing/pkg/redis"
)

// ErrConflict is returned when a watched key kept changing for every attempt.
var ErrConflict = errors.New("kvstore: concurrent modification")

// Store handles document reads and writes with JSON serialization
type Store struct {
	client redisclient.ClientInterface
	prefix string
}

// New creates a new document store; every key is namespaced by prefix.
func New(client redisclient.ClientInterface, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Key returns the namespaced key for name.
func (s *Store) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return fmt.Sprintf("%s:%s", s.prefix, name)
}

// Get unmarshals the document at name into result. found is false when
// the document does not exist.
func (s *Store) Get(ctx context.Context, name string, result interface{}) (bool, error) {
	data, err := s.client.GetBytes(ctx, s.Key(name))
	if errors.Is(err, redisclient.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, result); err != nil {
		return false, fmt.Errorf("failed to decode document %s: %w", name, err)
	}
	return true, nil
}

// MutateFunc receives the stored bytes (nil when absent) and returns the
// replacement document.
type MutateFunc func(current []byte) ([]byte, error)

// Update runs fn under WATCH and commits its output in MULTI/EXEC. When
// another writer commits in between, fn is re-run up to attempts times.
// Errors returned by fn abort the update without retrying.
func (s *Store) Update(ctx context.Context, name string, attempts int, fn MutateFunc) error {
	key := s.Key(name)
	if attempts <= 0 {
		attempts = 1
	}

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < attempts; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return ErrConflict
}
