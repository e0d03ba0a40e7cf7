package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store deduplicates externally delivered events with a Redis marker.
// Payment processors redeliver webhooks until acknowledged, so replays of
// the same notification are expected and must be cheap to skip. The marker
// is written only after the event has been applied; a failed apply leaves
// it unset so the redelivery is processed instead of skipped.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key builds the dedup key for one processor notification: the payment id
// plus the reported status, so a later status change is not treated as a
// duplicate of an earlier one.
func (s *Store) Key(paymentID, status string) string {
	return fmt.Sprintf("idem:mp:%s:%s", paymentID, status)
}

func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (s *Store) Mark(ctx context.Context, key string) error {
	return s.rdb.Set(ctx, key, "1", s.ttl).Err()
}
