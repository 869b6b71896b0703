package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voltswap/internal/models"
)

// Store mirrors active swap sessions in redis so the dashboard and a restarted
// service can see in-flight swaps. Entries expire with the session TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(swapID string) string {
	return fmt.Sprintf("swaps:active:%s", swapID)
}

// Save caches the session under its swap id.
func (s *Store) Save(ctx context.Context, session *models.SwapSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.SwapID), data, s.ttl).Err()
}

// Get returns the cached session.
func (s *Store) Get(ctx context.Context, swapID string) (*models.SwapSession, error) {
	result, err := s.client.Get(ctx, s.key(swapID)).Result()
	if err != nil {
		return nil, err
	}
	var session models.SwapSession
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes the cached session.
func (s *Store) Delete(ctx context.Context, swapID string) error {
	return s.client.Del(ctx, s.key(swapID)).Err()
}

// LoadAll returns every mirrored active session. Used on startup to rebuild
// the in-memory store, so sessions in flight during a restart still expire.
func (s *Store) LoadAll(ctx context.Context) ([]models.SwapSession, error) {
	var sessions []models.SwapSession
	iter := s.client.Scan(ctx, 0, "swaps:active:*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Result()
		if errors.Is(err, redis.Nil) {
			// Expired between SCAN and GET.
			continue
		}
		if err != nil {
			return nil, err
		}
		var session models.SwapSession
		if err := json.Unmarshal([]byte(data), &session); err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
