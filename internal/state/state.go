// Package state persists the operator's chosen catalog source between runs.
package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// SourceStore is a small persistent key-value store. Get returns "" for a
// key that was never set.
type SourceStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type redisSourceStore struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisSourceStore(redisClient *redis.Client, keyPrefix string) SourceStore {
	return &redisSourceStore{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

func (s *redisSourceStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.redisClient.Get(ctx, s.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // Nothing saved yet
		}
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return val, nil
}

func (s *redisSourceStore) Set(ctx context.Context, key, value string) error {
	err := s.redisClient.Set(ctx, s.keyPrefix+key, value, 0).Err() // No expiration
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *redisSourceStore) Delete(ctx context.Context, key string) error {
	if err := s.redisClient.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *redisSourceStore) Close() error {
	return s.redisClient.Close()
}

// IsStale reports whether a saved source URL matches one of the superseded
// markers and should not be reused.
func IsStale(sourceURL string, staleMarkers []string) bool {
	for _, marker := range staleMarkers {
		if marker = strings.TrimSpace(marker); marker != "" && strings.Contains(sourceURL, marker) {
			return true
		}
	}
	return false
}

// ResolveSource returns the source to load on startup: the saved URL unless it
// is missing or stale, in which case the default is saved and returned.
func ResolveSource(ctx context.Context, store SourceStore, key, defaultURL string, staleMarkers []string) (string, error) {
	saved, err := store.Get(ctx, key)
	if err != nil {
		return "", err
	}

	saved = strings.TrimSpace(saved)
	if saved != "" && !IsStale(saved, staleMarkers) {
		return saved, nil
	}

	if saved != "" {
		log.Warnf("🧹 Discarding stale catalog source %s", saved)
		if err := store.Delete(ctx, key); err != nil {
			return "", err
		}
	}
	if err := store.Set(ctx, key, defaultURL); err != nil {
		return "", err
	}
	return defaultURL, nil
}
