package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	redisActivityPrefix = "runsync:activity:"
	redisIndexKey       = "runsync:activities"
)

// RedisStore is a storage backend using Redis
type RedisStore struct {
	client *redis.Client
	mu     sync.Mutex
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		slog.Error("Redis connection failed", "error", err)
		os.Exit(1)
	}
	return client
}

// NewRedisStore creates a new Redis-backed store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies Redis connectivity
func (s *RedisStore) Ping() error {
	return s.client.Ping(context.Background()).Err()
}

// WriteActivity saves an activity as JSON and adds it to the index set
func (s *RedisStore) WriteActivity(activity Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()

	data, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisActivityPrefix+activity.ID, data, 0)
		pipe.SAdd(ctx, redisIndexKey, activity.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write activity: %w", err)
	}
	return nil
}

// GetActivity loads an activity by ID
func (s *RedisStore) GetActivity(id string) *Activity {
	data, err := s.client.Get(context.Background(), redisActivityPrefix+id).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("Failed to get activity", "id", id, "error", err)
		}
		return nil
	}

	var activity Activity
	if err := json.Unmarshal([]byte(data), &activity); err != nil {
		slog.Error("Failed to unmarshal activity", "id", id, "error", err)
		return nil
	}
	return &activity
}

// ListActivities loads every indexed activity
func (s *RedisStore) ListActivities() ([]Activity, error) {
	ids, err := s.client.SMembers(context.Background(), redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read activity index: %w", err)
	}

	activities := make([]Activity, 0, len(ids))
	for _, id := range ids {
		if a := s.GetActivity(id); a != nil {
			activities = append(activities, *a)
		}
	}
	sortActivities(activities)
	return activities, nil
}

// DeleteActivity removes an activity and its index entry
func (s *RedisStore) DeleteActivity(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisActivityPrefix+id)
		pipe.SRem(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		slog.Error("Failed to delete activity", "id", id, "error", err)
		return false
	}
	return true
}
