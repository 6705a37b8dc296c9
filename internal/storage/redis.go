package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/worldforge/pkg/state"
	"github.com/jwebster45206/worldforge/pkg/storage"
)

const snapshotKeyPrefix = "worldstate:"

// RedisStorage keeps one JSON document per session under worldstate:<id>.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// storedSession is the value written for each key.
type storedSession struct {
	UpdatedAt int64          `json:"updatedAt"` // Unix milliseconds
	Snapshot  state.Snapshot `json:"snapshot"`
}

// NewRedisStorage stores snapshots through client. A zero ttl keeps
// sessions until deleted.
func NewRedisStorage(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	return &RedisStorage{
		client: client,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// NewRedisClient builds a client from a redis:// URL.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func snapshotKey(id uuid.UUID) string {
	return snapshotKeyPrefix + id.String()
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection pings until Redis answers, every retryDelay, at most
// maxRetries times.
func (r *RedisStorage) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Snapshot operations

func (r *RedisStorage) SaveSnapshot(ctx context.Context, id uuid.UUID, snap state.Snapshot) error {
	data, err := json.Marshal(storedSession{
		UpdatedAt: r.now().UnixMilli(),
		Snapshot:  snap,
	})
	if err != nil {
		r.logger.Error("Failed to marshal snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey(id), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	r.logger.Debug("Snapshot saved", "uuid", id, "bytes", len(data))
	return nil
}

func (r *RedisStorage) load(ctx context.Context, key string) (*storedSession, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var s storedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &s, nil
}

func (r *RedisStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*state.Snapshot, error) {
	s, err := r.load(ctx, snapshotKey(id))
	if err != nil {
		r.logger.Error("Failed to load snapshot", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if s == nil {
		r.logger.Warn("Snapshot not found", "uuid", id)
		return nil, nil
	}
	return &s.Snapshot, nil
}

func (r *RedisStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, snapshotKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// ListSessions scans worldstate:* keys. Keys that expire or fail to decode
// mid-scan are skipped.
func (r *RedisStorage) ListSessions(ctx context.Context) ([]storage.SessionSummary, error) {
	out := make([]storage.SessionSummary, 0)

	iter := r.client.Scan(ctx, 0, snapshotKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := uuid.Parse(strings.TrimPrefix(key, snapshotKeyPrefix))
		if err != nil {
			r.logger.Warn("Skipping malformed session key", "key", key)
			continue
		}

		s, err := r.load(ctx, key)
		if err != nil {
			r.logger.Warn("Skipping unreadable session", "key", key, "error", err)
			continue
		}
		if s == nil {
			continue
		}
		out = append(out, storage.Summarize(id, s.Snapshot, time.UnixMilli(s.UpdatedAt)))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}

	storage.SortByRecent(out)
	return out, nil
}
