package qualify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const sessionTTL = 24 * time.Hour

// HistoryStore persists in-progress conversation snapshots so sessions
// survive a process restart.
type HistoryStore interface {
	SaveSnapshot(ctx context.Context, sessionID string, snap Snapshot) error
	LoadSnapshot(ctx context.Context, sessionID string) (Snapshot, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisHistoryStore keeps snapshots in redis with a 24h TTL.
type RedisHistoryStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewRedisHistoryStore(client *redis.Client, tracer trace.Tracer) *RedisHistoryStore {
	if client == nil {
		panic("qualify: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("portfolio.internal.qualify.history")
	}
	return &RedisHistoryStore{
		redis:  client,
		tracer: tracer,
	}
}

func (s *RedisHistoryStore) SaveSnapshot(ctx context.Context, sessionID string, snap Snapshot) error {
	ctx, span := s.tracer.Start(ctx, "qualify.save_snapshot")
	defer span.End()

	data, err := json.Marshal(snap)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("qualify: failed to marshal snapshot: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), data, sessionTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("qualify: failed to persist snapshot: %w", err)
	}
	return nil
}

func (s *RedisHistoryStore) LoadSnapshot(ctx context.Context, sessionID string) (Snapshot, bool, error) {
	ctx, span := s.tracer.Start(ctx, "qualify.load_snapshot")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Snapshot{}, false, nil
		}
		span.RecordError(err)
		return Snapshot{}, false, fmt.Errorf("qualify: failed to load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		span.RecordError(err)
		return Snapshot{}, false, fmt.Errorf("qualify: failed to decode snapshot: %w", err)
	}
	return snap, true, nil
}

func (s *RedisHistoryStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "qualify.delete_snapshot")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("qualify: failed to delete snapshot: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
