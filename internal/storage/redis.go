package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisKV persists records in Redis. Records live under "<kind>:<id>" keys
// with a per-kind index set so that List does not require a keyspace scan.
//
// Keys carry no Redis TTL: session expiry is decided by the session store on
// read, and an eagerly vanishing key would defeat the lazy-expiry contract.
type RedisKV struct {
	client *redis.Client
	tracer trace.Tracer
}

// NewRedisKV creates a Redis-backed KV store.
func NewRedisKV(client *redis.Client, tracer trace.Tracer) *RedisKV {
	if client == nil {
		panic("storage: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("bookingai.internal.storage.redis")
	}
	return &RedisKV{client: client, tracer: tracer}
}

func recordKey(kind Kind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}

func indexKey(kind Kind) string {
	return fmt.Sprintf("%s:index", kind)
}

func (s *RedisKV) Get(ctx context.Context, kind Kind, id string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "storage.redis.get")
	defer span.End()

	data, err := s.client.Get(ctx, recordKey(kind, id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("storage: failed to load %s record: %w", kind, err)
	}
	return data, nil
}

func (s *RedisKV) Put(ctx context.Context, kind Kind, id string, data []byte) error {
	ctx, span := s.tracer.Start(ctx, "storage.redis.put")
	defer span.End()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKey(kind, id), data, 0)
	pipe.SAdd(ctx, indexKey(kind), id)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("storage: failed to persist %s record: %w", kind, err)
	}
	return nil
}

func (s *RedisKV) Delete(ctx context.Context, kind Kind, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.redis.delete")
	defer span.End()

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, recordKey(kind, id))
	pipe.SRem(ctx, indexKey(kind), id)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("storage: failed to delete %s record: %w", kind, err)
	}
	return nil
}

func (s *RedisKV) List(ctx context.Context, kind Kind) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.redis.list")
	defer span.End()

	ids, err := s.client.SMembers(ctx, indexKey(kind)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("storage: failed to list %s records: %w", kind, err)
	}
	return ids, nil
}
