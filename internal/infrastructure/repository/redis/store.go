package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/extra/redisotel/v9"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Store keeps the cart blob under a single Redis key. SET replaces the
// value atomically.
type Store struct {
	client *goredis.Client
	key    string
	tracer trace.Tracer
	logger *slog.Logger
}

func NewStore(client *goredis.Client, key string, tracer trace.Tracer, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		key:    key,
		tracer: tracer,
		logger: logger,
	}
}

// Connect creates a traced client and verifies it with PING
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := redisotel.InstrumentTracing(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis tracing instrumentation failed: %w", err)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (s *Store) Load(ctx context.Context) ([]byte, bool, error) {
	ctx, span := s.tracer.Start(ctx, "RedisStore.Load")
	defer span.End()

	span.SetAttributes(attribute.String("db.redis.key", s.key))

	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		s.logger.DebugContext(ctx, "No cart in redis", slog.String("key", s.key))
		span.SetStatus(codes.Ok, "Empty")
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Redis get failed")
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	span.SetStatus(codes.Ok, "Cart loaded")
	return data, true, nil
}

func (s *Store) Save(ctx context.Context, data []byte) error {
	ctx, span := s.tracer.Start(ctx, "RedisStore.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.redis.key", s.key),
		attribute.Int("cart.bytes", len(data)),
	)

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Redis set failed")
		s.logger.ErrorContext(ctx, "Failed to save cart in redis",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("redis set failed: %w", err)
	}

	span.SetStatus(codes.Ok, "Cart saved")
	return nil
}
