package memory

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Store is an in-memory implementation of domain.PersistenceStore
type Store struct {
	mu     sync.RWMutex
	data   []byte
	saved  bool
	tracer trace.Tracer
	logger *slog.Logger
}

// NewStore creates an empty in-memory cart store
func NewStore(tracer trace.Tracer, logger *slog.Logger) *Store {
	return &Store{
		tracer: tracer,
		logger: logger,
	}
}

// Load returns the last saved blob
func (s *Store) Load(ctx context.Context) ([]byte, bool, error) {
	ctx, span := s.tracer.Start(ctx, "MemoryStore.Load")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.saved {
		s.logger.DebugContext(ctx, "No cart in memory store")
		span.SetStatus(codes.Ok, "Empty")
		return nil, false, nil
	}

	span.SetAttributes(attribute.Int("cart.bytes", len(s.data)))
	span.SetStatus(codes.Ok, "Cart loaded")
	return append([]byte(nil), s.data...), true, nil
}

// Save replaces the stored blob
func (s *Store) Save(ctx context.Context, data []byte) error {
	ctx, span := s.tracer.Start(ctx, "MemoryStore.Save")
	defer span.End()

	span.SetAttributes(attribute.Int("cart.bytes", len(data)))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append([]byte(nil), data...)
	s.saved = true

	s.logger.DebugContext(ctx, "Cart saved in memory store",
		slog.Int("bytes", len(data)),
	)

	span.SetStatus(codes.Ok, "Cart saved")
	return nil
}
