package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Store keeps the cart blob in a single file. Writes go to a temporary file
// that is renamed over the target, so readers never see a partial blob.
type Store struct {
	path   string
	tracer trace.Tracer
	logger *slog.Logger
}

// NewStore creates a store for key inside dir, creating dir if needed
func NewStore(dir, key string, tracer trace.Tracer, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart directory: %w", err)
	}
	return &Store{
		path:   filepath.Join(dir, url.PathEscape(key)+".json"),
		tracer: tracer,
		logger: logger,
	}, nil
}

// Path returns the file holding the cart
func (s *Store) Path() string {
	return s.path
}

// Load reads the cart file
func (s *Store) Load(ctx context.Context) ([]byte, bool, error) {
	ctx, span := s.tracer.Start(ctx, "FileStore.Load")
	defer span.End()

	span.SetAttributes(attribute.String("file.path", s.path))

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.DebugContext(ctx, "No cart file", slog.String("path", s.path))
		span.SetStatus(codes.Ok, "Empty")
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Read failed")
		return nil, false, fmt.Errorf("read cart file: %w", err)
	}

	span.SetStatus(codes.Ok, "Cart loaded")
	return data, true, nil
}

// Save atomically replaces the cart file
func (s *Store) Save(ctx context.Context, data []byte) error {
	ctx, span := s.tracer.Start(ctx, "FileStore.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("file.path", s.path),
		attribute.Int("cart.bytes", len(data)),
	)

	if err := s.writeAtomic(data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Write failed")
		s.logger.ErrorContext(ctx, "Failed to write cart file",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return err
	}

	s.logger.DebugContext(ctx, "Cart file written", slog.Int("bytes", len(data)))
	span.SetStatus(codes.Ok, "Cart saved")
	return nil
}

func (s *Store) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cart-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace cart file: %w", err)
	}
	return nil
}
