package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const collectionName = "carts"

type cartDocument struct {
	Key       string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store keeps the cart blob in one document keyed by the storage key.
// ReplaceOne swaps the whole document, so readers see old or new, never a mix.
type Store struct {
	collection *mongo.Collection
	key        string
	tracer     trace.Tracer
	logger     *slog.Logger
}

func NewStore(db *mongo.Database, key string, tracer trace.Tracer, logger *slog.Logger) *Store {
	return &Store{
		collection: db.Collection(collectionName),
		key:        key,
		tracer:     tracer,
		logger:     logger,
	}
}

// Connect opens a client and returns the named database
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func (s *Store) Load(ctx context.Context) ([]byte, bool, error) {
	ctx, span := s.tracer.Start(ctx, "MongoStore.Load")
	defer span.End()

	span.SetAttributes(attribute.String("db.mongodb.key", s.key))

	var doc cartDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		s.logger.DebugContext(ctx, "No cart document", slog.String("key", s.key))
		span.SetStatus(codes.Ok, "Empty")
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Find failed")
		return nil, false, fmt.Errorf("failed to get cart: %w", err)
	}

	span.SetStatus(codes.Ok, "Cart loaded")
	return []byte(doc.Data), true, nil
}

func (s *Store) Save(ctx context.Context, data []byte) error {
	ctx, span := s.tracer.Start(ctx, "MongoStore.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.mongodb.key", s.key),
		attribute.Int("cart.bytes", len(data)),
	)

	doc := cartDocument{Key: s.key, Data: string(data), UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, opts); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Replace failed")
		s.logger.ErrorContext(ctx, "Failed to save cart document",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to save cart: %w", err)
	}

	span.SetStatus(codes.Ok, "Cart saved")
	return nil
}
