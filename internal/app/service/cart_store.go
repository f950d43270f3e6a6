package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mrops-br/rocketshoes-cart/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Outcome is the result of a cart operation
type Outcome int

const (
	// OutcomeFailed means state is unchanged and the failure was reported
	OutcomeFailed Outcome = iota
	// OutcomeCommitted means the new cart was persisted and is now current
	OutcomeCommitted
	// OutcomeNoop means the input was ignored without error
	OutcomeNoop
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeNoop:
		return "noop"
	default:
		return "failed"
	}
}

// CartStore owns the session cart. Operations run one at a time; readers
// see the last committed cart without waiting for in-flight operations.
type CartStore struct {
	mu      sync.Mutex
	current atomic.Pointer[domain.Cart]

	stock   domain.StockService
	catalog domain.ProductCatalog
	store   domain.PersistenceStore
	sink    domain.NotificationSink

	tracer         trace.Tracer
	logger         *slog.Logger
	cartOperations metric.Int64Counter
}

// NewCartStore creates a cart store holding an empty cart. Call Load to
// restore the persisted cart.
func NewCartStore(
	stock domain.StockService,
	catalog domain.ProductCatalog,
	store domain.PersistenceStore,
	sink domain.NotificationSink,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CartStore {
	cartOperations, _ := meter.Int64Counter(
		"cart.operations",
		metric.WithDescription("Total number of cart operations by result"),
	)

	s := &CartStore{
		stock:          stock,
		catalog:        catalog,
		store:          store,
		sink:           sink,
		tracer:         tracer,
		logger:         logger,
		cartOperations: cartOperations,
	}
	s.current.Store(&domain.Cart{})

	_, _ = meter.Int64ObservableGauge(
		"cart.units",
		metric.WithDescription("Units currently in the cart"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(s.Cart().TotalAmount()))
			return nil
		}),
	)

	return s
}

// Cart returns the last committed cart
func (s *CartStore) Cart() domain.Cart {
	return *s.current.Load()
}

// Load replaces the in-memory cart with the persisted one. A missing blob
// leaves the cart empty.
func (s *CartStore) Load(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "CartStore.Load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.store.Load(ctx)
	if err != nil {
		_, _, err = s.fail(ctx, span, &domain.CartError{Op: domain.OpLoad, Kind: domain.ErrPersistenceFailure, Err: err})
		return err
	}
	if !ok {
		s.logger.InfoContext(ctx, "No persisted cart, starting empty")
		span.SetStatus(codes.Ok, "Empty cart")
		return nil
	}

	cart, err := domain.UnmarshalCart(data)
	if err != nil {
		_, _, err = s.fail(ctx, span, &domain.CartError{Op: domain.OpLoad, Kind: domain.ErrPersistenceFailure, Err: err})
		return err
	}

	s.current.Store(&cart)
	span.SetAttributes(attribute.Int("cart.lines", cart.Len()))
	s.logger.InfoContext(ctx, "Cart loaded",
		slog.Int("lines", cart.Len()),
		slog.Int("units", cart.TotalAmount()),
	)
	span.SetStatus(codes.Ok, "Cart loaded")
	return nil
}

// AddOne adds one unit of a product. A product not yet in the cart is
// inserted with amount 1 using the catalog details. The returned cart is the
// one this call committed, or the unchanged cart on failure.
func (s *CartStore) AddOne(ctx context.Context, id domain.ProductID) (Outcome, domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartStore.AddOne")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", int64(id)))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.InfoContext(ctx, "Adding product to cart", slog.Int64("product_id", int64(id)))

	cart := s.Cart()
	existing, inCart := cart.Find(id)

	stock, err := s.stock.GetStock(ctx, id)
	if err != nil {
		return s.fail(ctx, span, &domain.CartError{Op: domain.OpAdd, Kind: domain.ErrAddFailed, ProductID: id, Err: err})
	}

	requested := existing.Amount + 1
	span.SetAttributes(
		attribute.Int("stock.amount", stock.Amount),
		attribute.Int("cart.requested", requested),
	)
	if requested > stock.Amount {
		return s.fail(ctx, span, &domain.CartError{Op: domain.OpAdd, Kind: domain.ErrOutOfStock, ProductID: id})
	}

	var next domain.Cart
	if inCart {
		next = cart.WithAmount(id, requested)
	} else {
		product, err := s.catalog.GetProduct(ctx, id)
		if err == nil {
			product.ID = id
			err = product.Validate()
		}
		if err != nil {
			return s.fail(ctx, span, &domain.CartError{Op: domain.OpAdd, Kind: domain.ErrAddFailed, ProductID: id, Err: err})
		}
		next = cart.Append(domain.NewCartItem(product, 1))
	}

	return s.commit(ctx, span, domain.OpAdd, id, next)
}

// RemoveOne deletes the whole line for a product
func (s *CartStore) RemoveOne(ctx context.Context, id domain.ProductID) (Outcome, domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartStore.RemoveOne")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", int64(id)))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.InfoContext(ctx, "Removing product from cart", slog.Int64("product_id", int64(id)))

	cart := s.Cart()
	if _, ok := cart.Find(id); !ok {
		return s.fail(ctx, span, &domain.CartError{Op: domain.OpRemove, Kind: domain.ErrItemNotFound, ProductID: id})
	}

	return s.commit(ctx, span, domain.OpRemove, id, cart.Without(id))
}

// SetAmount overwrites the amount of a product already in the cart.
// Non-positive amounts are ignored. Stock is checked before cart membership.
func (s *CartStore) SetAmount(ctx context.Context, id domain.ProductID, amount int) (Outcome, domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartStore.SetAmount")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product.id", int64(id)),
		attribute.Int("cart.requested", amount),
	)

	if amount <= 0 {
		s.logger.DebugContext(ctx, "Ignoring non-positive amount",
			slog.Int64("product_id", int64(id)),
			slog.Int("amount", amount),
		)
		s.record(ctx, domain.OpSetAmount, "noop")
		span.SetStatus(codes.Ok, "No-op")
		return OutcomeNoop, s.Cart(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.InfoContext(ctx, "Updating product amount",
		slog.Int64("product_id", int64(id)),
		slog.Int("amount", amount),
	)

	stock, err := s.stock.GetStock(ctx, id)
	if err != nil {
		return s.fail(ctx, span, &domain.CartError{Op: domain.OpSetAmount, Kind: domain.ErrTransportFailure, ProductID: id, Err: err})
	}
	span.SetAttributes(attribute.Int("stock.amount", stock.Amount))
	if amount > stock.Amount {
		return s.fail(ctx, span, &domain.CartError{Op: domain.OpSetAmount, Kind: domain.ErrOutOfStock, ProductID: id})
	}

	cart := s.Cart()
	if _, ok := cart.Find(id); !ok {
		return s.fail(ctx, span, &domain.CartError{Op: domain.OpSetAmount, Kind: domain.ErrItemNotFound, ProductID: id})
	}

	return s.commit(ctx, span, domain.OpSetAmount, id, cart.WithAmount(id, amount))
}

// commit persists next and only then makes it the current cart, so a failed
// write leaves both memory and storage at the previous value.
func (s *CartStore) commit(ctx context.Context, span trace.Span, op domain.Op, id domain.ProductID, next domain.Cart) (Outcome, domain.Cart, error) {
	data, err := domain.MarshalCart(next)
	if err == nil {
		err = s.store.Save(ctx, data)
	}
	if err != nil {
		return s.fail(ctx, span, &domain.CartError{Op: op, Kind: domain.ErrPersistenceFailure, ProductID: id, Err: err})
	}

	s.current.Store(&next)
	s.record(ctx, op, "success")

	span.SetAttributes(
		attribute.Int("cart.lines", next.Len()),
		attribute.Int("cart.amount", next.AmountOf(id)),
	)
	s.logger.InfoContext(ctx, "Cart committed",
		slog.String("operation", string(op)),
		slog.Int64("product_id", int64(id)),
		slog.Int("amount", next.AmountOf(id)),
		slog.Int("lines", next.Len()),
	)
	span.SetStatus(codes.Ok, "Cart committed")
	return OutcomeCommitted, next, nil
}

// fail reports err to the sink and returns it with the unchanged cart
func (s *CartStore) fail(ctx context.Context, span trace.Span, err *domain.CartError) (Outcome, domain.Cart, error) {
	kind := domain.KindName(err.Kind)

	span.RecordError(err)
	span.SetStatus(codes.Error, kind)

	attrs := []any{
		slog.String("operation", string(err.Op)),
		slog.Int64("product_id", int64(err.ProductID)),
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	}
	if errors.Is(err, domain.ErrOutOfStock) || errors.Is(err, domain.ErrItemNotFound) {
		s.logger.WarnContext(ctx, "Cart operation rejected", attrs...)
	} else {
		s.logger.ErrorContext(ctx, "Cart operation failed", attrs...)
	}

	s.record(ctx, err.Op, kind)
	s.sink.Notify(ctx, domain.NewNotification(err))
	return OutcomeFailed, s.Cart(), err
}

func (s *CartStore) record(ctx context.Context, op domain.Op, result string) {
	s.cartOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", string(op)),
			attribute.String("result", result),
		),
	)
}
