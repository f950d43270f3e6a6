package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mrops-br/rocketshoes-cart/internal/domain"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/config"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status from catalog api")
	ErrInvalidStock     = errors.New("stock amount must not be negative")
)

// CatalogClient talks to the storefront API: GET /stock/{id} and GET /products/{id}.
// It implements domain.StockService and domain.ProductCatalog. Calls are
// never retried; an open breaker fails fast with gobreaker.ErrOpenState.
type CatalogClient struct {
	baseURL        string
	httpClient     *http.Client
	stockBreaker   *gobreaker.CircuitBreaker[domain.StockRecord]
	productBreaker *gobreaker.CircuitBreaker[domain.Product]
	products       singleflight.Group // collapses concurrent detail lookups
	tracer         trace.Tracer
	logger         *slog.Logger
}

// NewCatalogClient creates a client for the API at cfg.BaseURL
func NewCatalogClient(cfg *config.CatalogConfig, tracer trace.Tracer, logger *slog.Logger) *CatalogClient {
	return &CatalogClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		stockBreaker:   gobreaker.NewCircuitBreaker[domain.StockRecord](breakerSettings("catalog-stock", cfg, logger)),
		productBreaker: gobreaker.NewCircuitBreaker[domain.Product](breakerSettings("catalog-products", cfg, logger)),
		tracer:         tracer,
		logger:         logger,
	}
}

func breakerSettings(name string, cfg *config.CatalogConfig, logger *slog.Logger) gobreaker.Settings {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 1
	}
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		// a missing product is an answer, not a transport failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrProductNotFound)
		},
	}
}

// GetStock returns the available amount for a product
func (c *CatalogClient) GetStock(ctx context.Context, id domain.ProductID) (domain.StockRecord, error) {
	ctx, span := c.tracer.Start(ctx, "CatalogClient.GetStock")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", int64(id)))

	stock, err := c.stockBreaker.Execute(func() (domain.StockRecord, error) {
		var record domain.StockRecord
		if err := c.getJSON(ctx, "/stock/"+id.String(), &record); err != nil {
			return domain.StockRecord{}, err
		}
		if record.Amount < 0 {
			return domain.StockRecord{}, fmt.Errorf("%w: product %d has %d", ErrInvalidStock, id, record.Amount)
		}
		record.ID = id
		return record, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Stock lookup failed")
		c.logger.WarnContext(ctx, "Stock lookup failed",
			slog.Int64("product_id", int64(id)),
			slog.String("error", err.Error()),
		)
		return domain.StockRecord{}, err
	}

	span.SetAttributes(attribute.Int("stock.amount", stock.Amount))
	span.SetStatus(codes.Ok, "Stock retrieved")
	return stock, nil
}

// GetProduct returns product details. Concurrent lookups of the same id, from
// the product detail route or from cart insertions, share one request. The
// shared request is not cancelled when the caller that started it goes away;
// it is bounded by the client timeout.
func (c *CatalogClient) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	ctx, span := c.tracer.Start(ctx, "CatalogClient.GetProduct")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", int64(id)))

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.products.DoChan(id.String(), func() (interface{}, error) {
		return c.productBreaker.Execute(func() (domain.Product, error) {
			var product domain.Product
			if err := c.getJSON(fetchCtx, "/products/"+id.String(), &product); err != nil {
				return domain.Product{}, err
			}
			return product, nil
		})
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = ctx.Err()
	}

	span.SetAttributes(attribute.Bool("singleflight.shared", res.Shared))
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "Product lookup failed")
		c.logger.WarnContext(ctx, "Product lookup failed",
			slog.Int64("product_id", int64(id)),
			slog.String("error", res.Err.Error()),
		)
		return domain.Product{}, res.Err
	}

	span.SetStatus(codes.Ok, "Product retrieved")
	return res.Val.(domain.Product), nil
}

func (c *CatalogClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", path, domain.ErrProductNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("GET %s: %w: %d", path, ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
