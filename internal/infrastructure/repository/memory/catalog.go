package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mrops-br/rocketshoes-cart/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Catalog is an in-memory product and stock source. It implements
// domain.ProductCatalog and domain.StockService.
type Catalog struct {
	mu       sync.RWMutex
	products map[domain.ProductID]domain.Product
	stock    map[domain.ProductID]int
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewCatalog creates an empty in-memory catalog
func NewCatalog(tracer trace.Tracer, logger *slog.Logger) *Catalog {
	return &Catalog{
		products: make(map[domain.ProductID]domain.Product),
		stock:    make(map[domain.ProductID]int),
		tracer:   tracer,
		logger:   logger,
	}
}

// Put stores a product together with its available amount
func (c *Catalog) Put(product domain.Product, amount int) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("stock for product %d must not be negative", product.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.products[product.ID] = product
	c.stock[product.ID] = amount
	return nil
}

// GetProduct retrieves a product by ID
func (c *Catalog) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	ctx, span := c.tracer.Start(ctx, "MemoryCatalog.GetProduct")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", int64(id)))

	c.mu.RLock()
	defer c.mu.RUnlock()

	product, exists := c.products[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		c.logger.WarnContext(ctx, "Product not found",
			slog.Int64("product_id", int64(id)),
		)
		return domain.Product{}, domain.ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// GetStock retrieves the available amount of a product
func (c *Catalog) GetStock(ctx context.Context, id domain.ProductID) (domain.StockRecord, error) {
	ctx, span := c.tracer.Start(ctx, "MemoryCatalog.GetStock")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", int64(id)))

	c.mu.RLock()
	defer c.mu.RUnlock()

	amount, exists := c.stock[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Stock not found")
		c.logger.WarnContext(ctx, "Stock not found",
			slog.Int64("product_id", int64(id)),
		)
		return domain.StockRecord{}, domain.ErrProductNotFound
	}

	span.SetAttributes(attribute.Int("stock.amount", amount))
	span.SetStatus(codes.Ok, "Stock found")
	return domain.StockRecord{ID: id, Amount: amount}, nil
}

// Seed fills the catalog with the demo storefront products
func (c *Catalog) Seed() error {
	products := []struct {
		product domain.Product
		amount  int
	}{
		{domain.Product{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis1.jpg"}, 3},
		{domain.Product{ID: 2, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg"}, 5},
		{domain.Product{ID: 3, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis3.jpg"}, 2},
		{domain.Product{ID: 4, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg"}, 1},
		{domain.Product{ID: 5, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg"}, 5},
		{domain.Product{ID: 6, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis3.jpg"}, 10},
	}

	for _, p := range products {
		if err := c.Put(p.product, p.amount); err != nil {
			return err
		}
	}
	return nil
}
