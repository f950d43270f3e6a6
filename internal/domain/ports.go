package domain

import "context"

// StockService reports the currently available quantity of a product.
// A transport failure must be returned as an error, never as a zero amount.
type StockService interface {
	GetStock(ctx context.Context, id ProductID) (StockRecord, error)
}

// ProductCatalog returns product details by id.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id ProductID) (Product, error)
}

// PersistenceStore holds one serialized cart under a single key.
// Load reports ok=false when nothing has been saved yet.
type PersistenceStore interface {
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Save(ctx context.Context, data []byte) error
}

// NotificationSink receives user-visible failure messages. Implementations must not block.
type NotificationSink interface {
	Notify(ctx context.Context, n Notification)
}
