package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/mrops-br/rocketshoes-cart/internal/domain"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:3333: connect: connection refused")

type mockStock struct {
	m      sync.Mutex
	amount map[domain.ProductID]int
	err    error
	calls  int
}

func (m *mockStock) GetStock(_ context.Context, id domain.ProductID) (domain.StockRecord, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return domain.StockRecord{}, m.err
	}
	return domain.StockRecord{ID: id, Amount: m.amount[id]}, nil
}

type mockCatalog struct {
	m        sync.Mutex
	products map[domain.ProductID]domain.Product
	err      error
	calls    int
}

func (m *mockCatalog) GetProduct(_ context.Context, id domain.ProductID) (domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Product{}, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

type mockStore struct {
	m       sync.Mutex
	data    []byte
	saves   int
	err     error
	loadErr error
}

func (m *mockStore) Load(context.Context) ([]byte, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	if m.data == nil {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

func (m *mockStore) Save(_ context.Context, data []byte) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *mockStore) snapshot() []byte {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]byte(nil), m.data...)
}

type mockSink struct {
	m             sync.Mutex
	notifications []domain.Notification
}

func (m *mockSink) Notify(_ context.Context, n domain.Notification) {
	m.m.Lock()
	defer m.m.Unlock()
	m.notifications = append(m.notifications, n)
}

func (m *mockSink) all() []domain.Notification {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]domain.Notification(nil), m.notifications...)
}

type fixture struct {
	stock   *mockStock
	catalog *mockCatalog
	store   *mockStore
	sink    *mockSink
	cart    *CartStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		stock: &mockStock{amount: map[domain.ProductID]int{
			1:  3,
			2:  5,
			42: 2,
		}},
		catalog: &mockCatalog{products: map[domain.ProductID]domain.Product{
			1:  {ID: 1, Title: "Tenis de Caminhada Leve Confortavel", Price: 179.9, Image: "https://example.com/1.jpg"},
			2:  {ID: 2, Title: "Tenis VR Caminhada Confortavel", Price: 139.9, Image: "https://example.com/2.jpg"},
			42: {ID: 42, Title: "Tenis Adidas Duramo Lite 2.0", Price: 219.9, Image: "https://example.com/42.jpg"},
		}},
		store: &mockStore{},
		sink:  &mockSink{},
	}
	f.cart = NewCartStore(
		f.stock,
		f.catalog,
		f.store,
		f.sink,
		tracenoop.NewTracerProvider().Tracer("test"),
		metricNoop(),
		slog.New(slog.DiscardHandler),
	)
	return f
}

func metricNoop() metric.Meter {
	return metricnoop.NewMeterProvider().Meter("test")
}
