package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mrops-br/rocketshoes-cart/internal/app/dto"
	"github.com/mrops-br/rocketshoes-cart/internal/app/service"
	"github.com/mrops-br/rocketshoes-cart/internal/domain"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/config"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/http/handler"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/http/response"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/notify"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type testAPI struct {
	srv     *httptest.Server
	store   *memory.Store
	catalog *memory.Catalog
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	meterProvider := metricnoop.NewMeterProvider()

	catalog := memory.NewCatalog(tracer, logger)
	require.NoError(t, catalog.Put(domain.Product{ID: 42, Title: "Tenis Adidas Duramo Lite 2.0", Price: 219.9, Image: "https://example.com/42.jpg"}, 2))
	require.NoError(t, catalog.Put(domain.Product{ID: 1, Title: "Tenis de Caminhada", Price: 179.9, Image: "https://example.com/1.jpg"}, 5))

	store := memory.NewStore(tracer, logger)
	feed := notify.NewFeed(10)

	cart := service.NewCartStore(catalog, catalog, store, feed, tracer, meterProvider.Meter("test"), logger)
	h := handler.NewCartHandler(cart, feed, logger)
	products := handler.NewProductHandler(catalog, logger)
	server := NewServer(&config.ServerConfig{Host: "127.0.0.1", Port: "0"}, h, products, logger, meterProvider)

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	return &testAPI{srv: srv, store: store, catalog: catalog}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCartScenarioOverHTTP(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodPost, "/cart/items/42", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	op := decode[dto.OperationResponse](t, resp)
	assert.Equal(t, "committed", op.Outcome)
	require.Len(t, op.Cart.Items, 1)
	assert.Equal(t, 1, op.Cart.Items[0].Amount)
	assert.Equal(t, "Tenis Adidas Duramo Lite 2.0", op.Cart.Items[0].Title)

	resp = api.do(t, http.MethodPost, "/cart/items/42", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/cart/items/42", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	failure := decode[response.ErrorResponse](t, resp)
	assert.Equal(t, "out_of_stock", failure.Kind)
	assert.Equal(t, "Requested quantity is out of stock", failure.Message)

	resp = api.do(t, http.MethodGet, "/cart", "")
	cart := decode[dto.CartResponse](t, resp)
	assert.Equal(t, 2, cart.TotalAmount)
	assert.Equal(t, map[domain.ProductID]int{42: 2}, cart.Amounts)
	assert.InDelta(t, 439.8, cart.Subtotal, 0.0001)

	resp = api.do(t, http.MethodDelete, "/cart/items/42", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	op = decode[dto.OperationResponse](t, resp)
	assert.Empty(t, op.Cart.Items)

	resp = api.do(t, http.MethodGet, "/notifications", "")
	notes := decode[[]domain.Notification](t, resp)
	require.Len(t, notes, 1)
	assert.Equal(t, "Requested quantity is out of stock", notes[0].Message)
}

func TestSetAmountOverHTTP(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodPut, "/cart/items/1", `{"amount":3}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Failed to update product amount", decode[response.ErrorResponse](t, resp).Message)

	api.do(t, http.MethodPost, "/cart/items/1", "")

	resp = api.do(t, http.MethodPut, "/cart/items/1", `{"amount":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[dto.OperationResponse](t, resp).Cart.Amounts[1])

	resp = api.do(t, http.MethodPut, "/cart/items/1", `{"amount":0}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = api.do(t, http.MethodPut, "/cart/items/1", `{"amount":6}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = api.do(t, http.MethodPut, "/cart/items/1", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRemoveMissingOverHTTP(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodDelete, "/cart/items/9", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	failure := decode[response.ErrorResponse](t, resp)
	assert.Equal(t, "item_not_found", failure.Kind)
	assert.Equal(t, "Failed to remove product", failure.Message)

	_, ok, err := api.store.Load(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddUnknownProductOverHTTP(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodPost, "/cart/items/77", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to add product", decode[response.ErrorResponse](t, resp).Message)
}

func TestInvalidProductID(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodPost, "/cart/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProductOverHTTP(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodGet, "/products/42", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	product := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, "Tenis Adidas Duramo Lite 2.0", product.Title)
	assert.Equal(t, 219.9, product.Price)

	resp = api.do(t, http.MethodGet, "/products/77", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// product lookups never touch the cart
	resp = api.do(t, http.MethodGet, "/cart", "")
	assert.Empty(t, decode[dto.CartResponse](t, resp).Items)
}

func TestOperationResponseShowsItsOwnCommit(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodPost, "/cart/items/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[dto.OperationResponse](t, resp)

	api.do(t, http.MethodPost, "/cart/items/42", "")

	assert.Equal(t, map[domain.ProductID]int{1: 1}, first.Cart.Amounts)
}

func TestHealth(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}
