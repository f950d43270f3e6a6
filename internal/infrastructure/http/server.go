package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/config"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/http/handler"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	config         *config.ServerConfig
	cartHandler    *handler.CartHandler
	productHandler *handler.ProductHandler
	logger         *slog.Logger
	meterProvider  metric.MeterProvider
	httpServer     *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.ServerConfig,
	cartHandler *handler.CartHandler,
	productHandler *handler.ProductHandler,
	logger *slog.Logger,
	meterProvider metric.MeterProvider,
) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		config:         cfg,
		cartHandler:    cartHandler,
		productHandler: productHandler,
		logger:         logger,
		meterProvider:  meterProvider,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler: s.Handler(),
	}

	return s
}

// setupMiddleware configures the middleware chain
func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(middleware.StructuredLogger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	meter := s.meterProvider.Meter("rocketshoes-cart")
	s.router.Use(middleware.ActiveRequestsMiddleware(meter))
	s.router.Use(middleware.DurationMillisecondsMiddleware(meter))
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Group(func(r chi.Router) {
		// group middleware runs after matching, so the route pattern is known
		r.Use(middleware.HTTPRouteContext())

		r.Get("/cart", s.cartHandler.GetCart)
		r.Post("/cart/items/{id}", s.cartHandler.AddItem)
		r.Put("/cart/items/{id}", s.cartHandler.SetAmount)
		r.Delete("/cart/items/{id}", s.cartHandler.RemoveItem)

		r.Get("/products/{id}", s.productHandler.GetProduct)

		r.Get("/notifications", s.cartHandler.Notifications)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint - exposes OpenTelemetry metrics
	s.router.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// Handler returns the router wrapped with otelhttp for automatic HTTP metrics and tracing
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "http-server",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithMeterProvider(s.meterProvider),
		otelhttp.WithMetricAttributesFn(func(r *http.Request) []attribute.KeyValue {
			routePattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					routePattern = pattern
				}
			}
			return []attribute.KeyValue{
				attribute.String("http.route", routePattern),
			}
		}),
	)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		slog.String("address", s.httpServer.Addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
