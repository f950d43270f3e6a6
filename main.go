package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrops-br/rocketshoes-cart/internal/app/service"
	"github.com/mrops-br/rocketshoes-cart/internal/domain"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/client"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/config"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/http"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/http/handler"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/notify"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/repository/file"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/repository/memory"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/repository/mongo"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/repository/redis"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

const catalogInMemory = "memory"

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize OpenTelemetry
	var (
		telem *telemetry.Telemetry
		err   error
	)
	if cfg.OTLP.Enabled {
		telem, err = telemetry.NewTelemetry(&cfg.OTLP, cfg.LogLevel)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(&cfg.OTLP, cfg.LogLevel)
	}
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := telem.TracerProvider.Tracer("rocketshoes-cart")
	meter := telem.MeterProvider.Meter("rocketshoes-cart")
	logger := telem.Logger

	logger.Info("Starting cart service")

	// Stock and product lookups
	stock, catalog, err := openCatalog(&cfg.Catalog, tracer, logger)
	if err != nil {
		logger.Error("Failed to initialize catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Durable cart slot
	store, closeStore, err := openStore(ctx, &cfg.Storage, tracer, logger)
	if err != nil {
		logger.Error("Failed to initialize cart storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	// Failure notifications go to the log and to the UI feed
	feed := notify.NewFeed(cfg.Notify.Buffer)
	sink := notify.Multi{notify.NewLogSink(logger), feed}

	cartStore := service.NewCartStore(stock, catalog, store, sink, tracer, meter, logger)
	if err := cartStore.Load(ctx); err != nil {
		logger.Error("Failed to load persisted cart", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cartHandler := handler.NewCartHandler(cartStore, feed, logger)
	productHandler := handler.NewProductHandler(catalog, logger)
	server := http.NewServer(&cfg.Server, cartHandler, productHandler, logger, telem.MeterProvider)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Server error", "error", err.Error())
			cancel()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("Server stopped")
}

func openCatalog(cfg *config.CatalogConfig, tracer trace.Tracer, logger *slog.Logger) (domain.StockService, domain.ProductCatalog, error) {
	if cfg.BaseURL == catalogInMemory {
		catalog := memory.NewCatalog(tracer, logger)
		if err := catalog.Seed(); err != nil {
			return nil, nil, err
		}
		logger.Info("Using in-memory catalog")
		return catalog, catalog, nil
	}

	c := client.NewCatalogClient(cfg, tracer, logger)
	logger.Info("Using catalog API", slog.String("url", cfg.BaseURL))
	return c, c, nil
}

func openStore(ctx context.Context, cfg *config.StorageConfig, tracer trace.Tracer, logger *slog.Logger) (domain.PersistenceStore, func(), error) {
	logger.Info("Opening cart storage",
		slog.String("backend", cfg.Backend),
		slog.String("key", cfg.Key),
	)

	switch cfg.Backend {
	case "memory":
		return memory.NewStore(tracer, logger), func() {}, nil

	case "file":
		store, err := file.NewStore(cfg.FileDir, cfg.Key, tracer, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case "redis":
		rdb, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewStore(rdb, cfg.Key, tracer, logger), func() { rdb.Close() }, nil

	case "mongo":
		db, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.Error("Failed to disconnect from MongoDB", slog.String("error", err.Error()))
			}
		}
		return mongo.NewStore(db, cfg.Key, tracer, logger), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown cart storage backend %q", cfg.Backend)
	}
}
