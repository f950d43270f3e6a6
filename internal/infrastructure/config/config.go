package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	OTLP     OTLPConfig
	Catalog  CatalogConfig
	Storage  StorageConfig
	Notify   NotifyConfig
	LogLevel string
}

type ServerConfig struct {
	Port string
	Host string
}

type OTLPConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
}

// CatalogConfig points at the API serving /stock/{id} and /products/{id}
type CatalogConfig struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type StorageConfig struct {
	Backend string
	Key     string
	FileDir string
	Redis   RedisConfig
	Mongo   MongoConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MongoConfig struct {
	URI      string
	Database string
}

type NotifyConfig struct {
	Buffer int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		OTLP: OTLPConfig{
			Enabled:     getEnvBool("OTEL_ENABLED", true),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "rocketshoes-cart"),
			Environment: getEnv("OTEL_ENVIRONMENT", "development"),
		},
		Catalog: CatalogConfig{
			BaseURL:         getEnv("CATALOG_API_URL", "http://localhost:3333"),
			Timeout:         getEnvDuration("CATALOG_API_TIMEOUT", 5*time.Second),
			BreakerFailures: uint32(getEnvPositiveInt("CATALOG_BREAKER_FAILURES", 5)),
			BreakerTimeout:  getEnvDuration("CATALOG_BREAKER_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Backend: getEnv("CART_STORAGE", "file"),
			Key:     getEnv("CART_STORAGE_KEY", "@RocketShoes:cart"),
			FileDir: getEnv("CART_FILE_DIR", "./data"),
			Redis: RedisConfig{
				Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvInt("REDIS_DB", 0),
			},
			Mongo: MongoConfig{
				URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
				Database: getEnv("MONGO_DB_NAME", "cartdb"),
			},
		},
		Notify: NotifyConfig{
			Buffer: getEnvInt("NOTIFY_BUFFER", 32),
		},
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvPositiveInt falls back to the default for values below 1
func getEnvPositiveInt(key string, defaultValue int) int {
	if v := getEnvInt(key, defaultValue); v >= 1 {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
