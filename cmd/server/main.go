// Command server starts the items API HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joaosp7/teste-principia-backend/internal/api"
	"github.com/joaosp7/teste-principia-backend/internal/items"
	"github.com/joaosp7/teste-principia-backend/internal/observability/logging"
	"github.com/joaosp7/teste-principia-backend/internal/observability/metrics"
	"github.com/joaosp7/teste-principia-backend/internal/server"
	"github.com/joaosp7/teste-principia-backend/internal/storage"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address")
	storageDriver := flag.String("storage-driver", "", "datastore driver (postgres or memory)")
	postgresDSN := flag.String("postgres-dsn", "", "Postgres connection string")
	postgresMaxConns := flag.Int("postgres-max-conns", 0, "maximum connections in the Postgres pool")
	postgresMinConns := flag.Int("postgres-min-conns", 0, "minimum idle connections maintained by the Postgres pool")
	postgresMaxConnLifetime := flag.Duration("postgres-max-conn-lifetime", 0, "maximum lifetime for a pooled Postgres connection")
	postgresMaxConnIdle := flag.Duration("postgres-max-conn-idle", 0, "maximum idle time for a pooled Postgres connection")
	postgresHealthInterval := flag.Duration("postgres-health-interval", 0, "interval between Postgres health checks")
	postgresAcquireTimeout := flag.Duration("postgres-acquire-timeout", 0, "timeout when acquiring a Postgres connection from the pool")
	postgresAppName := flag.String("postgres-app-name", "", "application_name reported to Postgres")
	migrate := flag.Bool("migrate", false, "apply the items schema before serving")
	apiKey := flag.String("api-key", "", "shared secret expected in the Authorization header")
	apiKeyHash := flag.String("api-key-hash", "", "PBKDF2 digest of the shared secret (pbkdf2$sha256$iter$salt$key)")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "log format (json or text)")
	globalRPS := flag.Float64("rate-global-rps", 0, "global request rate limit in requests per second")
	globalBurst := flag.Int("rate-global-burst", 0, "global rate limit burst allowance")
	clientLimit := flag.Int("rate-client-limit", 0, "maximum mutating requests per window for a single client IP")
	clientWindow := flag.Duration("rate-client-window", 0, "window for counting mutating requests")
	redisAddr := flag.String("rate-redis-addr", "", "Redis address for a shared rate-limit window store")
	redisUsername := flag.String("rate-redis-username", "", "Redis username for the rate-limit store")
	redisPassword := flag.String("rate-redis-password", "", "Redis password for the rate-limit store")
	redisTimeout := flag.Duration("rate-redis-timeout", 0, "timeout for Redis rate-limit operations")
	redisPoolSize := flag.Int("rate-redis-pool-size", 0, "maximum Redis connections for the rate-limit store")
	flag.Parse()

	logger := logging.Init(logging.Config{
		Level:  firstNonEmpty(*logLevel, os.Getenv("ITEMS_LOG_LEVEL")),
		Format: firstNonEmpty(*logFormat, os.Getenv("ITEMS_LOG_FORMAT")),
	})
	recorder := metrics.Default()

	listenAddr := firstNonEmpty(*addr, os.Getenv("ITEMS_ADDR"), ":8080")

	dsn := resolvePostgresDSN(*postgresDSN)
	driver, err := resolveStorageDriver(*storageDriver, os.Getenv("ITEMS_STORAGE_DRIVER"), dsn)
	if err != nil {
		logger.Error("failed to resolve storage driver", "error", err)
		os.Exit(1)
	}

	var store storage.Repository
	switch driver {
	case "memory":
		store = storage.NewMemoryRepository()
	case "postgres":
		if dsn == "" {
			logger.Error("postgres storage selected without DSN")
			os.Exit(1)
		}
		var options []storage.Option
		maxConns := resolveInt(*postgresMaxConns, "ITEMS_POSTGRES_MAX_CONNS")
		minConns := resolveInt(*postgresMinConns, "ITEMS_POSTGRES_MIN_CONNS")
		if maxConns > 0 || minConns > 0 {
			options = append(options, storage.WithPoolLimits(int32(maxConns), int32(minConns)))
		}
		maxLifetime := resolveDuration(*postgresMaxConnLifetime, "ITEMS_POSTGRES_MAX_CONN_LIFETIME", 0)
		maxIdle := resolveDuration(*postgresMaxConnIdle, "ITEMS_POSTGRES_MAX_CONN_IDLE", 0)
		healthInterval := resolveDuration(*postgresHealthInterval, "ITEMS_POSTGRES_HEALTH_INTERVAL", 0)
		if maxLifetime > 0 || maxIdle > 0 || healthInterval > 0 {
			options = append(options, storage.WithPoolDurations(maxLifetime, maxIdle, healthInterval))
		}
		if acquireTimeout := resolveDuration(*postgresAcquireTimeout, "ITEMS_POSTGRES_ACQUIRE_TIMEOUT", 0); acquireTimeout > 0 {
			options = append(options, storage.WithAcquireTimeout(acquireTimeout))
		}
		if appName := firstNonEmpty(*postgresAppName, os.Getenv("ITEMS_POSTGRES_APP_NAME")); appName != "" {
			options = append(options, storage.WithApplicationName(appName))
		}

		pgStore, err := storage.NewPostgresRepository(dsn, options...)
		if err != nil {
			logger.Error("failed to open datastore", "error", err)
			os.Exit(1)
		}
		if resolveBool(*migrate, "ITEMS_MIGRATE") {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := pgStore.EnsureSchema(ctx)
			cancel()
			if err != nil {
				logger.Error("failed to apply schema", "error", err)
				os.Exit(1)
			}
			logger.Info("items schema applied")
		}
		store = pgStore
	default:
		logger.Error("unsupported storage driver", "driver", driver)
		os.Exit(1)
	}

	service := items.NewService(store, logging.WithComponent(logger, "items"))
	handler := api.NewHandler(service, store, logging.WithComponent(logger, "api"))

	srv, err := server.New(handler, server.Config{
		Addr: listenAddr,
		APIKey: server.APIKeyConfig{
			Key:     firstNonEmpty(*apiKey, os.Getenv("ITEMS_API_KEY")),
			KeyHash: firstNonEmpty(*apiKeyHash, os.Getenv("ITEMS_API_KEY_HASH")),
		},
		RateLimit: server.RateLimitConfig{
			GlobalRPS:     resolveFloat(*globalRPS, "ITEMS_RATE_GLOBAL_RPS"),
			GlobalBurst:   resolveInt(*globalBurst, "ITEMS_RATE_GLOBAL_BURST"),
			ClientLimit:   resolveInt(*clientLimit, "ITEMS_RATE_CLIENT_LIMIT"),
			ClientWindow:  resolveDuration(*clientWindow, "ITEMS_RATE_CLIENT_WINDOW", time.Minute),
			RedisAddr:     firstNonEmpty(*redisAddr, os.Getenv("ITEMS_RATE_REDIS_ADDR")),
			RedisUsername: firstNonEmpty(*redisUsername, os.Getenv("ITEMS_RATE_REDIS_USERNAME")),
			RedisPassword: firstNonEmpty(*redisPassword, os.Getenv("ITEMS_RATE_REDIS_PASSWORD")),
			RedisTimeout:  resolveDuration(*redisTimeout, "ITEMS_RATE_REDIS_TIMEOUT", 2*time.Second),
			RedisPoolSize: resolveInt(*redisPoolSize, "ITEMS_RATE_REDIS_POOL_SIZE"),
		},
		Logger:  logger,
		Metrics: recorder,
	})
	if err != nil {
		logger.Error("failed to initialise server", "error", err)
		os.Exit(1)
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("items API listening", "addr", listenAddr, "driver", driver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errs:
		logger.Error("server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
	if err := store.Close(ctx); err != nil {
		logger.Warn("failed to close datastore", "error", err)
	}

	logger.Info("server stopped")
}

func resolveStorageDriver(flagValue, envValue, postgresDSN string) (string, error) {
	if driver := strings.ToLower(strings.TrimSpace(flagValue)); driver != "" {
		return driver, nil
	}
	if driver := strings.ToLower(strings.TrimSpace(envValue)); driver != "" {
		return driver, nil
	}
	if strings.TrimSpace(postgresDSN) != "" {
		return "postgres", nil
	}
	return "", fmt.Errorf("no datastore configured: provide --storage-driver memory or configure Postgres via ITEMS_POSTGRES_DSN, DATABASE_URL, or --postgres-dsn")
}

func resolvePostgresDSN(flagValue string) string {
	return strings.TrimSpace(firstNonEmpty(flagValue, os.Getenv("ITEMS_POSTGRES_DSN"), os.Getenv("DATABASE_URL")))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func resolveFloat(flagValue float64, envKey string) float64 {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := strconv.ParseFloat(strings.TrimSpace(env), 64); err == nil {
			return value
		}
	}
	return 0
}

func resolveInt(flagValue int, envKey string) int {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := strconv.Atoi(strings.TrimSpace(env)); err == nil {
			return value
		}
	}
	return 0
}

func resolveDuration(flagValue time.Duration, envKey string, fallback time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := time.ParseDuration(env); err == nil {
			return value
		}
	}
	return fallback
}

func resolveBool(flagValue bool, envKey string) bool {
	if flagValue {
		return true
	}
	if env, ok := os.LookupEnv(envKey); ok {
		if value, err := strconv.ParseBool(strings.TrimSpace(env)); err == nil {
			return value
		}
	}
	return false
}
