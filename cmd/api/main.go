// Package main is the entry point for the organization catalog API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/orgcatalog/internal/api"
	"github.com/onnwee/orgcatalog/internal/auth"
	"github.com/onnwee/orgcatalog/internal/cache"
	"github.com/onnwee/orgcatalog/internal/catalog"
	"github.com/onnwee/orgcatalog/internal/config"
	"github.com/onnwee/orgcatalog/internal/db"
	"github.com/onnwee/orgcatalog/internal/health"
	"github.com/onnwee/orgcatalog/internal/middleware"
	"github.com/onnwee/orgcatalog/internal/tracing"
)

const serviceName = "orgcatalog-api"

// unauthenticatedPaths are served without credentials: probes and the
// metrics scrape endpoint.
var unauthenticatedPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Organization Catalog API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: !cfg.IsProduction(),
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Database
	sqlDB, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	postgisVersion, err := db.VerifyPostGIS(ctx, sqlDB)
	if err != nil {
		logger.Error("PostGIS verification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected", "postgis_version", postgisVersion)

	// Redis: shared by the query cache and the rate limiter. A Redis outage
	// degrades both to fail-open rather than taking the API down.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at startup, cache and rate limiting degraded", "error", err)
	}

	httpMetrics := middleware.NewMetrics()
	queryCache := cache.New(redisClient, logger, cache.NewMetrics())

	repo := catalog.NewPostgresRepository(sqlDB, logger)
	svc := catalog.NewService(repo, queryCache, logger)

	// Rate limiting: a global per-IP limit on every route plus a tighter
	// one on spatial queries. The spatial key is prefixed so the two
	// windows count independently.
	limitStore := middleware.NewRedisRateLimitStore(redisClient, logger, httpMetrics)
	ipKey := middleware.IPKeyFunc()
	spatialKey := func(r *http.Request) string { return "spatial:" + ipKey(r) }
	spatialLimit := middleware.RateLimiter(limitStore, middleware.DefaultSpatialLimit(), spatialKey, httpMetrics)

	mux := api.NewRouter(api.RouterConfig{
		Buildings:     api.NewBuildingHandlers(svc),
		Organizations: api.NewOrganizationHandlers(svc),
		Activities:    api.NewActivityHandlers(svc),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			DBChecker:    health.NewDBChecker(sqlDB),
			RedisChecker: health.NewRedisChecker(redisClient),
		}),
		Metrics:      promhttp.Handler(),
		SpatialLimit: spatialLimit,
	})

	// Authentication guards the catalog routes; probes and metrics stay open.
	authn := auth.NewAuthenticatorWithRotation(cfg.APIKey, cfg.APIKeyPrevious)
	authed := auth.Middleware(authn)(mux)
	gated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unauthenticatedPaths[r.URL.Path] {
			mux.ServeHTTP(w, r)
			return
		}
		authed.ServeHTTP(w, r)
	})

	// Middleware chain, outermost first: RequestID -> Logging -> CORS ->
	// HTTPMetrics -> Tracing -> RateLimiter -> auth gate -> routes.
	var handler http.Handler = gated
	handler = middleware.RateLimiter(limitStore, middleware.DefaultGlobalLimit(), ipKey, httpMetrics)(handler)
	handler = middleware.Tracing(serviceName)(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	})(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			"port", cfg.Port,
			"env", cfg.Env,
			"tracing_enabled", tracerProvider.IsEnabled(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
