package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Erfan-programmer/divix-cart/internal/api/handlers"
	"github.com/Erfan-programmer/divix-cart/internal/api/middleware"
	"github.com/Erfan-programmer/divix-cart/internal/cache"
	"github.com/Erfan-programmer/divix-cart/internal/cart"
	"github.com/Erfan-programmer/divix-cart/internal/config"
	"github.com/Erfan-programmer/divix-cart/internal/health"
	"github.com/Erfan-programmer/divix-cart/internal/metrics"
	"github.com/Erfan-programmer/divix-cart/internal/notify"
	"github.com/Erfan-programmer/divix-cart/internal/telemetry"
	"github.com/Erfan-programmer/divix-cart/pkg/divix"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(context.Background(), &cfg.Otel)
	if err != nil {
		slog.Error("❌ Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	// Redis setup
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConnect.Host + ":" + cfg.RedisConnect.Port,
		Username: cfg.RedisConnect.Username,
		Password: cfg.RedisConnect.Password,
		DB:       cfg.RedisConnect.DB,
	})

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelPing()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	store := cache.NewRedisCache(redisClient, &cfg.Cache)

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Redis connection closed")
		}
	}()

	// Wiring
	commerceClient := divix.NewClient(cfg.Commerce.BaseURL, cfg.Commerce.CartIDHeader, cfg.Commerce.RequestTimeout)
	notifier := notify.NewSlogNotifier(logger)
	manager := cart.NewManager(commerceClient, store, notifier)
	cartHandler := handlers.NewCartHandler(handlers.LocatorFunc(func(session string) handlers.Core {
		return manager.ForSession(session)
	}))
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error building health handler", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("cart core initialized", slog.String("env", cfg.Env), slog.String("upstream", cfg.Commerce.BaseURL))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/cart", cartHandler.GetCart())
	routerMux.HandleFunc("GET /api/v1/cart/badge", cartHandler.GetBadge())
	routerMux.HandleFunc("POST /api/v1/cart/items", cartHandler.AddItem())
	routerMux.HandleFunc("PUT /api/v1/cart/items", cartHandler.UpdateQuantity())
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{priceId}", cartHandler.RemoveItem())
	routerMux.HandleFunc("POST /api/v1/cart/discount", authMiddleware.Authenticate(cartHandler.ApplyDiscount()))
	routerMux.HandleFunc("DELETE /api/v1/cart/discount", cartHandler.RemoveDiscount())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "divix-cart")

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Tracer shutdown encountered an issue", slog.String("error", err.Error()))
	}

}
