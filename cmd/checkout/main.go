package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cryptocheckout/internal/config"
	"cryptocheckout/internal/db"
	"cryptocheckout/internal/gateway"
	"cryptocheckout/internal/logger"
	"cryptocheckout/internal/services"
	"cryptocheckout/internal/session"
	"cryptocheckout/internal/store"
	"cryptocheckout/internal/web"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := logger.Initialize(cfg.Checkout.LogLevel); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Log.Sync() }()

	ctx := context.Background()

	deviceID := cfg.Payments.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
		logger.Log.Info("generated device id", zap.String("device_id", deviceID))
	}
	client := gateway.NewClient(cfg.Payments.BaseURL, deviceID, cfg.Payments.Username, cfg.Payments.Password)

	var orders store.OrderRepository = store.NewMemoryOrders()
	if cfg.DB.DSN != "" {
		pool, err := db.Connect(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Log.Fatal("db connect failed", zap.Error(err))
		}
		defer pool.Close()
		orders = store.NewPostgresOrders(pool)
	}

	var deadlines store.DeadlineStore = store.NewMemoryDeadlines()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Fatal("redis connect failed", zap.Error(err))
		}
		defer rdb.Close()
		deadlines = store.NewRedisDeadlines(rdb)
	}

	manager := session.NewManager(
		orders,
		deadlines,
		client,
		cfg.Payments.FeedURL,
		time.Duration(cfg.Checkout.CountdownSeconds)*time.Second,
	)
	defer manager.Shutdown()

	orderSvc := &services.OrderService{Gateway: client, Orders: orders}

	// No server-side wallet provider is wired by default; the selector then
	// reports the provider as absent.
	h := web.NewHandler(orderSvc, manager, client, nil)
	srv := web.NewServer(h)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router,
	}

	go func() {
		logger.Log.Info("checkout listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
