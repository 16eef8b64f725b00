package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/marinetex-api/auth"
	"github.com/junaidrashid-git/marinetex-api/cart"
	"github.com/junaidrashid-git/marinetex-api/config"
	orderControllers "github.com/junaidrashid-git/marinetex-api/controllers/order"
	telrControllers "github.com/junaidrashid-git/marinetex-api/controllers/telr"
	"github.com/junaidrashid-git/marinetex-api/database"
	"github.com/junaidrashid-git/marinetex-api/events"
	"github.com/junaidrashid-git/marinetex-api/logger"
	"github.com/junaidrashid-git/marinetex-api/metrics"
	"github.com/junaidrashid-git/marinetex-api/notify"
	"github.com/junaidrashid-git/marinetex-api/pricing"
	"github.com/junaidrashid-git/marinetex-api/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zlog.Info("starting application", zap.String("env", cfg.Environment))

	// Init DB (migrations included)
	db, err := database.Connect(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}

	m := metrics.New()

	carts := cart.NewService(cartStore(cfg, zlog))

	conv := pricing.NewConverter(
		pricing.NewHTTPRateSource(cfg.Rates.URL, cfg.Rates.Timeout),
		cfg.Rates.DefaultUSD, cfg.Rates.TTL, zlog.Named("rates"))
	conv.OnFallback = m.Fallback("exchange_rate")

	settings := pricing.NewGormSettings(db)
	shipping := pricing.NewShippingResolver(settings, zlog.Named("shipping"))
	shipping.OnFallback = m.Fallback("shipping")

	hub := orderControllers.NewHub(zlog.Named("ws"))
	publishers := events.Multi{hub}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
		defer kafka.Close()
		publishers = append(publishers, kafka)
	}

	app := &routes.App{
		Config:   cfg,
		DB:       db,
		Log:      zlog,
		Carts:    carts,
		Settings: settings,
		Hub:      hub,
		Verifier: tokenVerifier(cfg, zlog),
		Gateway:  telrControllers.NewTelrGateway(cfg.Telr),
		Metrics:  m,
		Orders: orderControllers.Deps{
			DB:        db,
			Converter: conv,
			Shipping:  shipping,
			Carts:     carts,
			Notifier:  notifier(cfg, zlog),
			Events:    publishers,
			Metrics:   m,
			Log:       zlog.Named("orders"),
		},
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.GinLogger(zlog), gin.Recovery(), m.Middleware())

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, app)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zlog.Info("server running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
	zlog.Info("server stopped")
}

// cartStore uses redis when REDIS_ADDR is set, otherwise an in-process map
// (single instance only).
func cartStore(cfg *config.Config, zlog *zap.Logger) cart.Store {
	if cfg.Redis.Addr == "" {
		zlog.Warn("REDIS_ADDR not set, carts are kept in memory")
		return cart.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return cart.NewRedisStore(client, cfg.Redis.CartTTL)
}

func notifier(cfg *config.Config, zlog *zap.Logger) notify.Notifier {
	if cfg.SMTP.Host == "" {
		return notify.LogNotifier{Log: zlog.Named("notify")}
	}
	return notify.NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
}

func tokenVerifier(cfg *config.Config, zlog *zap.Logger) auth.TokenVerifier {
	if cfg.Firebase.CredentialsJSON == "" {
		zlog.Warn("FIREBASE_CREDENTIALS_JSON not set, Google login disabled")
		return auth.DisabledVerifier{}
	}
	v, err := auth.NewFirebaseVerifier(context.Background(), cfg.Firebase.CredentialsJSON, cfg.Firebase.ProjectID)
	if err != nil {
		zlog.Fatal("firebase init failed", zap.Error(err))
	}
	return v
}
