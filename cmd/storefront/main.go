package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-storefront-service/config"
	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/health"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/internal/view"
	"github.com/fekuna/omnipos-storefront-service/pkg/broker"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/pkg/middleware"
	"github.com/fekuna/omnipos-storefront-service/pkg/queue"
	"github.com/fekuna/omnipos-storefront-service/pkg/search"

	accountH "github.com/fekuna/omnipos-storefront-service/internal/account/handler"
	accountRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/account/repository"
	accountUCPkg "github.com/fekuna/omnipos-storefront-service/internal/account/usecase"

	cartH "github.com/fekuna/omnipos-storefront-service/internal/cart/handler"
	cartUCPkg "github.com/fekuna/omnipos-storefront-service/internal/cart/usecase"

	catalogH "github.com/fekuna/omnipos-storefront-service/internal/catalog/handler"
	catalogRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/catalog/repository"
	catalogUCPkg "github.com/fekuna/omnipos-storefront-service/internal/catalog/usecase"

	catH "github.com/fekuna/omnipos-storefront-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-storefront-service/internal/category/usecase"

	orderEventsPkg "github.com/fekuna/omnipos-storefront-service/internal/order/events"
	orderH "github.com/fekuna/omnipos-storefront-service/internal/order/handler"
	orderRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-storefront-service/internal/order/usecase"

	prodH "github.com/fekuna/omnipos-storefront-service/internal/product/handler"
	prodListenerPkg "github.com/fekuna/omnipos-storefront-service/internal/product/listener"
	prodRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-storefront-service/internal/product/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	healthInterval  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	// 1. Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. i18n
	translator, err := i18n.New()
	if err != nil {
		appLogger.Fatal("Could not load translations", zap.Error(err))
	}

	// 4. Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 5. Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 6. Kafka
	kafkaConfig := &broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrderTopic,
		GroupID: cfg.Kafka.GroupID,
	}
	kafkaProducer := broker.NewProducer(kafkaConfig)
	defer kafkaProducer.Close()
	kafkaConsumer := broker.NewConsumer(kafkaConfig)
	defer kafkaConsumer.Close()
	appLogger.Info("Kafka configured", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrderTopic))

	// 7. Order event sinks
	publishers := orderEventsPkg.Fanout{orderEventsPkg.NewKafkaPublisher(kafkaProducer)}

	channelPool, err := queue.NewChannelPool(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.RabbitMQ.PoolSize)
	if err != nil {
		appLogger.Warn("Could not connect to RabbitMQ, warehouse hand-off disabled", zap.Error(err))
	} else {
		defer channelPool.Close()
		warehouse := queue.NewPublisher(channelPool, cfg.RabbitMQ.Queue)
		publishers = append(publishers, orderEventsPkg.NewWarehousePublisher(warehouse))
		appLogger.Info("Connected to RabbitMQ", zap.String("queue", cfg.RabbitMQ.Queue))
	}

	// 8. Elasticsearch
	var esClient *search.Client
	if cfg.Elastic.Enabled {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, search falls back to the database", zap.Error(err))
			esClient = nil
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 9. Repositories
	accountRepo := accountRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	catalogRepo := catalogRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	ranking := prodRepoPkg.NewRedisRanking(redisClient)

	// 10. UseCases
	accountUC := accountUCPkg.NewAccountUseCase(accountRepo, auth.NewBcryptVerifier(cfg.Server.BcryptCost), appLogger)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, ranking, redisClient, esClient, appLogger)
	catalogUC := catalogUCPkg.NewCatalogUseCase(catalogRepo, prodRepo, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(catalogUC, prodUC, appLogger)

	var publisher order.EventPublisher = publishers
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, catalogUC, redisClient, publisher, orderUCPkg.Config{
		Workers: cfg.Checkout.Workers,
		LockTTL: cfg.Checkout.LockTTL,
	}, appLogger)

	// 11. Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rankingListener := prodListenerPkg.NewRankingListener(kafkaConsumer, prodUC, appLogger)
	go rankingListener.Start(ctx)

	checker := health.NewChecker(db, healthInterval, appLogger)
	go checker.Run(ctx)

	// 12. HTTP storefront
	tmpl, err := view.Templates()
	if err != nil {
		appLogger.Fatal("Could not parse templates", zap.Error(err))
	}
	static, err := view.Static()
	if err != nil {
		appLogger.Fatal("Could not load static assets", zap.Error(err))
	}
	renderer := view.NewRenderer(translator, appLogger)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(appLogger))
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", static)
	router.GET("/health", func(c *gin.Context) {
		if !checker.Healthy() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	sessionStore := session.NewRedisStore(redisClient, cfg.Server.SessionTTL)
	pages := router.Group("", session.Middleware(sessionStore, session.CookieOptions{
		TTL:    cfg.Server.SessionTTL,
		Secure: cfg.Server.CookieSecure,
	}, appLogger))

	accountH.NewAccountHandler(accountUC, renderer, appLogger).RegisterRoutes(pages)
	prodH.NewProductHandler(prodUC, catalogUC, catUC, renderer, appLogger).RegisterRoutes(pages)
	catalogH.NewCatalogHandler(catalogUC, prodUC, renderer, appLogger).RegisterRoutes(pages)
	catH.NewCategoryHandler(catUC, renderer, appLogger).RegisterRoutes(pages)
	cartH.NewCartHandler(cartUC, prodUC, renderer, appLogger).RegisterRoutes(pages)
	orderH.NewOrderHandler(orderUC, cartUC, renderer, appLogger).RegisterRoutes(pages)

	httpServer := &http.Server{
		Addr:              listenAddr(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// 13. gRPC health
	grpcAddr := listenAddr(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	grpcServer := health.NewGRPCServer(checker)

	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown incomplete", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
