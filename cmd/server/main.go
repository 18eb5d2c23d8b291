package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fekuna/omnipos-menu-service/config"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/database"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/search"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/storage"
	"github.com/fekuna/omnipos-menu-service/internal/server"

	catH "github.com/fekuna/omnipos-menu-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-menu-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-menu-service/internal/category/usecase"

	prodH "github.com/fekuna/omnipos-menu-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-menu-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-menu-service/internal/product/usecase"

	orderEvent "github.com/fekuna/omnipos-menu-service/internal/order/event"
	orderH "github.com/fekuna/omnipos-menu-service/internal/order/handler"
	orderRepoPkg "github.com/fekuna/omnipos-menu-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-menu-service/internal/order/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	eventQueueSize      = 1024
	eventPublishTimeout = 10 * time.Second
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to Database
	db, err := database.NewPostgres(&database.Config{
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

	if cfg.Postgres.AutoMigrate {
		if err := database.ApplySchema(ctx, db, database.PostgresSchema); err != nil {
			appLogger.Fatal("Could not apply schema", zap.Error(err))
		}
	}

	// 4. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)

	// 5. Optional collaborators. Each stays a nil interface when disabled.
	prodOpts := prodUCPkg.Options{CacheTTL: time.Duration(cfg.Redis.CacheTTL) * time.Second}

	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, product list cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			prodOpts.Cache = redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, search falls back to SQL", zap.Error(err))
		} else {
			prodOpts.Search = esClient
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	if cfg.Storage.Bucket != "" {
		uploader, err := storage.NewS3Uploader(ctx, &storage.Config{
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Endpoint:        cfg.Storage.Endpoint,
			Folder:          cfg.Storage.Folder,
		})
		if err != nil {
			appLogger.Fatal("Could not configure S3 uploader", zap.Error(err))
		}
		prodOpts.Uploader = uploader
		appLogger.Info("Image uploads enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	var (
		publisher  orderUCPkg.Publisher
		producer   *broker.KafkaProducer
		dispatcher *orderEvent.Dispatcher
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer = broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		dispatcher = orderEvent.NewDispatcher(orderEvent.NewKafkaPublisher(producer), eventQueueSize, eventPublishTimeout, appLogger)
		publisher = dispatcher
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 6. Initialize UseCases
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, catRepo, prodOpts, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, prodRepo, publisher, appLogger)

	// 7. Initialize Handlers
	router := server.NewRouter(
		server.RouterConfig{AllowedOrigins: cfg.Server.AllowedOrigins},
		server.Handlers{
			Categories: catH.NewCategoryHandler(catUC, appLogger),
			Products:   prodH.NewProductHandler(prodUC, appLogger),
			Orders:     orderH.NewOrderHandler(orderUC, appLogger),
		},
		db,
		appLogger,
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 8. Start gRPC health server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", port), zap.Error(err))
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("port", port))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()

	// Queued events go out before the producer closes.
	if dispatcher != nil {
		dispatcher.Close()
		if err := producer.Close(); err != nil {
			appLogger.Error("Kafka producer close failed", zap.Error(err))
		}
	}
	appLogger.Info("Server stopped")
}
