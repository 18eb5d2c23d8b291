package main

import (
	"context"
	"log"
	"time"

	"github.com/fekuna/omnipos-menu-service/config"
	catRepoPkg "github.com/fekuna/omnipos-menu-service/internal/category/repository"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/database"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	prodRepoPkg "github.com/fekuna/omnipos-menu-service/internal/product/repository"
	"github.com/fekuna/omnipos-menu-service/internal/seed"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment: cfg.IsDevelopment(),
		Encoding:      cfg.Logger.Encoding,
		Level:         cfg.Logger.Level,
	})
	defer appLogger.Sync()

	db, err := database.NewPostgres(&database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.ApplySchema(ctx, db, database.PostgresSchema); err != nil {
		appLogger.Fatal("Could not apply schema", zap.Error(err))
	}

	res, err := seed.NewSeeder(catRepoPkg.NewPGRepository(db), prodRepoPkg.NewPGRepository(db), appLogger).Run(ctx)
	if err != nil {
		appLogger.Fatal("Seeding failed", zap.Error(err))
	}
	appLogger.Info("Seeding finished",
		zap.Int("categories_created", res.CategoriesCreated),
		zap.Int("products_created", res.ProductsCreated),
	)
}
