package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/config"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/expiry"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/migrate"
)

// Cron diário: expira formulários encaminhados cujo link venceu sem resposta.
func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("zap: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Mesmo fluxo do servidor: migrações via gorm antes de qualquer leitura.
	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	if err := migrate.Run(ctx, gdb, "migrations"); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("pgxpool", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("ping", zap.Error(err))
	}

	marked, skipped := expiry.SweepPool(ctx, pool, logger)
	logger.Info("expiry: varredura concluída", zap.Int("marked", marked), zap.Int("skipped", skipped))
	os.Exit(0)
}
